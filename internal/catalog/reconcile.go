package catalog

// reconcile.go replays the append-only edit log onto a product's original
// image list. The log is informational history; overrides (merge.go) layer
// on top of the result and win where present.

import "sort"

// Reconcile folds the scenarios for one product key over its original image
// list, in non-decreasing CreatedAt order. Ties keep their original relative
// order (stable sort); callers may pass the log in any order.
//
// Replace modes swap the accumulator for the scenario's URLs; append modes
// concatenate. Either way, new entries inherit the label of the current
// accumulator's first entry (or DefaultImageLabel when the accumulator is
// empty) and carry UnresolvedColIndex, since edits lose column provenance.
//
// The input slices are never mutated. With a non-empty log the result is
// always a freshly constructed slice; an empty log returns original as-is.
func Reconcile(original []ImageEntry, scenarios []Scenario) []ImageEntry {
	if len(scenarios) == 0 {
		return original
	}

	ordered := make([]Scenario, len(scenarios))
	copy(ordered, scenarios)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	acc := original
	for _, sc := range ordered {
		label := DefaultImageLabel
		if len(acc) > 0 {
			label = acc[0].Label
		}

		wrapped := make([]ImageEntry, 0, len(sc.ImageURLs))
		for _, url := range sc.ImageURLs {
			wrapped = append(wrapped, ImageEntry{
				URL:      url,
				Label:    label,
				ColIndex: UnresolvedColIndex,
			})
		}

		if sc.Mode.IsReplace() {
			acc = wrapped
			continue
		}

		next := make([]ImageEntry, 0, len(acc)+len(wrapped))
		next = append(next, acc...)
		next = append(next, wrapped...)
		acc = next
	}

	return acc
}

// ScenariosByKey groups scenarios by product key, keeping only those
// authored under the given row mode. The mode pairing is authoritative:
// a per-image scenario replayed against a per-product accumulator would
// target the wrong identity space.
func ScenariosByKey(scenarios []Scenario, mode RowMode) map[string][]Scenario {
	grouped := make(map[string][]Scenario)
	for _, sc := range scenarios {
		if sc.ProductKey == "" || sc.RowMode != mode {
			continue
		}
		grouped[sc.ProductKey] = append(grouped[sc.ProductKey], sc)
	}
	return grouped
}
