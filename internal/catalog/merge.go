package catalog

// merge.go applies persisted overrides on top of the scenario-reconciled
// collection. This is the last stage of the working-view pipeline and the
// only one that inserts rows; everything it does must be idempotent because
// callers re-run the merge on every data refresh.

import "sort"

// resolveImageLayers picks the effective image list for one product from its
// layered state, evaluated top-down: override images win when present and
// non-empty, then scenario-reconciled images, then the original import.
// New layers slot in here without touching call sites.
func resolveImageLayers(layers ...[]ImageEntry) []ImageEntry {
	for _, layer := range layers {
		if len(layer) > 0 {
			return layer
		}
	}
	return nil
}

// columnSpan records how many consecutive original images one column
// contributed. Spans back positional label recovery for legacy overrides.
type columnSpan struct {
	name  string
	count int
}

// columnSpans builds the ordered list of distinct column names and their
// per-column image counts from an original image list.
func columnSpans(original []ImageEntry) []columnSpan {
	var spans []columnSpan
	seen := make(map[string]int) // label -> index in spans
	for _, img := range original {
		if i, ok := seen[img.Label]; ok {
			spans[i].count++
			continue
		}
		seen[img.Label] = len(spans)
		spans = append(spans, columnSpan{name: img.Label, count: 1})
	}
	return spans
}

// overrideEntries materializes an override's flat URL list into image
// entries. When the override carries a parallel Categories list, labels come
// from it verbatim. Legacy overrides lack Categories; their labels are
// recovered positionally by walking the cumulative per-column counts of the
// original image list. URLs beyond the last original column are attributed
// to that last column, and DefaultImageLabel covers the no-originals case.
func overrideEntries(ov OverrideValue, original []ImageEntry) []ImageEntry {
	entries := make([]ImageEntry, 0, len(ov.Images))

	if len(ov.Categories) == len(ov.Images) && len(ov.Categories) > 0 {
		for i, url := range ov.Images {
			entries = append(entries, ImageEntry{
				URL:      url,
				Label:    ov.Categories[i],
				ColIndex: UnresolvedColIndex,
			})
		}
		return entries
	}

	spans := columnSpans(original)
	span, upper := 0, 0
	if len(spans) > 0 {
		upper = spans[0].count
	}
	for i, url := range ov.Images {
		label := DefaultImageLabel
		if len(spans) > 0 {
			for span < len(spans)-1 && i >= upper {
				span++
				upper += spans[span].count
			}
			label = spans[span].name
		}
		entries = append(entries, ImageEntry{
			URL:      url,
			Label:    label,
			ColIndex: UnresolvedColIndex,
		})
	}
	return entries
}

// syntheticRow constructs the row for a new-product override. The product
// title comes from the caller-supplied description map when present and is
// otherwise left unset.
func syntheticRow(key string, ov OverrideValue, descriptions DescriptionMap) Row {
	fields := Fields{
		ProductID: ov.ProductID,
		SKU:       ov.SKU,
		Images:    overrideEntries(ov, nil),
	}
	if desc, ok := descriptions[key]; ok {
		fields.Title = desc["product_title"]
	}
	return Row{
		RowIndex: SyntheticRowIndex,
		Key:      key,
		Fields:   fields,
	}
}

// pendingProduct is a new-product override waiting for insertion.
type pendingProduct struct {
	key string
	ov  OverrideValue
}

// partitionOverrides splits an override map into existing-key overrides and
// the two insertion buckets for new products. existing holds keys found in
// the current collection; the before bucket holds anchored insertions and
// the last bucket everything else, sorted ascending by UpdatedAt so the
// oldest edit appears first across sessions.
//
// Buckets are gathered in sorted key order. The relative order of multiple
// "before" entries targeting adjacent anchors is deliberately unspecified;
// sorted keys just keep it deterministic run to run.
func partitionOverrides(overrides OverrideMap, present map[string]struct{}) (existing, before, last []pendingProduct) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		ov := overrides[key]
		if _, ok := present[key]; ok {
			// A physical row always wins over a same-key new-product
			// override; the override degrades to an image override.
			existing = append(existing, pendingProduct{key: key, ov: ov})
			continue
		}
		if !ov.IsNewProduct {
			continue
		}
		if ov.AddPosition == AddBefore {
			before = append(before, pendingProduct{key: key, ov: ov})
		} else {
			last = append(last, pendingProduct{key: key, ov: ov})
		}
	}

	sort.SliceStable(last, func(i, j int) bool {
		return last[i].ov.UpdatedAt.Before(last[j].ov.UpdatedAt)
	})
	return existing, before, last
}

// spliceBefore inserts item immediately before index at.
func spliceBefore[T any](items []T, at int, item T) []T {
	items = append(items, item)
	copy(items[at+1:], items[at:])
	items[at] = item
	return items
}

// MergeOverrides merges the persisted override map into a scenario-reconciled
// row collection and returns a new slice; the input is left untouched.
//
// Existing products get the override image layer applied in place. Absent
// keys flagged as new products become synthetic rows: anchored ("before")
// entries are spliced immediately before their anchor's current position,
// falling back to append-at-end when the anchor has since disappeared, and
// the remaining entries are appended last in UpdatedAt order.
//
// The key set is recomputed from the input on every call, so merging an
// already-merged collection finds every synthetic key present and inserts
// nothing twice.
func MergeOverrides(rows []Row, overrides OverrideMap, descriptions DescriptionMap, mode RowMode, groupBy GroupByField) []Row {
	merged := make([]Row, len(rows))
	copy(merged, rows)

	present := KeySet(rows, mode, groupBy)
	existing, before, last := partitionOverrides(overrides, present)

	for _, p := range existing {
		for i := range merged {
			if ResolveKey(merged[i], mode, groupBy) != p.key {
				continue
			}
			if images := resolveImageLayers(
				overrideEntries(p.ov, merged[i].Fields.OriginalImages),
				merged[i].Fields.Images,
				merged[i].Fields.OriginalImages,
			); images != nil {
				merged[i].Fields.Images = images
			}
			break
		}
	}

	for _, p := range before {
		row := syntheticRow(p.key, p.ov, descriptions)
		at := indexOfRowKey(merged, p.ov.InsertBeforeProductKey, mode, groupBy)
		if at < 0 {
			// Dangling anchor: the target was itself removed. Degrade to
			// append-at-end rather than dropping the product.
			merged = append(merged, row)
			continue
		}
		merged = spliceBefore(merged, at, row)
	}

	for _, p := range last {
		merged = append(merged, syntheticRow(p.key, p.ov, descriptions))
	}

	return merged
}

// indexOfRowKey locates the current position of a product key in the working
// array. Returns -1 when absent or when the key is empty.
func indexOfRowKey(rows []Row, key string, mode RowMode, groupBy GroupByField) int {
	if key == "" {
		return -1
	}
	for i, r := range rows {
		if ResolveKey(r, mode, groupBy) == key {
			return i
		}
	}
	return -1
}

// MergeOverridesIntoViews is the view-level counterpart of MergeOverrides,
// operating on materialized ProductView collections with the same bucket,
// anchor, and idempotence semantics.
func MergeOverridesIntoViews(views []ProductView, overrides OverrideMap, descriptions DescriptionMap, mode RowMode) []ProductView {
	merged := make([]ProductView, len(views))
	copy(merged, views)

	present := make(map[string]struct{}, len(views))
	for _, v := range views {
		if v.ProductKey != "" {
			present[v.ProductKey] = struct{}{}
		}
	}
	existing, before, last := partitionOverrides(overrides, present)

	for _, p := range existing {
		for i := range merged {
			if merged[i].ProductKey != p.key {
				continue
			}
			if len(p.ov.Images) > 0 {
				merged[i].CurrentImageURLs = append([]string(nil), p.ov.Images...)
			}
			break
		}
	}

	for _, p := range before {
		view := syntheticView(p.key, p.ov, descriptions, mode)
		at := indexOfViewKey(merged, p.ov.InsertBeforeProductKey)
		if at < 0 {
			merged = append(merged, view)
			continue
		}
		merged = spliceBefore(merged, at, view)
	}

	for _, p := range last {
		merged = append(merged, syntheticView(p.key, p.ov, descriptions, mode))
	}

	return merged
}

// syntheticView constructs the materialized view for a new-product override.
func syntheticView(key string, ov OverrideValue, descriptions DescriptionMap, mode RowMode) ProductView {
	title := ""
	if desc, ok := descriptions[key]; ok {
		title = desc["product_title"]
	}
	return ProductView{
		ProductKey:       key,
		Title:            title,
		RowMode:          mode,
		CurrentImageURLs: append([]string(nil), ov.Images...),
		IsNewProduct:     true,
		NewProduct: &NewProductInfo{
			ProductID:              ov.ProductID,
			SKU:                    ov.SKU,
			AddPosition:            ov.AddPosition,
			InsertBeforeProductKey: ov.InsertBeforeProductKey,
			SourceTemplateID:       ov.SourceTemplateID,
			CreatedAt:              ov.CreatedAt,
			UpdatedAt:              ov.UpdatedAt,
		},
	}
}

func indexOfViewKey(views []ProductView, key string) int {
	if key == "" {
		return -1
	}
	for i, v := range views {
		if v.ProductKey == key {
			return i
		}
	}
	return -1
}
