package catalog

import (
	"reflect"
	"testing"
	"time"
)

func entryURLs(entries []ImageEntry) []string {
	urls := make([]string, len(entries))
	for i, e := range entries {
		urls[i] = e.URL
	}
	return urls
}

func TestReconcile_EmptyLog_ReturnsInputUnchanged(t *testing.T) {
	original := []ImageEntry{
		{URL: "a.jpg", Label: "Main Image", ColIndex: 2},
		{URL: "b.jpg", Label: "Main Image", ColIndex: 2},
	}

	got := Reconcile(original, nil)

	if !reflect.DeepEqual(got, original) {
		t.Errorf("expected original images back, got %+v", got)
	}
	if got[0].URL != "a.jpg" || original[0].ColIndex != 2 {
		t.Error("input was mutated")
	}
}

func TestReconcile_Replace(t *testing.T) {
	original := []ImageEntry{{URL: "x.jpg", Label: "Gallery", ColIndex: 4}}
	scenarios := []Scenario{{
		Mode:      ScenarioReplaceAllImagesPerProduct,
		ImageURLs: []string{"a.jpg", "b.jpg"},
		CreatedAt: time.Unix(100, 0),
	}}

	got := Reconcile(original, scenarios)

	want := []string{"a.jpg", "b.jpg"}
	if !reflect.DeepEqual(entryURLs(got), want) {
		t.Fatalf("expected %v, got %v", want, entryURLs(got))
	}
	for _, e := range got {
		// Label is inherited from the accumulator before replacement;
		// column provenance is lost.
		if e.Label != "Gallery" {
			t.Errorf("expected inherited label Gallery, got %q", e.Label)
		}
		if e.ColIndex != UnresolvedColIndex {
			t.Errorf("expected unresolved col index, got %d", e.ColIndex)
		}
	}
}

func TestReconcile_Append(t *testing.T) {
	original := []ImageEntry{{URL: "x.jpg", Label: "Main", ColIndex: 1}}
	scenarios := []Scenario{{
		Mode:      ScenarioAppendImagesPerProduct,
		ImageURLs: []string{"c.jpg"},
		CreatedAt: time.Unix(100, 0),
	}}

	got := Reconcile(original, scenarios)

	want := []string{"x.jpg", "c.jpg"}
	if !reflect.DeepEqual(entryURLs(got), want) {
		t.Fatalf("expected %v, got %v", want, entryURLs(got))
	}
	if got[0].ColIndex != 1 {
		t.Error("original entry lost its column provenance")
	}
	if got[1].Label != "Main" {
		t.Errorf("appended entry should inherit label Main, got %q", got[1].Label)
	}
}

func TestReconcile_ReplaceOnEmptyAccumulator_UsesDefaultLabel(t *testing.T) {
	scenarios := []Scenario{{
		Mode:      ScenarioReplaceAllImagesPerProduct,
		ImageURLs: []string{"a.jpg"},
		CreatedAt: time.Unix(100, 0),
	}}

	got := Reconcile(nil, scenarios)

	if len(got) != 1 || got[0].Label != DefaultImageLabel {
		t.Errorf("expected single entry labeled %q, got %+v", DefaultImageLabel, got)
	}
}

// Scenarios passed out of order must replay identically to scenarios passed
// in CreatedAt order.
func TestReconcile_SortsByCreatedAt(t *testing.T) {
	original := []ImageEntry{{URL: "x.jpg", Label: "Main", ColIndex: 0}}
	replace := Scenario{
		Mode:      ScenarioReplaceAllImagesPerProduct,
		ImageURLs: []string{"a.jpg", "b.jpg"},
		CreatedAt: time.Unix(100, 0),
	}
	appendSc := Scenario{
		Mode:      ScenarioAppendImagesPerProduct,
		ImageURLs: []string{"c.jpg"},
		CreatedAt: time.Unix(200, 0),
	}

	inOrder := Reconcile(original, []Scenario{replace, appendSc})
	outOfOrder := Reconcile(original, []Scenario{appendSc, replace})

	want := []string{"a.jpg", "b.jpg", "c.jpg"}
	if !reflect.DeepEqual(entryURLs(inOrder), want) {
		t.Errorf("in-order replay: expected %v, got %v", want, entryURLs(inOrder))
	}
	if !reflect.DeepEqual(inOrder, outOfOrder) {
		t.Errorf("replay order diverged: %v vs %v", entryURLs(inOrder), entryURLs(outOfOrder))
	}
}

// Equal timestamps keep their original relative order. The tie-break is
// deliberate, not an error condition.
func TestReconcile_StableTieBreak(t *testing.T) {
	at := time.Unix(100, 0)
	first := Scenario{Mode: ScenarioAppendImagesPerProduct, ImageURLs: []string{"a.jpg"}, CreatedAt: at}
	second := Scenario{Mode: ScenarioAppendImagesPerProduct, ImageURLs: []string{"b.jpg"}, CreatedAt: at}

	got := Reconcile(nil, []Scenario{first, second})

	want := []string{"a.jpg", "b.jpg"}
	if !reflect.DeepEqual(entryURLs(got), want) {
		t.Errorf("expected stable order %v, got %v", want, entryURLs(got))
	}
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	original := []ImageEntry{{URL: "x.jpg", Label: "Main", ColIndex: 3}}
	scenarios := []Scenario{
		{Mode: ScenarioAppendImagesPerProduct, ImageURLs: []string{"b.jpg"}, CreatedAt: time.Unix(200, 0)},
		{Mode: ScenarioAppendImagesPerProduct, ImageURLs: []string{"a.jpg"}, CreatedAt: time.Unix(100, 0)},
	}

	_ = Reconcile(original, scenarios)

	if original[0].URL != "x.jpg" || len(original) != 1 {
		t.Error("original images were mutated")
	}
	if scenarios[0].CreatedAt != time.Unix(200, 0) {
		t.Error("scenario slice was reordered in place")
	}
}

func TestScenariosByKey_FiltersRowModeAndEmptyKeys(t *testing.T) {
	scenarios := []Scenario{
		{ProductKey: "row-0", RowMode: RowModePerProduct, Mode: ScenarioAppendImagesPerProduct},
		{ProductKey: "row-0", RowMode: RowModePerImage, Mode: ScenarioAppendRowsPerImage},
		{ProductKey: "", RowMode: RowModePerProduct, Mode: ScenarioAppendImagesPerProduct},
	}

	grouped := ScenariosByKey(scenarios, RowModePerProduct)

	if len(grouped) != 1 {
		t.Fatalf("expected 1 key, got %d", len(grouped))
	}
	if len(grouped["row-0"]) != 1 {
		t.Errorf("expected 1 per-product scenario for row-0, got %d", len(grouped["row-0"]))
	}
}
