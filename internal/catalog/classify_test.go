package catalog

import (
	"testing"
	"time"
)

func TestNormalizeHeader(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Product_Title", "product title"},
		{"  SKU  ", "sku"},
		{"price-(USD)", "price usd"},
		{"Image.URL", "image url"},
		{"\"Vendor\"", "vendor"},
		{"option1   value", "option1 value"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeHeader(c.in); got != c.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestClassify_AliasExactMatch(t *testing.T) {
	cl := DefaultClassifier()
	got := cl.Classify("Variant SKU", PlatformShopify, nil)
	if got.Role != RoleSKU || got.Confidence != ConfidenceHigh {
		t.Errorf("expected sku/high from platform alias, got %s/%s", got.Role, got.Confidence)
	}
}

func TestClassify_KeywordExactMatch(t *testing.T) {
	cl := DefaultClassifier()
	got := cl.Classify("价格", "", nil)
	if got.Role != RolePrice || got.Confidence != ConfidenceMedium {
		t.Errorf("expected price/medium from keyword, got %s/%s", got.Role, got.Confidence)
	}
}

func TestClassify_SubstringMatch(t *testing.T) {
	cl := DefaultClassifier()
	got := cl.Classify("Main Image URL", "", nil)
	if got.Role != RoleImages || got.Confidence != ConfidenceLow {
		t.Errorf("expected images/low from substring, got %s/%s", got.Role, got.Confidence)
	}
}

func TestClassify_SpecificTagBeatsContainedTag(t *testing.T) {
	cl := DefaultClassifier()

	if got := cl.Classify("special_sale_price_amount", "", nil); got.Role != RoleSalePrice {
		t.Errorf("sale price header classified as %s", got.Role)
	}
	if got := cl.Classify("seo_title_field", "", nil); got.Role != RoleSEOTitle {
		t.Errorf("seo title header classified as %s", got.Role)
	}
}

func TestClassify_PlatformPositionalFallback(t *testing.T) {
	cl := DefaultClassifier()
	got := cl.Classify("Option1 Value", PlatformShopify, nil)
	if got.Role != RoleColor || got.Confidence != ConfidenceLow {
		t.Errorf("expected color/low from shopify positional, got %s/%s", got.Role, got.Confidence)
	}
	// Without the platform the same header stays unclassified.
	if got := cl.Classify("Option1 Value", "", nil); got.Role != "" {
		t.Errorf("positional pattern leaked outside its platform: %s", got.Role)
	}
}

func TestClassify_NoMatch(t *testing.T) {
	cl := DefaultClassifier()
	got := cl.Classify("Internal Notes XYZ123", "", nil)
	if got.Role != "" || got.Confidence != "" {
		t.Errorf("expected zero classification, got %s/%s", got.Role, got.Confidence)
	}
}

func TestClassify_EmptyHeader(t *testing.T) {
	cl := DefaultClassifier()
	if got := cl.Classify("   ", "", []string{"12.99"}); got.Role != "" {
		t.Errorf("blank header must not classify, got %s", got.Role)
	}
}

func TestClassify_PriceSampleSniffing(t *testing.T) {
	cl := DefaultClassifier()

	got := cl.Classify("Column H", "", []string{"$12.99", "8.50", ""})
	if got.Role != RolePrice || got.Confidence != ConfidenceLow {
		t.Errorf("expected price/low from samples, got %s/%s", got.Role, got.Confidence)
	}

	// Too much precision for a price.
	if got := cl.Classify("Column H", "", []string{"12.99913"}); got.Role != "" {
		t.Errorf("high-precision decimals must not sniff as price, got %s", got.Role)
	}
	// Non-numeric samples.
	if got := cl.Classify("Column H", "", []string{"red", "blue"}); got.Role != "" {
		t.Errorf("non-numeric samples must not sniff as price, got %s", got.Role)
	}
}

// ============================================================================
// Auto-mapping
// ============================================================================

func TestAutoMapColumns_ReferenceTemplateWins(t *testing.T) {
	cl := DefaultClassifier()
	columns := []Column{
		{Name: "Mystery Header A"},
		{Name: "Mystery Header B"},
	}
	templates := []Template{
		{
			Platform:  PlatformShopify,
			UpdatedAt: time.Unix(100, 0),
			Columns: []Column{
				{Name: "Mystery Header A", Role: RoleSKU},
				{Name: "Mystery Header B", Role: RolePrice},
			},
		},
	}

	mapped := cl.AutoMapColumns(columns, PlatformShopify, templates)

	if mapped[0].Role != RoleSKU || mapped[1].Role != RolePrice {
		t.Errorf("reference template not applied: %+v", mapped)
	}
}

func TestAutoMapColumns_NewestReferenceWins(t *testing.T) {
	cl := DefaultClassifier()
	columns := []Column{{Name: "Mystery Header"}}
	templates := []Template{
		{
			Platform:  PlatformShopify,
			UpdatedAt: time.Unix(100, 0),
			Columns:   []Column{{Name: "Mystery Header", Role: RoleBrand}},
		},
		{
			Platform:  PlatformShopify,
			UpdatedAt: time.Unix(200, 0),
			Columns:   []Column{{Name: "Mystery Header", Role: RoleTags}},
		},
	}

	mapped := cl.AutoMapColumns(columns, PlatformShopify, templates)

	if mapped[0].Role != RoleTags {
		t.Errorf("expected the most recently updated reference, got %s", mapped[0].Role)
	}
}

func TestAutoMapColumns_PartiallyMappedReferenceIgnored(t *testing.T) {
	cl := DefaultClassifier()
	columns := []Column{{Name: "Mystery Header"}}
	templates := []Template{
		{
			Platform:  PlatformShopify,
			UpdatedAt: time.Unix(100, 0),
			Columns: []Column{
				{Name: "Mystery Header", Role: RoleBrand},
				{Name: "Unmapped Column"}, // disqualifies the template
			},
		},
	}

	mapped := cl.AutoMapColumns(columns, PlatformShopify, templates)

	if mapped[0].Role != "" {
		t.Errorf("partially mapped template must not seed auto-mapping, got %s", mapped[0].Role)
	}
}

func TestAutoMapColumns_Additive(t *testing.T) {
	cl := DefaultClassifier()
	columns := []Column{
		{Name: "Price", Role: RoleTitle}, // user already chose a role
		{Name: "SKU"},
	}

	mapped := cl.AutoMapColumns(columns, "", nil)

	if mapped[0].Role != RoleTitle {
		t.Errorf("existing assignment overwritten: %s", mapped[0].Role)
	}
	if mapped[1].Role != RoleSKU {
		t.Errorf("unassigned column not filled: %s", mapped[1].Role)
	}
}

func TestAutoMapColumns_ImageRoleGetsMultiValueOnlyWhenNew(t *testing.T) {
	cl := DefaultClassifier()
	// One pre-assigned image column and one the mapper will assign. Only the
	// newly assigned column picks up the multi-value flag.
	columns := []Column{
		{Name: "Gallery Pictures", Role: RoleImages},
		{Name: "Image URL"},
	}

	mapped := cl.AutoMapColumns(columns, "", nil)

	if mapped[0].MultiValue {
		t.Error("pre-assigned image column must not be touched")
	}
	if mapped[1].Role != RoleImages || !mapped[1].MultiValue {
		t.Errorf("newly assigned image column should be multi-value: %+v", mapped[1])
	}
}

func TestAutoMapColumns_SampleValues(t *testing.T) {
	cl := DefaultClassifier()
	columns := []Column{{Name: "Col 3", Samples: []string{"19.99", "7.00"}}}

	mapped := cl.AutoMapColumns(columns, "", nil)

	if mapped[0].Role != RolePrice {
		t.Errorf("sample sniffing not applied during auto-map: %s", mapped[0].Role)
	}
}
