package catalog

import "time"

// RowMode determines how spreadsheet rows group into products.
type RowMode string

const (
	// RowModePerProduct treats one row as one product.
	RowModePerProduct RowMode = "per_product"
	// RowModePerImage aggregates many rows into one product; the aggregation
	// key is chosen by GroupByField.
	RowModePerImage RowMode = "per_image"
)

// GroupByField selects the aggregation key for RowModePerImage.
type GroupByField string

const (
	GroupBySKU       GroupByField = "sku"
	GroupByProductID GroupByField = "product_id"
)

const (
	// SyntheticRowIndex marks a row with no physical spreadsheet origin.
	// Synthetic rows carry a caller-assigned Key instead of a position.
	SyntheticRowIndex = -1

	// UnresolvedColIndex marks an image whose original column position is
	// unknown (replace/append operations lose column provenance).
	UnresolvedColIndex = -1

	// DefaultImageLabel is used when no originating column name is known.
	DefaultImageLabel = "Image"
)

// ImageEntry is one image cell from the import, or one produced by an edit.
type ImageEntry struct {
	URL      string `json:"url"`
	Label    string `json:"label"`    // originating column name
	ColIndex int    `json:"colIndex"` // original column position, or UnresolvedColIndex
}

// Fields holds the named attributes of a row. Images is the current image
// list for the working view; OriginalImages preserves the never-mutated
// import state and backs label recovery for legacy overrides.
type Fields struct {
	ProductID      string            `json:"product_id,omitempty"`
	SKU            string            `json:"sku,omitempty"`
	Title          string            `json:"product_title,omitempty"`
	Price          string            `json:"price,omitempty"`
	Category       string            `json:"category,omitempty"`
	Images         []ImageEntry      `json:"images,omitempty"`
	OriginalImages []ImageEntry      `json:"originalImages,omitempty"`
	Extra          map[string]string `json:"extra,omitempty"`
}

// Row is one physical or synthetic catalog entry.
//
// RowIndex is the physical position for imported rows and SyntheticRowIndex
// for rows created from a new-product override. Key is only meaningful for
// synthetic rows, where it carries the pre-assigned product key.
type Row struct {
	RowIndex int    `json:"rowIndex"`
	Key      string `json:"key,omitempty"`
	Fields   Fields `json:"fields"`
}

// IsSynthetic reports whether the row was created from an override rather
// than the spreadsheet import.
func (r Row) IsSynthetic() bool {
	return r.RowIndex == SyntheticRowIndex
}

// ScenarioMode identifies the edit operation a scenario describes.
type ScenarioMode string

const (
	ScenarioReplaceAllImagesPerProduct ScenarioMode = "replace_all_images_per_product"
	ScenarioAppendImagesPerProduct     ScenarioMode = "append_images_per_product"
	ScenarioReplaceAllRowsPerImage     ScenarioMode = "replace_all_rows_per_image"
	ScenarioAppendRowsPerImage         ScenarioMode = "append_rows_per_image"
)

// IsReplace reports whether the mode replaces the full image list.
func (m ScenarioMode) IsReplace() bool {
	return m == ScenarioReplaceAllImagesPerProduct || m == ScenarioReplaceAllRowsPerImage
}

// IsAppend reports whether the mode appends to the image list.
func (m ScenarioMode) IsAppend() bool {
	return m == ScenarioAppendImagesPerProduct || m == ScenarioAppendRowsPerImage
}

// RowMode returns the row-grouping mode a scenario mode was authored under.
// The pairing is authoritative: a per-image scenario is only meaningful when
// replayed against a per-image-aggregated accumulator.
func (m ScenarioMode) RowMode() RowMode {
	switch m {
	case ScenarioReplaceAllRowsPerImage, ScenarioAppendRowsPerImage:
		return RowModePerImage
	default:
		return RowModePerProduct
	}
}

// Scenario is one immutable entry of the append-only edit log. Scenarios are
// never mutated or deleted; they record what an edit did, while overrides
// record the durable decision.
type Scenario struct {
	ID         string       `json:"id,omitempty"`
	ProductKey string       `json:"productKey"`
	RowMode    RowMode      `json:"rowMode"`
	Mode       ScenarioMode `json:"mode"`
	ImageURLs  []string     `json:"imageUrls"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// AddPosition controls where a synthetic new-product row is inserted.
type AddPosition string

const (
	AddLast   AddPosition = "last"
	AddBefore AddPosition = "before"
)

// OverrideValue is the persisted, user-confirmed state for one product key.
//
// Two variants share the type: an image override for an existing product
// (Images/Categories only) and a new-product definition (IsNewProduct set,
// plus identity and placement fields). Categories is a parallel list of
// originating column names for Images; legacy overrides may omit it, in
// which case labels are recovered positionally from the original import.
type OverrideValue struct {
	Images     []string `json:"images,omitempty"`
	Categories []string `json:"categories,omitempty"`

	IsNewProduct           bool        `json:"isNewProduct,omitempty"`
	ProductID              string      `json:"productId,omitempty"`
	SKU                    string      `json:"sku,omitempty"`
	AddPosition            AddPosition `json:"addPosition,omitempty"`
	InsertBeforeProductKey string      `json:"insertBeforeProductKey,omitempty"`
	SourceTemplateID       string      `json:"sourceTemplateId,omitempty"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// OverrideMap is the full persisted override state for one template.
type OverrideMap map[string]OverrideValue

// DescriptionMap carries caller-supplied field values per product key, used
// to populate synthetic rows (currently only the product title).
type DescriptionMap map[string]map[string]string

// CategorizedImages groups image URLs by their originating column name,
// preserving column order.
type CategorizedImages struct {
	Column string   `json:"column"`
	URLs   []string `json:"urls"`
}

// NewProductInfo is the new-product metadata carried on a synthetic view.
type NewProductInfo struct {
	ProductID              string      `json:"productId"`
	SKU                    string      `json:"sku"`
	AddPosition            AddPosition `json:"addPosition,omitempty"`
	InsertBeforeProductKey string      `json:"insertBeforeProductKey,omitempty"`
	SourceTemplateID       string      `json:"sourceTemplateId,omitempty"`
	CreatedAt              time.Time   `json:"createdAt,omitempty"`
	UpdatedAt              time.Time   `json:"updatedAt,omitempty"`
}

// ProductView is the materialized result consumed by presentation and
// export: one product with its original and current image state.
type ProductView struct {
	ProductKey          string              `json:"productKey"`
	Title               string              `json:"title"`
	RowMode             RowMode             `json:"rowMode"`
	OriginalImageURLs   []string            `json:"originalImageUrls"`
	CurrentImageURLs    []string            `json:"currentImageUrls"`
	OriginalCategorized []CategorizedImages `json:"originalCategorized,omitempty"`
	IsNewProduct        bool                `json:"isNewProduct,omitempty"`
	NewProduct          *NewProductInfo     `json:"newProduct,omitempty"`
}

// Role is the semantic role of a spreadsheet column. The set is closed but
// extensible: unknown roles round-trip through storage untouched.
type Role string

const (
	RoleProductID      Role = "product_id"
	RoleSKU            Role = "sku"
	RoleTitle          Role = "title"
	RoleDescription    Role = "description"
	RolePrice          Role = "price"
	RoleSalePrice      Role = "sale_price"
	RoleQuantity       Role = "quantity"
	RoleCategory       Role = "category"
	RoleBrand          Role = "brand"
	RoleImages         Role = "images"
	RoleSEOTitle       Role = "seo_title"
	RoleSEODescription Role = "seo_description"
	RoleTags           Role = "tags"
	RoleColor          Role = "color"
	RoleSize           Role = "size"
	RoleMaterial       Role = "material"
	RoleWeight         Role = "weight"
	RoleBarcode        Role = "barcode"
)

// IsImageRole reports whether the role carries image URLs. Image columns are
// the only ones that default to multi-value cells.
func (r Role) IsImageRole() bool {
	return r == RoleImages
}

// Column describes one spreadsheet column of a template.
type Column struct {
	Name       string   `json:"name"`
	Samples    []string `json:"samples,omitempty"`
	Role       Role     `json:"role,omitempty"` // "" = unmapped, left for manual curation
	MultiValue bool     `json:"multiValue,omitempty"`
	Separator  string   `json:"separator,omitempty"`
}

// Template is a saved import configuration: the column list with confirmed
// roles plus the grouping settings the rows were imported under.
type Template struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Platform  string       `json:"platform"`
	RowMode   RowMode      `json:"rowMode"`
	GroupBy   GroupByField `json:"groupBy"`
	Columns   []Column     `json:"columns"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// FullyMapped reports whether every column of the template carries a role.
// Only fully-mapped templates seed auto-mapping for new imports.
func (t Template) FullyMapped() bool {
	if len(t.Columns) == 0 {
		return false
	}
	for _, c := range t.Columns {
		if c.Role == "" {
			return false
		}
	}
	return true
}

// Confidence grades how a column role was guessed.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Classification is the result of classifying a single column header.
// A zero Classification means no match: the column is left for manual
// curation, never an error.
type Classification struct {
	Role       Role       `json:"role,omitempty"`
	Confidence Confidence `json:"confidence,omitempty"`
	MatchedTag string     `json:"matchedTag,omitempty"`
}
