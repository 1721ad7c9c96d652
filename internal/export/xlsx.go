package export

// xlsx.go renders a merged row collection to an .xlsx workbook. The layout
// mirrors the stored sheet: the template's columns make up the header row and
// every merged row becomes one worksheet row, with multi-value cells joined
// by the column's separator. All cells are written as strings; a missing
// value becomes an empty cell, never an error.

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sheetpix/catalog/internal/catalog"
)

// sheetName is the single worksheet every export writes to.
const sheetName = "Sheet1"

// defaultSeparator joins multi-value cells when the column does not carry its
// own separator.
const defaultSeparator = ", "

// fallbackColumns is the header set used when a template has no column
// mapping saved yet. It covers the fields the store persists structurally.
var fallbackColumns = []catalog.Column{
	{Name: "Product ID", Role: catalog.RoleProductID},
	{Name: "SKU", Role: catalog.RoleSKU},
	{Name: "Title", Role: catalog.RoleTitle},
	{Name: "Price", Role: catalog.RolePrice},
	{Name: "Category", Role: catalog.RoleCategory},
	{Name: "Images", Role: catalog.RoleImages, MultiValue: true},
}

// Workbook renders the merged rows of a template as an in-memory workbook.
// Close the returned file when done.
func Workbook(t catalog.Template, rows []catalog.Row) (*excelize.File, error) {
	columns := t.Columns
	if len(columns) == 0 {
		columns = fallbackColumns
	}

	f := excelize.NewFile()

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell %d: %w", i+1, err)
		}
		if err := f.SetCellStr(sheetName, cell, col.Name); err != nil {
			return nil, fmt.Errorf("write header %q: %w", col.Name, err)
		}
	}

	for r, row := range rows {
		imagesByColumn := groupImages(columns, row.Fields.Images)
		for c, col := range columns {
			value := cellValue(col, row, imagesByColumn)
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", c+1, r+2, err)
			}
			if err := f.SetCellStr(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write cell (%d,%d): %w", c+1, r+2, err)
			}
		}
	}

	return f, nil
}

// groupImages assigns each image entry to the image column whose name matches
// its label. Entries with no matching column fall back to the first image
// column so edits never disappear from the sheet.
func groupImages(columns []catalog.Column, images []catalog.ImageEntry) map[string][]string {
	firstImageCol := ""
	byName := make(map[string]bool, len(columns))
	for _, col := range columns {
		if !col.Role.IsImageRole() {
			continue
		}
		byName[col.Name] = true
		if firstImageCol == "" {
			firstImageCol = col.Name
		}
	}
	if firstImageCol == "" {
		return nil
	}

	grouped := make(map[string][]string)
	for _, img := range images {
		name := img.Label
		if !byName[name] {
			name = firstImageCol
		}
		grouped[name] = append(grouped[name], img.URL)
	}
	return grouped
}

// cellValue resolves the string written for one column of one row. Mapped
// roles read the structured fields; unmapped columns and roles without a
// structured slot read the row's extra-field bag by column name.
func cellValue(col catalog.Column, row catalog.Row, imagesByColumn map[string][]string) string {
	switch col.Role {
	case catalog.RoleProductID:
		return row.Fields.ProductID
	case catalog.RoleSKU:
		return row.Fields.SKU
	case catalog.RoleTitle:
		return row.Fields.Title
	case catalog.RolePrice:
		return row.Fields.Price
	case catalog.RoleCategory:
		return row.Fields.Category
	case catalog.RoleImages:
		return strings.Join(imagesByColumn[col.Name], separator(col))
	default:
		return row.Fields.Extra[col.Name]
	}
}

func separator(col catalog.Column) string {
	if col.Separator != "" {
		return col.Separator
	}
	return defaultSeparator
}

// Filename derives the download name for a template's export.
func Filename(t catalog.Template) string {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		name = "catalog"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String() + ".xlsx"
}
