package catalog

// views.go materializes merged rows into the per-product views consumed by
// presentation and export. Per-image mode aggregates many rows into one
// view; per-product mode maps rows one to one.

// BuildViews groups a row collection into product views. Rows that resolve
// to the same key aggregate in first-appearance order: the first row
// contributes the title, and image lists concatenate in row order.
// Unkeyable rows are excluded. The input is not mutated.
func BuildViews(rows []Row, mode RowMode, groupBy GroupByField) []ProductView {
	views := make([]ProductView, 0, len(rows))
	index := make(map[string]int, len(rows))

	for _, row := range rows {
		key := ResolveKey(row, mode, groupBy)
		if key == "" {
			continue
		}

		i, ok := index[key]
		if !ok {
			i = len(views)
			index[key] = i
			views = append(views, ProductView{
				ProductKey:   key,
				Title:        row.Fields.Title,
				RowMode:      mode,
				IsNewProduct: row.IsSynthetic(),
			})
			if row.IsSynthetic() {
				views[i].NewProduct = &NewProductInfo{
					ProductID: row.Fields.ProductID,
					SKU:       row.Fields.SKU,
				}
			}
		}

		v := &views[i]
		for _, img := range row.Fields.OriginalImages {
			v.OriginalImageURLs = append(v.OriginalImageURLs, img.URL)
		}
		for _, img := range row.Fields.Images {
			v.CurrentImageURLs = append(v.CurrentImageURLs, img.URL)
		}
		v.OriginalCategorized = appendCategorized(v.OriginalCategorized, row.Fields.OriginalImages)
	}

	return views
}

// appendCategorized extends a categorized group list with more original
// images, keeping column order and merging repeated columns.
func appendCategorized(groups []CategorizedImages, images []ImageEntry) []CategorizedImages {
	for _, img := range images {
		found := false
		for i := range groups {
			if groups[i].Column == img.Label {
				groups[i].URLs = append(groups[i].URLs, img.URL)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, CategorizedImages{
				Column: img.Label,
				URLs:   []string{img.URL},
			})
		}
	}
	return groups
}
