package catalog

// vocab.go holds the built-in classification vocabulary: an alias table of
// well-known export headers, bilingual (English/Chinese) keyword tags per
// role, and per-platform positional fallbacks. The vocabulary is plain data
// constructed fresh on each call; treat the result as read-only.

// PlatformShopify is the only platform with positional option columns:
// Option1/2/3 carry color/size/material by convention in its exports.
const PlatformShopify = "shopify"

// DefaultVocabulary returns the built-in vocabulary.
//
// Keyword order is load-bearing: more specific roles come before the roles
// their tags contain ("sale price" before "price", "seo title" before
// "title"), because the substring pass takes the first containing tag.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Aliases: map[string]Role{
			// Shopify product export
			"handle":                   RoleProductID,
			"title":                    RoleTitle,
			"body html":                RoleDescription,
			"vendor":                   RoleBrand,
			"product category":         RoleCategory,
			"custom product type":      RoleCategory,
			"tags":                     RoleTags,
			"variant sku":              RoleSKU,
			"variant price":            RolePrice,
			"variant compare at price": RoleSalePrice,
			"variant inventory qty":    RoleQuantity,
			"variant barcode":          RoleBarcode,
			"variant grams":            RoleWeight,
			"image src":                RoleImages,
			"variant image":            RoleImages,
			"seo title":                RoleSEOTitle,
			"seo description":          RoleSEODescription,
			// WooCommerce product export
			"regular price":     RolePrice,
			"sale price":        RoleSalePrice,
			"short description": RoleDescription,
			"images":            RoleImages,
			"in stock":          RoleQuantity,
		},
		Keywords: []RoleKeywords{
			{Role: RoleProductID, Tags: []string{"product id", "item id", "product code", "商品id", "产品编号", "货号"}},
			{Role: RoleSKU, Tags: []string{"sku", "规格编码"}},
			{Role: RoleBarcode, Tags: []string{"barcode", "ean", "upc", "gtin", "条码", "条形码"}},
			{Role: RoleImages, Tags: []string{"image", "photo", "picture", "gallery", "图片", "主图", "相册"}},
			{Role: RoleSalePrice, Tags: []string{"sale price", "discount price", "促销价", "折扣价"}},
			{Role: RolePrice, Tags: []string{"price", "价格", "单价"}},
			{Role: RoleQuantity, Tags: []string{"quantity", "qty", "stock", "inventory", "库存", "数量"}},
			{Role: RoleCategory, Tags: []string{"category", "collection", "分类", "类目"}},
			{Role: RoleBrand, Tags: []string{"brand", "vendor", "manufacturer", "品牌"}},
			{Role: RoleColor, Tags: []string{"color", "colour", "颜色"}},
			{Role: RoleSize, Tags: []string{"size", "尺码", "尺寸"}},
			{Role: RoleMaterial, Tags: []string{"material", "fabric", "材质"}},
			{Role: RoleWeight, Tags: []string{"weight", "grams", "重量"}},
			{Role: RoleSEOTitle, Tags: []string{"seo title", "meta title", "seo标题"}},
			{Role: RoleSEODescription, Tags: []string{"seo description", "meta description", "seo描述"}},
			{Role: RoleTags, Tags: []string{"tags", "keywords", "标签", "关键词"}},
			{Role: RoleDescription, Tags: []string{"description", "body", "详情", "描述"}},
			{Role: RoleTitle, Tags: []string{"title", "product name", "item name", "标题", "商品名称", "名称"}},
		},
		PlatformPositional: map[string]map[string]Role{
			PlatformShopify: {
				"option1":       RoleColor,
				"option2":       RoleSize,
				"option3":       RoleMaterial,
				"option 1":      RoleColor,
				"option 2":      RoleSize,
				"option 3":      RoleMaterial,
				"option1 value": RoleColor,
				"option2 value": RoleSize,
				"option3 value": RoleMaterial,
			},
		},
	}
}

// DefaultClassifier returns a classifier over [DefaultVocabulary].
func DefaultClassifier() *Classifier {
	return NewClassifier(DefaultVocabulary())
}
