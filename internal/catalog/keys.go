package catalog

// keys.go is the single source of product identity. Every component that
// needs a product key derives it here; per-call-site key computation is a
// correctness bug because the overlay matching in merge.go depends on all
// components agreeing on identity for the same (rowMode, groupBy) pair.

import "strconv"

// KeySeparator joins product_id and sku into a composite key.
const KeySeparator = "::"

// CompositeKey builds the canonical "<product_id>::<sku>" key used for
// synthetic products and per-image sku grouping.
func CompositeKey(productID, sku string) string {
	return productID + KeySeparator + sku
}

// ResolveKey computes the stable identity string for a row under the given
// row-grouping mode. It is a pure function: identical inputs always produce
// identical output.
//
// Per-product mode keys real rows by physical position ("row-<n>"), so edits
// to a row's content never change its identity; synthetic rows return their
// pre-assigned Key. Per-image mode keys rows by content so that multiple
// rows aggregate into one product, with a fallback chain when identifiers
// are partially filled.
//
// An empty result means the row is unkeyable. Callers exclude unkeyable rows
// from overlay matching; an empty key is never an error.
func ResolveKey(row Row, mode RowMode, groupBy GroupByField) string {
	if mode == RowModePerProduct {
		if row.IsSynthetic() {
			return row.Key
		}
		return "row-" + strconv.Itoa(row.RowIndex)
	}

	pid := row.Fields.ProductID
	sku := row.Fields.SKU

	if groupBy == GroupByProductID {
		switch {
		case pid != "":
			return pid
		case sku != "":
			return sku
		default:
			return row.Key
		}
	}

	// Group by sku: prefer the composite key so products with a shared
	// product_id but distinct skus stay separate.
	switch {
	case pid != "" && sku != "":
		return CompositeKey(pid, sku)
	case sku != "":
		return sku
	case pid != "":
		return pid
	default:
		return row.Key
	}
}

// KeySet returns the set of non-empty product keys present in rows.
func KeySet(rows []Row, mode RowMode, groupBy GroupByField) map[string]struct{} {
	keys := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if k := ResolveKey(r, mode, groupBy); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}
