// Package catalog contains the reconciliation core of the catalog backend.
//
// This package is the heart of the product editor: it turns an immutable
// spreadsheet import plus its non-destructive edit layers into one consistent
// working view per product. Everything here is a pure, synchronous
// transformation with no I/O, no clocks, and no shared mutable state, so the
// whole pipeline can be recomputed on every data refresh.
//
// # Components
//
// The package is organized around four components, composed leaf-first:
//
//   - Key resolution ([ResolveKey]): a stable identity string per row/product
//     for a given row-grouping mode. All other components derive identity
//     through this single function.
//   - Scenario replay ([Reconcile]): folds an ordered, append-only edit log
//     of replace/append image operations onto a product's original images.
//   - Override merging ([MergeOverrides], [MergeOverridesIntoViews]): merges
//     persisted, user-confirmed overrides into the reconciled collection,
//     covering image replacements and entirely synthetic new products with
//     position-aware insertion. Idempotent: re-merging an already-merged
//     collection is a no-op.
//   - Column classification ([Classifier]): guesses the semantic role of a
//     spreadsheet column from its header, a static vocabulary, and prior
//     user-confirmed templates. Additive only; never overwrites a role the
//     user has already set.
//
// # Layering
//
// Image state is resolved through an explicit precedence chain, evaluated
// top-down: override images (if present and non-empty), then
// scenario-reconciled images, then the original import. Overrides are the
// durable decision; scenarios are informational history.
//
// # Identity
//
// An empty key means "unkeyable": the row or override is silently excluded
// from overlay matching. No function in this package returns an error for a
// missing optional field.
package catalog
