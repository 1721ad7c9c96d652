package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sheetpix/catalog/internal/catalog"
)

// searchColumns are the text columns row search matches against.
var searchColumns = []string{"title", "sku", "product_id", "category"}

// RowPage is one page of imported rows plus the unfiltered-by-paging total.
type RowPage struct {
	Items []catalog.Row
	Total int64
}

const rowSelectColumns = `row_index, product_id, sku, title, price, category, images, extra`

// RowPage returns one page of a template's imported rows ordered by their
// physical position. An empty search returns all rows of the page.
func (s *Store) RowPage(ctx context.Context, templateID uuid.UUID, search string, limit, offset int) (*RowPage, error) {
	wb := NewWhereBuilder()
	wb.Add("template_id", templateID)
	wb.AddSearch(search, searchColumns)
	whereClause, args := wb.Build()

	var total int64
	countQuery := "SELECT COUNT(*) FROM catalog_rows" + whereClause
	if err := s.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}

	argIndex := wb.NextArgIndex()
	query := fmt.Sprintf(
		"SELECT %s FROM catalog_rows%s ORDER BY row_index LIMIT $%d OFFSET $%d",
		rowSelectColumns, whereClause, argIndex, argIndex+1,
	)
	args = append(args, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	items, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	return &RowPage{Items: items, Total: total}, nil
}

// AllRows returns every imported row of a template in physical order.
// Used by the export path, which renders the full working view.
func (s *Store) AllRows(ctx context.Context, templateID uuid.UUID) ([]catalog.Row, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM catalog_rows WHERE template_id = $1 ORDER BY row_index",
		rowSelectColumns,
	)

	rows, err := s.db.Query(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// ReplaceRows swaps a template's imported rows for a new snapshot. The
// replacement is total: imports are immutable, so a re-import starts over.
func (s *Store) ReplaceRows(ctx context.Context, templateID uuid.UUID, items []catalog.Row) error {
	if _, err := s.db.Exec(ctx, "DELETE FROM catalog_rows WHERE template_id = $1", templateID); err != nil {
		return fmt.Errorf("clear rows: %w", err)
	}

	batch := &pgx.Batch{}
	for _, row := range items {
		images, err := json.Marshal(originalImages(row))
		if err != nil {
			return fmt.Errorf("encode images for row %d: %w", row.RowIndex, err)
		}
		extra, err := json.Marshal(extraOrEmpty(row))
		if err != nil {
			return fmt.Errorf("encode extra for row %d: %w", row.RowIndex, err)
		}

		batch.Queue(
			`INSERT INTO catalog_rows
				(template_id, row_index, product_id, sku, title, price, category, images, extra)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			templateID, row.RowIndex,
			row.Fields.ProductID, row.Fields.SKU, row.Fields.Title,
			row.Fields.Price, row.Fields.Category,
			images, extra,
		)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}
	return results.Close()
}

// originalImages prefers the preserved import state over the working list so
// a round-trip through the working view cannot bake edits into the import.
func originalImages(row catalog.Row) []catalog.ImageEntry {
	if row.Fields.OriginalImages != nil {
		return row.Fields.OriginalImages
	}
	if row.Fields.Images != nil {
		return row.Fields.Images
	}
	return []catalog.ImageEntry{}
}

func extraOrEmpty(row catalog.Row) map[string]string {
	if row.Fields.Extra != nil {
		return row.Fields.Extra
	}
	return map[string]string{}
}

// scanRows collects catalog rows from a query over rowSelectColumns. The
// stored image list is the import state, so it seeds both Images and
// OriginalImages; scenario replay later rebuilds Images.
func scanRows(rows pgx.Rows) ([]catalog.Row, error) {
	var items []catalog.Row
	for rows.Next() {
		var (
			row    catalog.Row
			images []byte
			extra  []byte
		)
		if err := rows.Scan(
			&row.RowIndex,
			&row.Fields.ProductID, &row.Fields.SKU, &row.Fields.Title,
			&row.Fields.Price, &row.Fields.Category,
			&images, &extra,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if err := json.Unmarshal(images, &row.Fields.OriginalImages); err != nil {
			return nil, fmt.Errorf("decode images for row %d: %w", row.RowIndex, err)
		}
		row.Fields.Images = row.Fields.OriginalImages
		if err := json.Unmarshal(extra, &row.Fields.Extra); err != nil {
			return nil, fmt.Errorf("decode extra for row %d: %w", row.RowIndex, err)
		}

		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}
