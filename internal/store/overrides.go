package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sheetpix/catalog/internal/catalog"
)

// Overrides returns the full persisted override map for a template. The map
// is always loaded whole: merging recomputes from the complete state, so
// partial loads would silently change results.
func (s *Store) Overrides(ctx context.Context, templateID uuid.UUID) (catalog.OverrideMap, error) {
	rows, err := s.db.Query(ctx,
		`SELECT product_key, images, categories, is_new_product, product_id, sku,
		        add_position, insert_before_product_key, source_template_id,
		        created_at, updated_at
		 FROM overrides
		 WHERE template_id = $1`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("query overrides: %w", err)
	}
	defer rows.Close()

	out := make(catalog.OverrideMap)
	for rows.Next() {
		var (
			key        string
			ov         catalog.OverrideValue
			images     []byte
			categories []byte
		)
		if err := rows.Scan(
			&key, &images, &categories, &ov.IsNewProduct, &ov.ProductID, &ov.SKU,
			&ov.AddPosition, &ov.InsertBeforeProductKey, &ov.SourceTemplateID,
			&ov.CreatedAt, &ov.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		if err := json.Unmarshal(images, &ov.Images); err != nil {
			return nil, fmt.Errorf("decode override %q images: %w", key, err)
		}
		if err := json.Unmarshal(categories, &ov.Categories); err != nil {
			return nil, fmt.Errorf("decode override %q categories: %w", key, err)
		}
		out[key] = ov
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// UpsertOverride writes the override for one product key, replacing any
// previous value. updated_at advances on every write; created_at is kept
// from the first insert.
func (s *Store) UpsertOverride(ctx context.Context, templateID uuid.UUID, key string, ov catalog.OverrideValue) error {
	images, err := json.Marshal(urlsOrEmpty(ov.Images))
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}
	categories, err := json.Marshal(urlsOrEmpty(ov.Categories))
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO overrides
			(template_id, product_key, images, categories, is_new_product,
			 product_id, sku, add_position, insert_before_product_key,
			 source_template_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (template_id, product_key) DO UPDATE SET
			images = EXCLUDED.images,
			categories = EXCLUDED.categories,
			is_new_product = EXCLUDED.is_new_product,
			product_id = EXCLUDED.product_id,
			sku = EXCLUDED.sku,
			add_position = EXCLUDED.add_position,
			insert_before_product_key = EXCLUDED.insert_before_product_key,
			source_template_id = EXCLUDED.source_template_id,
			updated_at = now()`,
		templateID, key, images, categories, ov.IsNewProduct,
		ov.ProductID, ov.SKU, string(ov.AddPosition), ov.InsertBeforeProductKey,
		ov.SourceTemplateID,
	)
	if err != nil {
		return fmt.Errorf("upsert override: %w", err)
	}
	return nil
}

// DeleteOverride removes the override for one product key. Deleting a
// missing key is not an error. Description overrides for the key go with it.
func (s *Store) DeleteOverride(ctx context.Context, templateID uuid.UUID, key string) error {
	if _, err := s.db.Exec(ctx,
		"DELETE FROM overrides WHERE template_id = $1 AND product_key = $2",
		templateID, key,
	); err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	if _, err := s.db.Exec(ctx,
		"DELETE FROM description_overrides WHERE template_id = $1 AND product_key = $2",
		templateID, key,
	); err != nil {
		return fmt.Errorf("delete description override: %w", err)
	}
	return nil
}

// Descriptions returns the per-key description field map for a template.
func (s *Store) Descriptions(ctx context.Context, templateID uuid.UUID) (catalog.DescriptionMap, error) {
	rows, err := s.db.Query(ctx,
		"SELECT product_key, fields FROM description_overrides WHERE template_id = $1",
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("query descriptions: %w", err)
	}
	defer rows.Close()

	out := make(catalog.DescriptionMap)
	for rows.Next() {
		var (
			key    string
			fields []byte
		)
		if err := rows.Scan(&key, &fields); err != nil {
			return nil, fmt.Errorf("scan description: %w", err)
		}
		m := make(map[string]string)
		if err := json.Unmarshal(fields, &m); err != nil {
			return nil, fmt.Errorf("decode description %q: %w", key, err)
		}
		out[key] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// UpsertDescription writes the description fields for one product key.
func (s *Store) UpsertDescription(ctx context.Context, templateID uuid.UUID, key string, fields map[string]string) error {
	if fields == nil {
		fields = map[string]string{}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode description: %w", err)
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO description_overrides (template_id, product_key, fields)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (template_id, product_key) DO UPDATE SET
			fields = EXCLUDED.fields,
			updated_at = now()`,
		templateID, key, encoded,
	)
	if err != nil {
		return fmt.Errorf("upsert description: %w", err)
	}
	return nil
}
