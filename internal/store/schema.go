package store

import (
	"context"
	"fmt"
)

// migrations are executed in order on startup. Statements are idempotent so
// restarting against an existing database is safe.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS templates (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name         TEXT NOT NULL,
		platform     TEXT NOT NULL DEFAULT '',
		row_mode     TEXT NOT NULL DEFAULT 'per_product',
		group_by     TEXT NOT NULL DEFAULT 'sku',
		columns      JSONB NOT NULL DEFAULT '[]',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS catalog_rows (
		template_id  UUID NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		row_index    INTEGER NOT NULL,
		product_id   TEXT NOT NULL DEFAULT '',
		sku          TEXT NOT NULL DEFAULT '',
		title        TEXT NOT NULL DEFAULT '',
		price        TEXT NOT NULL DEFAULT '',
		category     TEXT NOT NULL DEFAULT '',
		images       JSONB NOT NULL DEFAULT '[]',
		extra        JSONB NOT NULL DEFAULT '{}',
		PRIMARY KEY (template_id, row_index)
	)`,

	`CREATE TABLE IF NOT EXISTS scenarios (
		id           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		template_id  UUID NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		product_key  TEXT NOT NULL,
		row_mode     TEXT NOT NULL,
		mode         TEXT NOT NULL,
		image_urls   JSONB NOT NULL DEFAULT '[]',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE INDEX IF NOT EXISTS scenarios_template_key_idx
		ON scenarios (template_id, product_key)`,

	`CREATE TABLE IF NOT EXISTS overrides (
		template_id               UUID NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		product_key               TEXT NOT NULL,
		images                    JSONB NOT NULL DEFAULT '[]',
		categories                JSONB NOT NULL DEFAULT '[]',
		is_new_product            BOOLEAN NOT NULL DEFAULT FALSE,
		product_id                TEXT NOT NULL DEFAULT '',
		sku                       TEXT NOT NULL DEFAULT '',
		add_position              TEXT NOT NULL DEFAULT '',
		insert_before_product_key TEXT NOT NULL DEFAULT '',
		source_template_id        TEXT NOT NULL DEFAULT '',
		created_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at                TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (template_id, product_key)
	)`,

	// Databases created before source_template_id existed pick it up here.
	`ALTER TABLE overrides
		ADD COLUMN IF NOT EXISTS source_template_id TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS description_overrides (
		template_id  UUID NOT NULL REFERENCES templates(id) ON DELETE CASCADE,
		product_key  TEXT NOT NULL,
		fields       JSONB NOT NULL DEFAULT '{}',
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (template_id, product_key)
	)`,
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
