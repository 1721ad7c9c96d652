package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/sheetpix/catalog/internal/catalog"
)

// Scenarios returns a template's full edit log ordered by creation time.
// The log is append-only; replay order is what reconciliation depends on.
func (s *Store) Scenarios(ctx context.Context, templateID uuid.UUID) ([]catalog.Scenario, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, product_key, row_mode, mode, image_urls, created_at
		 FROM scenarios
		 WHERE template_id = $1
		 ORDER BY created_at, id`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	var out []catalog.Scenario
	for rows.Next() {
		var (
			sc   catalog.Scenario
			id   uuid.UUID
			urls []byte
		)
		if err := rows.Scan(&id, &sc.ProductKey, &sc.RowMode, &sc.Mode, &urls, &sc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		sc.ID = id.String()
		if err := json.Unmarshal(urls, &sc.ImageURLs); err != nil {
			return nil, fmt.Errorf("decode scenario %s image urls: %w", sc.ID, err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// AppendScenario records one edit in the log and returns its assigned ID.
// The creation timestamp comes from the database clock.
func (s *Store) AppendScenario(ctx context.Context, templateID uuid.UUID, sc catalog.Scenario) (uuid.UUID, error) {
	urls, err := json.Marshal(urlsOrEmpty(sc.ImageURLs))
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode image urls: %w", err)
	}

	var id uuid.UUID
	err = s.db.QueryRow(ctx,
		`INSERT INTO scenarios (template_id, product_key, row_mode, mode, image_urls)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		templateID, sc.ProductKey, sc.RowMode, sc.Mode, urls,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert scenario: %w", err)
	}
	return id, nil
}

func urlsOrEmpty(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}
