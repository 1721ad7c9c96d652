package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sheetpix/catalog/internal/catalog"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

const templateSelectColumns = `id, name, platform, row_mode, group_by, columns, created_at, updated_at`

// Templates lists every saved template, newest update first.
func (s *Store) Templates(ctx context.Context) ([]catalog.Template, error) {
	rows, err := s.db.Query(ctx,
		fmt.Sprintf("SELECT %s FROM templates ORDER BY updated_at DESC", templateSelectColumns),
	)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	var out []catalog.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// Template fetches one template by ID.
func (s *Store) Template(ctx context.Context, id uuid.UUID) (catalog.Template, error) {
	row := s.db.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM templates WHERE id = $1", templateSelectColumns),
		id,
	)
	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Template{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t, err
}

// CreateTemplate inserts a new template and returns it with its assigned ID
// and timestamps.
func (s *Store) CreateTemplate(ctx context.Context, t catalog.Template) (catalog.Template, error) {
	columns, err := json.Marshal(columnsOrEmpty(t.Columns))
	if err != nil {
		return catalog.Template{}, fmt.Errorf("encode columns: %w", err)
	}

	row := s.db.QueryRow(ctx,
		fmt.Sprintf(
			`INSERT INTO templates (name, platform, row_mode, group_by, columns)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING %s`, templateSelectColumns),
		t.Name, t.Platform, string(t.RowMode), string(t.GroupBy), columns,
	)
	return scanTemplate(row)
}

// UpdateTemplateColumns replaces a template's column list, typically after
// manual role curation or an auto-map run.
func (s *Store) UpdateTemplateColumns(ctx context.Context, id uuid.UUID, columns []catalog.Column) (catalog.Template, error) {
	encoded, err := json.Marshal(columnsOrEmpty(columns))
	if err != nil {
		return catalog.Template{}, fmt.Errorf("encode columns: %w", err)
	}

	row := s.db.QueryRow(ctx,
		fmt.Sprintf(
			`UPDATE templates SET columns = $2, updated_at = now()
			 WHERE id = $1
			 RETURNING %s`, templateSelectColumns),
		id, encoded,
	)
	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Template{}, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t, err
}

func columnsOrEmpty(columns []catalog.Column) []catalog.Column {
	if columns == nil {
		return []catalog.Column{}
	}
	return columns
}

// scanTemplate reads one template from a row over templateSelectColumns.
func scanTemplate(row pgx.Row) (catalog.Template, error) {
	var (
		t       catalog.Template
		id      uuid.UUID
		columns []byte
	)
	if err := row.Scan(&id, &t.Name, &t.Platform, &t.RowMode, &t.GroupBy, &columns, &t.CreatedAt, &t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Template{}, err
		}
		return catalog.Template{}, fmt.Errorf("scan template: %w", err)
	}
	t.ID = id.String()
	if err := json.Unmarshal(columns, &t.Columns); err != nil {
		return catalog.Template{}, fmt.Errorf("decode template %s columns: %w", t.ID, err)
	}
	return t, nil
}
