// Package view composes the persistence layer and the pure catalog pipeline
// into the working view: imported rows with the scenario log replayed and
// overrides merged on top. Nothing here is cached; every call recomputes
// from persisted state so the result is always current.
package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sheetpix/catalog/internal/catalog"
	"github.com/sheetpix/catalog/internal/store"
)

var (
	// ErrEmptyProductKey rejects writes that carry no product identity.
	ErrEmptyProductKey = errors.New("product key is required")

	// ErrUnknownScenarioMode rejects scenario writes with a mode outside the
	// known set.
	ErrUnknownScenarioMode = errors.New("unknown scenario mode")
)

// Storage is the persistence surface the service needs. *store.Store
// satisfies it.
type Storage interface {
	Templates(ctx context.Context) ([]catalog.Template, error)
	Template(ctx context.Context, id uuid.UUID) (catalog.Template, error)
	CreateTemplate(ctx context.Context, t catalog.Template) (catalog.Template, error)
	UpdateTemplateColumns(ctx context.Context, id uuid.UUID, columns []catalog.Column) (catalog.Template, error)

	RowPage(ctx context.Context, templateID uuid.UUID, search string, limit, offset int) (*store.RowPage, error)
	AllRows(ctx context.Context, templateID uuid.UUID) ([]catalog.Row, error)
	ReplaceRows(ctx context.Context, templateID uuid.UUID, items []catalog.Row) error

	Scenarios(ctx context.Context, templateID uuid.UUID) ([]catalog.Scenario, error)
	AppendScenario(ctx context.Context, templateID uuid.UUID, sc catalog.Scenario) (uuid.UUID, error)

	Overrides(ctx context.Context, templateID uuid.UUID) (catalog.OverrideMap, error)
	UpsertOverride(ctx context.Context, templateID uuid.UUID, key string, ov catalog.OverrideValue) error
	DeleteOverride(ctx context.Context, templateID uuid.UUID, key string) error
	Descriptions(ctx context.Context, templateID uuid.UUID) (catalog.DescriptionMap, error)
	UpsertDescription(ctx context.Context, templateID uuid.UUID, key string, fields map[string]string) error
}

// Service orchestrates templates, rows, scenarios, and overrides into the
// working view.
type Service struct {
	store           Storage
	classifier      *catalog.Classifier
	defaultPageSize int
	maxPageSize     int
}

// NewService creates a Service with the given page-size bounds.
func NewService(st Storage, classifier *catalog.Classifier, defaultPageSize, maxPageSize int) *Service {
	return &Service{
		store:           st,
		classifier:      classifier,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// ============================================================================
// Templates
// ============================================================================

// Templates lists all saved templates.
func (s *Service) Templates(ctx context.Context) ([]catalog.Template, error) {
	return s.store.Templates(ctx)
}

// Template fetches one template.
func (s *Service) Template(ctx context.Context, id uuid.UUID) (catalog.Template, error) {
	return s.store.Template(ctx, id)
}

// CreateTemplate saves a new template, defaulting the grouping settings.
func (s *Service) CreateTemplate(ctx context.Context, t catalog.Template) (catalog.Template, error) {
	if t.RowMode == "" {
		t.RowMode = catalog.RowModePerProduct
	}
	if t.GroupBy == "" {
		t.GroupBy = catalog.GroupBySKU
	}
	return s.store.CreateTemplate(ctx, t)
}

// UpdateColumns replaces a template's column list.
func (s *Service) UpdateColumns(ctx context.Context, id uuid.UUID, columns []catalog.Column) (catalog.Template, error) {
	return s.store.UpdateTemplateColumns(ctx, id, columns)
}

// AutoMap runs the column classifier over a template's unmapped columns,
// seeded by the most recent fully-mapped template of the same platform, and
// persists the result.
func (s *Service) AutoMap(ctx context.Context, id uuid.UUID) (catalog.Template, error) {
	t, err := s.store.Template(ctx, id)
	if err != nil {
		return catalog.Template{}, err
	}

	references, err := s.store.Templates(ctx)
	if err != nil {
		return catalog.Template{}, fmt.Errorf("load reference templates: %w", err)
	}
	// The template being mapped must not seed itself.
	filtered := make([]catalog.Template, 0, len(references))
	for _, ref := range references {
		if ref.ID != t.ID {
			filtered = append(filtered, ref)
		}
	}

	mapped := s.classifier.AutoMapColumns(t.Columns, t.Platform, filtered)
	return s.store.UpdateTemplateColumns(ctx, id, mapped)
}

// ============================================================================
// Rows
// ============================================================================

// RowsResult is one page of raw imported rows.
type RowsResult struct {
	Items    []catalog.Row   `json:"items"`
	Total    int64           `json:"total"`
	RowMode  catalog.RowMode `json:"rowMode"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}

// Rows returns one page of a template's imported rows, untouched by
// scenarios or overrides.
func (s *Service) Rows(ctx context.Context, id uuid.UUID, page, pageSize int, search string) (*RowsResult, error) {
	t, err := s.store.Template(ctx, id)
	if err != nil {
		return nil, err
	}

	page, pageSize = s.clampPaging(page, pageSize)
	rp, err := s.store.RowPage(ctx, id, search, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	return &RowsResult{
		Items:    rp.Items,
		Total:    rp.Total,
		RowMode:  t.RowMode,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ReplaceRows swaps the template's imported rows for a new snapshot.
func (s *Service) ReplaceRows(ctx context.Context, id uuid.UUID, items []catalog.Row) error {
	if _, err := s.store.Template(ctx, id); err != nil {
		return err
	}
	return s.store.ReplaceRows(ctx, id, items)
}

// ============================================================================
// Working view
// ============================================================================

// Result is one page of the working view.
type Result struct {
	Items      []catalog.ProductView `json:"items"`
	Total      int                   `json:"total"`
	RowMode    catalog.RowMode       `json:"rowMode"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
}

// WorkingView computes the merged product views for a template and returns
// the requested page. The pipeline always runs over the full collection:
// synthetic products and anchored insertions shift positions, so paging can
// only happen after the merge.
func (s *Service) WorkingView(ctx context.Context, id uuid.UUID, page, pageSize int, search string) (*Result, error) {
	t, views, err := s.mergedViews(ctx, id)
	if err != nil {
		return nil, err
	}

	if search != "" {
		views = filterViews(views, search)
	}

	page, pageSize = s.clampPaging(page, pageSize)
	total := len(views)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return &Result{
		Items:      views[start:end],
		Total:      total,
		RowMode:    t.RowMode,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ExportRows returns the fully merged row set for rendering to a workbook,
// along with its template. Unlike the working view, export keeps row-level
// fields so every mapped column can be written out.
func (s *Service) ExportRows(ctx context.Context, id uuid.UUID) (catalog.Template, []catalog.Row, error) {
	t, err := s.store.Template(ctx, id)
	if err != nil {
		return catalog.Template{}, nil, err
	}

	rows, scenarios, overrides, descriptions, err := s.snapshot(ctx, id)
	if err != nil {
		return catalog.Template{}, nil, err
	}

	// The export path merges at the row level so anchored insertions land
	// between physical rows.
	rows = reconcileRows(rows, scenarios, t.RowMode, t.GroupBy)
	rows = catalog.MergeOverrides(rows, overrides, descriptions, t.RowMode, t.GroupBy)

	return t, rows, nil
}

// mergedViews runs the full pipeline: snapshot, reconcile, materialize,
// merge overrides.
func (s *Service) mergedViews(ctx context.Context, id uuid.UUID) (catalog.Template, []catalog.ProductView, error) {
	t, err := s.store.Template(ctx, id)
	if err != nil {
		return catalog.Template{}, nil, err
	}

	rows, scenarios, overrides, descriptions, err := s.snapshot(ctx, id)
	if err != nil {
		return catalog.Template{}, nil, err
	}

	rows = reconcileRows(rows, scenarios, t.RowMode, t.GroupBy)
	views := catalog.BuildViews(rows, t.RowMode, t.GroupBy)
	views = catalog.MergeOverridesIntoViews(views, overrides, descriptions, t.RowMode)

	return t, views, nil
}

// snapshot loads the four persisted inputs of the pipeline.
func (s *Service) snapshot(ctx context.Context, id uuid.UUID) ([]catalog.Row, []catalog.Scenario, catalog.OverrideMap, catalog.DescriptionMap, error) {
	rows, err := s.store.AllRows(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	scenarios, err := s.store.Scenarios(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	overrides, err := s.store.Overrides(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	descriptions, err := s.store.Descriptions(ctx, id)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return rows, scenarios, overrides, descriptions, nil
}

// reconcileRows replays the scenario log onto a row collection and returns a
// new slice.
//
// Scenarios target product keys, which in per-image mode span several rows.
// Each group's image state is consolidated onto its first row before replay:
// the group's original images concatenate in row order, the reconciled list
// lands on the first row, and the remaining group rows carry no images. The
// later aggregation in BuildViews then reads the group state exactly once.
func reconcileRows(rows []catalog.Row, scenarios []catalog.Scenario, mode catalog.RowMode, groupBy catalog.GroupByField) []catalog.Row {
	byKey := catalog.ScenariosByKey(scenarios, mode)

	out := make([]catalog.Row, len(rows))
	copy(out, rows)

	firstOfKey := make(map[string]int, len(out))
	for i := range out {
		key := catalog.ResolveKey(out[i], mode, groupBy)
		if key == "" {
			continue
		}

		first, ok := firstOfKey[key]
		if !ok {
			firstOfKey[key] = i
			out[i].Fields.Images = catalog.Reconcile(out[i].Fields.OriginalImages, byKey[key])
			continue
		}

		// Later row of an already-seen group: move its contribution to the
		// group head and replay the log over the grown original list.
		combined := make([]catalog.ImageEntry, 0,
			len(out[first].Fields.OriginalImages)+len(out[i].Fields.OriginalImages))
		combined = append(combined, out[first].Fields.OriginalImages...)
		combined = append(combined, out[i].Fields.OriginalImages...)
		out[first].Fields.OriginalImages = combined
		out[first].Fields.Images = catalog.Reconcile(combined, byKey[key])

		out[i].Fields.Images = nil
		out[i].Fields.OriginalImages = nil
	}

	return out
}

// filterViews keeps views whose title or product key contains the query,
// case-insensitively.
func filterViews(views []catalog.ProductView, query string) []catalog.ProductView {
	q := strings.ToLower(query)
	out := make([]catalog.ProductView, 0, len(views))
	for _, v := range views {
		if strings.Contains(strings.ToLower(v.Title), q) ||
			strings.Contains(strings.ToLower(v.ProductKey), q) {
			out = append(out, v)
		}
	}
	return out
}

func (s *Service) clampPaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	return page, pageSize
}

// ============================================================================
// Scenarios and overrides
// ============================================================================

// Scenarios returns a template's full edit log.
func (s *Service) Scenarios(ctx context.Context, id uuid.UUID) ([]catalog.Scenario, error) {
	if _, err := s.store.Template(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Scenarios(ctx, id)
}

// AppendScenario validates and records one edit in the append-only log.
func (s *Service) AppendScenario(ctx context.Context, id uuid.UUID, sc catalog.Scenario) (catalog.Scenario, error) {
	if sc.ProductKey == "" {
		return catalog.Scenario{}, ErrEmptyProductKey
	}
	switch sc.Mode {
	case catalog.ScenarioReplaceAllImagesPerProduct,
		catalog.ScenarioAppendImagesPerProduct,
		catalog.ScenarioReplaceAllRowsPerImage,
		catalog.ScenarioAppendRowsPerImage:
	default:
		return catalog.Scenario{}, fmt.Errorf("%w: %q", ErrUnknownScenarioMode, sc.Mode)
	}
	sc.RowMode = sc.Mode.RowMode()

	if _, err := s.store.Template(ctx, id); err != nil {
		return catalog.Scenario{}, err
	}

	scenarioID, err := s.store.AppendScenario(ctx, id, sc)
	if err != nil {
		return catalog.Scenario{}, err
	}
	sc.ID = scenarioID.String()
	return sc, nil
}

// Overrides returns a template's full override map.
func (s *Service) Overrides(ctx context.Context, id uuid.UUID) (catalog.OverrideMap, error) {
	if _, err := s.store.Template(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Overrides(ctx, id)
}

// UpsertOverride writes the override for one product key. Description fields
// (currently the product title for new products) ride along when present.
func (s *Service) UpsertOverride(ctx context.Context, id uuid.UUID, key string, ov catalog.OverrideValue, descriptionFields map[string]string) error {
	if key == "" {
		return ErrEmptyProductKey
	}
	if _, err := s.store.Template(ctx, id); err != nil {
		return err
	}
	if err := s.store.UpsertOverride(ctx, id, key, ov); err != nil {
		return err
	}
	if len(descriptionFields) > 0 {
		return s.store.UpsertDescription(ctx, id, key, descriptionFields)
	}
	return nil
}

// DeleteOverride removes the override for one product key.
func (s *Service) DeleteOverride(ctx context.Context, id uuid.UUID, key string) error {
	if key == "" {
		return ErrEmptyProductKey
	}
	if _, err := s.store.Template(ctx, id); err != nil {
		return err
	}
	return s.store.DeleteOverride(ctx, id, key)
}
