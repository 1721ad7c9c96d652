package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/sheetpix/catalog/internal/catalog"
	"github.com/sheetpix/catalog/internal/config"
	"github.com/sheetpix/catalog/internal/export"
	"github.com/sheetpix/catalog/internal/store"
	"github.com/sheetpix/catalog/internal/view"
)

// ============================================================================
// Fixture
// ============================================================================

// memStorage is an in-memory view.Storage for handler tests.
type memStorage struct {
	templates    []catalog.Template
	rows         []catalog.Row
	scenarios    []catalog.Scenario
	overrides    catalog.OverrideMap
	descriptions catalog.DescriptionMap
}

func (m *memStorage) Templates(ctx context.Context) ([]catalog.Template, error) {
	return m.templates, nil
}

func (m *memStorage) Template(ctx context.Context, id uuid.UUID) (catalog.Template, error) {
	for _, t := range m.templates {
		if t.ID == id.String() {
			return t, nil
		}
	}
	return catalog.Template{}, store.ErrNotFound
}

func (m *memStorage) CreateTemplate(ctx context.Context, t catalog.Template) (catalog.Template, error) {
	t.ID = uuid.New().String()
	m.templates = append(m.templates, t)
	return t, nil
}

func (m *memStorage) UpdateTemplateColumns(ctx context.Context, id uuid.UUID, columns []catalog.Column) (catalog.Template, error) {
	for i := range m.templates {
		if m.templates[i].ID == id.String() {
			m.templates[i].Columns = columns
			return m.templates[i], nil
		}
	}
	return catalog.Template{}, store.ErrNotFound
}

func (m *memStorage) RowPage(ctx context.Context, templateID uuid.UUID, search string, limit, offset int) (*store.RowPage, error) {
	start := offset
	if start > len(m.rows) {
		start = len(m.rows)
	}
	end := start + limit
	if end > len(m.rows) {
		end = len(m.rows)
	}
	return &store.RowPage{Items: m.rows[start:end], Total: int64(len(m.rows))}, nil
}

func (m *memStorage) AllRows(ctx context.Context, templateID uuid.UUID) ([]catalog.Row, error) {
	return m.rows, nil
}

func (m *memStorage) ReplaceRows(ctx context.Context, templateID uuid.UUID, items []catalog.Row) error {
	m.rows = items
	return nil
}

func (m *memStorage) Scenarios(ctx context.Context, templateID uuid.UUID) ([]catalog.Scenario, error) {
	return m.scenarios, nil
}

func (m *memStorage) AppendScenario(ctx context.Context, templateID uuid.UUID, sc catalog.Scenario) (uuid.UUID, error) {
	id := uuid.New()
	sc.ID = id.String()
	m.scenarios = append(m.scenarios, sc)
	return id, nil
}

func (m *memStorage) Overrides(ctx context.Context, templateID uuid.UUID) (catalog.OverrideMap, error) {
	if m.overrides == nil {
		return catalog.OverrideMap{}, nil
	}
	return m.overrides, nil
}

func (m *memStorage) UpsertOverride(ctx context.Context, templateID uuid.UUID, key string, ov catalog.OverrideValue) error {
	if m.overrides == nil {
		m.overrides = make(catalog.OverrideMap)
	}
	m.overrides[key] = ov
	return nil
}

func (m *memStorage) DeleteOverride(ctx context.Context, templateID uuid.UUID, key string) error {
	delete(m.overrides, key)
	return nil
}

func (m *memStorage) Descriptions(ctx context.Context, templateID uuid.UUID) (catalog.DescriptionMap, error) {
	if m.descriptions == nil {
		return catalog.DescriptionMap{}, nil
	}
	return m.descriptions, nil
}

func (m *memStorage) UpsertDescription(ctx context.Context, templateID uuid.UUID, key string, fields map[string]string) error {
	if m.descriptions == nil {
		m.descriptions = make(catalog.DescriptionMap)
	}
	m.descriptions[key] = fields
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		View:   config.ViewConfig{DefaultPageSize: 50, MaxPageSize: 500},
		Export: config.ExportConfig{
			MaxConcurrent: 2,
			MaxWaitTime:   time.Second,
			Timeout:       time.Minute,
			MaxRows:       1000,
		},
	}
}

func newTestServer(st *memStorage) *Server {
	cfg := testConfig()
	svc := view.NewService(st, catalog.DefaultClassifier(), cfg.View.DefaultPageSize, cfg.View.MaxPageSize)
	limiter := export.NewLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime)
	return NewServer(svc, limiter, cfg)
}

func seededStorage() (*memStorage, uuid.UUID) {
	id := uuid.New()
	st := &memStorage{
		templates: []catalog.Template{{
			ID:      id.String(),
			Name:    "spring",
			RowMode: catalog.RowModePerProduct,
			GroupBy: catalog.GroupBySKU,
			Columns: []catalog.Column{
				{Name: "SKU", Role: catalog.RoleSKU},
				{Name: "Title", Role: catalog.RoleTitle},
				{Name: "Images", Role: catalog.RoleImages, MultiValue: true},
			},
		}},
		rows: []catalog.Row{
			{
				RowIndex: 0,
				Fields: catalog.Fields{
					SKU:   "S1",
					Title: "Mug",
					Images: []catalog.ImageEntry{
						{URL: "a.jpg", Label: "Images", ColIndex: 2},
					},
					OriginalImages: []catalog.ImageEntry{
						{URL: "a.jpg", Label: "Images", ColIndex: 2},
					},
				},
			},
		},
	}
	return st, id
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

// ============================================================================
// Health and error mapping
// ============================================================================

func TestHealthz(t *testing.T) {
	s := newTestServer(&memStorage{})

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestInvalidTemplateID(t *testing.T) {
	s := newTestServer(&memStorage{})

	rec := doRequest(t, s, http.MethodGet, "/api/templates/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "REQ001" {
		t.Errorf("code = %q, want REQ001", resp.Code)
	}
}

func TestUnknownTemplateMapsToNotFound(t *testing.T) {
	s := newTestServer(&memStorage{})

	rec := doRequest(t, s, http.MethodGet, "/api/templates/"+uuid.NewString(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "TPL404" {
		t.Errorf("code = %q, want TPL404", resp.Code)
	}
}

// ============================================================================
// Templates
// ============================================================================

func TestCreateAndGetTemplate(t *testing.T) {
	s := newTestServer(&memStorage{})

	rec := doRequest(t, s, http.MethodPost, "/api/templates", map[string]interface{}{
		"name":     "spring",
		"platform": "shopify",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var created catalog.Template
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created template: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created template has no ID")
	}
	if created.RowMode != catalog.RowModePerProduct || created.GroupBy != catalog.GroupBySKU {
		t.Errorf("defaults not applied: %+v", created)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/templates/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
}

func TestCreateTemplate_RequiresName(t *testing.T) {
	s := newTestServer(&memStorage{})

	rec := doRequest(t, s, http.MethodPost, "/api/templates", map[string]interface{}{
		"platform": "shopify",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpdateColumns(t *testing.T) {
	st, id := seededStorage()
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodPut, "/api/templates/"+id.String()+"/columns", map[string]interface{}{
		"columns": []catalog.Column{
			{Name: "SKU", Role: catalog.RoleSKU},
			{Name: "Price", Role: catalog.RolePrice},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(st.templates[0].Columns) != 2 {
		t.Errorf("columns not persisted: %+v", st.templates[0].Columns)
	}
}

// ============================================================================
// View and scenario flow
// ============================================================================

func TestWorkingViewEndpoint(t *testing.T) {
	st, id := seededStorage()
	st.scenarios = []catalog.Scenario{{
		ProductKey: "row-0",
		RowMode:    catalog.RowModePerProduct,
		Mode:       catalog.ScenarioReplaceAllImagesPerProduct,
		ImageURLs:  []string{"edited.jpg"},
		CreatedAt:  time.Unix(100, 0),
	}}
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodGet, "/api/templates/"+id.String()+"/view", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var result view.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := result.Items[0].CurrentImageURLs; len(got) != 1 || got[0] != "edited.jpg" {
		t.Errorf("scenario not replayed: %v", got)
	}
}

func TestAppendScenarioEndpoint(t *testing.T) {
	st, id := seededStorage()
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodPost, "/api/templates/"+id.String()+"/scenarios", map[string]interface{}{
		"productKey": "row-0",
		"mode":       string(catalog.ScenarioAppendImagesPerProduct),
		"imageUrls":  []string{"new.jpg"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var stored catalog.Scenario
	if err := json.Unmarshal(rec.Body.Bytes(), &stored); err != nil {
		t.Fatalf("decode scenario: %v", err)
	}
	if stored.ID == "" {
		t.Error("stored scenario has no ID")
	}
	if stored.RowMode != catalog.RowModePerProduct {
		t.Errorf("row mode = %q, want per_product", stored.RowMode)
	}
}

func TestAppendScenario_UnknownMode(t *testing.T) {
	st, id := seededStorage()
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodPost, "/api/templates/"+id.String()+"/scenarios", map[string]interface{}{
		"productKey": "row-0",
		"mode":       "shuffle_images",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if resp := decodeError(t, rec); resp.Code != "SCN001" {
		t.Errorf("code = %q, want SCN001", resp.Code)
	}
}

// ============================================================================
// Overrides
// ============================================================================

func TestOverrideLifecycle(t *testing.T) {
	st, id := seededStorage()
	s := newTestServer(st)
	base := "/api/templates/" + id.String() + "/overrides"

	rec := doRequest(t, s, http.MethodPut, base+"/row-0", map[string]interface{}{
		"images":     []string{"override.jpg"},
		"categories": []string{"Images"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, s, http.MethodGet, base, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var overrides catalog.OverrideMap
	if err := json.Unmarshal(rec.Body.Bytes(), &overrides); err != nil {
		t.Fatalf("decode overrides: %v", err)
	}
	if _, ok := overrides["row-0"]; !ok {
		t.Fatalf("override missing from map: %v", overrides)
	}

	rec = doRequest(t, s, http.MethodDelete, base+"/row-0", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", rec.Code)
	}
	if _, ok := st.overrides["row-0"]; ok {
		t.Error("override not deleted")
	}
}

// ============================================================================
// Rows and export
// ============================================================================

func TestReplaceRowsEndpoint(t *testing.T) {
	st, id := seededStorage()
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodPut, "/api/templates/"+id.String()+"/rows", map[string]interface{}{
		"items": []catalog.Row{
			{RowIndex: 0, Fields: catalog.Fields{SKU: "N1", Title: "Plate"}},
			{RowIndex: 1, Fields: catalog.Fields{SKU: "N2", Title: "Cup"}},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(st.rows) != 2 {
		t.Errorf("rows not replaced: %d", len(st.rows))
	}
}

func TestExportEndpoint(t *testing.T) {
	st, id := seededStorage()
	s := newTestServer(st)

	rec := doRequest(t, s, http.MethodGet, "/api/export/"+id.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "spring.xlsx") {
		t.Errorf("content disposition = %q", cd)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open exported workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Sheet1", "A2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if got != "S1" {
		t.Errorf("A2 = %q, want S1", got)
	}
}
