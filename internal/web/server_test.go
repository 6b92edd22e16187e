package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/DataForge/internal/config"
	"github.com/JonMunkholm/DataForge/internal/core"
	"github.com/JonMunkholm/DataForge/internal/store"
)

type stubProvider struct {
	suggestions []core.FieldSuggestion
}

func (p stubProvider) SuggestFields(context.Context, string) ([]core.FieldSuggestion, error) {
	return p.suggestions, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second, ShutdownTimeout: time.Second},
		Parser: config.ParserConfig{MaxFileSize: 1 << 20, SampleSize: 5},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...core.ServiceOption) *Server {
	t.Helper()
	svc := core.NewService(store.NewMemoryStore(), opts...)
	s := NewServer(svc, cfg)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func do(t *testing.T, s *Server, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, s *Server, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body is not JSON: %v: %s", err, rec.Body.String())
	}
	return e
}

func testFields() []core.Field {
	return []core.Field{
		core.NewField("name", core.TypeString, 0),
		core.NewField("email", core.TypeEmail, 1),
		core.NewField("active", core.TypeBoolean, 2),
	}
}

func TestHealthAndTypes(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}

	rec = do(t, s, http.MethodGet, "/api/types", nil)
	var types []string
	json.Unmarshal(rec.Body.Bytes(), &types)
	if len(types) != len(core.DataTypes()) {
		t.Errorf("types = %v", types)
	}

	rec = do(t, s, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rec.Code)
	}
}

func TestUpload(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     string
	}{
		{"csv", "people.csv", "name,email,age\nAda,ada@example.com,36\n", http.StatusOK, ""},
		{"no file", "", "", http.StatusBadRequest, "FILE004"},
		{"unsupported", "people.txt", "a\n1\n", http.StatusBadRequest, "FILE007"},
		{"headers only", "people.csv", "a,b\n", http.StatusBadRequest, "FILE009"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, s, tt.filename, tt.content)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.code != "" {
				if e := decodeError(t, rec); e.Code != tt.code {
					t.Errorf("code = %s, want %s", e.Code, tt.code)
				}
				return
			}
			var resp struct {
				Fields []core.Field `json:"fields"`
			}
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if len(resp.Fields) != 3 || resp.Fields[1].Type != core.TypeEmail || resp.Fields[2].Type != core.TypeNumber {
				t.Errorf("fields = %+v", resp.Fields)
			}
		})
	}
}

func TestInfer(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/infer", map[string]any{"name": "score", "values": []string{"1", "2.5"}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"type":"number"`) {
		t.Errorf("infer = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/infer", "{not json")
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "VAL009" {
		t.Errorf("bad body = %d %s", rec.Code, rec.Body.String())
	}
}

func TestGenerateSchema(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t, testConfig())
		rec := do(t, s, http.MethodPost, "/api/generate-schema", map[string]string{"prompt": "a list of customers"})
		if rec.Code != http.StatusServiceUnavailable || decodeError(t, rec).Code != "AI001" {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("short prompt", func(t *testing.T) {
		s := newTestServer(t, testConfig())
		rec := do(t, s, http.MethodPost, "/api/generate-schema", map[string]string{"prompt": "short"})
		if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "VAL006" {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("provider", func(t *testing.T) {
		p := stubProvider{suggestions: []core.FieldSuggestion{{Name: "email", Type: "email"}, {Name: "age", Type: "number"}}}
		s := newTestServer(t, testConfig(), core.WithProvider(p))
		rec := do(t, s, http.MethodPost, "/api/generate-schema", map[string]string{"prompt": "a list of customers"})
		if rec.Code != http.StatusOK {
			t.Fatalf("got %d %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Fields []core.Field `json:"fields"`
		}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if len(resp.Fields) != 2 || resp.Fields[0].ID == "" || resp.Fields[1].Order != 1 {
			t.Errorf("fields = %+v", resp.Fields)
		}
	})
}

func TestGeneratePreview(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/generate-preview", map[string]any{"fields": testFields(), "rowCount": 500})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Data) != core.PreviewRowLimit {
		t.Errorf("len(data) = %d, want %d", len(resp.Data), core.PreviewRowLimit)
	}
	body := rec.Body.String()
	if i, j := strings.Index(body, `"name"`), strings.Index(body, `"email"`); i < 0 || j < i {
		t.Error("preview keys are not in field order")
	}

	rec = do(t, s, http.MethodPost, "/api/generate-preview", map[string]any{"fields": []core.Field{}})
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != "VAL007" {
		t.Errorf("no fields = %d %s", rec.Code, rec.Body.String())
	}
}

func TestExport(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/export", map[string]any{"fields": testFields(), "rowCount": 25, "format": "csv"})
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="data-export-1700000000000.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 26 || lines[0] != "name,email,active" {
		t.Errorf("csv has %d lines, header %q", len(lines), lines[0])
	}

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"bad format", map[string]any{"fields": testFields(), "rowCount": 5, "format": "yaml"}, "GEN002"},
		{"too many rows", map[string]any{"fields": testFields(), "rowCount": core.MaxRowCount + 1, "format": "json"}, "VAL005"},
		{"missing rows", map[string]any{"fields": testFields(), "format": "json"}, "VAL005"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/export", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if e := decodeError(t, rec); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestTemplatesLifecycle(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodPost, "/api/templates/", map[string]any{
		"name":        "Customers",
		"description": "crm export",
		"fields":      testFields(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	var created core.Template
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID == "" || len(created.Fields) != 3 {
		t.Fatalf("created = %+v", created)
	}

	rec = do(t, s, http.MethodGet, "/api/templates/", nil)
	var list []core.Template
	json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	rec = do(t, s, http.MethodGet, "/api/templates/"+created.ID, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Customers") {
		t.Errorf("get = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/templates/match?headers=name,%20email,active", nil)
	var matches []core.TemplateMatch
	json.Unmarshal(rec.Body.Bytes(), &matches)
	if len(matches) != 1 || matches[0].MatchScore != 1 {
		t.Errorf("matches = %+v", matches)
	}

	rec = do(t, s, http.MethodGet, "/api/templates/match", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("match without headers = %d", rec.Code)
	}

	rec = do(t, s, http.MethodDelete, "/api/templates/"+created.ID, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("delete = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodDelete, "/api/templates/"+created.ID, nil)
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != "TPL001" {
		t.Errorf("second delete = %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodPost, "/api/templates/", map[string]any{"name": " ", "fields": testFields()})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name = %d", rec.Code)
	}
}

func TestErrorFragmentForHTMX(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/templates/missing", nil, "HX-Request", "true")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "TPL001") {
		t.Errorf("fragment = %s", rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 2, HeavyLimit: 1}
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/api/health", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, s, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusTooManyRequests || decodeError(t, rec).Code != "RATE001" {
		t.Errorf("third request = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rec.Header().Get("Retry-After"))
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	s := newTestServer(t, cfg)

	if rec := do(t, s, http.MethodGet, "/api/health", nil); rec.Code != http.StatusOK {
		t.Errorf("health without key = %d, want 200", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/types", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("types without key = %d, want 401", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, "/api/types", nil, "X-API-Key", "secret"); rec.Code != http.StatusOK {
		t.Errorf("types with key = %d, want 200", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&core.ValidationError{Index: -1, Message: "x"}, http.StatusBadRequest},
		{&core.ParseError{Reason: "file is empty"}, http.StatusBadRequest},
		{core.ErrTemplateNotFound, http.StatusNotFound},
		{core.ErrTooManyGenerations, http.StatusServiceUnavailable},
		{&core.CollaboratorError{Op: "ai provider", Err: context.DeadlineExceeded}, http.StatusBadGateway},
		{errRateLimited, http.StatusTooManyRequests},
		{context.Canceled, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
