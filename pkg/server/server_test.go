package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"summonmind/atlas/pkg/audit"
	"summonmind/atlas/pkg/config"
	"summonmind/atlas/pkg/ruleset"
	"summonmind/atlas/pkg/telemetry/metrics"
)

const usersRuleset = `
name: users
schema:
  version: 1
  fields:
    name: string
    age: number
  computed:
    greeting: "Hello {{ name }}"
rules:
  - id: adult
    level: field
    field: age
    condition: "value >= 18"
    action: validate
`

func newTestServer(t *testing.T) (*Server, *audit.MemoryStorage) {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "users.yaml"), []byte(usersRuleset), 0o644); err != nil {
		t.Fatalf("write ruleset: %v", err)
	}

	manager, err := ruleset.NewManager(ruleset.NewFileSource(dir, nil), nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	cfg := config.Default()
	cfg.Metrics.Enabled = true

	store := audit.NewMemoryStorage()
	srv := New(Options{
		Config:     cfg,
		Rulesets:   manager,
		AuditStore: store,
		Metrics:    metrics.New(nil),
	})
	return srv, store
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestHandleValidate_Success(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/validate", `{
		"schema": {
			"version": 1,
			"fields": {"name": "string", "age": "number"},
			"computed": {"greeting": "Hello {{ name }}"}
		},
		"rules": [],
		"data": {"name": "Alice", "age": 30}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	validated, ok := body["validatedData"].(map[string]any)
	if !ok {
		t.Fatalf("response missing validatedData: %v", body)
	}
	if validated["greeting"] != "Hello Alice" {
		t.Errorf("greeting = %v, want %q", validated["greeting"], "Hello Alice")
	}
}

func TestHandleValidate_InvalidSchema(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/validate", `{
		"schema": {"fields": {"name": "string"}},
		"data": {"name": "Alice"}
	}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Invalid schema: version and fields required" {
		t.Errorf("error = %v, want %q", body["error"], "Invalid schema: version and fields required")
	}
}

func TestHandleValidate_TypeErrors(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/validate", `{
		"schema": {"version": 1, "fields": {"age": "number"}},
		"data": {"age": "thirty"}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) != 1 {
		t.Fatalf("errors = %v, want one entry", body["errors"])
	}
}

func TestHandleValidate_RuleFailure(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/validate", `{
		"schema": {"version": 1, "fields": {"age": "number"}},
		"rules": [{"id": "adult", "level": "field", "field": "age", "condition": "value >= 18", "action": "validate"}],
		"data": {"age": 16}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	errs, ok := body["errors"].([]any)
	if !ok || len(errs) != 1 {
		t.Fatalf("errors = %v, want one entry", body["errors"])
	}
	first := errs[0].(map[string]any)
	if first["message"] != "Rule adult failed: value >= 18" {
		t.Errorf("message = %v, want %q", first["message"], "Rule adult failed: value >= 18")
	}
}

func TestHandleValidate_DepthExceeded(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/validate", `{
		"schema": {
			"version": 1,
			"fields": {},
			"computed": {"a": "{{ b }}", "b": "{{ a }}"}
		},
		"data": {}
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Max evaluation depth reached" {
		t.Errorf("error = %v, want %q", body["error"], "Max evaluation depth reached")
	}
}

func TestHandleValidate_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/validate", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Invalid or empty JSON body" {
		t.Errorf("error = %v, want %q", body["error"], "Invalid or empty JSON body")
	}
}

func TestHandleRulesetValidate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/rulesets/users/validate", `{"name": "Bob", "age": 40}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200\n%s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	validated, ok := body["validatedData"].(map[string]any)
	if !ok {
		t.Fatalf("response missing validatedData: %v", body)
	}
	if validated["greeting"] != "Hello Bob" {
		t.Errorf("greeting = %v, want %q", validated["greeting"], "Hello Bob")
	}
}

func TestHandleRulesetValidate_Unknown(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postJSON(t, srv.Handler(), "/v1/rulesets/nope/validate", `{}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleListRulesets(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/rulesets", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "users") {
		t.Errorf("ruleset list missing %q: %s", "users", rec.Body.String())
	}
}

func TestAuditRecording(t *testing.T) {
	srv, store := newTestServer(t)

	postJSON(t, srv.Handler(), "/v1/rulesets/users/validate", `{"name": "Bob", "age": 12}`)

	records, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d audit records, want 1", len(records))
	}
	rec := records[0]
	if rec.Outcome != audit.OutcomeRuleError {
		t.Errorf("Outcome = %q, want %q", rec.Outcome, audit.OutcomeRuleError)
	}
	if rec.Ruleset != "users" {
		t.Errorf("Ruleset = %q, want %q", rec.Ruleset, "users")
	}
	if rec.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", rec.ErrorCount)
	}
	if rec.RequestID == "" {
		t.Error("RequestID is empty")
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "given-id" {
		t.Errorf("X-Request-ID = %q, want %q", got, "given-id")
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID not assigned")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	handler := srv.Handler()

	postJSON(t, handler, "/v1/rulesets/users/validate", `{"name": "Bob", "age": 40}`)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "atlas_validations_total") {
		t.Error("exposition missing atlas_validations_total")
	}
}

func TestShutdown(t *testing.T) {
	srv, _ := newTestServer(t)

	// Shutdown on a server that never started is a no-op.
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true, want false")
	}
}
