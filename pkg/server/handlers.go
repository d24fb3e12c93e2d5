package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"summonmind/atlas/pkg/audit"
	"summonmind/atlas/pkg/engine"
	"summonmind/atlas/pkg/schema"
	"summonmind/atlas/pkg/telemetry/logging"
	"summonmind/atlas/pkg/template"

	"github.com/go-chi/chi/v5"
)

// writeJSON writes v as the JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "atlas validation service is running",
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.checker.Liveness(r.Context()))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	status := s.checker.Readiness(r.Context())
	code := http.StatusOK
	if status.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) handleListRulesets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"rulesets": s.rulesets.Names(),
	})
}

// handleValidate validates a record against an inline schema and rules.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := s.decodeBody(w, r, &req); err != nil {
		return
	}
	s.runValidation(w, r, &req, "")
}

// handleRulesetValidate validates a record against a preloaded ruleset.
// The body carries only the data record.
func (s *Server) handleRulesetValidate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rs, ok := s.rulesets.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "unknown ruleset: " + name,
		})
		return
	}

	var data schema.Record
	if err := s.decodeBody(w, r, &data); err != nil {
		return
	}

	req := &engine.Request{
		Schema: rs.Schema,
		Rules:  rs.Rules,
		Data:   data,
	}
	s.runValidation(w, r, req, name)
}

// decodeBody decodes the JSON request body into v, enforcing the body cap.
// On failure it writes the error response and returns a non-nil error.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Invalid or empty JSON body",
		})
		return err
	}
	return nil
}

// runValidation drives the pipeline and maps its outcome onto the wire.
func (s *Server) runValidation(w http.ResponseWriter, r *http.Request, req *engine.Request, rulesetName string) {
	ctx := r.Context()

	if err := s.acquire(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "server busy",
		})
		return
	}
	defer s.release()

	start := time.Now()
	result, err := s.validator.Validate(ctx, req)
	duration := time.Since(start)

	outcome, errorCount := s.respond(w, result, err)

	if s.metrics != nil {
		s.metrics.RecordValidation(string(outcome), duration)
		switch outcome {
		case audit.OutcomeTypeError:
			s.metrics.RecordErrors("types", errorCount)
		case audit.OutcomeRuleError:
			s.metrics.RecordErrors("rules", errorCount)
		case audit.OutcomeDepthExceeded:
			s.metrics.RecordErrors("computed", errorCount)
		}
	}
	s.recordAudit(r, rulesetName, outcome, errorCount, duration)
}

// respond writes the pipeline outcome in the wire format callers expect:
// schema failures are 400s, validation failures are 200s with an errors
// array, and depth exhaustion is a 200 with a single error message.
func (s *Server) respond(w http.ResponseWriter, result *engine.Result, err error) (audit.Outcome, int) {
	if err == nil {
		writeJSON(w, http.StatusOK, result)
		return audit.OutcomeValid, 0
	}

	var schemaErr *engine.SchemaError
	var typeErr *engine.TypeValidationError
	var ruleErr *engine.RuleFailureError
	var depthErr *template.DepthExceededError

	switch {
	case errors.As(err, &schemaErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": schemaErr.Error()})
		return audit.OutcomeSchemaError, 0

	case errors.As(err, &typeErr):
		writeJSON(w, http.StatusOK, map[string][]schema.ErrorRecord{"errors": typeErr.Errors})
		return audit.OutcomeTypeError, len(typeErr.Errors)

	case errors.As(err, &ruleErr):
		writeJSON(w, http.StatusOK, map[string][]schema.ErrorRecord{"errors": ruleErr.Errors})
		return audit.OutcomeRuleError, len(ruleErr.Errors)

	case errors.As(err, &depthErr):
		writeJSON(w, http.StatusOK, map[string]string{"error": depthErr.Error()})
		return audit.OutcomeDepthExceeded, 1

	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return audit.Outcome("internal_error"), 0
	}
}

// recordAudit appends a decision record. Failures are logged, never
// surfaced to the caller.
func (s *Server) recordAudit(r *http.Request, rulesetName string, outcome audit.Outcome, errorCount int, duration time.Duration) {
	if s.auditStore == nil {
		return
	}

	rec := &audit.Record{
		ID:         uuid.NewString(),
		RequestID:  logging.RequestIDFrom(r.Context()),
		Ruleset:    rulesetName,
		Outcome:    outcome,
		ErrorCount: errorCount,
		Duration:   duration,
		CreatedAt:  time.Now(),
	}
	if err := s.auditStore.Store(r.Context(), rec); err != nil {
		logging.FromContext(r.Context(), s.logger).Warn("failed to store audit record", "error", err)
	}
}
