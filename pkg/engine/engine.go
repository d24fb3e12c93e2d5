package engine

import (
	"context"
	"log/slog"
	"time"

	"summonmind/atlas/pkg/schema"
	"summonmind/atlas/pkg/template"
)

// Request is one validation request: a schema declaration, a list of
// declarative rules, and the data record to validate.
type Request struct {
	Schema *schema.Schema `json:"schema"`
	Rules  []schema.Rule  `json:"rules"`
	Data   schema.Record  `json:"data"`
}

// Result is the success payload of a validation: the original data fields
// merged with the resolved computed fields. Computed fields win on name
// collision.
type Result struct {
	ValidatedData map[string]any `json:"validatedData"`
}

// Validator orchestrates the validation pipeline:
//
//	VersionCheck -> TypeValidation -> RuleExecution -> ComputedResolution
//
// The pipeline is linear with no feedback: each stage either passes the
// record through unchanged or terminates the request with that stage's
// exclusive error payload. A Validator holds no per-request state and is
// safe for concurrent use.
type Validator struct {
	resolver *template.Resolver
	logger   *slog.Logger
}

// NewValidator creates a validation orchestrator.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{
		resolver: template.NewResolver(),
		logger:   logger.With("component", "engine"),
	}
}

// Validate runs the full pipeline over one request.
//
// On success it returns the merged validated data. On failure it returns
// exactly one of *SchemaError, *TypeValidationError, *RuleFailureError, or
// *template.DepthExceededError; error payloads from different stages are
// never mixed.
func (v *Validator) Validate(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := checkSchema(req.Schema); err != nil {
		v.logger.Debug("schema check failed", "error", err)
		return nil, err
	}

	if typeErrs := ValidateTypes(req.Schema.Fields, req.Data); len(typeErrs) > 0 {
		v.logger.Debug("type validation failed",
			"error_count", len(typeErrs),
		)
		return nil, &TypeValidationError{Errors: typeErrs}
	}

	if ruleErrs := RunRules(req.Rules, req.Data); len(ruleErrs) > 0 {
		v.logger.Debug("rule execution failed",
			"error_count", len(ruleErrs),
		)
		return nil, &RuleFailureError{Errors: ruleErrs}
	}

	computed, err := v.resolver.Resolve(req.Schema.Computed, req.Data)
	if err != nil {
		v.logger.Debug("computed field resolution failed", "error", err)
		return nil, err
	}

	validated := make(map[string]any, len(req.Data)+len(computed))
	for name, value := range req.Data {
		validated[name] = value
	}
	// Computed fields overwrite same-named data fields.
	for name, value := range computed {
		validated[name] = value
	}

	v.logger.Debug("validation succeeded",
		"field_count", len(req.Schema.Fields),
		"rule_count", len(req.Rules),
		"computed_count", len(computed),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &Result{ValidatedData: validated}, nil
}

// checkSchema enforces the version invariant: a schema with declared
// fields and a positive version must be present before any field
// processing happens.
func checkSchema(s *schema.Schema) error {
	if s == nil || s.Version <= 0 || s.Fields == nil {
		return &SchemaError{Message: "Invalid schema: version and fields required"}
	}

	for name, tag := range s.Fields {
		if !tag.IsValid() {
			return &SchemaError{Message: "Invalid schema: unknown type " + string(tag) + " for field " + name}
		}
	}

	return nil
}
