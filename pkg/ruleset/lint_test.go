package ruleset

import (
	"strings"
	"testing"

	"summonmind/atlas/pkg/schema"
)

func TestLint(t *testing.T) {
	tests := []struct {
		name         string
		rs           *Ruleset
		wantErrors   int
		wantWarnings int
	}{
		{
			name: "clean ruleset",
			rs: &Ruleset{
				Name: "ok",
				Schema: &schema.Schema{
					Version: 1,
					Fields:  map[string]schema.TypeTag{"age": schema.TypeNumber},
					Computed: map[string]string{
						"label": "age is {{age}}",
					},
				},
				Rules: []schema.Rule{
					{ID: "adult", Level: "field", Field: "age", Condition: "value >= 18", Action: "validate"},
				},
			},
		},
		{
			name: "malformed condition is an error",
			rs: &Ruleset{
				Name: "bad",
				Schema: &schema.Schema{
					Version: 1,
					Fields:  map[string]schema.TypeTag{"age": schema.TypeNumber},
				},
				Rules: []schema.Rule{
					{ID: "r1", Level: "field", Field: "age", Condition: "open('x')", Action: "validate"},
				},
			},
			wantErrors: 1,
		},
		{
			name: "undeclared rule target is a warning",
			rs: &Ruleset{
				Name: "warn",
				Schema: &schema.Schema{
					Version: 1,
					Fields:  map[string]schema.TypeTag{"age": schema.TypeNumber},
				},
				Rules: []schema.Rule{
					{ID: "r1", Level: "field", Field: "height", Condition: "value > 0", Action: "validate"},
				},
			},
			wantWarnings: 1,
		},
		{
			name: "skipped levels and actions are warnings",
			rs: &Ruleset{
				Name: "warn",
				Schema: &schema.Schema{
					Version: 1,
					Fields:  map[string]schema.TypeTag{"age": schema.TypeNumber},
				},
				Rules: []schema.Rule{
					{ID: "r1", Level: "record", Field: "age", Condition: "value > 0", Action: "validate"},
					{ID: "r2", Level: "field", Field: "age", Condition: "value > 0", Action: "transform"},
				},
			},
			wantWarnings: 2,
		},
		{
			name: "unknown computed reference",
			rs: &Ruleset{
				Name: "warn",
				Schema: &schema.Schema{
					Version: 1,
					Fields:  map[string]schema.TypeTag{"age": schema.TypeNumber},
					Computed: map[string]string{
						"label": "{{nobody}}",
					},
				},
			},
			wantWarnings: 1,
		},
		{
			name: "computed referencing computed is clean",
			rs: &Ruleset{
				Name: "ok",
				Schema: &schema.Schema{
					Version: 1,
					Fields:  map[string]schema.TypeTag{"age": schema.TypeNumber},
					Computed: map[string]string{
						"a": "{{b}}",
						"b": "{{age}}",
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.rs)

			var gotErrors, gotWarnings int
			for _, i := range issues {
				switch i.Severity {
				case SeverityError:
					gotErrors++
				case SeverityWarning:
					gotWarnings++
				}
			}

			if gotErrors != tt.wantErrors {
				t.Errorf("errors = %d (%v), want %d", gotErrors, issues, tt.wantErrors)
			}
			if gotWarnings != tt.wantWarnings {
				t.Errorf("warnings = %d (%v), want %d", gotWarnings, issues, tt.wantWarnings)
			}

			if HasErrors(issues) != (tt.wantErrors > 0) {
				t.Errorf("HasErrors = %v, want %v", HasErrors(issues), tt.wantErrors > 0)
			}
		})
	}
}

func TestIssue_String(t *testing.T) {
	i := Issue{Severity: SeverityError, Rule: "adult", Message: "bad condition"}
	s := i.String()
	if !strings.Contains(s, "error") || !strings.Contains(s, "adult") {
		t.Errorf("String() = %q, want severity and rule id", s)
	}
}
