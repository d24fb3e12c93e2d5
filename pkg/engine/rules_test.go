package engine

import (
	"strings"
	"testing"

	"summonmind/atlas/pkg/schema"
)

func TestRunRules(t *testing.T) {
	tests := []struct {
		name   string
		rules  []schema.Rule
		record schema.Record
		want   int // expected error count
	}{
		{
			name: "passing rule produces no error",
			rules: []schema.Rule{
				{ID: "adult", Level: "field", Field: "age", Condition: "value >= 18", Action: "validate"},
			},
			record: schema.Record{"age": 25.0},
			want:   0,
		},
		{
			name: "failing rule produces one error",
			rules: []schema.Rule{
				{ID: "adult", Level: "field", Field: "age", Condition: "value >= 18", Action: "validate"},
			},
			record: schema.Record{"age": 16.0},
			want:   1,
		},
		{
			name: "non-field level skipped",
			rules: []schema.Rule{
				{ID: "r1", Level: "record", Field: "age", Condition: "value >= 18", Action: "validate"},
			},
			record: schema.Record{"age": 16.0},
			want:   0,
		},
		{
			name: "non-validate action skipped",
			rules: []schema.Rule{
				{ID: "r1", Level: "field", Field: "age", Condition: "value >= 18", Action: "transform"},
			},
			record: schema.Record{"age": 16.0},
			want:   0,
		},
		{
			name: "all rules run despite earlier failures",
			rules: []schema.Rule{
				{ID: "r1", Level: "field", Field: "age", Condition: "value >= 18", Action: "validate"},
				{ID: "r2", Level: "field", Field: "age", Condition: "value >= 21", Action: "validate"},
				{ID: "r3", Level: "field", Field: "age", Condition: "value >= 0", Action: "validate"},
			},
			record: schema.Record{"age": 16.0},
			want:   2,
		},
		{
			name: "cross-field lookup in condition",
			rules: []schema.Rule{
				{ID: "r1", Level: "field", Field: "age", Condition: "value >= minAge", Action: "validate"},
			},
			record: schema.Record{"age": 25.0, "minAge": 18.0},
			want:   0,
		},
		{
			name: "missing target field evaluates against undefined",
			rules: []schema.Rule{
				{ID: "r1", Level: "field", Field: "nope", Condition: "value == None", Action: "validate"},
			},
			record: schema.Record{},
			want:   1, // Undefined != None
		},
		{
			name: "malformed condition fails the rule",
			rules: []schema.Rule{
				{ID: "r1", Level: "field", Field: "age", Condition: "open('/etc/passwd')", Action: "validate"},
			},
			record: schema.Record{"age": 25.0},
			want:   1,
		},
		{
			name: "type-incompatible condition fails the rule",
			rules: []schema.Rule{
				{ID: "r1", Level: "field", Field: "name", Condition: "value >= 18", Action: "validate"},
			},
			record: schema.Record{"name": "alice"},
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := RunRules(tt.rules, tt.record)
			if len(errs) != tt.want {
				t.Errorf("RunRules() produced %d errors (%v), want %d", len(errs), errs, tt.want)
			}
		})
	}
}

func TestRunRules_ErrorShape(t *testing.T) {
	rules := []schema.Rule{
		{ID: "adult-check", Level: "field", Field: "age", Condition: "value >= 18", Action: "validate"},
	}

	errs := RunRules(rules, schema.Record{"age": 16.0})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}

	e := errs[0]
	if e.Rule != "adult-check" {
		t.Errorf("Rule = %q, want %q", e.Rule, "adult-check")
	}
	if e.Field != "age" {
		t.Errorf("Field = %q, want %q", e.Field, "age")
	}
	if want := "Rule adult-check failed: value >= 18"; e.Message != want {
		t.Errorf("Message = %q, want %q", e.Message, want)
	}
}

func TestRunRules_ErrorOrderFollowsInputOrder(t *testing.T) {
	rules := []schema.Rule{
		{ID: "first", Level: "field", Field: "a", Condition: "value > 100", Action: "validate"},
		{ID: "second", Level: "field", Field: "b", Condition: "value > 100", Action: "validate"},
		{ID: "third", Level: "field", Field: "c", Condition: "value > 100", Action: "validate"},
	}
	record := schema.Record{"a": 1.0, "b": 2.0, "c": 3.0}

	errs := RunRules(rules, record)
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3", len(errs))
	}
	for i, want := range []string{"first", "second", "third"} {
		if errs[i].Rule != want {
			t.Errorf("error %d from rule %q, want %q", i, errs[i].Rule, want)
		}
	}
}

func TestRunRules_EnvironmentNotShared(t *testing.T) {
	record := schema.Record{"age": 25.0}
	rules := []schema.Rule{
		{ID: "r1", Level: "field", Field: "age", Condition: "value >= 18", Action: "validate"},
		{ID: "r2", Level: "field", Field: "age", Condition: "value >= 18", Action: "validate"},
	}

	if errs := RunRules(rules, record); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(record) != 1 {
		t.Errorf("record mutated by rule execution: %v", record)
	}
}

func TestRunRules_MalformedConditionMessage(t *testing.T) {
	rules := []schema.Rule{
		{ID: "r1", Level: "field", Field: "age", Condition: "value.__class__", Action: "validate"},
	}

	errs := RunRules(rules, schema.Record{"age": 25.0})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !strings.Contains(errs[0].Message, "attribute access") {
		t.Errorf("message %q does not describe the rejected construct", errs[0].Message)
	}
}
