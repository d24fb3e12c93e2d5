package engine

import (
	"fmt"

	"summonmind/atlas/pkg/expr"
	"summonmind/atlas/pkg/schema"
)

// RunRules evaluates field-level validate rules against a record and
// returns one error record per failed or malformed rule, in input order.
//
// Rules with a level other than "field" or an action other than "validate"
// are silently skipped. All surviving rules run regardless of earlier
// failures; there is no short-circuit across rules.
func RunRules(rules []schema.Rule, record schema.Record) []schema.ErrorRecord {
	var errs []schema.ErrorRecord

	for _, rule := range rules {
		if rule.Level != schema.LevelField || rule.Action != schema.ActionValidate {
			continue
		}

		env := buildEnv(rule.Field, record)

		passed, err := expr.Evaluate(rule.Condition, env)
		if err != nil {
			// A malformed or type-incompatible condition is a rule failure
			// with the evaluator's message, never a crash.
			errs = append(errs, schema.ErrorRecord{
				Rule:    rule.ID,
				Field:   rule.Field,
				Message: err.Error(),
			})
			continue
		}

		if !passed {
			errs = append(errs, schema.ErrorRecord{
				Rule:    rule.ID,
				Field:   rule.Field,
				Message: fmt.Sprintf("Rule %s failed: %s", rule.ID, rule.Condition),
			})
		}
	}

	return errs
}

// buildEnv constructs the ephemeral evaluation environment for one rule:
// "value" bound to the target field (or Undefined when absent) plus every
// record field by name. The map is created fresh per rule and never shared.
func buildEnv(field string, record schema.Record) map[string]any {
	env := make(map[string]any, len(record)+1)
	for name, value := range record {
		env[name] = value
	}

	if value, ok := record[field]; ok {
		env["value"] = value
	} else {
		env["value"] = expr.Undefined
	}

	return env
}
