package ruleset

import (
	"fmt"
	"regexp"
	"sort"

	"summonmind/atlas/pkg/expr"
	"summonmind/atlas/pkg/schema"
)

// Severity classifies a lint finding.
type Severity string

const (
	// SeverityError marks findings that will fail at request time, such as
	// conditions outside the restricted grammar.
	SeverityError Severity = "error"

	// SeverityWarning marks findings that are legal but suspicious, such
	// as a rule targeting an undeclared field.
	SeverityWarning Severity = "warning"
)

// Issue is one lint finding.
type Issue struct {
	Severity Severity
	Rule     string // rule id, if attributable
	Field    string // field or computed field name, if attributable
	Message  string
}

// String formats the issue the way "atlas lint" prints it.
func (i Issue) String() string {
	where := ""
	switch {
	case i.Rule != "":
		where = fmt.Sprintf(" rule %q", i.Rule)
	case i.Field != "":
		where = fmt.Sprintf(" field %q", i.Field)
	}
	return fmt.Sprintf("[%s]%s: %s", i.Severity, where, i.Message)
}

var lintPlaceholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Lint statically checks a ruleset without running it: every condition
// must parse under the restricted grammar, rule targets should be declared
// fields, and computed templates should only reference declared or
// computed names. Findings are returned in a deterministic order.
func Lint(rs *Ruleset) []Issue {
	var issues []Issue

	for _, rule := range rs.Rules {
		if rule.Level != schema.LevelField {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     rule.ID,
				Message:  fmt.Sprintf("level %q is never evaluated", rule.Level),
			})
			continue
		}
		if rule.Action != schema.ActionValidate {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     rule.ID,
				Message:  fmt.Sprintf("action %q is a no-op", rule.Action),
			})
			continue
		}

		if _, err := expr.Parse(rule.Condition); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Rule:     rule.ID,
				Message:  err.Error(),
			})
		}

		if _, declared := rs.Schema.Fields[rule.Field]; !declared {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Rule:     rule.ID,
				Message:  fmt.Sprintf("targets undeclared field %q", rule.Field),
			})
		}
	}

	// Computed templates, in sorted order to keep output stable.
	names := make([]string, 0, len(rs.Schema.Computed))
	for name := range rs.Schema.Computed {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		tmpl := rs.Schema.Computed[name]
		for _, match := range lintPlaceholderRe.FindAllStringSubmatch(tmpl, -1) {
			ref := match[1]
			if _, ok := rs.Schema.Fields[ref]; ok {
				continue
			}
			if _, ok := rs.Schema.Computed[ref]; ok {
				continue
			}
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Field:    name,
				Message:  fmt.Sprintf("references unknown name %q (resolves to empty string)", ref),
			})
		}
	}

	return issues
}

// HasErrors returns true if any finding has error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
