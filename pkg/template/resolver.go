// Package template resolves computed fields from {{name}} placeholder
// templates. Substitution is textual (regex-level), not expression-based:
// a placeholder is replaced by the referenced data field, by another
// computed field, or by the empty string when neither exists.
//
// A fixed recursion depth of 5 bounds nested references. The depth counter
// is also the only cycle protection: a circular reference chain keeps
// incrementing the counter until it trips the guard. There is deliberately
// no separate cycle-detection pass, so acyclic chains of up to 5 hops
// resolve and anything deeper fails with ErrDepthExceeded.
package template

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"summonmind/atlas/pkg/schema"
)

// MaxDepth is the maximum nested resolution depth, inclusive. A reference
// chain of 5 hops resolves; 6 hops or any cycle trips the guard.
const MaxDepth = 5

// ErrDepthExceeded is the error returned when nested resolution overruns
// MaxDepth. The message is part of the wire contract.
var ErrDepthExceeded = &DepthExceededError{}

// DepthExceededError indicates that computed field resolution exceeded the
// maximum nesting depth, either through a deep reference chain or a cycle.
type DepthExceededError struct{}

// Error returns the depth-exceeded message.
func (e *DepthExceededError) Error() string {
	return "Max evaluation depth reached"
}

// placeholderRe matches {{name}} placeholders. Surrounding whitespace
// inside the braces is tolerated ({{ name }}).
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Resolver resolves computed field templates against a data record.
// A Resolver is stateless and safe for concurrent use; all resolution
// state lives on the call stack of a single Resolve call.
type Resolver struct{}

// NewResolver creates a new computed field resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve resolves every computed field template against the record and
// returns a mapping of computed field name to its fully substituted string.
//
// Field names are processed in lexicographically sorted order so that
// output never depends on map iteration order. Placeholders resolve, in
// priority order, to the record value (stringified), to another computed
// field (resolved on demand), or to the empty string.
//
// On depth exhaustion the whole resolution fails with *DepthExceededError
// and no partial map is returned.
func (r *Resolver) Resolve(templates map[string]string, record schema.Record) (map[string]string, error) {
	if len(templates) == 0 {
		return map[string]string{}, nil
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	state := &resolution{
		templates: templates,
		record:    record,
		resolved:  make(map[string]string, len(templates)),
	}

	for _, name := range names {
		if _, done := state.resolved[name]; done {
			continue
		}
		value, err := state.resolveField(name, 0)
		if err != nil {
			return nil, err
		}
		state.resolved[name] = value
	}

	return state.resolved, nil
}

// resolution is the per-call state of one top-level Resolve invocation.
// It is discarded when Resolve returns; nothing is shared across calls.
type resolution struct {
	templates map[string]string
	record    schema.Record
	resolved  map[string]string
}

// resolveField resolves a single computed field at the given depth.
func (s *resolution) resolveField(name string, depth int) (string, error) {
	tmpl := s.templates[name]

	var firstErr error
	out := placeholderRe.ReplaceAllStringFunc(tmpl, func(match string) string {
		if firstErr != nil {
			return ""
		}

		ref := placeholderRe.FindStringSubmatch(match)[1]

		// Data fields win over computed fields.
		if v, ok := s.record[ref]; ok {
			return stringify(v)
		}

		if v, ok := s.resolved[ref]; ok {
			return v
		}

		if _, ok := s.templates[ref]; ok {
			if depth+1 > MaxDepth {
				firstErr = ErrDepthExceeded
				return ""
			}
			v, err := s.resolveField(ref, depth+1)
			if err != nil {
				firstErr = err
				return ""
			}
			s.resolved[ref] = v
			return v
		}

		// Dangling references resolve to the empty string, not an error.
		return ""
	})

	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// stringify renders a record value the way it appears in computed output.
// JSON-decoded integers arrive as float64 and render without a decimal
// point.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case nil:
		return ""
	}
	return fmt.Sprintf("%v", v)
}
