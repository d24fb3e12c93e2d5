package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"summonmind/atlas/pkg/schema"
)

// Ruleset is one named validation ruleset: a schema declaration plus the
// rules evaluated against records submitted for it.
type Ruleset struct {
	// Name identifies the ruleset. When omitted in the document, the file
	// name without extension is used.
	Name string `yaml:"name"`

	// Schema declares the record shape and computed fields.
	Schema *schema.Schema `yaml:"schema"`

	// Rules are evaluated in document order.
	Rules []schema.Rule `yaml:"rules"`

	// Source is the file path the ruleset was loaded from, for error
	// attribution. Empty for rulesets parsed from memory.
	Source string `yaml:"-"`
}

// ParseError indicates a ruleset document that could not be loaded.
type ParseError struct {
	Source  string
	Message string
	Cause   error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("ruleset %s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("ruleset: %s", e.Message)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ParseBytes parses a ruleset document from memory. The source path is
// used only for error attribution and the default name.
func ParseBytes(data []byte, source string) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, &ParseError{
			Source:  source,
			Message: fmt.Sprintf("YAML parsing failed: %v", err),
			Cause:   err,
		}
	}

	rs.Source = source
	if rs.Name == "" && source != "" {
		base := filepath.Base(source)
		rs.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	if err := rs.check(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// ParseFile parses a ruleset document from disk.
func ParseFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{
			Source:  path,
			Message: fmt.Sprintf("failed to read file: %v", err),
			Cause:   err,
		}
	}
	return ParseBytes(data, path)
}

// check enforces the structural invariants a ruleset must satisfy before
// it can serve validation requests.
func (rs *Ruleset) check() error {
	if rs.Name == "" {
		return &ParseError{Source: rs.Source, Message: "ruleset name is required"}
	}
	if rs.Schema == nil {
		return &ParseError{Source: rs.Source, Message: "schema section is required"}
	}
	if rs.Schema.Version <= 0 {
		return &ParseError{Source: rs.Source, Message: "schema version must be positive"}
	}
	if rs.Schema.Fields == nil {
		return &ParseError{Source: rs.Source, Message: "schema fields section is required"}
	}

	for name, tag := range rs.Schema.Fields {
		if !tag.IsValid() {
			return &ParseError{
				Source:  rs.Source,
				Message: fmt.Sprintf("field %q declares unknown type %q", name, tag),
			}
		}
	}

	for i, rule := range rs.Rules {
		if rule.ID == "" {
			return &ParseError{
				Source:  rs.Source,
				Message: fmt.Sprintf("rule %d has no id", i),
			}
		}
	}

	return nil
}
