package schema

// TypeTag is a declared field type in a schema.
// Atlas has exactly three scalar types with no coercion between them.
type TypeTag string

const (
	TypeString  TypeTag = "string"
	TypeNumber  TypeTag = "number"
	TypeBoolean TypeTag = "boolean"
)

// IsValid returns true if the tag names a known scalar type.
func (t TypeTag) IsValid() bool {
	return t == TypeString || t == TypeNumber || t == TypeBoolean
}

// Schema declares the expected shape of a data record: a positive version,
// a mapping of field names to declared types, and an optional mapping of
// computed field names to template strings.
//
// Computed field names are expected not to collide with declared field names;
// when they do, the computed value wins in the validated output.
type Schema struct {
	// Version must be present and positive. A missing or non-positive
	// version rejects the whole request before any field processing.
	Version int `json:"version" yaml:"version"`

	// Fields maps field names to their declared types.
	Fields map[string]TypeTag `json:"fields" yaml:"fields"`

	// Computed maps computed field names to template strings containing
	// {{name}} placeholders resolved against the data record.
	Computed map[string]string `json:"computed,omitempty" yaml:"computed,omitempty"`
}

// Rule is a single declarative validation rule.
type Rule struct {
	// ID identifies the rule in error messages. It is not required to be
	// unique; it is used only for attribution.
	ID string `json:"id" yaml:"id"`

	// Level scopes the rule. Only "field" rules are evaluated; any other
	// level is silently skipped.
	Level string `json:"level" yaml:"level"`

	// Field names the record field the rule targets. A missing field does
	// not fail the rule by itself; the condition sees an undefined value.
	Field string `json:"field" yaml:"field"`

	// Condition is a restricted boolean/arithmetic expression evaluated
	// against the rule's environment (see the expr package).
	Condition string `json:"condition" yaml:"condition"`

	// Action selects what happens when the condition is evaluated. Only
	// "validate" is acted on; any other action is a no-op.
	Action string `json:"action" yaml:"action"`
}

// Rule levels and actions acted on by the engine.
const (
	LevelField     = "field"
	ActionValidate = "validate"
)

// Record is a single data record: a mapping of field names to scalar values
// (string, number, or boolean). Records are treated as immutable input and
// are never mutated by rules or computed field resolution.
type Record = map[string]any

// ErrorRecord is one validation failure attributed to a rule and/or field.
// Rule and Field are omitted from the JSON encoding when empty, matching
// the wire format: schema-stage errors carry only field and message.
type ErrorRecord struct {
	Rule    string `json:"rule,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}
