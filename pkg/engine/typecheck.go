package engine

import (
	"fmt"
	"sort"

	"summonmind/atlas/pkg/schema"
)

// ValidateTypes checks every declared field's runtime type against the
// schema and returns all mismatches. It never short-circuits: a mismatch
// on one field does not hide mismatches on its siblings. The caller treats
// a non-empty result as fatal to the request.
//
// A field missing from the record is reported as a mismatch.
func ValidateTypes(fields map[string]schema.TypeTag, record schema.Record) []schema.ErrorRecord {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	// Deterministic error order: declared fields are checked in sorted
	// order so repeated runs produce identical output.
	sort.Strings(names)

	var errs []schema.ErrorRecord
	for _, name := range names {
		expected := fields[name]

		value, present := record[name]
		if !present {
			errs = append(errs, schema.ErrorRecord{
				Field:   name,
				Message: fmt.Sprintf("Field %q missing or wrong type: expected %s", name, expected),
			})
			continue
		}

		if !matchesType(value, expected) {
			errs = append(errs, schema.ErrorRecord{
				Field:   name,
				Message: fmt.Sprintf("Field %q: expected %s, got %s", name, expected, runtimeTypeName(value)),
			})
		}
	}

	return errs
}

// matchesType reports whether a runtime value satisfies a declared type.
// Booleans are checked before numbers: the number check must never accept
// a boolean, even in value domains where booleans are numerically
// representable.
func matchesType(value any, expected schema.TypeTag) bool {
	switch expected {
	case schema.TypeString:
		_, ok := value.(string)
		return ok

	case schema.TypeNumber:
		if _, isBool := value.(bool); isBool {
			return false
		}
		switch value.(type) {
		case float64, float32, int, int32, int64, uint, uint64:
			return true
		}
		return false

	case schema.TypeBoolean:
		_, ok := value.(bool)
		return ok
	}

	return false
}

// runtimeTypeName names a record value's type in error messages.
func runtimeTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, float32, int, int32, int64, uint, uint64:
		return "number"
	}
	return fmt.Sprintf("%T", value)
}
