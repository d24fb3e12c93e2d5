// Package schema defines the core data model for Atlas validation requests:
// the declared schema (version, field types, computed field templates), the
// declarative rules evaluated against a record, and the error records
// accumulated during validation.
//
// These types are deliberately plain data. All behavior lives in the engine,
// expression, and template packages; schema only describes the shapes that
// flow between them.
package schema
