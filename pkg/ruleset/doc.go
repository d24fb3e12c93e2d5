// Package ruleset loads named validation rulesets from YAML documents.
//
// A ruleset file declares a schema and a list of rules:
//
//	name: signup
//	schema:
//	  version: 1
//	  fields:
//	    firstName: string
//	    lastName: string
//	    age: number
//	  computed:
//	    fullName: "{{firstName}} {{lastName}}"
//	rules:
//	  - id: adult
//	    level: field
//	    field: age
//	    condition: "value >= 18"
//	    action: validate
//
// Rulesets can be loaded once or managed by a Manager, which watches the
// source directory and hot-reloads on change. Lint performs the static
// checks behind the "atlas lint" command: conditions must parse under the
// restricted grammar, rule targets should be declared fields, and computed
// templates should reference known names.
package ruleset
