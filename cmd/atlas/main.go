// Atlas is a record-validation service with typed schemas, declarative
// rules, and computed fields.
//
// Usage:
//
//	# Start the server with the default configuration
//	atlas run
//
//	# Start with a custom configuration file
//	atlas run --config /etc/atlas/atlas.yaml
//
//	# Validate a data file against a ruleset
//	atlas validate --ruleset users.yaml --data record.json
//
//	# Lint ruleset files
//	atlas lint --file users.yaml
//
//	# Show version information
//	atlas version
package main

func main() {
	Execute()
}
