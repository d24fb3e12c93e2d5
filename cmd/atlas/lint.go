package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"summonmind/atlas/pkg/ruleset"
)

var lintFlags struct {
	file   string
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate ruleset files",
	Long: `Validate ruleset YAML files for syntax and semantic problems.

The lint command parses ruleset files and reports:
  - YAML syntax errors
  - Structural errors (missing name, schema, rule ids)
  - Conditions that fail to parse
  - Rules targeting undeclared fields
  - Computed templates referencing unknown names

Examples:
  # Lint a single file
  atlas lint --file users.yaml

  # Lint a directory
  atlas lint --dir rulesets/

  # Strict mode (warnings as errors)
  atlas lint --file users.yaml --strict

  # JSON output for CI
  atlas lint --file users.yaml --format json`,
	RunE: lintRulesets,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "ruleset file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of ruleset files")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

type lintReport struct {
	File   string          `json:"file"`
	Issues []ruleset.Issue `json:"issues"`
}

func lintRulesets(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list ruleset files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no ruleset files found")
	}

	var reports []lintReport
	failed := false

	for _, file := range files {
		rs, err := ruleset.ParseFile(file)
		if err != nil {
			failed = true
			reports = append(reports, lintReport{
				File: file,
				Issues: []ruleset.Issue{{
					Severity: ruleset.SeverityError,
					Message:  err.Error(),
				}},
			})
			continue
		}

		issues := ruleset.Lint(rs)
		reports = append(reports, lintReport{File: file, Issues: issues})

		for _, issue := range issues {
			if issue.Severity == ruleset.SeverityError {
				failed = true
			} else if lintFlags.strict {
				failed = true
			}
		}
	}

	if lintFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			if len(report.Issues) == 0 {
				fmt.Printf("%s: ok\n", report.File)
				continue
			}
			for _, issue := range report.Issues {
				fmt.Printf("%s: %s\n", report.File, issue.String())
			}
		}
	}

	if failed {
		return fmt.Errorf("lint failed")
	}
	return nil
}
