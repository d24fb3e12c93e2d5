package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"summonmind/atlas/pkg/engine"
	"summonmind/atlas/pkg/ruleset"
	"summonmind/atlas/pkg/schema"
)

var validateFlags struct {
	rulesetFile string
	dataFile    string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a data record against a ruleset",
	Long: `Run the validation pipeline once against a JSON data file and print
the result. Exits non-zero when validation fails.

Examples:
  # Validate a record
  atlas validate --ruleset users.yaml --data record.json

  # Read the record from stdin
  cat record.json | atlas validate --ruleset users.yaml --data -`,
	RunE: validateRecord,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.rulesetFile, "ruleset", "r", "", "ruleset file (required)")
	validateCmd.Flags().StringVarP(&validateFlags.dataFile, "data", "d", "", "JSON data file, or - for stdin (required)")
	_ = validateCmd.MarkFlagRequired("ruleset")
	_ = validateCmd.MarkFlagRequired("data")
}

func validateRecord(cmd *cobra.Command, args []string) error {
	rs, err := ruleset.ParseFile(validateFlags.rulesetFile)
	if err != nil {
		return err
	}

	var raw []byte
	if validateFlags.dataFile == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(validateFlags.dataFile)
	}
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}

	var data schema.Record
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse data file: %w", err)
	}

	validator := engine.NewValidator(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	result, err := validator.Validate(cmd.Context(), &engine.Request{
		Schema: rs.Schema,
		Rules:  rs.Rules,
		Data:   data,
	})
	if err != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		var typeErr *engine.TypeValidationError
		var ruleErr *engine.RuleFailureError
		switch {
		case errors.As(err, &typeErr):
			_ = enc.Encode(map[string][]schema.ErrorRecord{"errors": typeErr.Errors})
		case errors.As(err, &ruleErr):
			_ = enc.Encode(map[string][]schema.ErrorRecord{"errors": ruleErr.Errors})
		default:
			_ = enc.Encode(map[string]string{"error": err.Error()})
		}
		return fmt.Errorf("validation failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
