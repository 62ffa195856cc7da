// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/skos-engine/internal/validate"
	"github.com/pdiddy/skos-engine/pkg/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the stored vocabulary for structural problems",
	Long: `Validate runs the consistency rules over the store and prints every
finding. Rules: ` + strings.Join(validate.RuleNames(), ", ") + `.

The command fails when any finding has error severity.`,
	RunE: runValidate,
}

// validationReport is the document written for --format json and yaml.
type validationReport struct {
	Errors   int             `json:"errors" yaml:"errors"`
	Warnings int             `json:"warnings" yaml:"warnings"`
	Findings []types.Finding `json:"findings" yaml:"findings"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := newValidator()
	if err != nil {
		return err
	}
	findings, err := store.Validate(context.Background(), v)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	errs, warns := validate.Summary(findings)
	report := validationReport{Errors: errs, Warnings: warns, Findings: findings}

	switch format {
	case "table", "":
		writeFindingsTable(w, findings)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use table, json, or yaml", format)
	}

	if errs > 0 {
		return fmt.Errorf("%d error finding(s)", errs)
	}
	return nil
}

func writeFindingsTable(w io.Writer, findings []types.Finding) {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	fmt.Fprintf(w, "%-8s  %-20s  %s\n", "Severity", "Rule", "Description")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, f := range findings {
		fmt.Fprintf(w, "%-8s  %-20s  %s\n", f.Severity, f.RuleName, f.Description)
	}

	errs, warns := validate.Summary(findings)
	fmt.Fprintf(w, "\n%d errors, %d warnings\n", errs, warns)
}

func init() {
	validateCmd.Flags().String("format", "table", "output format: table, json, or yaml")
	validateCmd.Flags().String("out", "", "output file (default: stdout)")
	validateCmd.Flags().StringSlice("rules", nil, "rules to run (default: all)")

	viper.BindPFlag("validation.rules", validateCmd.Flags().Lookup("rules"))

	rootCmd.AddCommand(validateCmd)
}
