// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/skos-engine/internal/pipeline"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored vocabularies as Turtle",
	Long: `Export serializes one scheme, or the whole store, to Turtle. Output is
deterministic: subjects are sorted by URI and predicates appear in a fixed
order, so two exports of the same data are byte-identical.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	scheme, _ := cmd.Flags().GetString("scheme")
	out, _ := cmd.Flags().GetString("out")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := pipeline.NewExporter(store).Export(context.Background(), scheme, w); err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", out)
	}
	return nil
}

func init() {
	exportCmd.Flags().String("scheme", pipeline.ScopeAll, "scheme URI to export, or \"all\"")
	exportCmd.Flags().String("out", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}
