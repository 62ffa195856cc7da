// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/skos-engine/internal/pipeline"
	"github.com/pdiddy/skos-engine/internal/secrets"
	"github.com/pdiddy/skos-engine/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import <file|url>...",
	Short: "Import Turtle vocabularies into the store",
	Long: `Import parses each Turtle document, stores its schemes, concepts, labels,
relations, and mappings, and rebuilds the broader hierarchy. Items that
cannot be stored are reported and skipped; only an unparseable document
fails the import. Re-importing the same document is safe.

Arguments starting with http:// or https:// are fetched, retrying on 429
and 503. A bearer token is sent when the secrets directory holds a file
named <host>-token.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := []pipeline.Option{
		pipeline.WithLogger(logger.Named("import")),
		pipeline.WithMetrics(mtr),
	}
	if engineCfg.Import.Validate {
		v, err := newValidator()
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithValidator(v))
	}
	if needsFetch(args) {
		s, err := secrets.Load(engineCfg.Import.SecretsDir)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithSecrets(s))
	}
	im := pipeline.NewImporter(store, engineCfg.Import, opts...)

	var failed int
	for _, src := range args {
		fmt.Fprintf(os.Stdout, "importing %s\n", src)
		stats, err := importOne(ctx, im, src)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", src, err)
			failed++
			continue
		}
		if n := errorFindings(stats.Findings); n > 0 {
			fmt.Fprintf(os.Stdout, "warning: %s has %d error finding(s); run validate for details\n", src, n)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d document(s) failed import", failed)
	}
	return nil
}

func importOne(ctx context.Context, im *pipeline.Importer, src string) (types.ImportStats, error) {
	if isURL(src) {
		return im.ImportURL(ctx, src, os.Stdout)
	}
	f, err := os.Open(src)
	if err != nil {
		return types.ImportStats{}, err
	}
	defer f.Close()
	return im.Import(ctx, f, os.Stdout)
}

func needsFetch(args []string) bool {
	for _, a := range args {
		if isURL(a) {
			return true
		}
	}
	return false
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func errorFindings(fs []types.Finding) int {
	var n int
	for _, f := range fs {
		if f.Severity == types.SeverityError {
			n++
		}
	}
	return n
}

func init() {
	importCmd.Flags().String("lang", types.DefaultPreferredLanguage, "preferred prefLabel language")
	importCmd.Flags().Bool("validate", false, "validate the store after each import")
	importCmd.Flags().Duration("fetch-timeout", types.DefaultFetchTimeout, "timeout for fetching a remote vocabulary")
	importCmd.Flags().Int("max-retries", types.DefaultMaxRetries, "retries for throttled fetches")
	importCmd.Flags().String("secrets-dir", types.DefaultSecretsDir, "directory holding <host>-token files")

	viper.BindPFlag("import.preferred_language", importCmd.Flags().Lookup("lang"))
	viper.BindPFlag("import.validate", importCmd.Flags().Lookup("validate"))
	viper.BindPFlag("import.fetch_timeout", importCmd.Flags().Lookup("fetch-timeout"))
	viper.BindPFlag("import.max_retries", importCmd.Flags().Lookup("max-retries"))
	viper.BindPFlag("import.secrets_dir", importCmd.Flags().Lookup("secrets-dir"))

	rootCmd.AddCommand(importCmd)
}
