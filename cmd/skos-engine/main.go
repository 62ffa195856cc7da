// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the skos-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/skos-engine/internal/knowledge"
	"github.com/pdiddy/skos-engine/internal/metrics"
	"github.com/pdiddy/skos-engine/internal/validate"
	"github.com/pdiddy/skos-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state built in PersistentPreRunE.
var (
	engineCfg types.EngineConfig
	logger    = zap.NewNop()
	registry  *prometheus.Registry
	mtr       *metrics.Metrics
)

// rootCmd is the base command for the skos-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "skos-engine",
	Short: "Import, query, and validate SKOS vocabularies",
	Long: `skos-engine stores SKOS vocabularies in a local SQLite database. It imports
Turtle documents, keeps a materialized broader hierarchy for ancestor and
descendant queries, validates the graph for cycles, orphans, and label
conflicts, and exports stored vocabularies back to Turtle.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&engineCfg); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		engineCfg = engineCfg.WithDefaults()

		l, err := newLogger(engineCfg.Log)
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l

		registry = prometheus.NewRegistry()
		mtr, err = metrics.New(registry)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer logger.Sync()

		path := viper.GetString("metrics_file")
		if path == "" || registry == nil {
			return nil
		}
		if err := prometheus.WriteToTextfile(path, registry); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./skos-engine.yaml or ~/.config/skos-engine/config.yaml)")
	pf.String("data-dir", types.DefaultDataDir, "directory holding the SQLite database")
	pf.Int("max-depth", types.DefaultMaxDepth, "hierarchy depth ceiling used as a cycle guard")
	pf.String("log-mode", types.DefaultLogMode, "logger preset: development or production")
	pf.String("log-level", types.DefaultLogLevel, "log level: debug, info, warn, error")
	pf.String("metrics-file", "", "write Prometheus metrics to this file after the command")

	bindings := map[string]string{
		"store.data_dir":            "data-dir",
		"store.hierarchy.max_depth": "max-depth",
		"log.mode":                  "log-mode",
		"log.level":                 "log-level",
		"metrics_file":              "metrics-file",
	}
	for key, flag := range bindings {
		viper.BindPFlag(key, pf.Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("skos-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "skos-engine"))
		}
	}

	viper.SetEnvPrefix("SKOS_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds a zap logger from the configured preset and level.
func newLogger(cfg types.LogConfig) (*zap.Logger, error) {
	var zc zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "prod", "production":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// openStore opens the configured store with logging and metrics attached.
func openStore() (*knowledge.Store, error) {
	return knowledge.NewStore(engineCfg.Store,
		knowledge.WithLogger(logger.Named("store")),
		knowledge.WithMetrics(mtr))
}

// newValidator builds a validator for the configured rules.
func newValidator() (*validate.Validator, error) {
	return validate.New(engineCfg.Validation.Rules,
		validate.WithLogger(logger.Named("validate")),
		validate.WithMetrics(mtr))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
