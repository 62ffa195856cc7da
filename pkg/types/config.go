package types

import "time"

// Defaults applied by EngineConfig.WithDefaults.
const (
	DefaultDataDir           = "data"
	DefaultBusyTimeout       = 5 * time.Second
	DefaultMaxDepth          = 64
	DefaultPreferredLanguage = "en"
	DefaultFetchTimeout      = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultSecretsDir        = ".secrets/"
	DefaultLogMode           = "development"
	DefaultLogLevel          = "info"
)

// HierarchyConfig controls closure materialization.
type HierarchyConfig struct {
	// MaxDepth is the cycle-safety ceiling for closure expansion. Real
	// vocabularies rarely exceed depth 20-30, so it is a safety net rather
	// than a functional limit (default 64).
	MaxDepth int `json:"max_depth" yaml:"max_depth" mapstructure:"max_depth"`
}

// StoreConfig holds settings for the concept store.
type StoreConfig struct {
	// DataDir holds the SQLite database file (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// BusyTimeout is how long a writer waits on a locked database (default 5s).
	BusyTimeout time.Duration `json:"busy_timeout" yaml:"busy_timeout" mapstructure:"busy_timeout"`

	Hierarchy HierarchyConfig `json:"hierarchy" yaml:"hierarchy" mapstructure:"hierarchy"`
}

// ImportConfig holds settings for the import pipeline.
type ImportConfig struct {
	// PreferredLanguage picks the prefLabel when a concept carries several
	// (default "en").
	PreferredLanguage string `json:"preferred_language" yaml:"preferred_language" mapstructure:"preferred_language"`

	// Validate runs the validator after each import.
	Validate bool `json:"validate" yaml:"validate" mapstructure:"validate"`

	// FetchTimeout bounds a single HTTP request for remote vocabularies (default 30s).
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout" mapstructure:"fetch_timeout"`

	// MaxRetries is the retry budget for throttled fetches (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// SecretsDir holds per-host bearer tokens for vocabulary endpoints.
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// ValidationConfig selects validator rules. An empty list enables all rules.
type ValidationConfig struct {
	Rules []string `json:"rules" yaml:"rules" mapstructure:"rules"`
}

// LogConfig selects the zap logger preset and level.
type LogConfig struct {
	// Mode is "development" or "production".
	Mode  string `json:"mode" yaml:"mode" mapstructure:"mode"`
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// EngineConfig groups all settings read from skos-engine.yaml.
type EngineConfig struct {
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Import     ImportConfig     `json:"import" yaml:"import" mapstructure:"import"`
	Validation ValidationConfig `json:"validation" yaml:"validation" mapstructure:"validation"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c EngineConfig) WithDefaults() EngineConfig {
	if c.Store.DataDir == "" {
		c.Store.DataDir = DefaultDataDir
	}
	if c.Store.BusyTimeout <= 0 {
		c.Store.BusyTimeout = DefaultBusyTimeout
	}
	if c.Store.Hierarchy.MaxDepth <= 0 {
		c.Store.Hierarchy.MaxDepth = DefaultMaxDepth
	}
	if c.Import.PreferredLanguage == "" {
		c.Import.PreferredLanguage = DefaultPreferredLanguage
	}
	if c.Import.FetchTimeout <= 0 {
		c.Import.FetchTimeout = DefaultFetchTimeout
	}
	if c.Import.MaxRetries <= 0 {
		c.Import.MaxRetries = DefaultMaxRetries
	}
	if c.Import.SecretsDir == "" {
		c.Import.SecretsDir = DefaultSecretsDir
	}
	if c.Log.Mode == "" {
		c.Log.Mode = DefaultLogMode
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	return c
}
