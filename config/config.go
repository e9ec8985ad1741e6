package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the cmdref engine and its hosts.
type Config struct {
	Search   SearchConfig   `yaml:"search" toml:"search"`
	Cache    CacheConfig    `yaml:"cache" toml:"cache"`
	Worker   WorkerConfig   `yaml:"worker" toml:"worker"`
	Snapshot SnapshotConfig `yaml:"snapshot" toml:"snapshot"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

// SearchConfig holds ranking constants. Changing them changes result order,
// never the set of strategies that run.
type SearchConfig struct {
	DefaultLimit    int          `yaml:"default_limit" toml:"default_limit"`
	MaxLimit        int          `yaml:"max_limit" toml:"max_limit"` // 0 = unbounded
	SuggestionLimit int          `yaml:"suggestion_limit" toml:"suggestion_limit"`
	RelatedLimit    int          `yaml:"related_limit" toml:"related_limit"`
	MinQueryLength  int          `yaml:"min_query_length" toml:"min_query_length"`
	Fuzzy           FuzzyConfig  `yaml:"fuzzy" toml:"fuzzy"`
	Weights         FieldWeights `yaml:"weights" toml:"weights"`
	CategoryWeight  float64      `yaml:"category_weight" toml:"category_weight"`
	Stemming        bool         `yaml:"stemming" toml:"stemming"` // stem query tokens missing from the inverted index
}

// FuzzyConfig is the edit distance budget: ShortBudget for queries up to
// ShortQueryLength runes, LongBudget above that.
type FuzzyConfig struct {
	ShortQueryLength int `yaml:"short_query_length" toml:"short_query_length"`
	ShortBudget      int `yaml:"short_budget" toml:"short_budget"`
	LongBudget       int `yaml:"long_budget" toml:"long_budget"`
}

// FieldWeights rank full-text hits by the field a token came from.
type FieldWeights struct {
	Name        float64 `yaml:"name" toml:"name"`
	Title       float64 `yaml:"title" toml:"title"`
	Description float64 `yaml:"description" toml:"description"`
	Keywords    float64 `yaml:"keywords" toml:"keywords"`
	Content     float64 `yaml:"content" toml:"content"`
}

// CacheConfig holds query result cache configuration.
type CacheConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled"`
	MaxEntries int  `yaml:"max_entries" toml:"max_entries"`
	TTLSeconds int  `yaml:"ttl_seconds" toml:"ttl_seconds"`
}

// WorkerConfig holds the async host configuration.
type WorkerConfig struct {
	PoolSize      int `yaml:"pool_size" toml:"pool_size"`
	TimeoutMillis int `yaml:"timeout_ms" toml:"timeout_ms"` // 0 = wait for the caller's context only
}

// SnapshotConfig controls how snapshot files are discovered and watched.
type SnapshotConfig struct {
	Includes         []string `yaml:"includes" toml:"includes"`
	Excludes         []string `yaml:"excludes" toml:"excludes"`
	WatchDebounceMS  int      `yaml:"watch_debounce_ms" toml:"watch_debounce_ms"`
	ValidateOnImport bool     `yaml:"validate_on_import" toml:"validate_on_import"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			DefaultLimit:    20,
			MaxLimit:        200,
			SuggestionLimit: 8,
			RelatedLimit:    5,
			MinQueryLength:  2,
			Fuzzy: FuzzyConfig{
				ShortQueryLength: 5,
				ShortBudget:      1,
				LongBudget:       2,
			},
			Weights: FieldWeights{
				Name:        4,
				Title:       3,
				Description: 2,
				Keywords:    1,
				Content:     0.5,
			},
			CategoryWeight: 3,
			Stemming:       true,
		},
		Cache: CacheConfig{
			Enabled:    true,
			MaxEntries: 256,
			TTLSeconds: 300,
		},
		Worker: WorkerConfig{
			PoolSize:      4,
			TimeoutMillis: 0,
		},
		Snapshot: SnapshotConfig{
			Includes:         []string{"**/*.json"},
			Excludes:         []string{"**/node_modules/**", "**/.git/**", "**/.cmdref/**"},
			WatchDebounceMS:  250,
			ValidateOnImport: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for cmdref.yaml,
// cmdref.toml, then .cmdref/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	candidates := []string{
		filepath.Join(dir, "cmdref.yaml"),
		filepath.Join(dir, "cmdref.toml"),
		filepath.Join(dir, ".cmdref", "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	// Return defaults
	return DefaultConfig(), nil
}

// Validate checks values that would make ranking ill-defined.
func (c *Config) Validate() error {
	s := c.Search
	if s.DefaultLimit <= 0 {
		return fmt.Errorf("search.default_limit must be positive, got %d", s.DefaultLimit)
	}
	if s.MaxLimit < 0 {
		return fmt.Errorf("search.max_limit must not be negative, got %d", s.MaxLimit)
	}
	if s.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be at least 1, got %d", s.MinQueryLength)
	}
	if s.Fuzzy.ShortBudget < 0 || s.Fuzzy.LongBudget < 0 {
		return fmt.Errorf("search.fuzzy budgets must not be negative")
	}
	w := s.Weights
	if !(w.Name > w.Title && w.Title > w.Description && w.Description > w.Keywords && w.Keywords >= w.Content && w.Content >= 0) {
		return fmt.Errorf("search.weights must satisfy name > title > description > keywords >= content >= 0")
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StoreDBPath returns the path to the snapshot database.
func StoreDBPath(dir string) string {
	return filepath.Join(dir, ".cmdref", "snapshot.db")
}

// EnsureDataDir ensures the .cmdref directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".cmdref"), 0755)
}
