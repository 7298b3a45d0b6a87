// Package config loads driver-level configuration for a mining run: where
// the schema and triple files live, which classes bound schema-path
// enumeration, where results are persisted, and how many users to mine
// concurrently. Grounded on the teacher's YAML-config-plus-env-override
// pattern (DefaultConfig/getEnvOrDefault); StartClass/EndClasses/
// OptionClasses/MaxDepth defaults trace to original_source/src/config.py's
// START_CLASS, END_CLASS_LIST, OPTION_CLASS_LIST, and MAX_DEPTH constants.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// StoreBackend names which result-store backend to construct.
type StoreBackend string

const (
	BackendSQLite     StoreBackend = "sqlite"
	BackendClickHouse StoreBackend = "clickhouse"
	BackendDual       StoreBackend = "dual"
)

// Config is the full driver configuration, loadable from a YAML file and
// overridable by environment variables.
type Config struct {
	SchemaFile    string           `yaml:"schema_file"`
	TriplesDir    string           `yaml:"triples_dir"`
	StartClass    string           `yaml:"start_class"`
	EndClasses    []string         `yaml:"end_classes"`
	OptionClasses []string         `yaml:"option_classes"`
	MaxDepth      int              `yaml:"max_depth"`
	Concurrency   int              `yaml:"concurrency"`
	StoreBackend  StoreBackend     `yaml:"store_backend"`
	SQLitePath    string           `yaml:"sqlite_path"`
	ClickHouse    ClickHouseConfig `yaml:"clickhouse"`
	APIAddr       string           `yaml:"api_addr"`
}

// ClickHouseConfig is the subset of connection parameters a driver
// exposes to operators; TLS is not configurable from YAML.
type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DefaultConfig returns baseline defaults before any file or environment
// override is applied.
func DefaultConfig() Config {
	return Config{
		SchemaFile: "schema.txt",
		TriplesDir: "triples",
		StartClass: "WatchingEvent",
		EndClasses: []string{
			"User", "Rating", "Collection", "Genre", "Company", "Country",
			"Keyword", "Person", "Budget", "Popularity", "Revenue", "Runtime",
			"Vote_Average", "Vote_Count",
		},
		OptionClasses: []string{"Movie"},
		MaxDepth:      10,
		Concurrency:   4,
		StoreBackend:  BackendSQLite,
		SQLitePath:    "graphminer.db",
		APIAddr:       "0.0.0.0:8090",
		ClickHouse: ClickHouseConfig{
			Addr:     "localhost:9000",
			Database: "default",
			Username: "default",
		},
	}
}

// Load reads a YAML config file at path (if it exists), applies it over
// DefaultConfig, then applies environment variable overrides on top.
// A missing file is not an error — the driver runs on defaults and
// environment overrides alone, the way sessions.Store's DefaultConfig
// never requires OCC_SESSION_DIR to be set.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.SchemaFile = getEnvOrDefault("GRAPHMINER_SCHEMA_FILE", cfg.SchemaFile)
	cfg.TriplesDir = getEnvOrDefault("GRAPHMINER_TRIPLES_DIR", cfg.TriplesDir)
	cfg.StartClass = getEnvOrDefault("GRAPHMINER_START_CLASS", cfg.StartClass)
	cfg.EndClasses = getEnvListOrDefault("GRAPHMINER_END_CLASSES", cfg.EndClasses)
	cfg.OptionClasses = getEnvListOrDefault("GRAPHMINER_OPTION_CLASSES", cfg.OptionClasses)
	cfg.MaxDepth = getEnvIntOrDefault("GRAPHMINER_MAX_DEPTH", cfg.MaxDepth)
	cfg.Concurrency = getEnvIntOrDefault("GRAPHMINER_CONCURRENCY", cfg.Concurrency)
	cfg.StoreBackend = StoreBackend(getEnvOrDefault("GRAPHMINER_STORE_BACKEND", string(cfg.StoreBackend)))
	cfg.SQLitePath = getEnvOrDefault("GRAPHMINER_SQLITE_PATH", cfg.SQLitePath)
	cfg.APIAddr = getEnvOrDefault("GRAPHMINER_API_ADDR", cfg.APIAddr)
	cfg.ClickHouse.Addr = getEnvOrDefault("GRAPHMINER_CLICKHOUSE_ADDR", cfg.ClickHouse.Addr)
	cfg.ClickHouse.Database = getEnvOrDefault("GRAPHMINER_CLICKHOUSE_DATABASE", cfg.ClickHouse.Database)
	cfg.ClickHouse.Username = getEnvOrDefault("GRAPHMINER_CLICKHOUSE_USERNAME", cfg.ClickHouse.Username)
	cfg.ClickHouse.Password = getEnvOrDefault("GRAPHMINER_CLICKHOUSE_PASSWORD", cfg.ClickHouse.Password)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvListOrDefault reads a comma-separated env var into a string slice,
// trimming whitespace around each element; an unset or empty env var
// leaves defaultValue untouched.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
