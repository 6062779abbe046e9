package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Config drives the admincfg CLI.
type Config struct {
	DSLDir   string `json:"dslDir"`
	EnumsDir string `json:"enumsDir"` // empty = no catalogs

	Format    string `json:"format"`    // "json" (default) | "yaml"
	LogLevel  string `json:"logLevel"`  // zerolog level name
	LogFormat string `json:"logFormat"` // "console" (default) | "json"

	// FailOnIssues makes lint and validate exit non-zero when they report anything.
	FailOnIssues bool `json:"failOnIssues"`
}

func def() Config {
	return Config{
		DSLDir:   "dsl",
		EnumsDir: "",

		Format:    "json",
		LogLevel:  "info",
		LogFormat: "console",

		FailOnIssues: true,
	}
}

// Default returns the built-in configuration.
func Default() Config { return def() }

func loadJSON(path string) (Config, error) {
	c := def()
	b, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, err
	}
	return c, nil
}

func getenv(k, fallback string) string {
	if v, ok := os.LookupEnv(k); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(k string, fallback bool) bool {
	if v, ok := os.LookupEnv(k); ok {
		v = strings.TrimSpace(strings.ToLower(v))
		if v == "1" || v == "true" || v == "yes" {
			return true
		}
		if v == "0" || v == "false" || v == "no" {
			return false
		}
	}
	return fallback
}

// LoadWithPath reads the JSON file at jsonPath (skipped when missing),
// then applies ADMINCFG_* environment overrides.
func LoadWithPath(jsonPath string) (Config, error) {
	cfg := def()

	if st, err := os.Stat(jsonPath); err == nil && !st.IsDir() {
		c2, err := loadJSON(jsonPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", jsonPath, err)
		}
		cfg = c2
	}

	cfg.DSLDir = getenv("ADMINCFG_DSL_DIR", cfg.DSLDir)
	cfg.EnumsDir = getenv("ADMINCFG_ENUMS_DIR", cfg.EnumsDir)
	cfg.Format = getenv("ADMINCFG_FORMAT", cfg.Format)
	cfg.LogLevel = getenv("ADMINCFG_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("ADMINCFG_LOG_FORMAT", cfg.LogFormat)
	cfg.FailOnIssues = getenvBool("ADMINCFG_FAIL_ON_ISSUES", cfg.FailOnIssues)

	cfg.Normalize()
	return cfg, cfg.Validate()
}

// Normalize trims values and lower-cases the enumerated settings.
func (c *Config) Normalize() {
	c.DSLDir = strings.TrimSpace(c.DSLDir)
	c.EnumsDir = strings.TrimSpace(c.EnumsDir)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Validate reports settings no command can work with.
func (c Config) Validate() error {
	if c.DSLDir == "" {
		return fmt.Errorf("dslDir is required")
	}
	switch c.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (allowed: json|yaml)", c.Format)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q (allowed: json|console)", c.LogFormat)
	}
	return nil
}
