// Package config provides unified configuration loading for the weld CLI.
//
// Values are layered, lowest precedence first: built-in defaults, weld.yaml,
// WELD_* environment variables, then command-line flags that were set
// explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/weldsql/weld/compile"
	"github.com/weldsql/weld/dburl"
	"github.com/weldsql/weld/logging"
	"github.com/weldsql/weld/runner"
)

// ConfigFilenames are searched in order when no file is named explicitly.
var ConfigFilenames = []string{"weld.yaml", "weld.yml"}

// EnvPrefix is stripped from environment variables before they become keys:
// WELD_DATABASE_URL sets database_url.
const EnvPrefix = "WELD_"

// Keys understood in weld.yaml, the environment and flags.
const (
	KeyDialect       = "dialect"
	KeyDatabaseURL   = "database_url"
	KeySchemaFile    = "schema_file"
	KeyLogFormat     = "log_format"
	KeyLogLevel      = "log_level"
	KeySlowThreshold = "slow_threshold"
)

// flagKeys maps flag names that do not follow the kebab-to-snake rule.
var flagKeys = map[string]string{
	"schema": KeySchemaFile,
	"db":     KeyDatabaseURL,
}

// ErrNoDialect is returned when neither dialect nor database_url is set.
var ErrNoDialect = errors.New("no dialect configured: set dialect or database_url")

// Config holds the resolved settings.
type Config struct {
	// File is the config file that was read, or empty.
	File string `koanf:"-"`
	// Dir is the directory relative paths are resolved against.
	Dir string `koanf:"-"`

	Dialect       string        `koanf:"dialect"`
	DatabaseURL   string        `koanf:"database_url"`
	SchemaFile    string        `koanf:"schema_file"`
	LogFormat     string        `koanf:"log_format"`
	LogLevel      string        `koanf:"log_level"`
	SlowThreshold time.Duration `koanf:"slow_threshold"`
}

// Defaults returns the built-in values.
func Defaults() map[string]any {
	return map[string]any{
		KeyDialect:       "",
		KeyDatabaseURL:   "",
		KeySchemaFile:    "schema.yaml",
		KeyLogFormat:     logging.FormatText,
		KeyLogLevel:      "info",
		KeySlowThreshold: runner.DefaultSlowThreshold.String(),
	}
}

// findConfigFile returns the explicit path if given, otherwise the first
// ConfigFilenames entry present in dir.
func findConfigFile(dir, explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return explicit, nil
	}
	for _, name := range ConfigFilenames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// Load reads configuration for the project rooted at dir. cfgFile names an
// explicit config file and may be empty. flags may be nil; only flags marked
// Changed override other sources.
func Load(dir, cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	path, err := findConfigFile(dir, cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: WELD_LOG_LEVEL -> log_level
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags set on the command line
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = path
	cfg.Dir = dir
	if path != "" {
		if abs, err := filepath.Abs(path); err == nil {
			cfg.Dir = filepath.Dir(abs)
		}
	}
	cfg.DatabaseURL = expandEnvVars(cfg.DatabaseURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that can be checked without a database.
func (c *Config) Validate() error {
	if c.Dialect != "" {
		if _, err := compile.ParseSyntax(c.Dialect); err != nil {
			return fmt.Errorf("invalid %s: %w", KeyDialect, err)
		}
	}
	if c.DatabaseURL != "" {
		if _, err := dburl.InferDialectFromDBUrl(c.DatabaseURL); err != nil {
			return fmt.Errorf("invalid %s: %w", KeyDatabaseURL, err)
		}
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case logging.FormatJSON, logging.FormatPretty, logging.FormatText:
	default:
		return fmt.Errorf("invalid %s: %w: %q", KeyLogFormat, logging.ErrUnknownFormat, c.LogFormat)
	}
	if c.SlowThreshold < 0 {
		return fmt.Errorf("invalid %s: must not be negative", KeySlowThreshold)
	}
	return nil
}

// Syntax resolves the target dialect. An explicit dialect wins; otherwise it
// is inferred from database_url.
func (c *Config) Syntax() (compile.Syntax, error) {
	if c.Dialect != "" {
		return compile.ParseSyntax(c.Dialect)
	}
	if c.DatabaseURL == "" {
		return 0, ErrNoDialect
	}
	name, err := dburl.InferDialectFromDBUrl(c.DatabaseURL)
	if err != nil {
		return 0, err
	}
	return compile.ParseSyntax(name)
}

// SchemaPath returns schema_file resolved against Dir.
func (c *Config) SchemaPath() string {
	if c.SchemaFile == "" || filepath.IsAbs(c.SchemaFile) {
		return c.SchemaFile
	}
	return filepath.Join(c.Dir, c.SchemaFile)
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with its value. Unset variables are left as written.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		if val, ok := os.LookupEnv(match[2 : len(match)-1]); ok {
			return val
		}
		return match
	})
}
