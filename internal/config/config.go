// Package config loads recordlist settings from $RECORDLIST_HOME/config.yaml,
// optional overlay files and RECORDLIST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvHome       = "RECORDLIST_HOME"
	EnvAPIURL     = "RECORDLIST_API_URL"
	EnvPageSize   = "RECORDLIST_PAGE_SIZE"
	EnvAPITimeout = "RECORDLIST_API_TIMEOUT"
	EnvLogLevel   = "RECORDLIST_LOG_LEVEL"
)

// Store backends.
const (
	BackendHTTP     = "http"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Output formats of the list and create commands.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Defaults.
const (
	DefaultAPIURL     = "http://localhost:3001"
	DefaultAPITimeout = 10 * time.Second
	DefaultPageSize   = 10
	MaxPageSize       = 100
	DefaultServerAddr = ":3001"
	DefaultSeed       = 50

	configFileName = "config.yaml"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete recordlist configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	List    ListConfig    `yaml:"list"`
	Server  ServerConfig  `yaml:"server"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig points the client commands at the remote collection.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ListConfig controls paging.
type ListConfig struct {
	PageSize int `yaml:"page_size"`
}

// ServerConfig configures the local API server and direct store access.
type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Backend string `yaml:"backend"`
	DSN     string `yaml:"dsn"`
	// Seed is the number of sample records a fresh memory backend starts with.
	Seed int `yaml:"seed"`
}

// OutputConfig holds presentation defaults.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LoggingConfig holds log settings. File is used by the interactive browser,
// which cannot log to the terminal it draws on.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultAPIURL,
			Timeout: DefaultAPITimeout,
		},
		List: ListConfig{PageSize: DefaultPageSize},
		Server: ServerConfig{
			Addr:    DefaultServerAddr,
			Backend: BackendMemory,
			Seed:    DefaultSeed,
		},
		Output: OutputConfig{DefaultFormat: FormatTable},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads path on top of the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := New()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return cfg, fmt.Errorf("parsing config %s: %w", path, err)
			}
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides cfg with RECORDLIST_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPageSize)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		cfg.List.PageSize = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPITimeout)); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAPITimeout, err)
		}
		cfg.API.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// parseTimeout accepts Go durations ("5s") and bare seconds ("5").
func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Validate reports every setting outside its allowed range.
func (c *Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.base_url %q is not an absolute URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}
	if c.List.PageSize < 1 || c.List.PageSize > MaxPageSize {
		problems = append(problems, fmt.Sprintf("list.page_size must be between 1 and %d, got %d", MaxPageSize, c.List.PageSize))
	}
	switch c.Server.Backend {
	case BackendMemory, BackendSQLite, BackendPostgres:
	default:
		problems = append(problems, fmt.Sprintf("server.backend %q must be memory, sqlite or postgres", c.Server.Backend))
	}
	if c.Server.Seed < 0 {
		problems = append(problems, "server.seed must not be negative")
	}
	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		problems = append(problems, fmt.Sprintf("output.default_format %q must be table, json or yaml", c.Output.DefaultFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// Save writes cfg as YAML to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
