package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "reactor.json"

	// DefaultMaxFlushRuns bounds the node runs of a single flush.
	DefaultMaxFlushRuns = 10000

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "reactor"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "reactor"

	// DefaultInspectAddr is the default address of the inspect server.
	DefaultInspectAddr = "localhost:7070"

	// DefaultInitialLength is the default number of counters in the list demo.
	DefaultInitialLength = 3
)

// yamlFileNames are tried, in order, when no JSON file is present.
var yamlFileNames = []string{"reactor.yaml", "reactor.yml"}

// Config represents the complete reactor configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Runtime configures the reactive runtime.
	Runtime RuntimeConfig `json:"runtime,omitempty" yaml:"runtime,omitempty"`

	// Log configures structured logging.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// Telemetry configures metrics and tracing.
	Telemetry TelemetryConfig `json:"telemetry,omitempty" yaml:"telemetry,omitempty"`

	// Inspect configures the inspect HTTP server.
	Inspect InspectConfig `json:"inspect,omitempty" yaml:"inspect,omitempty"`

	// Demo configures the bundled demo application.
	Demo DemoConfig `json:"demo,omitempty" yaml:"demo,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig configures a reactive runtime.
type RuntimeConfig struct {
	// MaxFlushRuns is the number of node runs after which a single flush
	// is treated as a cycle.
	MaxFlushRuns int `json:"maxFlushRuns,omitempty" yaml:"maxFlushRuns,omitempty"`

	// Debug enables debug-level logging of scheduler decisions.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// TelemetryConfig configures metrics and tracing observers.
type TelemetryConfig struct {
	Namespace  string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
	Metrics    bool   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Tracing    bool   `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// InspectConfig configures the inspect HTTP server.
type InspectConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// DemoConfig configures the demo application.
type DemoConfig struct {
	// InitialLength is the number of counters the dynamic list starts with.
	InitialLength int `json:"initialLength,omitempty" yaml:"initialLength,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			MaxFlushRuns: DefaultMaxFlushRuns,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			Namespace:  DefaultNamespace,
			TracerName: DefaultTracerName,
			Metrics:    true,
		},
		Inspect: InspectConfig{
			Addr: DefaultInspectAddr,
		},
		Demo: DemoConfig{
			InitialLength: DefaultInitialLength,
		},
	}
}

// Load loads the configuration from dir. It tries reactor.json, then
// reactor.yaml and reactor.yml. With no file present the defaults are
// returned.
func Load(dir string) (*Config, error) {
	candidates := append([]string{ConfigFileName}, yamlFileNames...)
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile loads the configuration from a specific file. The format is
// chosen by extension: .yaml and .yml are YAML, everything else is JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail("no configuration file at " + path)
		}
		return nil, errors.New(errors.CodeConfigParse).Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path, as YAML or JSON depending on
// the extension.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults sets default values for any missing fields.
func (c *Config) applyDefaults() {
	if c.Runtime.MaxFlushRuns == 0 {
		c.Runtime.MaxFlushRuns = DefaultMaxFlushRuns
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Telemetry.Namespace == "" {
		c.Telemetry.Namespace = DefaultNamespace
	}
	if c.Telemetry.TracerName == "" {
		c.Telemetry.TracerName = DefaultTracerName
	}
	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	if c.Demo.InitialLength == 0 {
		c.Demo.InitialLength = DefaultInitialLength
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Runtime.MaxFlushRuns < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("runtime.maxFlushRuns must be positive, got %d", c.Runtime.MaxFlushRuns)
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("log.format %q is not one of text, json", c.Log.Format)
	}
	if c.Demo.InitialLength < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetailf("demo.initialLength must not be negative, got %d", c.Demo.InitialLength)
	}
	return nil
}

// SlogLevel returns the configured level, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	level, _ := parseLevel(l.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
