package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/ripple/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "ripple.json"

	// YAMLConfigFileName is the name of the YAML configuration file. It is
	// used when no ConfigFileName exists.
	YAMLConfigFileName = "ripple.yaml"

	// DefaultFrameRate is the default number of paint opportunities per
	// second.
	DefaultFrameRate = 60

	// DefaultMaxFlushRounds is the default bound on update rounds per flush.
	DefaultMaxFlushRounds = 64

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "ripple"

	// DefaultMetricsPath is the default path metrics are served on.
	DefaultMetricsPath = "/metrics"

	// DefaultInspectorAddr is the default inspector listen address.
	DefaultInspectorAddr = "127.0.0.1:7070"

	// DefaultReservedPrefix is the default attribute prefix hydration leaves
	// untouched.
	DefaultReservedPrefix = "data-ripple"
)

// Config represents the complete ripple configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// FrameRate is the number of paint opportunities per second.
	FrameRate int `json:"frameRate,omitempty" yaml:"frameRate,omitempty"`

	// MaxFlushRounds bounds the update rounds of a single flush.
	MaxFlushRounds int `json:"maxFlushRounds,omitempty" yaml:"maxFlushRounds,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Inspector contains development inspector configuration.
	Inspector InspectorConfig `json:"inspector,omitempty" yaml:"inspector,omitempty"`

	// Hydration contains hydration configuration.
	Hydration HydrationConfig `json:"hydration,omitempty" yaml:"hydration,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Enabled registers the runtime collectors.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Path is the inspector path metrics are served on.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// InspectorConfig contains development inspector configuration.
type InspectorConfig struct {
	// Enabled starts the inspector.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Addr is the listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`
}

// HydrationConfig contains hydration configuration.
type HydrationConfig struct {
	// ReservedPrefix marks attributes left as they are in existing markup.
	ReservedPrefix string `json:"reservedPrefix,omitempty" yaml:"reservedPrefix,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		FrameRate:      DefaultFrameRate,
		MaxFlushRounds: DefaultMaxFlushRounds,
		LogLevel:       DefaultLogLevel,
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
			Path:      DefaultMetricsPath,
		},
		Inspector: InspectorConfig{
			Addr: DefaultInspectorAddr,
		},
		Hydration: HydrationConfig{
			ReservedPrefix: DefaultReservedPrefix,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for ripple.json, then ripple.yaml, in the directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if yamlPath := filepath.Join(dir, YAMLConfigFileName); fileExists(yamlPath) {
			path = yamlPath
		}
	}
	return LoadFile(path)
}

// LoadFile reads configuration from the specified file path. The format
// is chosen by extension.
func LoadFile(path string) (*Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E022").WithDetail("no %s found in %s", filepath.Base(path), filepath.Dir(path))
		}
		return nil, errors.New("E020").Wrap(err)
	}

	cfg := New()
	if err := format.unmarshal(data, cfg); err != nil {
		return nil, errors.New("E020").
			WithDetail("failed to parse %s: %v", filepath.Base(path), err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid " + format.name)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path in the format
// matching its extension.
func (c *Config) SaveTo(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}
	data, err := format.marshal(c)
	if err != nil {
		return errors.New("E020").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E020").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in zero values after loading.
func (c *Config) applyDefaults() {
	if c.FrameRate == 0 {
		c.FrameRate = DefaultFrameRate
	}
	if c.MaxFlushRounds == 0 {
		c.MaxFlushRounds = DefaultMaxFlushRounds
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Inspector.Addr == "" {
		c.Inspector.Addr = DefaultInspectorAddr
	}
	if c.Hydration.ReservedPrefix == "" {
		c.Hydration.ReservedPrefix = DefaultReservedPrefix
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.FrameRate <= 0 {
		return errors.New("E020").WithDetail("frameRate must be positive, got %d", c.FrameRate)
	}
	if c.MaxFlushRounds <= 0 {
		return errors.New("E020").WithDetail("maxFlushRounds must be positive, got %d", c.MaxFlushRounds)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E020").WithDetail("metrics.path must start with /, got %q", c.Metrics.Path)
	}
	return nil
}

// SlogLevel returns LogLevel as a slog.Level. Unknown levels map to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.New("E020").WithDetail("logLevel %q", s).Wrap(err)
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	return fileExists(filepath.Join(dir, ConfigFileName)) ||
		fileExists(filepath.Join(dir, YAMLConfigFileName))
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing the config file, or an error if not
// found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E022").WithDetail("no config in %s or any parent directory", startDir)
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent holding a config file.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// Formats
// =============================================================================

type format struct {
	name      string
	unmarshal func([]byte, any) error
	marshal   func(any) ([]byte, error)
}

var (
	jsonFormat = format{
		name:      "JSON",
		unmarshal: json.Unmarshal,
		marshal: func(v any) ([]byte, error) {
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return nil, err
			}
			return append(data, '\n'), nil
		},
	}
	yamlFormat = format{
		name:      "YAML",
		unmarshal: yaml.Unmarshal,
		marshal:   yaml.Marshal,
	}
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return jsonFormat, nil
	case ".yaml", ".yml":
		return yamlFormat, nil
	default:
		return format{}, errors.New("E021").WithDetail("%s", path)
	}
}
