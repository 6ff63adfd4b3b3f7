// Package config provides configuration management for gnssget.
// It handles loading, validating and saving the YAML settings file: general
// settings, per-product archive mirrors and agencies, and inline
// hook scripts. A missing file yields the defaults.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/gnssget/internal/logger"
	"github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/fsutil"
	"github.com/glorpus-work/gnssget/pkg/hooks"
	"github.com/glorpus-work/gnssget/pkg/product"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings `yaml:"settings"`
	Products Products `yaml:"products"`

	// Hooks maps a hook type to an inline Tengo script. Scripts found in
	// Settings.HooksDir take precedence.
	Hooks map[string]string `yaml:"hooks,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	OutputDir string `yaml:"output_dir"` // product directories are created below this
	TempDir   string `yaml:"temp_dir"`   // failure logs live here

	// Network settings
	MaxParallel int           `yaml:"max_parallel"` // 0 means max(1, NumCPU/2)
	VerifyTLS   bool          `yaml:"verify_tls"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Attempts    int           `yaml:"attempts"`
	UserAgent   string        `yaml:"user_agent"`
	RateLimit   int           `yaml:"rate_limit"` // requests per second, 0 = unlimited

	LogLevel    string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat   string `yaml:"log_format"` // text or json
	LegacyNames bool   `yaml:"legacy_names"`
	HooksDir    string `yaml:"hooks_dir,omitempty"`
}

// ProductConfig holds where a product comes from and where it goes.
type ProductConfig struct {
	Dir      string   `yaml:"dir"`
	LogFile  string   `yaml:"log_file"`
	Agencies []string `yaml:"agencies,omitempty"`
	Mirrors  []string `yaml:"mirrors"`
}

// Products holds one ProductConfig per product type.
type Products struct {
	CLK   ProductConfig `yaml:"clk"`
	SP3   ProductConfig `yaml:"sp3"`
	IONEX ProductConfig `yaml:"ionex"`
	RINEX ProductConfig `yaml:"rinex"`
}

// Default configuration values.
const (
	DefaultOutputDir   = "."
	DefaultTempDir     = "TEMP"
	DefaultHTTPTimeout = 60 * time.Second
	DefaultAttempts    = 3
	DefaultUserAgent   = "gnssget/1.0"

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// Default archive roots.
const (
	CDDISProducts = "https://cddis.nasa.gov/archive/gnss/products"
	CDDISIonex    = "https://cddis.nasa.gov/archive/gnss/products/ionex"
	GarnerRINEX   = "https://garner.ucsd.edu/archive/garner/rinex"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			OutputDir:   DefaultOutputDir,
			TempDir:     DefaultTempDir,
			HTTPTimeout: DefaultHTTPTimeout,
			Attempts:    DefaultAttempts,
			UserAgent:   DefaultUserAgent,
			LogLevel:    "info",
			LogFormat:   string(logger.FormatText),
		},
		Products: defaultProducts(),
	}
}

func defaultProducts() Products {
	return Products{
		CLK:   ProductConfig{Dir: "CLK", LogFile: "download_clk.log", Agencies: []string{"igs"}, Mirrors: []string{CDDISProducts}},
		SP3:   ProductConfig{Dir: "SP3", LogFile: "download_sp3.log", Agencies: []string{"igs"}, Mirrors: []string{CDDISProducts}},
		IONEX: ProductConfig{Dir: "ION", LogFile: "download_ionex.log", Agencies: []string{"igs", "ckm"}, Mirrors: []string{CDDISIonex}},
		RINEX: ProductConfig{Dir: "RNX", LogFile: "download_rinex.log", Mirrors: []string{GarnerRINEX}},
	}
}

// Product returns the configuration of product type t.
func (c *Config) Product(t product.Type) (*ProductConfig, error) {
	switch t {
	case product.CLK:
		return &c.Products.CLK, nil
	case product.SP3:
		return &c.Products.SP3, nil
	case product.IONEX:
		return &c.Products.IONEX, nil
	case product.RINEX:
		return &c.Products.RINEX, nil
	default:
		return nil, errors.ErrUnknownProductWithName(string(t))
	}
}

// LoadConfig loads configuration from a file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Config file not found, using defaults", logger.Fields{"path": absPath})
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig atomically writes the configuration to path.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	data, err := c.ToYAML()
	if err != nil {
		return err
	}

	// The file may carry hook scripts.
	if err := fsutil.WriteFileAtomic(absPath, data, fsutil.FileModeSecure); err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return buf.Bytes(), nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSettings(c.Settings); err != nil {
		return err
	}
	for _, t := range product.Types() {
		p, _ := c.Product(t)
		if len(p.Mirrors) == 0 {
			return errors.ErrNoMirrorsForProduct(string(t))
		}
	}
	for name := range c.Hooks {
		if !hooks.HookType(name).Valid() {
			return errors.Wrapf(errors.ErrConfigValidation, "unknown hook type %q", name)
		}
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.Attempts < 1 {
		return errors.ErrAttemptsInvalid
	}
	if s.MaxParallel < 0 {
		return errors.ErrMaxParallelNegative
	}
	if s.RateLimit < 0 {
		return errors.ErrRateLimitNegative
	}
	if _, ok := logger.ParseLevel(s.LogLevel); !ok {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	if _, ok := logger.ParseFormat(s.LogFormat); !ok {
		return fmt.Errorf("%w: '%s', must be text or json", errors.ErrInvalidLogFormat, s.LogFormat)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	path, err := fsutil.GetDefaultConfigPath()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return path, nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.OutputDir == "" {
		c.Settings.OutputDir = defaults.Settings.OutputDir
	}
	if c.Settings.TempDir == "" {
		c.Settings.TempDir = defaults.Settings.TempDir
	}
	if c.Settings.HTTPTimeout == 0 {
		c.Settings.HTTPTimeout = defaults.Settings.HTTPTimeout
	}
	if c.Settings.Attempts == 0 {
		c.Settings.Attempts = defaults.Settings.Attempts
	}
	if c.Settings.UserAgent == "" {
		c.Settings.UserAgent = defaults.Settings.UserAgent
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}

	for _, t := range product.Types() {
		p, _ := c.Product(t)
		def, _ := defaults.Product(t)
		if p.Dir == "" {
			p.Dir = def.Dir
		}
		if p.LogFile == "" {
			p.LogFile = def.LogFile
		}
		if p.Agencies == nil {
			p.Agencies = def.Agencies
		}
		if p.Mirrors == nil {
			p.Mirrors = def.Mirrors
		}
	}
}
