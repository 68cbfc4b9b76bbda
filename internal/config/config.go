package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aryankumar/concur/internal/output"
	"github.com/aryankumar/concur/internal/util"
)

const (
	defaultConfigName = ".concur"
	defaultConfigDir  = ".concur"
	envPrefix         = "CONCUR"
)

// Defaults used when neither the config file, the environment nor a flag sets a value
const (
	DefaultCPUStart     = 1_000_000
	DefaultCPUCount     = 8
	DefaultOutputDir    = "files"
	DefaultOutputFormat = "table"
	DefaultStrategy     = "all"
	DefaultHTTPTimeout  = 30 * time.Second

	DefaultAPIURL    = "https://www.breakingbadapi.com/api"
	DefaultWikiURL   = "https://breakingbad.fandom.com/wiki"
	DefaultQuotesURL = "https://breaking-bad-quotes.herokuapp.com/v1/quotes"
)

// keys lists every setting so environment variables apply even when the
// config file omits them
var keys = map[string]interface{}{
	"defaults.workers":      0,
	"defaults.timeout":      time.Duration(0),
	"defaults.outputFormat": DefaultOutputFormat,
	"defaults.noColor":      false,
	"defaults.strategy":     DefaultStrategy,
	"cpu.start":             DefaultCPUStart,
	"cpu.count":             DefaultCPUCount,
	"io.apiURL":             DefaultAPIURL,
	"io.wikiURL":            DefaultWikiURL,
	"io.quotesURL":          DefaultQuotesURL,
	"io.outputDir":          DefaultOutputDir,
	"io.characters":         []string{},
	"io.httpTimeout":        DefaultHTTPTimeout,
}

// Manager handles concur configuration
type Manager struct {
	configPath string
	config     *ConcurConfig
	viper      *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	v := viper.New()
	for key, value := range keys {
		v.SetDefault(key, value)
	}

	return &Manager{
		configPath: configPath,
		viper:      v,
		config:     &ConcurConfig{},
	}
}

// BindFlag makes a command-line flag override the setting at key when the flag is set
func (m *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for config key %q", key)
	}
	if _, ok := keys[key]; !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	return m.viper.BindPFlag(key, flag)
}

// BindFlags binds each key to the flag of the given name in fs
func (m *Manager) BindFlags(fs *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		if err := m.BindFlag(key, fs.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// Load loads the concur configuration from file, environment and bound flags
func (m *Manager) Load() (*ConcurConfig, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}

		// ~/.concur/.concur.yaml, then ~/.concur.yaml
		m.viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		m.viper.AddConfigPath(home)
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	// CONCUR_CPU_START overrides cpu.start
	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	m.config = &ConcurConfig{}

	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := m.viper.Unmarshal(m.config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	m.applyDefaults()

	if err := m.config.Validate(); err != nil {
		return nil, err
	}

	return m.config, nil
}

// Save writes every known setting to the config file
func (m *Manager) Save() error {
	if m.configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		m.configPath = filepath.Join(home, defaultConfigDir, defaultConfigName+".yaml")
	}

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := m.viper.WriteConfigAs(m.configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Path returns the config file in use, or "" when none was found
func (m *Manager) Path() string {
	if m.configPath != "" {
		return m.configPath
	}
	return m.viper.ConfigFileUsed()
}

// applyDefaults fills values that have no static default
func (m *Manager) applyDefaults() {
	if m.config == nil {
		return
	}

	if m.config.Defaults.Workers == 0 {
		m.config.Defaults.Workers = runtime.NumCPU()
	}
	if m.config.Defaults.OutputFormat == "" {
		m.config.Defaults.OutputFormat = DefaultOutputFormat
	}
	if m.config.Defaults.Strategy == "" {
		m.config.Defaults.Strategy = DefaultStrategy
	}
	if m.config.IO.OutputDir == "" {
		m.config.IO.OutputDir = DefaultOutputDir
	}
	if m.config.IO.HTTPTimeout == 0 {
		m.config.IO.HTTPTimeout = DefaultHTTPTimeout
	}
}

// Validate checks the configuration for values no command can run with
func (c *ConcurConfig) Validate() error {
	switch {
	case c.Defaults.Workers < 1:
		return util.NewValidationError("defaults.workers", c.Defaults.Workers, "must be at least 1")
	case c.Defaults.Timeout < 0:
		return util.NewValidationError("defaults.timeout", c.Defaults.Timeout, "must not be negative")
	case c.CPU.Count < 0:
		return util.NewValidationError("cpu.count", c.CPU.Count, "must not be negative")
	case c.CPU.Start < 0:
		return util.NewValidationError("cpu.start", c.CPU.Start, "must not be negative")
	case c.IO.HTTPTimeout < 0:
		return util.NewValidationError("io.httpTimeout", c.IO.HTTPTimeout, "must not be negative")
	}

	if !output.IsFormat(c.Defaults.OutputFormat) {
		return util.NewValidationError("defaults.outputFormat", c.Defaults.OutputFormat, "must be one of table, json, yaml")
	}

	return nil
}
