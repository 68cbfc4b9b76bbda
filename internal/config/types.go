package config

import "time"

// ConcurConfig represents the concur configuration file structure
type ConcurConfig struct {
	// Defaults contains settings shared by every command
	Defaults DefaultsConfig `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// CPU configures the CPU-bound workload
	CPU CPUConfig `yaml:"cpu,omitempty" json:"cpu,omitempty"`

	// IO configures the I/O-bound workload
	IO IOConfig `yaml:"io,omitempty" json:"io,omitempty"`
}

// DefaultsConfig contains default configuration values
type DefaultsConfig struct {
	// Workers is the worker count for the threaded and process strategies
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`

	// Timeout bounds a whole command; zero means no limit
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`

	// OutputFormat is the default output format (table, json, yaml)
	OutputFormat string `yaml:"outputFormat,omitempty" json:"outputFormat,omitempty"`

	// NoColor disables colored output
	NoColor bool `yaml:"noColor,omitempty" json:"noColor,omitempty"`

	// Strategy is the comma separated list of strategies to run
	Strategy string `yaml:"strategy,omitempty" json:"strategy,omitempty"`
}

// CPUConfig configures the n^n workload
type CPUConfig struct {
	// Start is the first n
	Start int `yaml:"start,omitempty" json:"start,omitempty"`

	// Count is how many consecutive n to compute
	Count int `yaml:"count,omitempty" json:"count,omitempty"`
}

// IOConfig configures the summary workload and the quotes command
type IOConfig struct {
	APIURL    string `yaml:"apiURL,omitempty" json:"apiURL,omitempty"`
	WikiURL   string `yaml:"wikiURL,omitempty" json:"wikiURL,omitempty"`
	QuotesURL string `yaml:"quotesURL,omitempty" json:"quotesURL,omitempty"`

	// OutputDir receives one <name>.txt per character
	OutputDir string `yaml:"outputDir,omitempty" json:"outputDir,omitempty"`

	// Characters, when set, replaces the character list fetched from the API
	Characters []string `yaml:"characters,omitempty" json:"characters,omitempty"`

	// HTTPTimeout bounds each request
	HTTPTimeout time.Duration `yaml:"httpTimeout,omitempty" json:"httpTimeout,omitempty"`
}
