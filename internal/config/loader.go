package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the optional configuration file.
// It is searched for in the current directory, then the home directory.
const ConfigFileName = ".etymscan"

// Duration wraps time.Duration so that YAML values like "45s" or
// "800ms" parse with time.ParseDuration instead of as integers.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// File mirrors the YAML layout of the .etymscan config file. All
// fields are pointers or zero-value-distinguishable so that only
// values the user actually set override defaults or flags.
type File struct {
	Crawl struct {
		StartURL     string    `yaml:"start_url"`
		Timeout      *Duration `yaml:"timeout"`
		MaxAttempts  *int      `yaml:"max_attempts"`
		RequestDelay *Duration `yaml:"request_delay"`
		DepthDelay   *Duration `yaml:"depth_delay"`
		PageBudget   *int      `yaml:"page_budget"`
		PageSize     *int      `yaml:"page_size"`
		MaxDepth     *int      `yaml:"max_depth"`
		Checkpoint   string    `yaml:"checkpoint"`
	} `yaml:"crawl"`

	Validate struct {
		SearchURL      string `yaml:"search_url"`
		Concurrency    *int   `yaml:"concurrency"`
		StrictLanguage *bool  `yaml:"strict_language"`
	} `yaml:"validate"`

	// Languages is a path to a YAML file replacing the built-in
	// language mapping table.
	Languages string `yaml:"languages"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"user_agent"`
}

// LoadConfigFile reads and parses the config file at path.
// It returns ErrConfigNotFound when the file does not exist.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &f, nil
}

// FindConfigFile searches for the config file in the current working
// directory, then the user's home directory. It returns
// ErrConfigNotFound when neither location has one.
func FindConfigFile() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		path := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", ErrConfigNotFound
}

// Apply copies the values set in the file onto c. File values sit
// between built-in defaults and CLI flags, so Apply runs after
// NewConfig and before flag binding.
func (f *File) Apply(c *Config) {
	if f.Crawl.StartURL != "" {
		c.StartURL = f.Crawl.StartURL
	}
	if f.Crawl.Timeout != nil {
		c.Timeout = time.Duration(*f.Crawl.Timeout)
	}
	if f.Crawl.MaxAttempts != nil {
		c.MaxAttempts = *f.Crawl.MaxAttempts
	}
	if f.Crawl.RequestDelay != nil {
		c.RequestDelay = time.Duration(*f.Crawl.RequestDelay)
	}
	if f.Crawl.DepthDelay != nil {
		c.DepthDelay = time.Duration(*f.Crawl.DepthDelay)
	}
	if f.Crawl.PageBudget != nil {
		c.PageBudget = *f.Crawl.PageBudget
	}
	if f.Crawl.PageSize != nil {
		c.PageSize = *f.Crawl.PageSize
	}
	if f.Crawl.MaxDepth != nil {
		c.MaxDepth = *f.Crawl.MaxDepth
	}
	if f.Crawl.Checkpoint != "" {
		c.CheckpointFile = f.Crawl.Checkpoint
	}
	if f.Validate.SearchURL != "" {
		c.SearchURL = f.Validate.SearchURL
	}
	if f.Validate.Concurrency != nil {
		c.Concurrency = *f.Validate.Concurrency
	}
	if f.Validate.StrictLanguage != nil {
		c.StrictLanguage = *f.Validate.StrictLanguage
	}
	if f.Languages != "" {
		c.LanguageFile = f.Languages
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
}
