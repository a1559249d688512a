// Package config loads famgraph settings from code defaults, an optional YAML
// file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/famgraph/internal/kinship"
)

// Config is the complete famgraph configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Rules     RulesConfig     `yaml:"rules"`
	Validator ValidatorConfig `yaml:"validator"`
}

type DatabaseConfig struct {
	Path    string        `yaml:"path"`
	Timeout time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RulesConfig holds the relation constraints. A zero max means unlimited.
type RulesConfig struct {
	MaxParents                 int      `yaml:"maxParents"`
	MaxPartners                int      `yaml:"maxPartners"`
	ForbiddenPartnerCategories []string `yaml:"forbiddenPartnerCategories"`
}

type ValidatorConfig struct {
	BirthDateFormat string `yaml:"birthDateFormat"`
	BirthDateMin    string `yaml:"birthDateMin"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(home, ".famgraph", "famgraph.db"),
			Timeout: 5 * time.Second,
		},
		Log: LogConfig{Level: "warn", Format: "console"},
		Rules: RulesConfig{
			MaxParents:  2,
			MaxPartners: 1,
			ForbiddenPartnerCategories: []string{
				"parents", "childrens", "grandParents", "grandchildrens",
				"siblings", "spouses", "daughtersInLaw", "sonsInLaw",
				"fathersInLaw", "mothersInLaw",
			},
		},
		Validator: ValidatorConfig{
			BirthDateFormat: "2006-01-02",
			BirthDateMin:    "1000-01-01",
		},
	}
}

// Load builds the configuration. An empty path falls back to
// $FAMGRAPH_CONFIG; with neither set only defaults and environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("FAMGRAPH_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if val := os.Getenv("FAMGRAPH_DB"); val != "" {
		c.Database.Path = val
	}
	if val := os.Getenv("FAMGRAPH_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("FAMGRAPH_MAX_PARENTS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("FAMGRAPH_MAX_PARENTS: %w", err)
		}
		c.Rules.MaxParents = n
	}
	if val := os.Getenv("FAMGRAPH_MAX_PARTNERS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("FAMGRAPH_MAX_PARTNERS: %w", err)
		}
		c.Rules.MaxPartners = n
	}
	if val, ok := os.LookupEnv("FAMGRAPH_FORBIDDEN_PARTNERS"); ok {
		c.Rules.ForbiddenPartnerCategories = splitList(val)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Database.Timeout < 0 {
		errs = append(errs, errors.New("database.timeout must not be negative"))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}
	if c.Rules.MaxParents < 0 {
		errs = append(errs, errors.New("rules.maxParents must not be negative"))
	}
	if c.Rules.MaxPartners < 0 {
		errs = append(errs, errors.New("rules.maxPartners must not be negative"))
	}
	if _, err := kinship.ParseAll(c.Rules.ForbiddenPartnerCategories); err != nil {
		errs = append(errs, fmt.Errorf("rules.forbiddenPartnerCategories: %w", err))
	}
	if c.Validator.BirthDateFormat == "" {
		errs = append(errs, errors.New("validator.birthDateFormat is required"))
	} else if _, err := time.Parse(c.Validator.BirthDateFormat, c.Validator.BirthDateMin); err != nil {
		errs = append(errs, fmt.Errorf("validator.birthDateMin does not match birthDateFormat: %w", err))
	}

	return errors.Join(errs...)
}

// Forbidden returns the parsed forbidden-partner categories.
func (r RulesConfig) Forbidden() []kinship.Category {
	cats, _ := kinship.ParseAll(r.ForbiddenPartnerCategories)
	return cats
}
