// Package config loads the rgc configuration from a YAML file, overridden by
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Rhymond/go-money"
	"github.com/etnz/realized"
	"github.com/etnz/realized/date"
	"github.com/etnz/realized/ingest"
	"github.com/etnz/realized/logging"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the configuration file read when none is given.
const DefaultFile = "rgc.yaml"

type Config struct {
	// Baseline holdings snapshot date and the folder holding its files.
	BaselineDate string `yaml:"baseline_date"`
	BaselineDir  string `yaml:"baseline_dir"`
	// Activities is the broker activity export, CSV or JSON.
	Activities string `yaml:"activities"`
	// Policy is lenient or strict.
	Policy string `yaml:"policy"`
	// Currency of the reports.
	Currency string       `yaml:"currency"`
	Filter   ingest.Filter `yaml:"filter"`
	// DB is the sqlite report archive.
	DB     string         `yaml:"db"`
	Listen string         `yaml:"listen"`
	Log    logging.Config `yaml:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		BaselineDir: "baseline",
		Activities:  "activities.csv",
		Policy:      realized.Lenient.String(),
		Currency:    money.USD,
		Filter:      ingest.DefaultFilter(),
		DB:          "rgc.db",
		Listen:      ":8080",
		Log:         logging.Config{Level: "info", Format: "text"},
	}
}

// Load reads the configuration in path on top of the defaults, then applies
// the environment, including a .env file in the working directory if any.
//
// A missing file is only an error if path is not the DefaultFile.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	c := Default()
	if path == "" {
		path = DefaultFile
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == DefaultFile:
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	for name, field := range map[string]*string{
		"RGC_BASELINE_DATE": &c.BaselineDate,
		"RGC_BASELINE_DIR":  &c.BaselineDir,
		"RGC_ACTIVITIES":    &c.Activities,
		"RGC_POLICY":        &c.Policy,
		"RGC_CURRENCY":      &c.Currency,
		"RGC_DB":            &c.DB,
		"RGC_LISTEN":        &c.Listen,
	} {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	c.Log = c.Log.FromEnv()
}

func (c *Config) Validate() error {
	if _, err := realized.ParsePolicy(c.Policy); err != nil {
		return fmt.Errorf("invalid policy: %w", err)
	}
	if c.BaselineDate != "" {
		if _, err := date.Parse(c.BaselineDate); err != nil {
			return fmt.Errorf("invalid baseline_date: %w", err)
		}
	}
	if money.GetCurrency(c.Currency) == nil {
		return fmt.Errorf("invalid currency %q", c.Currency)
	}
	return nil
}

// Baseline returns the parsed baseline date, zero if unset.
func (c *Config) Baseline() date.Date {
	if c.BaselineDate == "" {
		return date.Date{}
	}
	d, _ := date.Parse(c.BaselineDate)
	return d
}

// ComputePolicy returns the parsed policy.
func (c *Config) ComputePolicy() realized.Policy {
	p, _ := realized.ParsePolicy(c.Policy)
	return p
}
