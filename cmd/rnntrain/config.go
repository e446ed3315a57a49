package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config captures the knobs for a training run.
type Config struct {
	Data      string  `yaml:"data"`
	Labels    string  `yaml:"labels"`
	Variant   string  `yaml:"variant"`
	Classes   int     `yaml:"classes"`
	Steps     int     `yaml:"steps"`
	BatchSize int     `yaml:"batch_size"`
	Hidden    int     `yaml:"hidden"`
	Rate      float64 `yaml:"rate"`
	Iters     int     `yaml:"iters"`
	Seed      int64   `yaml:"seed"`
	Adam      bool    `yaml:"adam"`
	LogEvery  int     `yaml:"log_every"`
}

// Overrides captures values supplied on the command line.
// Zero values leave the Config unchanged.
type Overrides struct {
	Data      string
	Labels    string
	Variant   string
	Classes   int
	Steps     int
	BatchSize int
	Hidden    int
	Rate      float64
	Iters     int
	Seed      int64
	Adam      bool
	LogEvery  int
}

// DefaultConfig returns the settings used when neither a
// config file nor a flag provides a value.
func DefaultConfig() *Config {
	return &Config{
		Variant:   "predictor",
		Steps:     100,
		BatchSize: 64,
		Hidden:    32,
		Rate:      0.001,
		LogEvery:  50,
	}
}

// LoadConfig reads a YAML config on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Data != "" {
		c.Data = o.Data
	}
	if o.Labels != "" {
		c.Labels = o.Labels
	}
	if o.Variant != "" {
		c.Variant = o.Variant
	}
	if o.Classes > 0 {
		c.Classes = o.Classes
	}
	if o.Steps > 0 {
		c.Steps = o.Steps
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Hidden > 0 {
		c.Hidden = o.Hidden
	}
	if o.Rate > 0 {
		c.Rate = o.Rate
	}
	if o.Iters > 0 {
		c.Iters = o.Iters
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.Adam {
		c.Adam = true
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies that the config is runnable.
func (c *Config) Validate() error {
	if c.Data == "" {
		return errors.New("data path must be set")
	}
	switch c.Variant {
	case "autoencoder", "predictor":
	case "regressor":
		if c.Labels == "" {
			return errors.New("regressor needs a labels path")
		}
	case "classifier":
		if c.Labels == "" {
			return errors.New("classifier needs a labels path")
		}
		if c.Classes < 2 {
			return errors.Errorf("classifier needs at least 2 classes (got %d)", c.Classes)
		}
	default:
		return errors.Errorf("unknown variant: %s", c.Variant)
	}
	if c.Steps <= 0 {
		return errors.Errorf("steps must be > 0 (got %d)", c.Steps)
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.Hidden <= 0 {
		return errors.Errorf("hidden must be > 0 (got %d)", c.Hidden)
	}
	if c.Rate <= 0 {
		return errors.Errorf("rate must be > 0 (got %f)", c.Rate)
	}
	if c.Iters < 0 {
		return errors.Errorf("iters must be >= 0 (got %d)", c.Iters)
	}
	if c.LogEvery <= 0 {
		return errors.Errorf("log_every must be > 0 (got %d)", c.LogEvery)
	}
	return nil
}
