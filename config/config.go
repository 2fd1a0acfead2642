package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/trylite/observe"
	"github.com/jonwraymond/trylite/resilience"
)

// Config is the configuration of the trylite driver.
type Config struct {
	Retry   RetryConfig    `yaml:"retry"`
	Demo    DemoConfig     `yaml:"demo"`
	Observe observe.Config `yaml:"observe"`
}

// RetryConfig holds the backoff parameters.
type RetryConfig struct {
	PolicyName     string   `yaml:"policy"` // backoff|exponential
	MaxRetries     int      `yaml:"max_retries"`
	BaseUnit       Duration `yaml:"base_unit"`
	MaxDelay       Duration `yaml:"max_delay"`       // zero means uncapped
	AttemptTimeout Duration `yaml:"attempt_timeout"` // zero disables
}

// Policy builds the backoff policy described by r.
func (r RetryConfig) Policy() *resilience.BackoffPolicy {
	opts := []resilience.BackoffOption{resilience.WithBaseUnit(r.BaseUnit.Duration())}
	if r.MaxDelay > 0 {
		opts = append(opts, resilience.WithMaxDelay(r.MaxDelay.Duration()))
	}
	return resilience.NewBackoffPolicy(r.MaxRetries, opts...)
}

// RetryPolicy builds the policy named by r.PolicyName. The exponential
// policy is stateful, so call RetryPolicy once per invocation.
func (r RetryConfig) RetryPolicy() resilience.RetryPolicy {
	if r.PolicyName == PolicyExponential {
		return resilience.NewExponentialBackOffPolicy(r.BaseUnit.Duration(), r.MaxDelay.Duration(), r.MaxRetries)
	}
	return r.Policy()
}

// DemoConfig drives the simulated operation run by `trylite run`.
type DemoConfig struct {
	Strategy    string  `yaml:"strategy"`
	FailureRate float64 `yaml:"failure_rate"`
	Runs        int     `yaml:"runs"`
	Concurrency int     `yaml:"concurrency"`
	Seed        int64   `yaml:"seed"`
	Message     string  `yaml:"message"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Retry: RetryConfig{
			PolicyName: PolicyBackoff,
			MaxRetries: 3,
			BaseUnit:   Duration(resilience.DefaultBaseUnit),
		},
		Demo: DemoConfig{
			Strategy:    "retry",
			FailureRate: 0.5,
			Runs:        1,
			Concurrency: 1,
			Message:     "Operation failed",
		},
		Observe: observe.Config{
			ServiceName: "trylite",
			Logging: observe.LoggingConfig{
				Enabled: true,
				Level:   "info",
				Format:  "console",
			},
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !slices.Contains(ValidPolicies, c.Retry.PolicyName) {
		return fmt.Errorf("%w: unknown policy %q", ErrInvalidRetry, c.Retry.PolicyName)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0, got %d", ErrInvalidRetry, c.Retry.MaxRetries)
	}
	if c.Retry.BaseUnit <= 0 {
		return fmt.Errorf("%w: base_unit must be positive, got %s", ErrInvalidRetry, c.Retry.BaseUnit.Duration())
	}
	if c.Retry.MaxDelay < 0 || c.Retry.AttemptTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidRetry)
	}

	if !slices.Contains(ValidStrategies, c.Demo.Strategy) {
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidDemo, c.Demo.Strategy)
	}
	if c.Demo.FailureRate < 0 || c.Demo.FailureRate > 1 {
		return fmt.Errorf("%w: failure_rate must be between 0 and 1, got %g", ErrInvalidDemo, c.Demo.FailureRate)
	}
	if c.Demo.Runs < 1 || c.Demo.Concurrency < 1 {
		return fmt.Errorf("%w: runs and concurrency must be >= 1", ErrInvalidDemo)
	}

	return c.Observe.Validate()
}

type loadOptions struct {
	envFiles  []string
	lookupEnv func(string) (string, bool)
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithEnvFiles sets the dotenv files read before expansion. Defaults to
// ".env". Missing files are skipped.
func WithEnvFiles(files ...string) LoadOption {
	return func(o *loadOptions) {
		o.envFiles = files
	}
}

// WithLookupEnv replaces os.LookupEnv for expansion and overrides.
func WithLookupEnv(fn func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.lookupEnv = fn
		}
	}
}

// Load reads the YAML file at path on top of Default, expanding ${VAR}
// references strictly, then applies the TRYLITE_* overrides and validates
// the result. An empty path skips the file.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{envFiles: []string{".env"}, lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	if err := LoadEnvFiles(o.envFiles...); err != nil {
		return nil, err
	}

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}

		expanded, err := ExpandEnvStrict(string(data), o.lookupEnv)
		if err != nil {
			return nil, err
		}

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(o.lookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFiles loads dotenv files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMaxRetries); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvMaxRetries, v)
		}
		c.Retry.MaxRetries = n
	}

	if v, ok := lookup(EnvBaseUnit); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvBaseUnit, v)
		}
		c.Retry.BaseUnit = Duration(d)
	}

	if v, ok := lookup(EnvRetryPolicy); ok && v != "" {
		c.Retry.PolicyName = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Observe.Logging.Enabled = true
		c.Observe.Logging.Level = v
	}
	return nil
}
