package config

import "errors"

var (
	// ErrConfigNotFound indicates the config file does not exist.
	ErrConfigNotFound = errors.New("config: file not found")

	// ErrMissingEnv indicates a ${VAR} reference to an unset variable.
	ErrMissingEnv = errors.New("config: missing required environment variables")

	// ErrInvalidEnv indicates an override variable that cannot be parsed.
	ErrInvalidEnv = errors.New("config: invalid environment override")

	// ErrInvalidRetry indicates an out-of-range retry setting.
	ErrInvalidRetry = errors.New("config: invalid retry settings")

	// ErrInvalidDemo indicates an out-of-range demo setting.
	ErrInvalidDemo = errors.New("config: invalid demo settings")
)

// Environment overrides applied after the file is parsed.
const (
	EnvMaxRetries  = "TRYLITE_MAX_RETRIES"
	EnvBaseUnit    = "TRYLITE_BASE_UNIT"
	EnvRetryPolicy = "TRYLITE_RETRY_POLICY"
	EnvLogLevel    = "TRYLITE_LOG_LEVEL"
)

// Retry policy names.
const (
	PolicyBackoff     = "backoff"     // base unit x 2^attempt
	PolicyExponential = "exponential" // cenkalti/backoff ExponentialBackOff
)

// ValidPolicies lists the retry policy names accepted in retry.policy.
var ValidPolicies = []string{PolicyBackoff, PolicyExponential}

// ValidStrategies lists the strategy names accepted by the demo driver.
var ValidStrategies = []string{"plain", "retry", "classify", "fallback"}
