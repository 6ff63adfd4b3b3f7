package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")
	ErrConfigFileExists  = fmt.Errorf("config file already exists")

	// Settings validation errors.
	ErrHTTPTimeoutNegative = fmt.Errorf("http_timeout cannot be negative")
	ErrAttemptsInvalid     = fmt.Errorf("attempts must be at least 1")
	ErrMaxParallelNegative = fmt.Errorf("max_parallel cannot be negative")
	ErrRateLimitNegative   = fmt.Errorf("rate_limit cannot be negative")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat    = fmt.Errorf("invalid log format")
	ErrNoMirrors           = fmt.Errorf("no mirrors configured")
	ErrUnknownConfigKey    = fmt.Errorf("unknown configuration key")
	ErrInvalidBoolValue    = fmt.Errorf("invalid boolean value")

	// Filesystem errors.
	ErrInvalidPath = fmt.Errorf("invalid path")
	ErrEmptyPaths  = fmt.Errorf("source and destination paths cannot be empty")

	// Batch errors.
	ErrDownloadFailed = fmt.Errorf("download failed")
	ErrNoDates        = fmt.Errorf("no dates selected")
	ErrInvalidDate    = fmt.Errorf("invalid date")
	ErrUnknownProduct = fmt.Errorf("unknown product type")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrNoMirrorsForProduct is a helper to create a wrapped error naming the product without mirrors.
func ErrNoMirrorsForProduct(product string) error {
	return fmt.Errorf("product '%s': %w", product, ErrNoMirrors)
}

// ErrUnknownProductWithName creates an error for a product name that is not recognised.
func ErrUnknownProductWithName(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownProduct, name)
}
