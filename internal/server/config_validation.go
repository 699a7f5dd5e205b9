// config_validation.go - Startup validation of environment configuration.
//
// Validates all environment variables and configuration settings at startup
// to fail fast with clear error messages rather than runtime failures.
package server

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// ConfigValidationError represents a configuration validation error.
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ConfigValidator validates application configuration.
type ConfigValidator struct {
	errors []ConfigValidationError
}

// NewConfigValidator creates a new configuration validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		errors: make([]ConfigValidationError, 0),
	}
}

// AddError adds a validation error.
func (v *ConfigValidator) AddError(field, message string) {
	v.errors = append(v.errors, ConfigValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors.
func (v *ConfigValidator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *ConfigValidator) Errors() []ConfigValidationError {
	return v.errors
}

// ErrorString returns a formatted string of all errors.
func (v *ConfigValidator) ErrorString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, err := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidateRequired validates that a required environment variable is set.
func (v *ConfigValidator) ValidateRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		v.AddError(key, "required environment variable not set")
	}
	return value
}

// ValidateURL validates that a value is a valid URL.
func (v *ConfigValidator) ValidateURL(key, value string) {
	if value == "" {
		return // Skip validation if empty (check with ValidateRequired first)
	}

	parsed, err := url.Parse(value)
	if err != nil {
		v.AddError(key, fmt.Sprintf("invalid URL format: %v", err))
		return
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		v.AddError(key, "URL must use http or https scheme")
	}
}

// ValidatePort validates that a value is a valid port number.
func (v *ConfigValidator) ValidatePort(key, value string) {
	if value == "" {
		return
	}

	// Handle ":port" format
	portStr := strings.TrimPrefix(value, ":")

	port, err := strconv.Atoi(portStr)
	if err != nil {
		v.AddError(key, "port must be a number")
		return
	}

	if port < 1 || port > 65535 {
		v.AddError(key, "port must be between 1 and 65535")
	}
}

// ValidateEnum validates that a value is one of allowed options.
func (v *ConfigValidator) ValidateEnum(key, value string, allowed []string) {
	if value == "" {
		return
	}

	for _, opt := range allowed {
		if value == opt {
			return
		}
	}

	v.AddError(key, fmt.Sprintf("must be one of: %s (got: %s)", strings.Join(allowed, ", "), value))
}

// ValidateNonNegativeInt validates that a value is an integer >= 0.
func (v *ConfigValidator) ValidateNonNegativeInt(key, value string) {
	if value == "" {
		return
	}

	num, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		v.AddError(key, "must be a valid integer")
		return
	}

	if num < 0 {
		v.AddError(key, "must not be negative")
	}
}

// ValidateHostPort validates a "host:port" listen address.
func (v *ConfigValidator) ValidateHostPort(key, value string) {
	if value == "" {
		return
	}

	_, port, err := net.SplitHostPort(value)
	if err != nil {
		v.AddError(key, "must be host:port")
		return
	}
	v.ValidatePort(key, port)
}

// ValidateDir validates that a path names an existing directory.
func (v *ConfigValidator) ValidateDir(key, value string) {
	if value == "" {
		return
	}

	info, err := os.Stat(value)
	if err != nil {
		v.AddError(key, fmt.Sprintf("cannot access directory: %v", err))
		return
	}
	if !info.IsDir() {
		v.AddError(key, "must be a directory")
	}
}

// s3Vars must be set together or not at all.
var s3Vars = []string{"DROP_S3_ENDPOINT", "DROP_S3_ACCESS_KEY", "DROP_S3_SECRET_KEY", "DROP_S3_BUCKET"}

// ValidateAllConfiguration performs comprehensive validation of all configuration.
func ValidateAllConfiguration() error {
	v := NewConfigValidator()

	v.ValidatePort("PORT", os.Getenv("PORT"))
	v.ValidateHostPort("DROP_ADMIN_ADDR", os.Getenv("DROP_ADMIN_ADDR"))
	v.ValidateDir("DROP_ROOT", os.Getenv("DROP_ROOT"))
	v.ValidateNonNegativeInt("DROP_MAX_UPLOAD_BYTES", os.Getenv("DROP_MAX_UPLOAD_BYTES"))

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if !strings.HasPrefix(dbURL, "postgres://") && !strings.HasPrefix(dbURL, "postgresql://") {
			v.AddError("DATABASE_URL", "must be a valid PostgreSQL connection string")
		}
	}

	set := 0
	for _, key := range s3Vars {
		if os.Getenv(key) != "" {
			set++
		}
	}
	if set > 0 && set < len(s3Vars) {
		for _, key := range s3Vars {
			v.ValidateRequired(key)
		}
	}
	if endpoint := os.Getenv("DROP_S3_ENDPOINT"); strings.Contains(endpoint, "://") {
		v.ValidateURL("DROP_S3_ENDPOINT", endpoint)
	}

	v.ValidateEnum("DROP_LOG_FORMAT", os.Getenv("DROP_LOG_FORMAT"), []string{"", "json", "text"})
	v.ValidateEnum("DROP_LOG_LEVEL", os.Getenv("DROP_LOG_LEVEL"), []string{"", "debug", "info", "warn", "error"})
	v.ValidateEnum("DROP_ENV", os.Getenv("DROP_ENV"), []string{"", "development", "production", "staging"})

	if v.HasErrors() {
		return fmt.Errorf("%s", v.ErrorString())
	}

	return nil
}

// WarnOnOptionalMissingConfig logs warnings for optional but recommended config.
func WarnOnOptionalMissingConfig() {
	warnings := make([]string, 0)

	if os.Getenv("DROP_ROOT") == "" {
		warnings = append(warnings, "DROP_ROOT not set - serving the working directory")
	}

	if os.Getenv("DROP_MAX_UPLOAD_BYTES") == "" {
		warnings = append(warnings, "DROP_MAX_UPLOAD_BYTES not set - upload bodies are buffered without limit")
	}

	if os.Getenv("DROP_LOG_FORMAT") == "" {
		warnings = append(warnings, "DROP_LOG_FORMAT not set - using text format (consider 'json' for production)")
	}

	if len(warnings) > 0 {
		Info("configuration warnings", map[string]any{
			"count":    len(warnings),
			"warnings": warnings,
		})
	}
}
