package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/gnssget/pkg/errors"
	"github.com/glorpus-work/gnssget/pkg/http"
	"github.com/glorpus-work/gnssget/pkg/orchestrator"
)

// SetValue sets a settings value by its YAML key, e.g. "max_parallel" or "verify_tls".
func (c *Config) SetValue(key, value string) error {
	field, ok := settingsField(reflect.ValueOf(&c.Settings).Elem(), key)
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}

	switch field.Interface().(type) {
	case string:
		field.SetString(value)
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w for %s: %s", errors.ErrInvalidBoolValue, key, value)
		}
		field.SetBool(b)
	case time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigValidation, "invalid duration for %s: %s", key, value)
		}
		field.SetInt(int64(d))
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigValidation, "invalid integer for %s: %s", key, value)
		}
		field.SetInt(int64(n))
	}
	return validateSettings(c.Settings)
}

// GetValue returns a settings value by its YAML key.
func (c *Config) GetValue(key string) (string, error) {
	field, ok := settingsField(reflect.ValueOf(c.Settings), key)
	if !ok {
		return "", fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return fmt.Sprint(field.Interface()), nil
}

// ToMap returns all settings keyed by their YAML names.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	v := reflect.ValueOf(c.Settings)
	for i := 0; i < v.NumField(); i++ {
		if key := yamlKey(v.Type().Field(i)); key != "" {
			result[key] = fmt.Sprint(v.Field(i).Interface())
		}
	}
	return result
}

func settingsField(v reflect.Value, key string) (reflect.Value, bool) {
	for i := 0; i < v.NumField(); i++ {
		if yamlKey(v.Type().Field(i)) == key {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// yamlKey handles yaml tags with options, e.g. "hooks_dir,omitempty".
func yamlKey(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

// HTTPConfig returns the transport settings.
func (c *Config) HTTPConfig() http.Config {
	return http.Config{
		Timeout:   c.Settings.HTTPTimeout,
		VerifyTLS: c.Settings.VerifyTLS,
		UserAgent: c.Settings.UserAgent,
		Attempts:  c.Settings.Attempts,
		RateLimit: c.Settings.RateLimit,
	}
}

// OrchestratorConfig returns the settings shared by every batch.
func (c *Config) OrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		OutputRoot:     c.Settings.OutputDir,
		TempRoot:       c.Settings.TempDir,
		MaxParallelism: c.Settings.MaxParallel,
		LegacyNames:    c.Settings.LegacyNames,
	}
}

// Request builds a batch request for p, leaving dates to the caller.
func (p *ProductConfig) Request() orchestrator.Request {
	return orchestrator.Request{
		Agencies: append([]string(nil), p.Agencies...),
		Mirrors:  append([]string(nil), p.Mirrors...),
		Dir:      p.Dir,
		LogFile:  p.LogFile,
	}
}
