package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pdfbench/pdfbench/pkg/utils"
)

// ConfigValidator checks that a Config is usable before a run starts.
type ConfigValidator struct{}

// NewConfigValidator creates a config validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate verifies the configuration
func (v *ConfigValidator) Validate(c *Config) error {
	var errs []string

	if err := v.validateGrobidURL(c.GrobidURL); err != nil {
		errs = append(errs, err.Error())
	}
	if err := v.validateNumericValues(c); err != nil {
		errs = append(errs, err.Error())
	}
	if err := v.validateLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return utils.NewValidationError("configuration validation failed",
			fmt.Errorf("validation errors: %s", strings.Join(errs, "; ")))
	}
	return nil
}

func (v *ConfigValidator) validateGrobidURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("grobid_url must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("grobid_url %q is not a valid URL", raw)
	}
	return nil
}

func (v *ConfigValidator) validateNumericValues(c *Config) error {
	if c.OCRDPI < 72 || c.OCRDPI > 1200 {
		return fmt.Errorf("ocr_dpi must be between 72 and 1200, got %d", c.OCRDPI)
	}
	if c.LayoutTolerance <= 0 {
		return fmt.Errorf("layout_tolerance must be positive, got %g", c.LayoutTolerance)
	}
	if c.MarkupTimeoutSec <= 0 {
		return fmt.Errorf("markup_timeout_sec must be positive, got %d", c.MarkupTimeoutSec)
	}
	if c.MaxPreviewChunks < 1 {
		return fmt.Errorf("max_preview_chunks must be at least 1, got %d", c.MaxPreviewChunks)
	}
	return nil
}

func (v *ConfigValidator) validateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level %q (valid: debug, info, warn, error)", level)
}
