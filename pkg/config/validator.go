package config

import (
	"fmt"
	"strings"

	"github.com/nodewee/ocr-hub/pkg/types"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

// ConfigValidator checks a Config and reports every problem at once
type ConfigValidator struct{}

// NewConfigValidator creates a config validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate validates the configuration
func (v *ConfigValidator) Validate(c *Config) error {
	var errors []string

	if err := v.validateOCRStrategy(c); err != nil {
		errors = append(errors, err.Error())
	}
	if err := v.validateRenderers(c.Renderers); err != nil {
		errors = append(errors, err.Error())
	}
	if err := v.validateNumericValues(c); err != nil {
		errors = append(errors, err.Error())
	}
	if err := v.validateLogLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if strings.TrimSpace(c.Language) == "" {
		errors = append(errors, "language must not be empty")
	}

	if len(errors) > 0 {
		return utils.NewValidationError("configuration validation failed",
			fmt.Errorf("validation errors: %s", strings.Join(errors, "; ")))
	}

	return nil
}

// validateOCRStrategy checks the engine name and its required settings
func (v *ConfigValidator) validateOCRStrategy(c *Config) error {
	validStrategies := []types.OCRStrategy{
		types.OCRStrategyAuto,
		types.OCRStrategyTesseract,
		types.OCRStrategyTesseractCLI,
		types.OCRStrategySuryaOCR,
		types.OCRStrategyLLMCaller,
	}

	for _, valid := range validStrategies {
		if c.OCRStrategy == valid {
			if valid == types.OCRStrategyLLMCaller && c.LLMTemplate == "" {
				return fmt.Errorf("llm_template is required when using the llm-caller engine")
			}
			return nil
		}
	}

	return fmt.Errorf("invalid OCR engine: %s", c.OCRStrategy)
}

// validateRenderers checks the rasterizer fallback order
func (v *ConfigValidator) validateRenderers(renderers []string) error {
	if len(renderers) == 0 {
		return fmt.Errorf("at least one renderer is required")
	}

	seen := make(map[string]bool, len(renderers))
	for _, name := range renderers {
		switch name {
		case RendererFitz, RendererPdftoppm, RendererGhostscript:
		default:
			return fmt.Errorf("invalid renderer: %s", name)
		}
		if seen[name] {
			return fmt.Errorf("duplicate renderer: %s", name)
		}
		seen[name] = true
	}
	return nil
}

// validateNumericValues checks numeric settings
func (v *ConfigValidator) validateNumericValues(c *Config) error {
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// validateLogLevel checks the log level name
func (v *ConfigValidator) validateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}

	for _, valid := range validLevels {
		if strings.ToLower(level) == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid log level: %s", level)
}
