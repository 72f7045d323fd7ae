package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yourusername/tennis-edge/internal/backtest"
	"github.com/yourusername/tennis-edge/internal/dataset"
	"github.com/yourusername/tennis-edge/internal/staking"
)

// CustomValidator wraps the validator with pipeline-specific rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a validator with the custom validation functions registered
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("stakemode", validateStakeMode)
	_ = v.RegisterValidation("devig", validateDevigMethod)
	_ = v.RegisterValidation("bandspec", validateBandSpec)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate runs tag-level rules plus the cross-field checks
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	}
	return false
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func validateStakeMode(fl validator.FieldLevel) bool {
	switch staking.StakeMode(fl.Field().String()) {
	case staking.StakeModeKelly, staking.StakeModeFlat:
		return true
	}
	return false
}

func validateDevigMethod(fl validator.FieldLevel) bool {
	_, err := dataset.ParseDevigMethod(fl.Field().String())
	return err == nil
}

func validateBandSpec(fl validator.FieldLevel) bool {
	_, err := backtest.ParseBands(fl.Field().String())
	return err == nil
}

// validateCrossField performs the validations tags cannot express
func validateCrossField(cfg *Config) error {
	if err := cfg.Staking.Validate(); err != nil {
		return fmt.Errorf("invalid staking config: %w", err)
	}
	if cfg.Notify.Enabled && cfg.Notify.TelegramToken == "" {
		return fmt.Errorf("notify.telegram_token is required when notifications are enabled")
	}
	if cfg.Database.Enabled {
		if cfg.Database.Host == "" || cfg.Database.Name == "" || cfg.Database.User == "" {
			return fmt.Errorf("database.host, database.name and database.user are required when persistence is enabled")
		}
	}
	if cfg.Scan.APIURL != "" && cfg.Scan.APIKey == "" {
		return fmt.Errorf("scan.api_key is required when scan.api_url is set")
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on %q", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("configuration validation failed: %s", strings.Join(messages, "; "))
}
