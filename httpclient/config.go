// httpclient/config.go
// Description: This file contains the client configuration, its defaults and the functions to load
// and validate configuration values from a file or environment variables.
package httpclient

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/deploymenttheory/go-api-rest-client/enums"
	"github.com/deploymenttheory/go-api-rest-client/logger"
	"github.com/deploymenttheory/go-api-rest-client/version"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultLogLevelString        = "LogLevelInfo"
	DefaultLogOutputFormatString = logger.LogOutputJSON
	DefaultLogConsoleSeparator   = "	"
	DefaultHideSensitiveData     = false
	DefaultCustomTimeout         = 10 * time.Second
	DefaultEnumMode              = "auto"
)

// ConfigFileExtensions lists the configuration file formats understood by LoadConfigFromFile.
var ConfigFileExtensions = []string{".json", ".yaml", ".yml", ".toml"}

// ClientConfig holds the settings of an API client.
type ClientConfig struct {
	// BaseURL is prepended to every relative request path.
	BaseURL string `json:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	// ClientName is sent in the X-ApiClientName header.
	ClientName string `json:"client_name" mapstructure:"client_name"`

	// Log
	LogLevel            string `json:"log_level" mapstructure:"log_level"`
	LogOutputFormat     string `json:"log_output_format" mapstructure:"log_output_format" validate:"omitempty,oneof=json human-readable"` // Use "json" for JSON format, "human-readable" for console output
	LogConsoleSeparator string `json:"log_console_separator" mapstructure:"log_console_separator"`
	LogExportPath       string `json:"log_export_path" mapstructure:"log_export_path"`
	HideSensitiveData   bool   `json:"hide_sensitive_data" mapstructure:"hide_sensitive_data"`

	// Misc
	CustomTimeout time.Duration `json:"custom_timeout" mapstructure:"custom_timeout" validate:"gte=0"`
	EnumMode      string        `json:"enum_mode" mapstructure:"enum_mode"` // auto, number or string
}

// configKeys are the mapstructure keys bound to environment variables.
var configKeys = []string{
	"base_url",
	"client_name",
	"log_level",
	"log_output_format",
	"log_console_separator",
	"log_export_path",
	"hide_sensitive_data",
	"custom_timeout",
	"enum_mode",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfigFromFile loads http client configuration settings from a JSON, YAML or TOML file.
// Missing fields take their default values.
func LoadConfigFromFile(path string) (*ClientConfig, error) {
	absPath, err := validateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(absPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var config ClientConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not decode config file: %w", err)
	}

	SetDefaultValuesClientConfig(&config)

	return &config, nil
}

// LoadConfigFromEnv loads HTTP client configuration settings from environment variables named
// <PREFIX>_<KEY>, for example API_BASE_URL. The given .env files are loaded first; variables that
// are already set take precedence over them. Unset variables take their default values.
func LoadConfigFromEnv(prefix string, envFiles ...string) (*ClientConfig, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("could not load env files: %w", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("could not bind env key %s: %w", key, err)
		}
	}

	var config ClientConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("could not decode environment: %w", err)
	}

	SetDefaultValuesClientConfig(&config)

	return &config, nil
}

func validateClientConfig(config ClientConfig, populateDefaults bool) (ClientConfig, error) {
	if populateDefaults {
		SetDefaultValuesClientConfig(&config)
	}

	if err := validate.Struct(config); err != nil {
		return config, err
	}

	validLogLevels := []string{
		"LogLevelDebug",
		"LogLevelInfo",
		"LogLevelWarn",
		"LogLevelError",
		"LogLevelDPanic",
		"LogLevelPanic",
		"LogLevelFatal",
		"LogLevelNone",
	}
	if config.LogLevel != "" && !slices.Contains(validLogLevels, config.LogLevel) {
		return config, fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	if _, err := enums.ParseMode(config.EnumMode); err != nil {
		return config, err
	}

	if config.CustomTimeout < 0 {
		return config, errors.New("timeout cannot be less than 0 seconds")
	}

	return config, nil
}

// SetDefaultValuesClientConfig sets default values for the client configuration. Ensuring that all fields have a valid or minimum value.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	setDefaultString(&config.ClientName, version.GetClientName())
	setDefaultString(&config.LogLevel, DefaultLogLevelString)
	setDefaultString(&config.LogOutputFormat, DefaultLogOutputFormatString)
	setDefaultString(&config.LogConsoleSeparator, DefaultLogConsoleSeparator)
	setDefaultString(&config.EnumMode, DefaultEnumMode)
	if config.CustomTimeout == 0 {
		config.CustomTimeout = DefaultCustomTimeout
	}
}

func setDefaultString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func validateFilePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)

	absPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		return "", fmt.Errorf("unable to resolve the absolute path of the configuration file: %s, error: %w", path, err)
	}

	if strings.Contains(absPath, "..") {
		return "", fmt.Errorf("invalid path, path traversal patterns detected: %s", path)
	}

	if !slices.Contains(ConfigFileExtensions, strings.ToLower(filepath.Ext(absPath))) {
		return "", fmt.Errorf("invalid file extension for configuration file: %s, expected one of %v", path, ConfigFileExtensions)
	}

	return absPath, nil
}
