// Package config has the configuration file for the app
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	Port              string
	Address           string
	Env               string
	LogLevel          string
	LogRetentionWeeks int   // Number of weeks to keep log files
	MaxRequestBody    int64 // Maximum request body size in bytes
	MaxHeaderSize     int64 // Maximum header size in bytes

	// Generator (OpenAI-compatible text completion service)
	OpenAIAPIKey         string
	OpenAIModel          string
	OpenAIBaseURL        string
	GeneratorTimeoutSecs int
	GeneratorMaxTokens   int
	GeneratorTemperature float64
	GeneratorRPM         int // Outbound requests per minute toward the generator

	// Drug vocabulary lookup service
	RxNavBaseURL string

	// In-memory drug-code cache
	CodeCacheMaxEntries int
}

// Load loads and validates configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8000"),
		Address:           getEnvWithDefault("ADDRESS", "127.0.0.1"),
		Env:               getEnvWithDefault("ENV", "dev"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogRetentionWeeks: getIntEnvWithDefault("LOG_RETENTION_WEEKS", 4),       // 4 weeks default
		MaxRequestBody:    getInt64EnvWithDefault("MAX_REQUEST_BODY", 65536),    // 64KB default, requests are small JSON bodies
		MaxHeaderSize:     getInt64EnvWithDefault("MAX_HEADER_SIZE", 1048576),   // 1MB default

		OpenAIAPIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:          getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:        getEnvWithDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		GeneratorTimeoutSecs: getIntEnvWithDefault("GENERATOR_TIMEOUT_SECONDS", 30),
		GeneratorMaxTokens:   getIntEnvWithDefault("GENERATOR_MAX_TOKENS", 600),
		GeneratorTemperature: getFloatEnvWithDefault("GENERATOR_TEMPERATURE", 0.7),
		GeneratorRPM:         getIntEnvWithDefault("GENERATOR_RPM", 60),

		RxNavBaseURL: getEnvWithDefault("RXNAV_BASE_URL", "https://rxnav.nlm.nih.gov/REST"),

		CodeCacheMaxEntries: getIntEnvWithDefault("CODE_CACHE_MAX_ENTRIES", 10000),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validateConfig validates all configuration values
func validateConfig(cfg *Config) error {
	if err := validatePort(cfg.Port); err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}

	if err := validateAddress(cfg.Address); err != nil {
		return fmt.Errorf("invalid ADDRESS: %w", err)
	}

	if err := validateEnv(cfg.Env); err != nil {
		return fmt.Errorf("invalid ENV: %w", err)
	}

	if err := validateLogLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxRequestBody, "MAX_REQUEST_BODY"); err != nil {
		return fmt.Errorf("invalid MAX_REQUEST_BODY: %w", err)
	}

	if err := validateSizeLimit(cfg.MaxHeaderSize, "MAX_HEADER_SIZE"); err != nil {
		return fmt.Errorf("invalid MAX_HEADER_SIZE: %w", err)
	}

	if err := validateLogRetentionWeeks(cfg.LogRetentionWeeks); err != nil {
		return fmt.Errorf("invalid LOG_RETENTION_WEEKS: %w", err)
	}

	if cfg.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}

	if err := validateBaseURL(cfg.OpenAIBaseURL, "OPENAI_BASE_URL"); err != nil {
		return err
	}

	if err := validateBaseURL(cfg.RxNavBaseURL, "RXNAV_BASE_URL"); err != nil {
		return err
	}

	if cfg.GeneratorTimeoutSecs < 1 || cfg.GeneratorTimeoutSecs > 300 {
		return fmt.Errorf("invalid GENERATOR_TIMEOUT_SECONDS: must be between 1 and 300, got: %d", cfg.GeneratorTimeoutSecs)
	}

	if cfg.GeneratorMaxTokens < 1 || cfg.GeneratorMaxTokens > 16384 {
		return fmt.Errorf("invalid GENERATOR_MAX_TOKENS: must be between 1 and 16384, got: %d", cfg.GeneratorMaxTokens)
	}

	if cfg.GeneratorTemperature < 0 || cfg.GeneratorTemperature > 2 {
		return fmt.Errorf("invalid GENERATOR_TEMPERATURE: must be between 0 and 2, got: %v", cfg.GeneratorTemperature)
	}

	if cfg.GeneratorRPM < 1 || cfg.GeneratorRPM > 10000 {
		return fmt.Errorf("invalid GENERATOR_RPM: must be between 1 and 10000, got: %d", cfg.GeneratorRPM)
	}

	if cfg.CodeCacheMaxEntries < 1 {
		return fmt.Errorf("invalid CODE_CACHE_MAX_ENTRIES: must be positive, got: %d", cfg.CodeCacheMaxEntries)
	}

	return nil
}

// validatePort validates the PORT environment variable
func validatePort(port string) error {
	if port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid number: %w", err)
	}

	if portNum < 1 || portNum > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Check for privileged ports
	if portNum < 1024 {
		return fmt.Errorf("PORT %d is privileged (less than 1024), use ports 1024-65535", portNum)
	}

	return nil
}

// validateAddress validates the ADDRESS environment variable
func validateAddress(address string) error {
	if address == "" {
		return fmt.Errorf("ADDRESS cannot be empty")
	}

	// Localhost/loopback addresses are acceptable for development
	if address == "127.0.0.1" || address == "::1" || address == "localhost" {
		return nil
	}

	ip := net.ParseIP(address)
	if ip == nil {
		return fmt.Errorf("ADDRESS must be a valid IP address or 'localhost', got: %s", address)
	}

	if !ip.IsLoopback() && !ip.IsPrivate() {
		return fmt.Errorf("ADDRESS %s is a public IP, consider using private network ranges for security", address)
	}

	return nil
}

// validateEnv validates the ENV environment variable
func validateEnv(env string) error {
	if env == "" {
		return fmt.Errorf("ENV cannot be empty")
	}

	validEnvs := []string{"dev", "staging", "prod", "test"}
	env = strings.ToLower(env)

	for _, validEnv := range validEnvs {
		if env == validEnv {
			return nil
		}
	}

	return fmt.Errorf("ENV must be one of: %v, got: %s", validEnvs, env)
}

// validateLogLevel validates the LOG_LEVEL environment variable
func validateLogLevel(logLevel string) error {
	if logLevel == "" {
		return fmt.Errorf("LOG_LEVEL cannot be empty")
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	logLevel = strings.ToLower(logLevel)

	for _, level := range validLevels {
		if logLevel == level {
			return nil
		}
	}

	return fmt.Errorf("LOG_LEVEL must be one of: %v, got: %s", validLevels, logLevel)
}

// validateSizeLimit validates size limit configuration values
func validateSizeLimit(size int64, configName string) error {
	if size <= 0 {
		return fmt.Errorf("%s must be positive, got: %d", configName, size)
	}

	if size > 100*1024*1024 { // 100MB
		return fmt.Errorf("%s is too large (max 100MB), got: %d bytes", configName, size)
	}

	return nil
}

// validateLogRetentionWeeks validates the LOG_RETENTION_WEEKS environment variable
func validateLogRetentionWeeks(weeks int) error {
	if weeks <= 0 {
		return fmt.Errorf("LOG_RETENTION_WEEKS must be positive, got: %d", weeks)
	}

	if weeks > 52 { // 1 year maximum
		return fmt.Errorf("LOG_RETENTION_WEEKS is too large (max 52 weeks), got: %d", weeks)
	}

	return nil
}

// validateBaseURL validates that an upstream base URL is http(s) and parseable
func validateBaseURL(raw, configName string) error {
	if raw == "" {
		return fmt.Errorf("%s cannot be empty", configName)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", configName, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https, got: %s", configName, u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("invalid %s: missing host", configName)
	}

	return nil
}

// getEnvWithDefault gets an environment variable with a default value
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnvWithDefault gets an environment variable as int with a default value
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getInt64EnvWithDefault gets an environment variable as int64 with a default value
func getInt64EnvWithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnvWithDefault gets an environment variable as float64 with a default value
func getFloatEnvWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// GetEnvVars returns a list of all expected environment variables
func GetEnvVars() []string {
	return []string{
		"PORT",
		"ADDRESS",
		"ENV",
		"LOG_LEVEL",
		"LOG_RETENTION_WEEKS",
		"MAX_REQUEST_BODY",
		"MAX_HEADER_SIZE",
		"OPENAI_API_KEY",
		"OPENAI_MODEL",
		"OPENAI_BASE_URL",
		"GENERATOR_TIMEOUT_SECONDS",
		"GENERATOR_MAX_TOKENS",
		"GENERATOR_TEMPERATURE",
		"GENERATOR_RPM",
		"RXNAV_BASE_URL",
		"CODE_CACHE_MAX_ENTRIES",
	}
}
