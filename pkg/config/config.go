// Package config provides configuration management for the battler engine.
// It handles environment variable loading, validation, and provides secure
// defaults for running the control surface and translating operator-facing
// settings into a battle.EngineConfig.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"goldbox-rpg/pkg/battle"
	"goldbox-rpg/pkg/integration"
	"goldbox-rpg/pkg/retry"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config represents the control-surface server configuration plus the
// battle engine construction knobs from spec.md §6. All values can be set
// via environment variables (BATTLER_ prefix) or fall back to secure
// defaults. Config is thread-safe; field access during concurrent use
// should go through the getter methods or hold mu directly.
type Config struct {
	mu sync.RWMutex `json:"-"`

	// Control-surface settings.
	ServerPort     int           `json:"server_port"`
	LogLevel       string        `json:"log_level"`
	AllowedOrigins []string      `json:"allowed_origins"`
	MaxRequestSize int64         `json:"max_request_size"`
	EnableDevMode  bool          `json:"enable_dev_mode"`
	RequestTimeout time.Duration `json:"request_timeout"`
	SessionTimeout time.Duration `json:"session_timeout"`

	// Rate limiting.
	RateLimitEnabled           bool          `json:"rate_limit_enabled"`
	RateLimitRequestsPerSecond float64       `json:"rate_limit_requests_per_second"`
	RateLimitBurst             int           `json:"rate_limit_burst"`
	RateLimitCleanupInterval   time.Duration `json:"rate_limit_cleanup_interval"`

	// Retry policy (data-catalog load/reload, spec.md §1's external
	// static-data-loader collaborator).
	RetryEnabled           bool          `json:"retry_enabled"`
	RetryMaxAttempts       int           `json:"retry_max_attempts"`
	RetryInitialDelay      time.Duration `json:"retry_initial_delay"`
	RetryMaxDelay          time.Duration `json:"retry_max_delay"`
	RetryBackoffMultiplier float64       `json:"retry_backoff_multiplier"`
	RetryJitterPercent     int           `json:"retry_jitter_percent"`

	// Battle engine construction knobs (spec.md §6).
	Seed                    int64           `json:"seed"`
	BaseDamageRandomization string          `json:"base_damage_randomization"` // "randomized" | "min" | "max"
	ControlledRNG           map[string]bool `json:"controlled_rng"`
	ValidateTeams           bool            `json:"validate_teams"`
	InfiniteBag             bool            `json:"infinite_bag"`
	ProgramCacheCapacity    int             `json:"program_cache_capacity"`
	DataDir                 string          `json:"data_dir"`
	TestCaseDir             string          `json:"test_case_dir"`
}

// Load creates a Config from environment variables, applying secure
// defaults, and validates the result.
func Load() (*Config, error) {
	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"package":  "config",
	}).Debug("entering Load")

	cfg := &Config{
		ServerPort:     getEnvAsInt("BATTLER_PORT", 8080),
		LogLevel:       getEnvAsString("BATTLER_LOG_LEVEL", "info"),
		AllowedOrigins: getEnvAsStringSlice("BATTLER_ALLOWED_ORIGINS", []string{}),
		MaxRequestSize: getEnvAsInt64("BATTLER_MAX_REQUEST_SIZE", 1*1024*1024),
		EnableDevMode:  getEnvAsBool("BATTLER_DEV_MODE", true),
		RequestTimeout: getEnvAsDuration("BATTLER_REQUEST_TIMEOUT", 30*time.Second),
		SessionTimeout: getEnvAsDuration("BATTLER_SESSION_TIMEOUT", 30*time.Minute),

		RateLimitEnabled:           getEnvAsBool("BATTLER_RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSecond: getEnvAsFloat64("BATTLER_RATE_LIMIT_RPS", 5),
		RateLimitBurst:             getEnvAsInt("BATTLER_RATE_LIMIT_BURST", 10),
		RateLimitCleanupInterval:   getEnvAsDuration("BATTLER_RATE_LIMIT_CLEANUP_INTERVAL", 1*time.Minute),

		RetryEnabled:           getEnvAsBool("BATTLER_RETRY_ENABLED", true),
		RetryMaxAttempts:       getEnvAsInt("BATTLER_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay:      getEnvAsDuration("BATTLER_RETRY_INITIAL_DELAY", 100*time.Millisecond),
		RetryMaxDelay:          getEnvAsDuration("BATTLER_RETRY_MAX_DELAY", 5*time.Second),
		RetryBackoffMultiplier: getEnvAsFloat64("BATTLER_RETRY_BACKOFF_MULTIPLIER", 2.0),
		RetryJitterPercent:     getEnvAsInt("BATTLER_RETRY_JITTER_PERCENT", 10),

		Seed:                    getEnvAsInt64("BATTLER_SEED", 1),
		BaseDamageRandomization: getEnvAsString("BATTLER_DAMAGE_RANDOMIZATION", "randomized"),
		ControlledRNG:           map[string]bool{},
		ValidateTeams:           getEnvAsBool("BATTLER_VALIDATE_TEAMS", true),
		InfiniteBag:             getEnvAsBool("BATTLER_INFINITE_BAG", false),
		ProgramCacheCapacity:    getEnvAsInt("BATTLER_PROGRAM_CACHE_CAPACITY", battle.DefaultProgramCacheCapacity),
		DataDir:                 getEnvAsString("BATTLER_DATA_DIR", "./data"),
		TestCaseDir:             getEnvAsString("BATTLER_TEST_CASE_DIR", "./testdata"),
	}

	if overrideFile := getEnvAsString("BATTLER_CONFIG_FILE", ""); overrideFile != "" {
		if err := cfg.applyYAMLOverrides(overrideFile); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Load",
				"package":  "config",
				"file":     overrideFile,
				"error":    err,
			}).Error("failed to apply YAML configuration overrides")
			return nil, fmt.Errorf("applying configuration overrides from %s: %w", overrideFile, err)
		}
	}

	if err := cfg.validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Load",
			"package":  "config",
			"error":    err,
		}).Error("configuration validation failed")
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// yamlOverrides is the subset of Config an operator may override from a
// checked-in file rather than the environment, for settings that are
// awkward to express as a single env var (per-key controlled-RNG flags).
type yamlOverrides struct {
	Seed          *int64          `yaml:"seed"`
	ControlledRNG map[string]bool `yaml:"controlled_rng"`
	ValidateTeams *bool           `yaml:"validate_teams"`
	InfiniteBag   *bool           `yaml:"infinite_bag"`
	DataDir       *string         `yaml:"data_dir"`
}

// applyYAMLOverrides reads filename as YAML and layers its values on top
// of cfg's env-derived settings. The read is wrapped in the same
// circuit-breaker/retry protected config-operation path used elsewhere
// for external-boundary I/O.
func (c *Config) applyYAMLOverrides(filename string) error {
	var raw []byte
	err := integration.ExecuteConfigOperation(context.Background(), func(ctx context.Context) error {
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		raw = data
		return nil
	})
	if err != nil {
		return err
	}

	var overrides yamlOverrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	if overrides.Seed != nil {
		c.Seed = *overrides.Seed
	}
	for id, controlled := range overrides.ControlledRNG {
		c.ControlledRNG[id] = controlled
	}
	if overrides.ValidateTeams != nil {
		c.ValidateTeams = *overrides.ValidateTeams
	}
	if overrides.InfiniteBag != nil {
		c.InfiniteBag = *overrides.InfiniteBag
	}
	if overrides.DataDir != nil {
		c.DataDir = *overrides.DataDir
	}
	return nil
}

func (c *Config) validate() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.ServerPort)
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	found := false
	for _, level := range validLogLevels {
		if strings.ToLower(c.LogLevel) == level {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("log level must be one of %v, got %s", validLogLevels, c.LogLevel)
	}

	if c.SessionTimeout < time.Minute {
		return fmt.Errorf("session timeout must be at least 1 minute, got %v", c.SessionTimeout)
	}
	if c.RequestTimeout < time.Second {
		return fmt.Errorf("request timeout must be at least 1 second, got %v", c.RequestTimeout)
	}

	if c.MaxRequestSize < 1024 {
		return fmt.Errorf("max request size must be at least 1024 bytes, got %d", c.MaxRequestSize)
	}
	if !c.EnableDevMode && len(c.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed origins must be specified when dev mode is disabled")
	}

	if c.RateLimitEnabled {
		if c.RateLimitRequestsPerSecond <= 0 {
			return fmt.Errorf("rate limit requests per second must be greater than 0 when rate limiting is enabled")
		}
		if c.RateLimitBurst <= 0 {
			return fmt.Errorf("rate limit burst must be greater than 0 when rate limiting is enabled")
		}
	}

	if c.RetryEnabled {
		if c.RetryMaxAttempts < 1 {
			return fmt.Errorf("retry max attempts must be at least 1 when retry is enabled")
		}
		if c.RetryMaxDelay < c.RetryInitialDelay {
			return fmt.Errorf("retry max delay must be greater than or equal to initial delay when retry is enabled")
		}
		if c.RetryBackoffMultiplier <= 1.0 {
			return fmt.Errorf("retry backoff multiplier must be greater than 1.0 when retry is enabled")
		}
	}

	switch c.BaseDamageRandomization {
	case "randomized", "min", "max":
	default:
		return fmt.Errorf("base damage randomization must be one of randomized/min/max, got %s", c.BaseDamageRandomization)
	}

	if c.ProgramCacheCapacity < battle.DefaultProgramCacheCapacity {
		return fmt.Errorf("program cache capacity must be at least %d, got %d", battle.DefaultProgramCacheCapacity, c.ProgramCacheCapacity)
	}

	return nil
}

// OriginAllowed reports whether origin may open a control-surface
// WebSocket connection.
func (c *Config) OriginAllowed(origin string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.EnableDevMode {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// GetRetryConfig builds a retry.RetryConfig from the catalog-load retry
// settings, for use with retry.NewRetrier when loading the data catalog.
func (c *Config) GetRetryConfig() retry.RetryConfig {
	return retry.RetryConfig{
		MaxAttempts:       c.RetryMaxAttempts,
		InitialDelay:      c.RetryInitialDelay,
		MaxDelay:          c.RetryMaxDelay,
		BackoffMultiplier: c.RetryBackoffMultiplier,
		JitterMaxPercent:  c.RetryJitterPercent,
		RetryableErrors:   []error{},
	}
}

// BattleConfig translates this operator config into a battle.EngineConfig
// for NewBattle.
func (c *Config) BattleConfig() *battle.EngineConfig {
	mode := battle.RandomizationRandomized
	switch c.BaseDamageRandomization {
	case "min":
		mode = battle.RandomizationMin
	case "max":
		mode = battle.RandomizationMax
	}
	return &battle.EngineConfig{
		Seed:                     c.Seed,
		BaseDamageRandomization:  mode,
		ControlledRNG:            c.ControlledRNG,
		ValidateTeams:            c.ValidateTeams,
		InfiniteBag:              c.InfiniteBag,
		ProgramCacheCapacity:     c.ProgramCacheCapacity,
		DataDir:                  c.DataDir,
		TestCaseDir:              c.TestCaseDir,
	}
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
