// Package config provides configuration management for the battler engine.
//
// This package handles environment variable loading with type-safe parsing,
// applies secure production defaults, performs validation of all
// configuration values, and translates operator-facing settings into a
// battle.EngineConfig for NewBattle.
//
// # Loading Configuration
//
// Configuration is loaded from environment variables with the BATTLER_
// prefix:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
// Control surface:
//   - BATTLER_PORT: HTTP port (default: 8080)
//   - BATTLER_LOG_LEVEL: Logging verbosity (default: "info")
//   - BATTLER_DEV_MODE: Enable development mode (default: true)
//   - BATTLER_ALLOWED_ORIGINS: CORS/WebSocket allowed origins (comma-separated)
//   - BATTLER_MAX_REQUEST_SIZE: Maximum request body size (default: 1MB)
//   - BATTLER_REQUEST_TIMEOUT: HTTP request timeout (default: 30s)
//   - BATTLER_SESSION_TIMEOUT: Session inactivity timeout (default: 30m)
//
// Rate limiting:
//   - BATTLER_RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - BATTLER_RATE_LIMIT_RPS: Requests per second (default: 5)
//   - BATTLER_RATE_LIMIT_BURST: Burst allowance (default: 10)
//   - BATTLER_RATE_LIMIT_CLEANUP_INTERVAL: Limiter cleanup cadence (default: 1m)
//
// Retry policy, used when loading/reloading the data catalog:
//   - BATTLER_RETRY_ENABLED: Enable retry (default: true)
//   - BATTLER_RETRY_MAX_ATTEMPTS: Maximum retries (default: 3)
//   - BATTLER_RETRY_INITIAL_DELAY: First retry delay (default: 100ms)
//   - BATTLER_RETRY_MAX_DELAY: Maximum retry delay (default: 5s)
//   - BATTLER_RETRY_BACKOFF_MULTIPLIER: Backoff factor (default: 2.0)
//   - BATTLER_RETRY_JITTER_PERCENT: Jitter percentage (default: 10)
//
// Battle engine:
//   - BATTLER_SEED: PRNG seed (default: 1)
//   - BATTLER_DAMAGE_RANDOMIZATION: "randomized", "min", or "max" (default: "randomized")
//   - BATTLER_VALIDATE_TEAMS: Validate teams before battle start (default: true)
//   - BATTLER_INFINITE_BAG: Unlimited item use (default: false)
//   - BATTLER_PROGRAM_CACHE_CAPACITY: Parsed-program cache size (default: battle.DefaultProgramCacheCapacity)
//   - BATTLER_DATA_DIR: Data catalog directory (default: "./data")
//   - BATTLER_TEST_CASE_DIR: Deterministic test-case directory (default: "./testdata")
//
// # Validation
//
// All configuration values are validated on load: port range, log level
// enum, timeout minimums, rate-limit and retry sanity, the damage
// randomization enum, and the program cache capacity floor.
//
// # CORS/WebSocket origin checks
//
// Use OriginAllowed to check WebSocket origins:
//
//	if cfg.OriginAllowed(origin) {
//	    // Allow connection
//	}
//
// In development mode (EnableDevMode=true), all origins are allowed.
//
// # Retry Configuration
//
// GetRetryConfig returns a retry.RetryConfig that can be used directly
// with the retry package:
//
//	retryConfig := cfg.GetRetryConfig()
//	retrier := retry.NewRetrier(retryConfig)
//
// # Battle Engine Configuration
//
// BattleConfig translates this config into a battle.EngineConfig:
//
//	engine := battle.NewBattle(cfg.BattleConfig())
package config
