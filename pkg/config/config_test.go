package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goldbox-rpg/pkg/battle"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(t *testing.T, config *Config)
	}{
		{
			name:        "default configuration",
			envVars:     map[string]string{},
			expectError: false,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, 8080, config.ServerPort)
				assert.Equal(t, "info", config.LogLevel)
				assert.Equal(t, []string{}, config.AllowedOrigins)
				assert.Equal(t, int64(1*1024*1024), config.MaxRequestSize)
				assert.Equal(t, true, config.EnableDevMode)
				assert.Equal(t, 30*time.Second, config.RequestTimeout)
				assert.Equal(t, 30*time.Minute, config.SessionTimeout)
				assert.Equal(t, int64(1), config.Seed)
				assert.Equal(t, "randomized", config.BaseDamageRandomization)
				assert.Equal(t, true, config.ValidateTeams)
				assert.Equal(t, battle.DefaultProgramCacheCapacity, config.ProgramCacheCapacity)
			},
		},
		{
			name: "custom configuration from environment",
			envVars: map[string]string{
				"BATTLER_PORT":                 "9090",
				"BATTLER_SESSION_TIMEOUT":      "45m",
				"BATTLER_LOG_LEVEL":            "debug",
				"BATTLER_ALLOWED_ORIGINS":      "http://localhost:3000,https://example.com",
				"BATTLER_MAX_REQUEST_SIZE":     "2097152",
				"BATTLER_DEV_MODE":             "true",
				"BATTLER_REQUEST_TIMEOUT":      "45s",
				"BATTLER_SEED":                 "42",
				"BATTLER_DAMAGE_RANDOMIZATION": "max",
			},
			expectError: false,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, 9090, config.ServerPort)
				assert.Equal(t, 45*time.Minute, config.SessionTimeout)
				assert.Equal(t, "debug", config.LogLevel)
				assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, config.AllowedOrigins)
				assert.Equal(t, int64(2*1024*1024), config.MaxRequestSize)
				assert.Equal(t, true, config.EnableDevMode)
				assert.Equal(t, 45*time.Second, config.RequestTimeout)
				assert.Equal(t, int64(42), config.Seed)
				assert.Equal(t, "max", config.BaseDamageRandomization)
			},
		},
		{
			name:        "invalid port",
			envVars:     map[string]string{"BATTLER_PORT": "99999"},
			expectError: true,
		},
		{
			name:        "invalid log level",
			envVars:     map[string]string{"BATTLER_LOG_LEVEL": "invalid"},
			expectError: true,
		},
		{
			name:        "session timeout too short",
			envVars:     map[string]string{"BATTLER_SESSION_TIMEOUT": "30s"},
			expectError: true,
		},
		{
			name:        "request timeout too short",
			envVars:     map[string]string{"BATTLER_REQUEST_TIMEOUT": "500ms"},
			expectError: true,
		},
		{
			name:        "max request size too small",
			envVars:     map[string]string{"BATTLER_MAX_REQUEST_SIZE": "512"},
			expectError: true,
		},
		{
			name:        "production mode without allowed origins",
			envVars:     map[string]string{"BATTLER_DEV_MODE": "false"},
			expectError: true,
		},
		{
			name: "production mode with allowed origins",
			envVars: map[string]string{
				"BATTLER_DEV_MODE":        "false",
				"BATTLER_ALLOWED_ORIGINS": "https://production.example.com",
			},
			expectError: false,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, false, config.EnableDevMode)
				assert.Equal(t, []string{"https://production.example.com"}, config.AllowedOrigins)
			},
		},
		{
			name:        "invalid damage randomization mode",
			envVars:     map[string]string{"BATTLER_DAMAGE_RANDOMIZATION": "bogus"},
			expectError: true,
		},
		{
			name:        "program cache capacity below floor",
			envVars:     map[string]string{"BATTLER_PROGRAM_CACHE_CAPACITY": "1"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv()

			for key, value := range tt.envVars {
				os.Setenv(key, value)
				defer os.Unsetenv(key)
			}

			config, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
			} else {
				require.NoError(t, err)
				require.NotNil(t, config)
				if tt.validate != nil {
					tt.validate(t, config)
				}
			}
		})
	}
}

func TestLoadAppliesYAMLOverrides(t *testing.T) {
	clearTestEnv()

	dir := t.TempDir()
	overridePath := dir + "/overrides.yaml"
	yamlContent := "seed: 99\n" +
		"controlled_rng:\n" +
		"  confusion_damage_roll: true\n" +
		"validate_teams: false\n" +
		"infinite_bag: true\n" +
		"data_dir: ./custom-data\n"
	require.NoError(t, os.WriteFile(overridePath, []byte(yamlContent), 0644))

	os.Setenv("BATTLER_CONFIG_FILE", overridePath)
	defer os.Unsetenv("BATTLER_CONFIG_FILE")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, true, cfg.ControlledRNG["confusion_damage_roll"])
	assert.Equal(t, false, cfg.ValidateTeams)
	assert.Equal(t, true, cfg.InfiniteBag)
	assert.Equal(t, "./custom-data", cfg.DataDir)
}

func TestLoadFailsOnMissingYAMLOverrideFile(t *testing.T) {
	clearTestEnv()

	os.Setenv("BATTLER_CONFIG_FILE", "/nonexistent/overrides.yaml")
	defer os.Unsetenv("BATTLER_CONFIG_FILE")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestConfig_OriginAllowed(t *testing.T) {
	tests := []struct {
		name           string
		config         *Config
		origin         string
		expectedResult bool
	}{
		{
			name: "dev mode allows all origins",
			config: &Config{
				EnableDevMode:  true,
				AllowedOrigins: []string{"https://example.com"},
			},
			origin:         "https://unknown.com",
			expectedResult: true,
		},
		{
			name: "production mode allows listed origin",
			config: &Config{
				EnableDevMode:  false,
				AllowedOrigins: []string{"https://example.com", "https://app.example.com"},
			},
			origin:         "https://example.com",
			expectedResult: true,
		},
		{
			name: "production mode blocks unlisted origin",
			config: &Config{
				EnableDevMode:  false,
				AllowedOrigins: []string{"https://example.com"},
			},
			origin:         "https://malicious.com",
			expectedResult: false,
		},
		{
			name: "production mode blocks empty origin",
			config: &Config{
				EnableDevMode:  false,
				AllowedOrigins: []string{"https://example.com"},
			},
			origin:         "",
			expectedResult: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.config.OriginAllowed(tt.origin)
			assert.Equal(t, tt.expectedResult, result)
		})
	}
}

func TestConfig_BattleConfig(t *testing.T) {
	cfg := &Config{
		Seed:                    7,
		BaseDamageRandomization: "min",
		ControlledRNG:           map[string]bool{"confusion_damage_roll": true},
		ValidateTeams:           true,
		InfiniteBag:             true,
		ProgramCacheCapacity:    128,
		DataDir:                 "./data",
		TestCaseDir:             "./testdata",
	}

	engine := cfg.BattleConfig()
	assert.Equal(t, int64(7), engine.Seed)
	assert.Equal(t, battle.RandomizationMin, engine.BaseDamageRandomization)
	assert.Equal(t, map[string]bool{"confusion_damage_roll": true}, engine.ControlledRNG)
	assert.True(t, engine.ValidateTeams)
	assert.True(t, engine.InfiniteBag)
	assert.Equal(t, 128, engine.ProgramCacheCapacity)
}

func TestGetEnvHelpers(t *testing.T) {
	clearTestEnv()

	t.Run("getEnvAsString", func(t *testing.T) {
		assert.Equal(t, "default", getEnvAsString("TEST_STRING", "default"))
		os.Setenv("TEST_STRING", "custom")
		defer os.Unsetenv("TEST_STRING")
		assert.Equal(t, "custom", getEnvAsString("TEST_STRING", "default"))
	})

	t.Run("getEnvAsInt", func(t *testing.T) {
		assert.Equal(t, 42, getEnvAsInt("TEST_INT", 42))
		os.Setenv("TEST_INT", "100")
		defer os.Unsetenv("TEST_INT")
		assert.Equal(t, 100, getEnvAsInt("TEST_INT", 42))
		os.Setenv("TEST_INT_INVALID", "not-a-number")
		defer os.Unsetenv("TEST_INT_INVALID")
		assert.Equal(t, 42, getEnvAsInt("TEST_INT_INVALID", 42))
	})

	t.Run("getEnvAsInt64", func(t *testing.T) {
		assert.Equal(t, int64(42), getEnvAsInt64("TEST_INT64", 42))
		os.Setenv("TEST_INT64", "9223372036854775807")
		defer os.Unsetenv("TEST_INT64")
		assert.Equal(t, int64(9223372036854775807), getEnvAsInt64("TEST_INT64", 42))
	})

	t.Run("getEnvAsBool", func(t *testing.T) {
		assert.Equal(t, true, getEnvAsBool("TEST_BOOL", true))
		testCases := []struct {
			value    string
			expected bool
		}{
			{"true", true},
			{"false", false},
			{"1", true},
			{"0", false},
			{"TRUE", true},
			{"FALSE", false},
		}
		for _, tc := range testCases {
			os.Setenv("TEST_BOOL", tc.value)
			assert.Equal(t, tc.expected, getEnvAsBool("TEST_BOOL", false), "value: %s", tc.value)
		}
		os.Unsetenv("TEST_BOOL")
	})

	t.Run("getEnvAsDuration", func(t *testing.T) {
		assert.Equal(t, 5*time.Minute, getEnvAsDuration("TEST_DURATION", 5*time.Minute))
		os.Setenv("TEST_DURATION", "2h30m")
		defer os.Unsetenv("TEST_DURATION")
		assert.Equal(t, 2*time.Hour+30*time.Minute, getEnvAsDuration("TEST_DURATION", 5*time.Minute))
	})

	t.Run("getEnvAsStringSlice", func(t *testing.T) {
		defaultSlice := []string{"a", "b"}
		assert.Equal(t, defaultSlice, getEnvAsStringSlice("TEST_SLICE", defaultSlice))
		os.Setenv("TEST_SLICE", "one,two,three")
		defer os.Unsetenv("TEST_SLICE")
		assert.Equal(t, []string{"one", "two", "three"}, getEnvAsStringSlice("TEST_SLICE", defaultSlice))
		os.Setenv("TEST_SLICE_WHITESPACE", " one , two , three ")
		defer os.Unsetenv("TEST_SLICE_WHITESPACE")
		assert.Equal(t, []string{"one", "two", "three"}, getEnvAsStringSlice("TEST_SLICE_WHITESPACE", defaultSlice))
		os.Setenv("TEST_SLICE_EMPTY", "one,,three,")
		defer os.Unsetenv("TEST_SLICE_EMPTY")
		assert.Equal(t, []string{"one", "three"}, getEnvAsStringSlice("TEST_SLICE_EMPTY", defaultSlice))
	})

	t.Run("getEnvAsFloat64", func(t *testing.T) {
		assert.Equal(t, 1.5, getEnvAsFloat64("TEST_FLOAT", 1.5))
		os.Setenv("TEST_FLOAT", "2.75")
		defer os.Unsetenv("TEST_FLOAT")
		assert.Equal(t, 2.75, getEnvAsFloat64("TEST_FLOAT", 1.5))
	})
}

func clearTestEnv() {
	testVars := []string{
		"BATTLER_PORT", "BATTLER_LOG_LEVEL", "BATTLER_ALLOWED_ORIGINS",
		"BATTLER_MAX_REQUEST_SIZE", "BATTLER_DEV_MODE", "BATTLER_REQUEST_TIMEOUT",
		"BATTLER_SESSION_TIMEOUT", "BATTLER_RATE_LIMIT_ENABLED", "BATTLER_RATE_LIMIT_RPS",
		"BATTLER_RATE_LIMIT_BURST", "BATTLER_RATE_LIMIT_CLEANUP_INTERVAL",
		"BATTLER_RETRY_ENABLED", "BATTLER_RETRY_MAX_ATTEMPTS", "BATTLER_RETRY_INITIAL_DELAY",
		"BATTLER_RETRY_MAX_DELAY", "BATTLER_RETRY_BACKOFF_MULTIPLIER", "BATTLER_RETRY_JITTER_PERCENT",
		"BATTLER_SEED", "BATTLER_DAMAGE_RANDOMIZATION", "BATTLER_VALIDATE_TEAMS",
		"BATTLER_INFINITE_BAG", "BATTLER_PROGRAM_CACHE_CAPACITY", "BATTLER_DATA_DIR",
		"BATTLER_TEST_CASE_DIR", "BATTLER_CONFIG_FILE",
		"TEST_STRING", "TEST_INT", "TEST_INT_INVALID", "TEST_INT64", "TEST_BOOL",
		"TEST_DURATION", "TEST_SLICE", "TEST_SLICE_WHITESPACE", "TEST_SLICE_EMPTY", "TEST_FLOAT",
	}

	for _, v := range testVars {
		os.Unsetenv(v)
	}
}
