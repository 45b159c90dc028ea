package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the AgReX server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Runner   RunnerConfig
	Training TrainingConfig
	Jobs     JobsConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

// RunnerConfig configures the external analysis script launcher.
type RunnerConfig struct {
	Executable   string
	ScriptPath   string
	OutputFolder string
	Mode         string
}

// TrainingConfig tunes the simulated model-training executor.
// Durations are short in tests and seconds-long in production.
type TrainingConfig struct {
	MinDuration time.Duration
	MaxDuration time.Duration
}

type JobsConfig struct {
	Workers int
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any required value is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("AGREX_PORT", 8080),
			Env:  envString("AGREX_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Runner: RunnerConfig{
			Executable:   envString("RUNNER_EXECUTABLE", "python3"),
			ScriptPath:   envString("RUNNER_SCRIPT_PATH", "scripts/run_analysis.py"),
			OutputFolder: envString("RUNNER_OUTPUT_FOLDER", "outputs"),
			Mode:         envString("RUNNER_MODE", "BATCH"),
		},
		Training: TrainingConfig{
			MinDuration: envDurationSecs("TRAINING_MIN_DURATION_SECS", 5*time.Second),
			MaxDuration: envDurationSecs("TRAINING_MAX_DURATION_SECS", 15*time.Second),
		},
		Jobs: JobsConfig{
			Workers: envInt("JOB_WORKERS", 8),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Runner.Executable == "" {
		return fmt.Errorf("RUNNER_EXECUTABLE must not be empty")
	}

	if c.Training.MinDuration <= 0 || c.Training.MaxDuration < c.Training.MinDuration {
		return fmt.Errorf("training durations must satisfy 0 < min <= max, got min=%s max=%s",
			c.Training.MinDuration, c.Training.MaxDuration)
	}

	if c.Jobs.Workers <= 0 {
		return fmt.Errorf("JOB_WORKERS must be positive, got %d", c.Jobs.Workers)
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
