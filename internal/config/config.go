package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	Env             string  `mapstructure:"ENV"`
	LogLevel        string  `mapstructure:"LOG_LEVEL"`
	Port            string  `mapstructure:"PORT"`
	WebPort         string  `mapstructure:"WEB_PORT"`
	SnapshotBackend string  `mapstructure:"SNAPSHOT_BACKEND"`
	SnapshotPath    string  `mapstructure:"SNAPSHOT_PATH"`
	DatabaseURL     string  `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32   `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32   `mapstructure:"DB_MIN_CONNS"`
	ExportPath      string  `mapstructure:"EXPORT_PATH"`
	ClinicName      string  `mapstructure:"CLINIC_NAME"`
	RateLimitRPS    float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int     `mapstructure:"RATE_LIMIT_BURST"`
}

var keys = []string{
	"ENV", "LOG_LEVEL", "PORT", "WEB_PORT",
	"SNAPSHOT_BACKEND", "SNAPSHOT_PATH",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
	"EXPORT_PATH", "CLINIC_NAME",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// Load reads configuration from the environment, after pulling a .env file
// (if any) into it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PORT", "50051")
	v.SetDefault("WEB_PORT", "8080")
	v.SetDefault("SNAPSHOT_BACKEND", BackendFile)
	v.SetDefault("SNAPSHOT_PATH", "hospital_data.json")
	v.SetDefault("DB_MAX_CONNS", 4)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("EXPORT_PATH", "appointments_schedule.txt")
	v.SetDefault("CLINIC_NAME", "Daniel's Hospital")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	// Unmarshal only sees env vars that are bound
	for _, k := range keys {
		v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Validate() error {
	switch c.SnapshotBackend {
	case BackendFile:
		if c.SnapshotPath == "" {
			return fmt.Errorf("SNAPSHOT_PATH is required for the file backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("SNAPSHOT_BACKEND must be %q or %q, got %q", BackendFile, BackendPostgres, c.SnapshotBackend)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
