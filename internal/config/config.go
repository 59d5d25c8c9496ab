package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	AuthIssuer         string   `mapstructure:"AUTH_ISSUER"`
	AuthSecret         string   `mapstructure:"AUTH_SECRET"`
	RateLimitRPS       float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int      `mapstructure:"RATE_LIMIT_BURST"`
	ClinicTimezone     string   `mapstructure:"CLINIC_TIMEZONE"`
	DefaultSlotMinutes int      `mapstructure:"DEFAULT_SLOT_MINUTES"`
	SlotAlignMinutes   int      `mapstructure:"SLOT_ALIGN_MINUTES"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)
	v.SetDefault("CLINIC_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("DEFAULT_SLOT_MINUTES", 30)
	v.SetDefault("SLOT_ALIGN_MINUTES", 0)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_ISSUER")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("CLINIC_TIMEZONE")
	v.BindEnv("DEFAULT_SLOT_MINUTES")
	v.BindEnv("SLOT_ALIGN_MINUTES")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Location resolves the configured clinic time zone. All schedule and slot
// arithmetic happens in this zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("load clinic timezone %q: %w", c.ClinicTimezone, err)
	}
	return loc, nil
}

// Validate checks that the configuration is safe to run. Outside development
// AUTH_SECRET must be set so real JWT verification is enforced, and the slot
// parameters must describe a usable grid.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required when ENV=%q; refusing to start without authentication", c.Env)
	}
	if c.DefaultSlotMinutes <= 0 || c.DefaultSlotMinutes > 24*60 {
		return fmt.Errorf("DEFAULT_SLOT_MINUTES must be between 1 and 1440, got %d", c.DefaultSlotMinutes)
	}
	if c.SlotAlignMinutes < 0 || c.SlotAlignMinutes >= c.DefaultSlotMinutes {
		return fmt.Errorf("SLOT_ALIGN_MINUTES must be in [0, DEFAULT_SLOT_MINUTES), got %d", c.SlotAlignMinutes)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}
