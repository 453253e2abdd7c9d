package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=bullion port=5432 sslmode=disable"

type Config struct {
	AppEnv         string
	HTTPPort       string
	DatabaseDSN    string
	DBTimeout      time.Duration
	JWTSecret      string
	TokenTTL       time.Duration
	LoginID        string
	LoginPassword  string
	CORSOrigins    string
	MetricsEnabled bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func Load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("HTTP_PORT", "5000")
	v.SetDefault("DATABASE_DSN", defaultDSN)
	v.SetDefault("DB_TIMEOUT", "5s")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("METRICS_ENABLED", false)

	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		HTTPPort:       v.GetString("HTTP_PORT"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		DBTimeout:      v.GetDuration("DB_TIMEOUT"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		TokenTTL:       v.GetDuration("TOKEN_TTL"),
		LoginID:        strings.TrimSpace(v.GetString("LOGIN_ID")),
		LoginPassword:  v.GetString("LOGIN_PASSWORD"),
		CORSOrigins:    v.GetString("CORS_ALLOWED_ORIGINS"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		log.Fatal("[FATAL] JWT_SECRET must be at least 32 characters")
	}
	if cfg.LoginID == "" || cfg.LoginPassword == "" {
		log.Fatal("[FATAL] LOGIN_ID and LOGIN_PASSWORD must be set")
	}
	if cfg.DBTimeout <= 0 {
		cfg.DBTimeout = 5 * time.Second
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.DatabaseDSN == defaultDSN {
		log.Println("[WARN] DATABASE_DSN is using the local default")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		log.Println("[WARN] CORS_ALLOWED_ORIGINS is using the local default")
	}

	return cfg
}

// Origins splits the comma separated CORS origin list.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
