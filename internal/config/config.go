package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	RedisAddr      string
	RedisPassword  string
	JWTSecret      string
	JWTTTL         time.Duration
	AllowedOrigins []string
}

// LoadConfig reads configuration from the environment, falling back to
// development defaults for everything except the JWT secret in production.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "4000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "codeshield")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("CORS_ORIGINS", "*")

	ttl, err := time.ParseDuration(v.GetString("JWT_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	cfg := &Config{
		Port:           v.GetString("PORT"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPassword:  v.GetString("REDIS_PASSWORD"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         ttl,
		AllowedOrigins: strings.Split(v.GetString("CORS_ORIGINS"), ","),
	}
	return cfg, nil
}
