package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	Port                  string
	DatabaseDSN           string
	JWTSecret             string
	Env                   string
	ClientOrigin          string
	AccessTokenTTLMinutes int
	RefreshTokenTTLDays   int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func Load() Config {
	port := getenv("APP_PORT", "5000")
	dsn := getenv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=alumni_platform port=5432 sslmode=disable TimeZone=UTC")
	secret := getenv("JWT_SECRET", "dev-secret-change-me")
	env := getenv("APP_ENV", "dev")
	clientOrigin := getenv("CLIENT_URL", "http://localhost:3000")
	accessTTL, _ := strconv.Atoi(getenv("ACCESS_TOKEN_TTL_MINUTES", "15"))
	refreshTTL, _ := strconv.Atoi(getenv("REFRESH_TOKEN_TTL_DAYS", "7"))
	if accessTTL <= 0 {
		accessTTL = 15
	}
	if refreshTTL <= 0 {
		refreshTTL = 7
	}
	return Config{
		Port:                  port,
		DatabaseDSN:           dsn,
		JWTSecret:             secret,
		Env:                   env,
		ClientOrigin:          clientOrigin,
		AccessTokenTTLMinutes: accessTTL,
		RefreshTokenTTLDays:   refreshTTL,
	}
}

// Validate 启动前的基本检查：端口和 DSN 必填，非 dev 环境禁止默认密钥。
func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("port required")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("database dsn required")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == "dev-secret-change-me" {
		return errors.New("default jwt secret not allowed outside dev")
	}
	return nil
}
