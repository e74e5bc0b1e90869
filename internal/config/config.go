package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is assembled once at startup and passed explicitly to every
// component that needs it. Nothing else in the process reads the
// environment directly.
type Config struct {
	Env  string
	Port int

	DBURL string

	// Token signing. A missing secret is a startup error, never a
	// silently empty token.
	JWTSecret string
	TokenTTL  time.Duration

	BcryptCost int

	AllowedOrigins []string

	// Optional redis-backed login rate limiting. Empty addr means the
	// in-memory limiter is used instead.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginRateLimit  int
	LoginRateWindow time.Duration

	// Optional OTLP trace exporter endpoint. Empty disables tracing.
	OTLPEndpoint string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

func Load() (Config, error) {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	cfg := Config{
		Env:             getEnv("APP_ENV", "dev"),
		Port:            getEnvInt("PORT", 3999),
		DBURL:           buildDBURL(),
		JWTSecret:       secret,
		TokenTTL:        time.Duration(getEnvInt("TOKEN_TTL_MINUTES", 60)) * time.Minute,
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		AllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		LoginRateLimit:  getEnvInt("LOGIN_RATE_LIMIT", 20),
		LoginRateWindow: time.Duration(getEnvInt("LOGIN_RATE_WINDOW_SECONDS", 60)) * time.Second,
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	return cfg, nil
}

func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "marketplace")
	pass := getEnv("DB_PASSWORD", "marketplace")
	name := getEnv("DB_NAME", "marketplace")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
