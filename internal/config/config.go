package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required")

type Config struct {
	Env   string
	Port  int
	DBURL string

	// postgres or memory
	StoreDriver string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	// gate /users and /documents behind a bearer token
	AuthRequired bool

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	RedisAddr    string
	OTLPEndpoint string

	AdminEmail    string
	AdminPassword string
}

// Load reads the environment once at startup. A .env file in the working
// directory is loaded first when present; real env vars win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:                getEnv("APP_ENV", "dev"),
		Port:               getEnvInt("PORT", 3000),
		DBURL:              getEnv("DATABASE_URL", buildDBURL()),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		JWTSecret:          getEnv("JWT_SECRET", os.Getenv("SECRET_KEY")),
		JWTTTL:             time.Duration(getEnvInt("JWT_TTL_MINUTES", 60)) * time.Minute,
		BcryptCost:         getEnvInt("BCRYPT_COST", 10),
		AuthRequired:       getEnvBool("AUTH_REQUIRED", false),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		OTLPEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		AdminEmail:         getEnv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "adminpassword"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}

	switch c.StoreDriver {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	return nil
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "docvault")
	pass := getEnv("DB_PASSWORD", "docvault")
	name := getEnv("DB_NAME", "docvault")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
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

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fallback
		}

		return b
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
