package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultMaxUploadBytes = 5 * 1024 * 1024

type Config struct {
	DBDSN         string
	ServerPort    string
	SessionSecret string
	AppEnv        string

	UploadDir      string
	MaxUploadBytes int64
	TemplatesGlob  string
	StaticDir      string

	RedisAddr     string
	RedisPassword string
	StatsCacheTTL time.Duration

	AdminEmail    string
	AdminPassword string
	UserEmail     string
	UserPassword  string
}

// Production reports whether internal error details must be hidden from clients.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBDSN:         os.Getenv("DB_DSN"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		AppEnv:        os.Getenv("APP_ENV"),
		UploadDir:     getEnv("UPLOAD_DIR", "static/uploads"),
		TemplatesGlob: getEnv("TEMPLATES_GLOB", "web/templates/*.html"),
		StaticDir:     getEnv("STATIC_DIR", "web/static"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@ejemplo.com"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		UserEmail:     getEnv("USER_EMAIL", "usuario@ejemplo.com"),
		UserPassword:  getEnv("USER_PASSWORD", "usuario123"),
	}

	if cfg.DBDSN == "" {
		log.Fatal("DB_DSN is not set")
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.SessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	cfg.MaxUploadBytes = defaultMaxUploadBytes
	if raw := os.Getenv("MAX_UPLOAD_BYTES"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			log.Fatalf("invalid MAX_UPLOAD_BYTES %q", raw)
		}
		cfg.MaxUploadBytes = n
	}

	cfg.StatsCacheTTL = 30 * time.Second
	if raw := os.Getenv("STATS_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid STATS_CACHE_TTL %q: %v", raw, err)
		}
		cfg.StatsCacheTTL = d
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
