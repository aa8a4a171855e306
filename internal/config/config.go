package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"eshop"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	APIURL      string `env:"API_URL" envDefault:"/api/v1"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string `env:"DATABASE_URL"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
	UploadBackend string `env:"UPLOAD_BACKEND" envDefault:"local"`
	UploadDir     string `env:"UPLOAD_DIR" envDefault:"public/uploads"`
	GCSBucket     string `env:"GCS_BUCKET"`
	GCSCredsPath  string `env:"GCS_CREDENTIALS_JSON"`

	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	ESURL           string `env:"ES_URL"`
	ESUser          string `env:"ES_USER"`
	ESPassword      string `env:"ES_PASSWORD"`
	ESProductsIndex string `env:"ES_PRODUCTS_INDEX" envDefault:"products"`

	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("notice: .env not loaded: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.APIURL = NormalizeBase(cfg.APIURL)
	cfg.KafkaBrokers = CSV(cfg.KafkaBrokers)
	cfg.CORSAllowedOrigins = CSV(cfg.CORSAllowedOrigins)

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("missing required env DATABASE_URL"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("missing required env JWT_SECRET"))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	switch c.UploadBackend {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			errs = append(errs, errors.New("missing required env GCS_BUCKET for gcs uploads"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported UPLOAD_BACKEND %q", c.UploadBackend))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// NormalizeBase returns base with a single leading slash and no trailing one.
func NormalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}

func CSV(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
