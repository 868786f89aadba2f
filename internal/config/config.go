package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=crm port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173,http://localhost:3000"
)

type Config struct {
	Env         string `envconfig:"APP_ENV" default:"development"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"5000"`
	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"host=localhost user=postgres password=postgres dbname=crm port=5432 sslmode=disable"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	CORSOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	FrontendDir string `envconfig:"FRONTEND_DIR" default:"./frontend/dist"`

	// disk | s3
	StorageDriver    string `envconfig:"STORAGE_DRIVER" default:"disk"`
	StorageDir       string `envconfig:"STORAGE_DIR" default:"./uploads"`
	StoragePublicURL string `envconfig:"STORAGE_PUBLIC_URL" default:"/uploads"`

	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3PublicURL string `envconfig:"S3_PUBLIC_URL"`

	SMTPHost     string `envconfig:"SMTP_HOST"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM"`

	SeedAdminEmail    string `envconfig:"SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `envconfig:"SEED_ADMIN_PASSWORD"`
}

// Load reads an optional .env file and the process environment.
func Load() (*Config, error) {
	// missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.warnDefaults()
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 characters")
	}
	switch c.StorageDriver {
	case "disk":
	case "s3":
		if c.S3Bucket == "" {
			return fmt.Errorf("config: S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	origins := c.AllowedOrigins()
	if len(origins) == 0 {
		return fmt.Errorf("config: CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	for _, o := range origins {
		if o == "*" {
			return fmt.Errorf("config: CORS_ALLOWED_ORIGINS cannot contain * since credentials are allowed")
		}
	}
	return nil
}

func (c *Config) warnDefaults() {
	if c.DatabaseDSN == defaultDSN {
		log.Warn("DATABASE_DSN uses the development default, set your own postgres DSN for production")
	}
	if c.CORSOrigins == defaultCORSOrigins && !c.IsDevelopment() {
		log.Warn("CORS_ALLOWED_ORIGINS uses the development default, set your own origins for production")
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != ""
}
