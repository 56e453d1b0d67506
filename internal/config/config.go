package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "default-secret-change-in-production", "secret", "admin", "password",
}

const (
	BlobDriverLocal = "local"
	BlobDriverS3    = "s3"
)

type Config struct {
	Port           int      `env:"PORT" envDefault:"8080"`
	DatabaseURL    string   `env:"DATABASE_URL,required"`
	SessionSecrets []string `env:"SESSION_SECRETS,required" envSeparator:","`
	AppEnv         string   `env:"APP_ENV" envDefault:"development"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminName     string `env:"ADMIN_NAME"`

	Blob BlobConfig `envPrefix:"BLOB_"`

	MaxUploadMB int64 `env:"MAX_UPLOAD_MB" envDefault:"10"`
}

// BlobConfig holds the remote image store credentials. Bucket plays the role
// of the account name for S3-compatible providers.
type BlobConfig struct {
	Driver    string `env:"DRIVER" envDefault:"local"`
	Bucket    string `env:"BUCKET"`
	AccessKey string `env:"ACCESS_KEY"`
	SecretKey string `env:"SECRET_KEY"`
	Region    string `env:"REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"ENDPOINT"`
	PublicURL string `env:"PUBLIC_URL"`
	LocalRoot string `env:"LOCAL_ROOT" envDefault:"uploads"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return DefaultMaxUploadMB << 20
	}
	return c.MaxUploadMB << 20
}

func (c *Config) SessionTTL() time.Duration {
	return SessionMaxAge
}

func (c *Config) Validate() error {
	if len(c.SessionSecrets) == 0 {
		return fmt.Errorf("SESSION_SECRETS must contain at least one secret")
	}
	for i, s := range c.SessionSecrets {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("SESSION_SECRETS entry %d is empty", i)
		}
	}

	switch c.Blob.Driver {
	case BlobDriverLocal:
	case BlobDriverS3:
		if c.Blob.Bucket == "" {
			return fmt.Errorf("BLOB_BUCKET is required when BLOB_DRIVER=s3")
		}
		if c.Blob.AccessKey == "" || c.Blob.SecretKey == "" {
			return fmt.Errorf("BLOB_ACCESS_KEY and BLOB_SECRET_KEY are required when BLOB_DRIVER=s3")
		}
	default:
		return fmt.Errorf("BLOB_DRIVER must be %q or %q, got %q", BlobDriverLocal, BlobDriverS3, c.Blob.Driver)
	}

	if (c.AdminEmail == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	if c.IsProduction() {
		for i, s := range c.SessionSecrets {
			if err := validateSecret(fmt.Sprintf("SESSION_SECRETS[%d]", i), s); err != nil {
				return err
			}
		}
		if c.Blob.Driver == BlobDriverLocal {
			log.Warn().Msg("BLOB_DRIVER=local in production: uploaded images live on this host only")
		}
		if c.AdminPassword != "" {
			log.Warn().Msg("ADMIN_PASSWORD is set in production: remove it once the admin is seeded")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env file")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
