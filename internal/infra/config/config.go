// internal/infra/config/config.go
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	StoreFirestore = "firestore"
	StoreBolt      = "bolt"
	StorePostgres  = "postgres"
)

// Config holds every environment setting of the storefront processes.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	GCPProjectID             string `env:"GCP_PROJECT_ID"`
	FirestoreProjectID       string `env:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentialsFile string `env:"FIRESTORE_CREDENTIALS_FILE"`
	GCPCreds                 string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Firebase Auth
	FirebaseProjectID    string `env:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey       string `env:"FIREBASE_API_KEY"`
	FirebaseAPIKeySecret string `env:"FIREBASE_API_KEY_SECRET"`

	StoreDriver string `env:"STORE_DRIVER" envDefault:"firestore"`
	BoltPath    string `env:"BOLT_PATH" envDefault:"storefront.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	CatalogRefreshSpec string `env:"CATALOG_REFRESH_SPEC" envDefault:"@every 5m"`
	ImportConcurrency  int    `env:"IMPORT_CONCURRENCY" envDefault:"4"`

	// Import report mail (disabled when either is empty)
	ImportReportEmail string `env:"IMPORT_REPORT_EMAIL"`
	SendGridAPIKey    string `env:"SENDGRID_API_KEY"`
	SendGridFrom      string `env:"SENDGRID_FROM" envDefault:"no-reply@storefront.local"`

	RequireAdminForWrites bool `env:"REQUIRE_ADMIN_FOR_WRITES" envDefault:"true"`

	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`
	LogFile        string `env:"LOG_FILE"`
}

// Load parses the environment and fills derived defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.FirestoreProjectID == "" {
		c.FirestoreProjectID = c.GCPProjectID
	}
	if c.FirebaseProjectID == "" {
		c.FirebaseProjectID = c.GCPProjectID
	}
	origins := c.CORSAllowedOrigins[:0]
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowedOrigins = origins
}

// Validate rejects combinations the process cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFirestore:
		if c.FirestoreProjectID == "" {
			return fmt.Errorf("config: FIRESTORE_PROJECT_ID or GCP_PROJECT_ID is required for the firestore driver")
		}
	case StoreBolt:
		if strings.TrimSpace(c.BoltPath) == "" {
			return fmt.Errorf("config: BOLT_PATH is required for the bolt driver")
		}
	case StorePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ImportConcurrency < 1 {
		return fmt.Errorf("config: IMPORT_CONCURRENCY must be >= 1")
	}
	return nil
}

// MailEnabled reports whether import reports can be sent.
func (c *Config) MailEnabled() bool {
	return c.SendGridAPIKey != "" && c.ImportReportEmail != ""
}

// UsesGCP reports whether Google Cloud clients are needed at all.
func (c *Config) UsesGCP() bool {
	return c.StoreDriver == StoreFirestore || c.GCPProjectID != ""
}
