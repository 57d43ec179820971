// config/config.go
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           int      `env:"PORT" envDefault:"5200"`
	DatabaseURL    string   `env:"DATABASE_URL,required,notEmpty"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Identity
	JWTSecret        string `env:"JWT_SECRET"`
	AuthServiceURL   string `env:"AUTH_SERVICE_URL"`
	GameServiceToken string `env:"GAME_SERVICE_TOKEN"`
	RequireGateway   bool   `env:"REQUIRE_GATEWAY" envDefault:"false"`

	// Profile mirror
	SyncServiceURL   string        `env:"SYNC_SERVICE_URL"`
	SyncEndpointPath string        `env:"SYNC_ENDPOINT_PATH" envDefault:"/api/v1/public/profiles"`
	SyncInterval     time.Duration `env:"SYNC_INTERVAL" envDefault:"1m"`

	ExposeErrorDetail bool `env:"EXPOSE_ERROR_DETAIL" envDefault:"false"`

	RankingLimit     int    `env:"RANKING_LIMIT" envDefault:"50"`
	DefaultAvatarURL string `env:"DEFAULT_AVATAR_URL" envDefault:"https://i.pravatar.cc/100?img=3"`

	EnforceChallengeRequirements bool `env:"ENFORCE_CHALLENGE_REQUIREMENTS" envDefault:"false"`

	// Catalog source: R2 when R2_BUCKET_NAME is set, CATALOG_DIR otherwise
	CatalogDir            string        `env:"CATALOG_DIR" envDefault:"./data"`
	CatalogPrefix         string        `env:"CATALOG_PREFIX"`
	CatalogReseedInterval time.Duration `env:"CATALOG_RESEED_INTERVAL" envDefault:"0s"`
	CloudflareAccountID   string        `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID         string        `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret     string        `env:"R2_ACCESS_KEY_SECRET"`
	R2BucketName          string        `env:"R2_BUCKET_NAME"`
	R2Endpoint            string        `env:"R2_ENDPOINT"`
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for i, o := range c.AllowedOrigins {
		c.AllowedOrigins[i] = strings.TrimSpace(o)
	}
	if c.RequireGateway && c.GameServiceToken == "" {
		return errors.New("REQUIRE_GATEWAY needs GAME_SERVICE_TOKEN")
	}
	if c.SyncServiceURL != "" && c.GameServiceToken == "" {
		return errors.New("SYNC_SERVICE_URL needs GAME_SERVICE_TOKEN")
	}
	if c.RankingLimit <= 0 {
		return fmt.Errorf("RANKING_LIMIT must be positive, got %d", c.RankingLimit)
	}
	if c.CatalogReseedInterval < 0 {
		return errors.New("CATALOG_RESEED_INTERVAL must not be negative")
	}
	return nil
}

// UseR2 reports whether the catalog should be read from R2.
func (c *Config) UseR2() bool { return c.R2BucketName != "" }

func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
