package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"trophy-progression-system/config"
	"trophy-progression-system/models"
	"trophy-progression-system/services"
	"trophy-progression-system/utils"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "trophy-progression",
	Short: "Trophy tracking, daily challenges, title shop and leaderboard service",
	// Running the binary without a subcommand starts the server.
	RunE:          runServe,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// bootstrap loads config, connects and migrates. Every subcommand starts here.
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return cfg, db, nil
}

func catalogSource(ctx context.Context, cfg *config.Config) (services.CatalogSource, error) {
	if !cfg.UseR2() {
		return services.DirCatalogSource{Dir: cfg.CatalogDir}, nil
	}
	client, err := utils.NewR2Client(ctx, utils.R2Config{
		AccountID:       cfg.CloudflareAccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		Bucket:          cfg.R2BucketName,
		Endpoint:        cfg.R2Endpoint,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("☁️ Catalog source: R2 bucket %s", cfg.R2BucketName)
	return services.R2CatalogSource{Client: client, Prefix: cfg.CatalogPrefix}, nil
}
