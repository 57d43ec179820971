package main

import (
	"fmt"

	"trophy-progression-system/config"
	"trophy-progression-system/services"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load default data",
}

var seedCatalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Reseed official trophies from the catalog source (custom trophies are kept)",
	RunE:  withDB(seedCatalog),
}

var seedTitlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Insert missing default shop titles",
	RunE: withDB(func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB) error {
		_, err := services.SeedTitles(cmd.Context(), db)
		return err
	}),
}

var seedChallengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "Upsert the default 31-day challenge calendar",
	RunE: withDB(func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB) error {
		_, err := services.SeedChallenges(cmd.Context(), db)
		return err
	}),
}

var seedAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run every seed",
	RunE: withDB(func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB) error {
		if _, err := services.SeedTitles(cmd.Context(), db); err != nil {
			return err
		}
		if _, err := services.SeedChallenges(cmd.Context(), db); err != nil {
			return err
		}
		return seedCatalog(cmd, cfg, db)
	}),
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: withDB(func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB) error {
		fmt.Println("✅ Schema up to date")
		return nil
	}),
}

func init() {
	seedCmd.AddCommand(seedCatalogCmd, seedTitlesCmd, seedChallengesCmd, seedAllCmd)
	rootCmd.AddCommand(seedCmd, migrateCmd)
}

func withDB(fn func(cmd *cobra.Command, cfg *config.Config, db *gorm.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		return fn(cmd, cfg, db)
	}
}

func seedCatalog(cmd *cobra.Command, cfg *config.Config, db *gorm.DB) error {
	source, err := catalogSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	summary, err := services.NewCatalogService(db, source).Reseed(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("🏁 Imported %d trophies across %d games (%d skipped)\n",
		summary.Inserted, summary.Games, len(summary.SkippedGames))
	return nil
}
