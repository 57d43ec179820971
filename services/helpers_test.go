package services

import (
	"context"
	"path/filepath"
	"testing"

	"trophy-progression-system/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a migrated SQLite database private to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "trophies.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, id, name string) {
	t.Helper()
	if err := db.Create(&models.UserProfile{ExternalUserID: id, Username: name}).Error; err != nil {
		t.Fatalf("create user %s: %v", id, err)
	}
}

func createCatalog(t *testing.T, db *gorm.DB, gameID string, names ...string) {
	t.Helper()
	for _, n := range names {
		entry := models.TrophyCatalogEntry{GameID: gameID, Name: n, Difficulty: models.DifficultyBronze}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("create catalog entry %s/%s: %v", gameID, n, err)
		}
	}
}

func createChallenge(t *testing.T, db *gorm.DB, day int, points int64) {
	t.Helper()
	def := models.ChallengeDefinition{
		Day:         day,
		Title:       "test challenge",
		Points:      points,
		Kind:        models.ChallengeTrophyCount,
		TargetCount: 1,
	}
	if err := db.Create(&def).Error; err != nil {
		t.Fatalf("create challenge %d: %v", day, err)
	}
}

func setCoins(t *testing.T, db *gorm.DB, userID string, coins int64) {
	t.Helper()
	econ := models.UserEconomy{UserID: userID, Coins: coins, RankingPoints: coins}
	if err := db.Save(&econ).Error; err != nil {
		t.Fatalf("set coins: %v", err)
	}
}

func getEconomy(t *testing.T, db *gorm.DB, userID string) models.UserEconomy {
	t.Helper()
	econ, err := loadEconomy(db, userID)
	if err != nil {
		t.Fatalf("load economy: %v", err)
	}
	return econ
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

var bg = context.Background()
