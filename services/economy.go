package services

import (
	"errors"
	"time"

	"trophy-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditEconomy adds pts to both balances with a single upsert.
func creditEconomy(tx *gorm.DB, userID string, pts int64) error {
	econ := models.UserEconomy{UserID: userID, Coins: pts, RankingPoints: pts}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"coins":          gorm.Expr("user_economies.coins + ?", pts),
			"ranking_points": gorm.Expr("user_economies.ranking_points + ?", pts),
			"updated_at":     time.Now(),
		}),
	}).Create(&econ).Error
}

// ensureEconomy creates a zero-balance row when missing.
func ensureEconomy(tx *gorm.DB, userID string) error {
	econ := models.UserEconomy{UserID: userID}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&econ).Error
}

// loadEconomy returns the user's balances, or a zero value when no row exists yet.
func loadEconomy(db *gorm.DB, userID string) (models.UserEconomy, error) {
	var econ models.UserEconomy
	err := db.Where("user_id = ?", userID).First(&econ).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserEconomy{UserID: userID}, nil
	}
	return econ, err
}

func ownedTitleNames(db *gorm.DB, userID string) ([]string, error) {
	names := []string{}
	err := db.Model(&models.OwnedTitle{}).
		Where("user_id = ?", userID).
		Order("acquired_at ASC, title_name ASC").
		Pluck("title_name", &names).Error
	return names, err
}

func completedDays(db *gorm.DB, userID string) ([]int, error) {
	days := []int{}
	err := db.Model(&models.ChallengeCompletion{}).
		Where("user_id = ?", userID).
		Order("game_day ASC").
		Pluck("game_day", &days).Error
	return days, err
}

// completedDaysByUser loads completed days for many users in one query.
func completedDaysByUser(db *gorm.DB, userIDs []string) (map[string][]int, error) {
	out := make(map[string][]int, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []models.ChallengeCompletion
	if err := db.Select("user_id", "game_day").
		Where("user_id IN ?", userIDs).
		Order("game_day ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.UserID] = append(out[r.UserID], r.GameDay)
	}
	return out, nil
}
