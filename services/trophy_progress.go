package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"trophy-progression-system/models"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrophyService struct {
	DB *gorm.DB
}

func NewTrophyService(db *gorm.DB) *TrophyService {
	return &TrophyService{DB: db}
}

// GameProgress is the read model of one tracked/touched game.
type GameProgress struct {
	IsTracked          bool      `json:"isTracked"`
	CompletedTrophies  []string  `json:"completedTrophies"`
	CompletedCount     int64     `json:"completedCount"`
	Total              int64     `json:"total"`
	ProgressPercentage int       `json:"progressPercentage"`
	IsPlatinum         bool      `json:"isPlatinum"`
	LastUpdated        time.Time `json:"lastUpdated"`
}

type TrackResult struct {
	GameID    string `json:"gameId"`
	IsTracked bool   `json:"isTracked"`
}

type ToggleResult struct {
	GameID         string `json:"gameId"`
	TrophyName     string `json:"trophyName"`
	IsCompleted    bool   `json:"isCompleted"`
	TotalCompleted int64  `json:"totalCompleted"`
}

type ToggleAllResult struct {
	GameID            string   `json:"gameId"`
	IsTracked         bool     `json:"isTracked"`
	CompletedTrophies []string `json:"completedTrophies"`
	TotalCompleted    int64    `json:"totalCompleted"`
}

// NormalizeTrophyName trims and NFC-normalizes a trophy name so visually equal
// names compare equal.
func NormalizeTrophyName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// normalizeNames normalizes, drops blanks and dedupes while keeping first-seen order.
func normalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeTrophyName(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ensureProgress creates the (user, game) record when missing; existing rows are left as is.
func ensureProgress(tx *gorm.DB, userID, gameID string, tracked bool, now time.Time) error {
	prog := models.TrophyProgress{
		UserID:      userID,
		GameID:      gameID,
		IsTracked:   tracked,
		LastUpdated: now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
		DoNothing: true,
	}).Create(&prog).Error
}

func touchProgress(tx *gorm.DB, userID, gameID string, updates map[string]any) error {
	return tx.Model(&models.TrophyProgress{}).
		Where("user_id = ? AND game_id = ?", userID, gameID).
		Updates(updates).Error
}

// SetTracked upserts the tracking flag without touching the completed set.
func (s *TrophyService) SetTracked(ctx context.Context, userID, gameID string, tracked bool) (*TrackResult, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, BadRequest("gameId is required")
	}
	now := time.Now()
	prog := models.TrophyProgress{
		UserID:      userID,
		GameID:      gameID,
		IsTracked:   tracked,
		LastUpdated: now,
	}
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_tracked", "last_updated", "updated_at"}),
	}).Create(&prog).Error
	if err != nil {
		return nil, Internal("failed to update tracking", err)
	}
	return &TrackResult{GameID: gameID, IsTracked: tracked}, nil
}

// ToggleTrophy flips membership of trophyName in the user's completed set for gameID.
// A record created by this call starts tracked.
func (s *TrophyService) ToggleTrophy(ctx context.Context, userID, gameID, trophyName string) (*ToggleResult, error) {
	gameID = strings.TrimSpace(gameID)
	trophyName = NormalizeTrophyName(trophyName)
	if gameID == "" || trophyName == "" {
		return nil, BadRequest("gameId and trophyName are required")
	}

	res := &ToggleResult{GameID: gameID, TrophyName: trophyName}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := ensureProgress(tx, userID, gameID, true, now); err != nil {
			return fmt.Errorf("ensure progress: %w", err)
		}

		del := tx.Where("user_id = ? AND game_id = ? AND trophy_name = ?", userID, gameID, trophyName).
			Delete(&models.CompletedTrophy{})
		if del.Error != nil {
			return fmt.Errorf("remove completed trophy: %w", del.Error)
		}
		if del.RowsAffected == 0 {
			row := models.CompletedTrophy{UserID: userID, GameID: gameID, TrophyName: trophyName}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return fmt.Errorf("add completed trophy: %w", err)
			}
			res.IsCompleted = true
		}

		if err := touchProgress(tx, userID, gameID, map[string]any{"last_updated": now}); err != nil {
			return fmt.Errorf("touch progress: %w", err)
		}
		return tx.Model(&models.CompletedTrophy{}).
			Where("user_id = ? AND game_id = ?", userID, gameID).
			Count(&res.TotalCompleted).Error
	})
	if err != nil {
		return nil, Internal("failed to toggle trophy", err)
	}

	action := "uncomplete"
	if res.IsCompleted {
		action = "complete"
	}
	trophyToggles.WithLabelValues(action).Inc()
	return res, nil
}

// ToggleAll marks every supplied name as completed (markAll) or clears the set.
// When the game has catalog entries, supplied names are intersected with the catalog;
// an empty list then means "the whole catalog". A record created by this call starts tracked.
func (s *TrophyService) ToggleAll(ctx context.Context, userID, gameID string, names []string, markAll bool) (*ToggleAllResult, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, BadRequest("gameId is required")
	}
	names = normalizeNames(names)

	res := &ToggleAllResult{GameID: gameID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := ensureProgress(tx, userID, gameID, true, now); err != nil {
			return fmt.Errorf("ensure progress: %w", err)
		}

		if markAll {
			var catalog []string
			if err := tx.Model(&models.TrophyCatalogEntry{}).
				Where("game_id = ?", gameID).
				Pluck("name", &catalog).Error; err != nil {
				return fmt.Errorf("load catalog names: %w", err)
			}
			if len(catalog) > 0 {
				names = intersectWithCatalog(names, normalizeNames(catalog))
			}
			if len(names) > 0 {
				rows := make([]models.CompletedTrophy, 0, len(names))
				for _, n := range names {
					rows = append(rows, models.CompletedTrophy{UserID: userID, GameID: gameID, TrophyName: n})
				}
				if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
					return fmt.Errorf("mark trophies: %w", err)
				}
			}
			if err := touchProgress(tx, userID, gameID, map[string]any{"is_tracked": true, "last_updated": now}); err != nil {
				return fmt.Errorf("touch progress: %w", err)
			}
		} else {
			if err := tx.Where("user_id = ? AND game_id = ?", userID, gameID).
				Delete(&models.CompletedTrophy{}).Error; err != nil {
				return fmt.Errorf("clear trophies: %w", err)
			}
			if err := touchProgress(tx, userID, gameID, map[string]any{"last_updated": now}); err != nil {
				return fmt.Errorf("touch progress: %w", err)
			}
		}

		var prog models.TrophyProgress
		if err := tx.Where("user_id = ? AND game_id = ?", userID, gameID).First(&prog).Error; err != nil {
			return fmt.Errorf("reload progress: %w", err)
		}
		res.IsTracked = prog.IsTracked

		if err := tx.Model(&models.CompletedTrophy{}).
			Where("user_id = ? AND game_id = ?", userID, gameID).
			Order("trophy_name ASC").
			Pluck("trophy_name", &res.CompletedTrophies).Error; err != nil {
			return fmt.Errorf("reload completed trophies: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, Internal("failed to update trophies", err)
	}
	if res.CompletedTrophies == nil {
		res.CompletedTrophies = []string{}
	}
	res.TotalCompleted = int64(len(res.CompletedTrophies))

	action := "clear"
	if markAll {
		action = "mark_all"
	}
	trophyToggles.WithLabelValues(action).Inc()
	return res, nil
}

func intersectWithCatalog(names, catalog []string) []string {
	if len(names) == 0 {
		return catalog
	}
	known := make(map[string]struct{}, len(catalog))
	for _, c := range catalog {
		known[c] = struct{}{}
	}
	out := names[:0]
	for _, n := range names {
		if _, ok := known[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// GetProgress returns every game the user has touched, keyed by game id,
// joined with catalog totals.
func (s *TrophyService) GetProgress(ctx context.Context, userID string) (map[string]GameProgress, error) {
	db := s.DB.WithContext(ctx)

	var progresses []models.TrophyProgress
	if err := db.Where("user_id = ?", userID).Find(&progresses).Error; err != nil {
		return nil, Internal("failed to load progress", err)
	}
	out := make(map[string]GameProgress, len(progresses))
	if len(progresses) == 0 {
		return out, nil
	}

	var completed []models.CompletedTrophy
	if err := db.Where("user_id = ?", userID).
		Order("completed_at ASC, trophy_name ASC").
		Find(&completed).Error; err != nil {
		return nil, Internal("failed to load completed trophies", err)
	}
	byGame := make(map[string][]string)
	for _, c := range completed {
		byGame[c.GameID] = append(byGame[c.GameID], c.TrophyName)
	}

	gameIDs := make([]string, 0, len(progresses))
	for _, p := range progresses {
		gameIDs = append(gameIDs, p.GameID)
	}
	totals, err := catalogTotals(db, gameIDs)
	if err != nil {
		return nil, Internal("failed to load catalog totals", err)
	}

	for _, p := range progresses {
		names := byGame[p.GameID]
		if names == nil {
			names = []string{}
		}
		done := int64(len(names))
		total := totals[p.GameID]
		out[p.GameID] = GameProgress{
			IsTracked:          p.IsTracked,
			CompletedTrophies:  names,
			CompletedCount:     done,
			Total:              total,
			ProgressPercentage: ProgressPercentage(total, done),
			IsPlatinum:         IsPlatinum(total, done),
			LastUpdated:        p.LastUpdated,
		}
	}
	return out, nil
}

// TrackedGames lists the game ids the user currently tracks, sorted.
func (s *TrophyService) TrackedGames(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.TrophyProgress{}).
		Where("user_id = ? AND is_tracked = ?", userID, true).
		Pluck("game_id", &ids).Error
	if err != nil {
		return nil, Internal("failed to load tracked games", err)
	}
	sort.Strings(ids)
	return ids, nil
}

type gameTotal struct {
	GameID string
	Total  int64
}

// catalogTotals counts catalog entries per game for the given ids.
func catalogTotals(db *gorm.DB, gameIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(gameIDs))
	if len(gameIDs) == 0 {
		return out, nil
	}
	var rows []gameTotal
	err := db.Model(&models.TrophyCatalogEntry{}).
		Select("game_id, COUNT(*) AS total").
		Where("game_id IN ?", gameIDs).
		Group("game_id").
		Scan(&rows).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	for _, r := range rows {
		out[r.GameID] = r.Total
	}
	return out, nil
}
