package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"trophy-progression-system/models"
	"trophy-progression-system/utils"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogService struct {
	DB     *gorm.DB
	Source CatalogSource
}

func NewCatalogService(db *gorm.DB, source CatalogSource) *CatalogService {
	return &CatalogService{DB: db, Source: source}
}

type CreateTrophyInput struct {
	GameID      string
	Name        string
	Description string
	Difficulty  string
	ImageURL    string
	IsCustom    *bool // nil means custom
}

type UpdateTrophyInput struct {
	Name        *string
	Description *string
	Difficulty  *string
	ImageURL    *string
}

// ReseedSummary reports what a reseed run did.
type ReseedSummary struct {
	Source       string   `json:"source"`
	Games        int      `json:"games"`
	Inserted     int      `json:"inserted"`
	SkippedGames []string `json:"skippedGames"`
}

func validDifficulty(d string) bool {
	switch d {
	case models.DifficultyBronze, models.DifficultySilver, models.DifficultyGold:
		return true
	}
	return false
}

// ListForGame returns official entries first, then custom ones, each by name.
func (s *CatalogService) ListForGame(ctx context.Context, gameID string) ([]models.TrophyCatalogEntry, error) {
	entries := []models.TrophyCatalogEntry{}
	err := s.DB.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("is_custom ASC, name ASC").
		Find(&entries).Error
	if err != nil {
		return nil, Internal("failed to load trophies", err)
	}
	return entries, nil
}

// Create adds a catalog entry. Non-admins can only create custom entries.
func (s *CatalogService) Create(ctx context.Context, actor *models.Identity, in CreateTrophyInput) (*models.TrophyCatalogEntry, error) {
	if actor == nil {
		return nil, Unauthorized("authentication required")
	}
	custom := in.IsCustom == nil || *in.IsCustom
	if !custom && !actor.IsAdmin() {
		return nil, ErrOfficialTrophyForbidden
	}

	entry := models.TrophyCatalogEntry{
		GameID:      strings.TrimSpace(in.GameID),
		Name:        NormalizeTrophyName(in.Name),
		Description: strings.TrimSpace(in.Description),
		Difficulty:  strings.ToLower(strings.TrimSpace(in.Difficulty)),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		IsCustom:    custom,
		CreatedBy:   actor.UserID,
	}
	if entry.GameID == "" || entry.Name == "" {
		return nil, BadRequest("gameId and name are required")
	}
	if entry.Difficulty == "" {
		entry.Difficulty = DefaultDifficulty
	}
	if !validDifficulty(entry.Difficulty) {
		return nil, BadRequest("difficulty must be bronze, silver or gold")
	}

	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, Internal("failed to create trophy", err)
	}
	log.Printf("[CATALOG] ➕ %s created trophy %q for %s (custom=%t)", actor.UserID, entry.Name, entry.GameID, entry.IsCustom)
	return &entry, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, in UpdateTrophyInput) (*models.TrophyCatalogEntry, error) {
	var entry models.TrophyCatalogEntry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTrophyNotFound
			}
			return err
		}
		if in.Name != nil {
			name := NormalizeTrophyName(*in.Name)
			if name == "" {
				return BadRequest("name cannot be empty")
			}
			entry.Name = name
		}
		if in.Description != nil {
			entry.Description = strings.TrimSpace(*in.Description)
		}
		if in.Difficulty != nil {
			d := strings.ToLower(strings.TrimSpace(*in.Difficulty))
			if !validDifficulty(d) {
				return BadRequest("difficulty must be bronze, silver or gold")
			}
			entry.Difficulty = d
		}
		if in.ImageURL != nil {
			entry.ImageURL = strings.TrimSpace(*in.ImageURL)
		}
		return tx.Save(&entry).Error
	})
	if err != nil {
		return nil, asAppError(err, "failed to update trophy")
	}
	return &entry, nil
}

// Delete removes a catalog entry. Users' completed names are left alone.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.TrophyCatalogEntry{})
	if res.Error != nil {
		return Internal("failed to delete trophy", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTrophyNotFound
	}
	return nil
}

// Totals counts catalog entries per game.
func (s *CatalogService) Totals(ctx context.Context, gameIDs []string) (map[string]int64, error) {
	totals, err := catalogTotals(s.DB.WithContext(ctx), gameIDs)
	if err != nil {
		return nil, Internal("failed to count trophies", err)
	}
	return totals, nil
}

// Reseed replaces every official entry of each game found in the source.
// Custom entries are never touched.
func (s *CatalogService) Reseed(ctx context.Context) (summary *ReseedSummary, err error) {
	defer func() { catalogReseeds.WithLabelValues(resultLabel(err)).Inc() }()

	if s.Source == nil {
		return nil, BadRequest("no catalog source configured")
	}
	gamesRaw, achRaw, err := s.Source.Load(ctx)
	if err != nil {
		return nil, Internal("failed to load catalog source", err)
	}
	plan, skipped, err := buildReseedPlan(gamesRaw, achRaw)
	if err != nil {
		return nil, BadRequest(err.Error())
	}

	summary = &ReseedSummary{Source: s.Source.Name(), SkippedGames: skipped}
	gameIDs := make([]string, 0, len(plan))
	for id := range plan {
		gameIDs = append(gameIDs, id)
	}
	sort.Strings(gameIDs)

	for _, gameID := range gameIDs {
		entries := plan[gameID]
		err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("game_id = ? AND is_custom = ?", gameID, false).
				Delete(&models.TrophyCatalogEntry{}).Error; err != nil {
				return err
			}
			if len(entries) == 0 {
				return nil
			}
			return tx.Clauses(clause.OnConflict{UpdateAll: true}).
				CreateInBatches(&entries, 200).Error
		})
		if err != nil {
			return nil, Internal(fmt.Sprintf("failed to reseed %s", gameID), err)
		}
		summary.Games++
		summary.Inserted += len(entries)
		log.Printf("[CATALOG] 🔄 [%s] imported %d trophies", gameID, len(entries))
	}

	log.Printf("[CATALOG] ✅ Reseed from %s done: %d games, %d trophies, %d skipped",
		summary.Source, summary.Games, summary.Inserted, len(skipped))
	return summary, nil
}

// buildReseedPlan maps game slugs to the official entries they should hold.
func buildReseedPlan(gamesRaw, achRaw []byte) (map[string][]models.TrophyCatalogEntry, []string, error) {
	var games catalogGamesDoc
	if err := utils.DecodeJSON(catalogGamesFile, gamesRaw, &games); err != nil {
		return nil, nil, err
	}
	var achievements map[string][]rawAchievement
	if err := utils.DecodeJSON(catalogAchievementsFile, achRaw, &achievements); err != nil {
		return nil, nil, err
	}

	slugs := make(map[string]string, len(games.Games))
	for _, g := range games.Games {
		if s := slug.Make(g.Name); s != "" {
			slugs[string(g.ID)] = s
		}
	}

	sourceIDs := make([]string, 0, len(achievements))
	for id := range achievements {
		sourceIDs = append(sourceIDs, id)
	}
	sort.Strings(sourceIDs)

	plan := make(map[string][]models.TrophyCatalogEntry)
	// games whose names slug alike merge into one game id
	seenByGame := make(map[string]map[string]struct{})
	var skipped []string
	for _, sourceID := range sourceIDs {
		gameID, ok := slugs[sourceID]
		if !ok {
			log.Printf("[CATALOG] ⚠️ Game id %s not found in %s, skipping", sourceID, catalogGamesFile)
			skipped = append(skipped, sourceID)
			continue
		}
		seen, ok := seenByGame[gameID]
		if !ok {
			seen = make(map[string]struct{})
			seenByGame[gameID] = seen
		}
		entries := plan[gameID]
		for _, a := range achievements[sourceID] {
			name := NormalizeTrophyName(a.Name)
			if name == "" || a.ID == "" {
				continue
			}
			id := gameID + "-" + string(a.ID)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			desc := strings.TrimSpace(a.Description)
			if desc == "" {
				desc = "No description"
			}
			entries = append(entries, models.TrophyCatalogEntry{
				ID:          id,
				GameID:      gameID,
				Name:        name,
				Description: desc,
				Difficulty:  DifficultyForPercent(string(a.Percent)),
				ImageURL:    a.Image,
				IsCustom:    false,
			})
		}
		plan[gameID] = entries
	}
	if skipped == nil {
		skipped = []string{}
	}
	return plan, skipped, nil
}

// asAppError passes AppErrors through and wraps anything else as internal.
func asAppError(err error, msg string) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(msg, err)
}
