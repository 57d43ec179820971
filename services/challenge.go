package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"trophy-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	MinChallengeDay = 1
	MaxChallengeDay = 31
)

type ChallengeService struct {
	DB *gorm.DB
	// EnforceRequirements checks the challenge kind against the user's trophies before crediting.
	EnforceRequirements bool
}

func NewChallengeService(db *gorm.DB, enforceRequirements bool) *ChallengeService {
	return &ChallengeService{DB: db, EnforceRequirements: enforceRequirements}
}

type ChallengeInput struct {
	Day          int
	Title        string
	Points       int64
	Kind         models.ChallengeKind
	TargetGameID string
	TargetCount  int
}

type CompletionResult struct {
	NewPoints           int64 `json:"newPoints"`
	NewCoins            int64 `json:"newCoins"`
	PointsEarned        int64 `json:"pointsEarned"`
	CompletedChallenges []int `json:"completedChallenges"`
}

func (s *ChallengeService) List(ctx context.Context) ([]models.ChallengeDefinition, error) {
	defs := []models.ChallengeDefinition{}
	if err := s.DB.WithContext(ctx).Order("day ASC").Find(&defs).Error; err != nil {
		return nil, Internal("failed to load challenges", err)
	}
	return defs, nil
}

// normalize validates in and resolves its kind. Without any kind or target, an existing
// day keeps its stored requirement and a new day becomes OPEN.
func (in *ChallengeInput) normalize(existing *models.ChallengeDefinition) error {
	in.Title = strings.TrimSpace(in.Title)
	in.TargetGameID = strings.TrimSpace(in.TargetGameID)
	if in.Day < MinChallengeDay || in.Day > MaxChallengeDay {
		return BadRequest("day must be between 1 and 31")
	}
	if in.Title == "" {
		return BadRequest("title is required")
	}
	if in.Points < 0 {
		return BadRequest("points must be non-negative")
	}
	if in.Kind == "" && in.TargetGameID == "" && in.TargetCount == 0 {
		if existing != nil {
			in.Kind = existing.Kind
			in.TargetGameID = existing.TargetGameID
			in.TargetCount = existing.TargetCount
			return nil
		}
		in.Kind = models.ChallengeOpen
	}
	if in.Kind == "" {
		if in.TargetGameID != "" {
			in.Kind = models.ChallengeAnyTrophyInGame
		} else {
			in.Kind = models.ChallengeTrophyCount
		}
	}
	switch in.Kind {
	case models.ChallengeAnyTrophyInGame:
		if in.TargetGameID == "" {
			return BadRequest("targetGameId is required for ANY_TROPHY_IN_GAME")
		}
		in.TargetCount = 0
	case models.ChallengeTrophyCount:
		if in.TargetCount < 1 {
			return BadRequest("targetCount must be at least 1 for TROPHY_COUNT")
		}
		in.TargetGameID = ""
	case models.ChallengeOpen:
		in.TargetGameID = ""
		in.TargetCount = 0
	default:
		return BadRequest("unknown challenge kind")
	}
	return nil
}

// Upsert creates or replaces the definition for in.Day. created is true for a new day.
func (s *ChallengeService) Upsert(ctx context.Context, in ChallengeInput) (def *models.ChallengeDefinition, created bool, err error) {
	if in.Day < MinChallengeDay || in.Day > MaxChallengeDay {
		return nil, false, BadRequest("day must be between 1 and 31")
	}
	def = &models.ChallengeDefinition{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing *models.ChallengeDefinition
		err := tx.Where("day = ?", in.Day).First(def).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created = true
			*def = models.ChallengeDefinition{Day: in.Day}
		case err != nil:
			return err
		default:
			existing = def
		}
		if err := in.normalize(existing); err != nil {
			return err
		}
		def.Title = in.Title
		def.Points = in.Points
		def.Kind = in.Kind
		def.TargetGameID = in.TargetGameID
		def.TargetCount = in.TargetCount
		if created {
			return tx.Create(def).Error
		}
		return tx.Save(def).Error
	})
	if err != nil {
		return nil, false, asAppError(err, "failed to save challenge")
	}
	log.Printf("[CHALLENGE] 📅 Day %d saved (%s, %d pts, created=%t)", def.Day, def.Kind, def.Points, created)
	return def, created, nil
}

// Delete removes the definition for day and purges every completion of that day.
// Balances already credited are kept.
func (s *ChallengeService) Delete(ctx context.Context, day int) (purged int64, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("game_day = ?", day).Delete(&models.ChallengeCompletion{})
		if res.Error != nil {
			return res.Error
		}
		purged = res.RowsAffected

		res = tx.Where("day = ?", day).Delete(&models.ChallengeDefinition{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrChallengeNotFound
		}
		return nil
	})
	if err != nil {
		return 0, asAppError(err, "failed to delete challenge")
	}
	log.Printf("[CHALLENGE] 🗑️ Day %d deleted, %d completion(s) purged", day, purged)
	return purged, nil
}

// Complete claims day for userID and credits its points to coins and ranking points.
// The unique (user_id, game_day) index decides concurrent claims.
func (s *ChallengeService) Complete(ctx context.Context, userID string, day int) (res *CompletionResult, err error) {
	defer func() { challengeCompletions.WithLabelValues(completionLabel(err)).Inc() }()

	res = &CompletionResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var def models.ChallengeDefinition
		if err := tx.Where("day = ?", day).First(&def).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("load challenge: %w", err)
		}

		ok, err := userExists(tx, userID)
		if err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}
		if !ok {
			return ErrUserNotFound
		}

		completion := models.ChallengeCompletion{
			UserID:       userID,
			GameDay:      day,
			PointsEarned: def.Points,
		}
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_day"}},
			DoNothing: true,
		}).Create(&completion)
		if ins.Error != nil {
			return fmt.Errorf("insert completion: %w", ins.Error)
		}
		if ins.RowsAffected == 0 {
			return ErrChallengeCompleted
		}

		if s.EnforceRequirements {
			met, err := requirementMet(tx, userID, &def)
			if err != nil {
				return fmt.Errorf("check requirements: %w", err)
			}
			if !met {
				return ErrRequirementsNotMet
			}
		}

		if err := creditEconomy(tx, userID, def.Points); err != nil {
			return fmt.Errorf("credit economy: %w", err)
		}
		econ, err := loadEconomy(tx, userID)
		if err != nil {
			return fmt.Errorf("reload economy: %w", err)
		}
		days, err := completedDays(tx, userID)
		if err != nil {
			return fmt.Errorf("load completed days: %w", err)
		}

		res.NewPoints = econ.RankingPoints
		res.NewCoins = econ.Coins
		res.PointsEarned = def.Points
		res.CompletedChallenges = days
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to complete challenge")
	}
	log.Printf("[CHALLENGE] 🏆 %s completed day %d (+%d) → points=%d coins=%d",
		userID, day, res.PointsEarned, res.NewPoints, res.NewCoins)
	return res, nil
}

// CompletedDays lists the days userID has claimed, ascending.
func (s *ChallengeService) CompletedDays(ctx context.Context, userID string) ([]int, error) {
	days, err := completedDays(s.DB.WithContext(ctx), userID)
	if err != nil {
		return nil, Internal("failed to load completed challenges", err)
	}
	return days, nil
}

func requirementMet(tx *gorm.DB, userID string, def *models.ChallengeDefinition) (bool, error) {
	q := tx.Model(&models.CompletedTrophy{}).Where("user_id = ?", userID)
	var n int64
	switch def.Kind {
	case models.ChallengeAnyTrophyInGame:
		if err := q.Where("game_id = ?", def.TargetGameID).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	case models.ChallengeTrophyCount:
		if err := q.Count(&n).Error; err != nil {
			return false, err
		}
		return n >= int64(def.TargetCount), nil
	}
	return true, nil
}

func completionLabel(err error) string {
	if errors.Is(err, ErrChallengeCompleted) {
		return "duplicate"
	}
	return resultLabel(err)
}
