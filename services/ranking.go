package services

import (
	"context"
	"time"

	"trophy-progression-system/models"

	"gorm.io/gorm"
)

const DefaultRankingLimit = 50

type RankingService struct {
	DB               *gorm.DB
	Limit            int
	DefaultAvatarURL string
}

func NewRankingService(db *gorm.DB, limit int, defaultAvatar string) *RankingService {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	return &RankingService{DB: db, Limit: limit, DefaultAvatarURL: defaultAvatar}
}

type RankingEntry struct {
	Position            int     `json:"position"`
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Avatar              string  `json:"avatar"`
	RankingPoints       int64   `json:"rankingPoints"`
	Coins               int64   `json:"coins"`
	EquippedTitle       *string `json:"equippedTitle"`
	Platinums           int     `json:"platinums"`
	TotalTrophies       int64   `json:"totalTrophies"`
	CompletedChallenges []int   `json:"completedChallenges"`
}

// UserStats is the profile statistics view of one user.
type UserStats struct {
	UserID              string   `json:"userId"`
	TrackedGames        int      `json:"trackedGames"`
	TotalTrophies       int64    `json:"totalTrophies"`
	Platinums           int      `json:"platinums"`
	Coins               int64    `json:"coins"`
	RankingPoints       int64    `json:"rankingPoints"`
	OwnedTitles         []string `json:"ownedTitles"`
	EquippedTitle       *string  `json:"equippedTitle"`
	CompletedChallenges []int    `json:"completedChallenges"`
	Position            *int     `json:"position"` // nil outside the top N
}

type rankingRow struct {
	UserID        string
	RankingPoints int64
	Coins         int64
	EquippedTitle *string
	Username      *string
	AvatarURL     *string
}

// Every known user is ranked; users without an economy row count as zero points.
const (
	rankingEconomyJoin = "LEFT JOIN user_economies ON user_economies.user_id = user_profiles.external_user_id"
	rankingPointsExpr  = "COALESCE(user_economies.ranking_points, 0)"
)

// GetRanking returns the top N users by ranking points, ties broken by user id.
// It runs a fixed number of queries regardless of N.
func (s *RankingService) GetRanking(ctx context.Context) ([]RankingEntry, error) {
	start := time.Now()
	defer func() { rankingBuildSeconds.Observe(time.Since(start).Seconds()) }()

	db := s.DB.WithContext(ctx)
	var rows []rankingRow
	err := db.Model(&models.UserProfile{}).
		Select("user_profiles.external_user_id AS user_id, " +
			rankingPointsExpr + " AS ranking_points, " +
			"COALESCE(user_economies.coins, 0) AS coins, " +
			"user_economies.equipped_title, user_profiles.username, user_profiles.avatar_url").
		Joins(rankingEconomyJoin).
		Order(rankingPointsExpr + " DESC, user_profiles.external_user_id ASC").
		Limit(s.limit()).
		Scan(&rows).Error
	if err != nil {
		return nil, Internal("failed to load ranking", err)
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.UserID
	}
	days, err := completedDaysByUser(db, ids)
	if err != nil {
		return nil, Internal("failed to load completed challenges", err)
	}
	stats, err := TrophyStats(ctx, s.DB, ids)
	if err != nil {
		return nil, Internal("failed to load trophy stats", err)
	}
	summaries := SummarizeByUser(stats)

	out := make([]RankingEntry, len(rows))
	for i, r := range rows {
		d := days[r.UserID]
		if d == nil {
			d = []int{}
		}
		sum := summaries[r.UserID]
		out[i] = RankingEntry{
			Position:            i + 1,
			ID:                  r.UserID,
			Name:                s.displayName(r),
			Avatar:              s.avatar(r),
			RankingPoints:       r.RankingPoints,
			Coins:               r.Coins,
			EquippedTitle:       r.EquippedTitle,
			Platinums:           sum.Platinums,
			TotalTrophies:       sum.TotalTrophies,
			CompletedChallenges: d,
		}
	}
	return out, nil
}

// Stats builds the profile statistics of userID; ErrUserNotFound for unknown users.
func (s *RankingService) Stats(ctx context.Context, userID string) (*UserStats, error) {
	db := s.DB.WithContext(ctx)
	ok, err := userExists(db, userID)
	if err != nil {
		return nil, Internal("failed to resolve user", err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	var tracked int64
	if err := db.Model(&models.TrophyProgress{}).
		Where("user_id = ? AND is_tracked = ?", userID, true).
		Count(&tracked).Error; err != nil {
		return nil, Internal("failed to count tracked games", err)
	}
	stats, err := TrophyStats(ctx, s.DB, []string{userID})
	if err != nil {
		return nil, Internal("failed to load trophy stats", err)
	}
	sum := SummarizeByUser(stats)[userID]

	econ, err := loadEconomy(db, userID)
	if err != nil {
		return nil, Internal("failed to load economy", err)
	}
	owned, err := ownedTitleNames(db, userID)
	if err != nil {
		return nil, Internal("failed to load owned titles", err)
	}
	days, err := completedDays(db, userID)
	if err != nil {
		return nil, Internal("failed to load completed challenges", err)
	}
	pos, err := s.position(db, userID, econ.RankingPoints)
	if err != nil {
		return nil, Internal("failed to compute position", err)
	}

	return &UserStats{
		UserID:              userID,
		TrackedGames:        int(tracked),
		TotalTrophies:       sum.TotalTrophies,
		Platinums:           sum.Platinums,
		Coins:               econ.Coins,
		RankingPoints:       econ.RankingPoints,
		OwnedTitles:         owned,
		EquippedTitle:       econ.EquippedTitle,
		CompletedChallenges: days,
		Position:            pos,
	}, nil
}

// position is 1 + the number of users ranked ahead of userID, nil when outside the top N.
func (s *RankingService) position(db *gorm.DB, userID string, points int64) (*int, error) {
	var ahead int64
	err := db.Model(&models.UserProfile{}).
		Joins(rankingEconomyJoin).
		Where(rankingPointsExpr+" > ? OR ("+rankingPointsExpr+" = ? AND user_profiles.external_user_id < ?)",
			points, points, userID).
		Count(&ahead).Error
	if err != nil {
		return nil, err
	}
	p := int(ahead) + 1
	if p > s.limit() {
		return nil, nil
	}
	return &p, nil
}

func (s *RankingService) limit() int {
	if s.Limit <= 0 {
		return DefaultRankingLimit
	}
	return s.Limit
}

func (s *RankingService) displayName(r rankingRow) string {
	if r.Username != nil && *r.Username != "" {
		return *r.Username
	}
	return "Unknown"
}

func (s *RankingService) avatar(r rankingRow) string {
	if r.AvatarURL != nil && *r.AvatarURL != "" {
		return *r.AvatarURL
	}
	return s.DefaultAvatarURL
}
