package services

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"
)

// IsPlatinum reports whether completed covers the whole catalog for a game.
// A game without catalog entries is never platinum.
func IsPlatinum(total, completed int64) bool {
	return total > 0 && completed >= total
}

// ProgressPercentage is round(100*completed/total) capped at 100, 0 for an empty catalog.
func ProgressPercentage(total, completed int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) * 100 / float64(total)))
	if pct > 100 {
		pct = 100
	}
	return pct
}

// GameTrophyStat is one row of the grouped progress × catalog join.
type GameTrophyStat struct {
	UserID    string
	GameID    string
	Completed int64
	Total     int64
}

func (s GameTrophyStat) IsPlatinum() bool { return IsPlatinum(s.Total, s.Completed) }

// UserTrophySummary aggregates GameTrophyStat rows for one user.
type UserTrophySummary struct {
	Platinums     int   `json:"platinums"`
	TotalTrophies int64 `json:"totalTrophies"`
}

const trophyStatsQuery = `
SELECT ct.user_id AS user_id,
       ct.game_id AS game_id,
       COUNT(*) AS completed,
       COALESCE(MAX(cat.total), 0) AS total
FROM completed_trophies ct
LEFT JOIN (
    SELECT game_id, COUNT(*) AS total
    FROM trophy_catalog_entries
    GROUP BY game_id
) cat ON cat.game_id = ct.game_id
WHERE ct.user_id IN ?
GROUP BY ct.user_id, ct.game_id`

// TrophyStats returns per (user, game) completed and catalog totals for every user in
// userIDs with a single grouped query.
func TrophyStats(ctx context.Context, db *gorm.DB, userIDs []string) ([]GameTrophyStat, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []GameTrophyStat
	if err := db.WithContext(ctx).Raw(trophyStatsQuery, userIDs).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("trophy stats query failed: %w", err)
	}
	return rows, nil
}

// SummarizeByUser folds stats into platinum and completed-trophy totals per user.
func SummarizeByUser(stats []GameTrophyStat) map[string]UserTrophySummary {
	out := make(map[string]UserTrophySummary)
	for _, st := range stats {
		sum := out[st.UserID]
		sum.TotalTrophies += st.Completed
		if st.IsPlatinum() {
			sum.Platinums++
		}
		out[st.UserID] = sum
	}
	return out
}
