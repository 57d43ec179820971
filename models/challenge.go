package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeKind says what a user must have done to earn a daily challenge.
type ChallengeKind string

const (
	// ChallengeAnyTrophyInGame: at least one completed trophy in TargetGameID
	ChallengeAnyTrophyInGame ChallengeKind = "ANY_TROPHY_IN_GAME"
	// ChallengeTrophyCount: at least TargetCount completed trophies across all games
	ChallengeTrophyCount ChallengeKind = "TROPHY_COUNT"
	// ChallengeOpen has no requirement; claiming the day is enough
	ChallengeOpen ChallengeKind = "OPEN"
)

// ChallengeDefinition is the admin-owned calendar entry; Day is the natural key (1..31).
type ChallengeDefinition struct {
	Day          int           `json:"day" gorm:"primaryKey;autoIncrement:false"`
	Title        string        `json:"title" gorm:"not null"`
	Points       int64         `json:"points" gorm:"not null;check:points >= 0"`
	Kind         ChallengeKind `json:"kind" gorm:"type:varchar(32);not null"`
	TargetGameID string        `json:"targetGameId,omitempty"`
	TargetCount  int           `json:"targetCount,omitempty" gorm:"not null;default:0"`
	Timestamps
}

// ChallengeCompletion records a claimed day. The (user_id, game_day) unique index is the
// only guard against double claims; rows are immutable once written.
type ChallengeCompletion struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       string    `json:"userId" gorm:"not null;uniqueIndex:idx_completion_user_day"`
	GameDay      int       `json:"gameDay" gorm:"not null;uniqueIndex:idx_completion_user_day;index"`
	PointsEarned int64     `json:"pointsEarned" gorm:"not null"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (c *ChallengeCompletion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}
	return nil
}
