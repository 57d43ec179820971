package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrophyProgress is the per (user, game) tracking record. Exactly one row per pair.
// Rows are created on first touch and never deleted; untracking only flips IsTracked.
type TrophyProgress struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string    `json:"userId" gorm:"not null;uniqueIndex:idx_progress_user_game"`
	GameID      string    `json:"gameId" gorm:"not null;uniqueIndex:idx_progress_user_game"`
	IsTracked   bool      `json:"isTracked" gorm:"not null"`
	LastUpdated time.Time `json:"lastUpdated"`
	Timestamps
}

// CompletedTrophy is one member of a user's completed set for a game.
// TrophyName is free text and intentionally not a foreign key to the catalog.
type CompletedTrophy struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      string    `json:"userId" gorm:"not null;uniqueIndex:idx_completed_user_game_name;index:idx_completed_user"`
	GameID      string    `json:"gameId" gorm:"not null;uniqueIndex:idx_completed_user_game_name"`
	TrophyName  string    `json:"trophyName" gorm:"not null;uniqueIndex:idx_completed_user_game_name"`
	CompletedAt time.Time `json:"completedAt" gorm:"autoCreateTime"`
}

func (p *TrophyProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (c *CompletedTrophy) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
