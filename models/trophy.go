package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DifficultyBronze = "bronze"
	DifficultySilver = "silver"
	DifficultyGold   = "gold"
)

// TrophyCatalogEntry is one canonical trophy of a game.
// Official rows (IsCustom=false) belong to the reseed job; custom rows are user submitted
// and survive every reseed.
type TrophyCatalogEntry struct {
	ID          string `json:"id" gorm:"primaryKey"`
	GameID      string `json:"gameId" gorm:"index;not null"` // game slug, e.g. "hollow-knight"
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Difficulty  string `json:"difficulty" gorm:"type:varchar(16);not null"`
	ImageURL    string `json:"imageUrl,omitempty" gorm:"type:text"`
	IsCustom    bool   `json:"isCustom" gorm:"not null;index"`
	CreatedBy   string `json:"createdBy,omitempty"` // external user id, empty for official rows
	Timestamps
}

func (e *TrophyCatalogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Difficulty == "" {
		e.Difficulty = DifficultyBronze
	}
	return nil
}
