package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserEconomy holds the balances of one user. Created lazily with zero balances;
// balances only ever change through single-statement increments/decrements.
type UserEconomy struct {
	UserID        string  `json:"userId" gorm:"primaryKey"`
	Coins         int64   `json:"coins" gorm:"not null;default:0;check:coins >= 0"`
	RankingPoints int64   `json:"rankingPoints" gorm:"not null;default:0;index;check:ranking_points >= 0"`
	EquippedTitle *string `json:"equippedTitle"` // nil or one of the user's owned titles
	Timestamps
}

// OwnedTitle is one purchased title. Unique per (user, title) so a racing second
// purchase fails at insert time.
type OwnedTitle struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID     string    `json:"userId" gorm:"not null;uniqueIndex:idx_owned_user_title"`
	TitleName  string    `json:"titleName" gorm:"not null;uniqueIndex:idx_owned_user_title"`
	CostPaid   int64     `json:"costPaid" gorm:"not null"`
	AcquiredAt time.Time `json:"acquiredAt" gorm:"autoCreateTime"`
}

// TitleDefinition is a shop item.
type TitleDefinition struct {
	ID   string `json:"id" gorm:"primaryKey;type:uuid"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`
	Cost int64  `json:"cost" gorm:"not null;check:cost >= 0"`
	Timestamps
}

func (o *OwnedTitle) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

func (t *TitleDefinition) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
