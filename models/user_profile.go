package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile is a local snapshot of the identity service's user.
// Populated by the profile sync worker and touched from token claims; used for
// "user not found" checks and ranking display.
type UserProfile struct {
	ID             string     `json:"id" gorm:"primaryKey;type:uuid"`
	ExternalUserID string     `json:"externalUserId" gorm:"uniqueIndex;not null"` // the identity service's user id
	Username       string     `json:"username" gorm:"index;not null"`
	AvatarURL      *string    `json:"avatarUrl,omitempty"`
	LastSeen       *time.Time `json:"lastSeen,omitempty"`
	Timestamps
}

func (u *UserProfile) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
