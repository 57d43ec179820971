// services/users.go
package services

import (
	"context"
	"strings"
	"time"

	"trophy-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserDirectory is the local mirror of the identity service's users.
type UserDirectory struct {
	DB *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{DB: db}
}

// Touch upserts the profile row for a verified identity and stamps LastSeen.
func (d *UserDirectory) Touch(ctx context.Context, id *models.Identity) error {
	if id == nil || id.UserID == "" || id.Username == "" {
		return nil
	}
	now := time.Now()
	profile := models.UserProfile{
		ExternalUserID: id.UserID,
		Username:       id.Username,
		LastSeen:       &now,
	}
	cols := []string{"username", "last_seen", "updated_at"}
	if id.AvatarURL != "" {
		avatar := id.AvatarURL
		profile.AvatarURL = &avatar
		cols = append(cols, "avatar_url")
	}
	return d.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_user_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(&profile).Error
}

// Exists reports whether userID resolves to a known profile.
func (d *UserDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	return userExists(d.DB.WithContext(ctx), userID)
}

func userExists(db *gorm.DB, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var n int64
	if err := db.Model(&models.UserProfile{}).
		Where("external_user_id = ?", userID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// UserSummary is the public projection of a profile.
type UserSummary struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// Search finds profiles whose username contains query (case-insensitive).
func (d *UserDirectory) Search(ctx context.Context, query string, limit int) ([]UserSummary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	db := d.DB.WithContext(ctx).Model(&models.UserProfile{}).Order("username ASC").Limit(limit)
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		db = db.Where("LOWER(username) LIKE ?", "%"+q+"%")
	}

	var users []models.UserProfile
	if err := db.Find(&users).Error; err != nil {
		return nil, Internal("search failed", err)
	}
	res := make([]UserSummary, len(users))
	for i, u := range users {
		res[i] = UserSummary{ID: u.ExternalUserID, Username: u.Username, AvatarURL: u.AvatarURL}
	}
	return res, nil
}
