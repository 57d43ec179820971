package services

import (
	"testing"

	"trophy-progression-system/models"
)

func TestUserDirectoryTouch(t *testing.T) {
	db := newTestDB(t)
	dir := NewUserDirectory(db)

	if err := dir.Touch(bg, &models.Identity{UserID: "u1", Username: "alice"}); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := dir.Touch(bg, &models.Identity{UserID: "u1", Username: "alice2", AvatarURL: "https://img/a.png"}); err != nil {
		t.Fatalf("Touch update: %v", err)
	}
	// identities without a username are not mirrored
	if err := dir.Touch(bg, &models.Identity{UserID: "u2"}); err != nil {
		t.Fatalf("Touch anonymous: %v", err)
	}

	var p models.UserProfile
	if err := db.Where("external_user_id = ?", "u1").First(&p).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if p.Username != "alice2" || p.AvatarURL == nil || *p.AvatarURL != "https://img/a.png" {
		t.Errorf("profile = %+v", p)
	}

	if ok, _ := dir.Exists(bg, "u1"); !ok {
		t.Error("u1 should exist")
	}
	if ok, _ := dir.Exists(bg, "u2"); ok {
		t.Error("u2 should not exist")
	}

	res, err := dir.Search(bg, "ALI", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res) != 1 || res[0].ID != "u1" {
		t.Errorf("search = %+v", res)
	}
}

func TestErrorsTaxonomy(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrUserNotFound, 404},
		{ErrChallengeCompleted, 400},
		{ErrOfficialTrophyForbidden, 403},
		{Unauthorized("x"), 401},
		{Conflict("x"), 409},
		{Internal("boom", nil), 500},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err).HTTPStatus(); got != tt.status {
			t.Errorf("%v status = %d, want %d", tt.err, got, tt.status)
		}
	}
}
