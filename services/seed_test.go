package services

import (
	"testing"

	"trophy-progression-system/models"
)

func TestDefaultChallenges(t *testing.T) {
	defs := DefaultChallenges()
	if len(defs) != 31 {
		t.Fatalf("len = %d, want 31", len(defs))
	}
	first, second, last := defs[0], defs[1], defs[30]
	if first.Day != 1 || first.Kind != models.ChallengeAnyTrophyInGame || first.TargetGameID != "elden-ring" || first.Points != 100 {
		t.Errorf("day 1 = %+v", first)
	}
	if second.Day != 2 || second.Kind != models.ChallengeTrophyCount || second.TargetCount != 1 || second.Points != 50 {
		t.Errorf("day 2 = %+v", second)
	}
	if defs[29].TargetCount != 15 || defs[29].Points != 290 {
		t.Errorf("day 30 = %+v", defs[29])
	}
	if last.Day != 31 || last.TargetGameID != "celeste" {
		t.Errorf("day 31 = %+v", last)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := newTestDB(t)

	n, err := SeedTitles(bg, db)
	if err != nil {
		t.Fatalf("SeedTitles: %v", err)
	}
	if n != len(DefaultTitles) {
		t.Errorf("inserted = %d, want %d", n, len(DefaultTitles))
	}
	if n, err = SeedTitles(bg, db); err != nil || n != 0 {
		t.Errorf("second SeedTitles = %d, %v; want 0, nil", n, err)
	}

	if _, err := SeedChallenges(bg, db); err != nil {
		t.Fatalf("SeedChallenges: %v", err)
	}
	if _, err := SeedChallenges(bg, db); err != nil {
		t.Fatalf("second SeedChallenges: %v", err)
	}
	if c := countRows(t, db, &models.ChallengeDefinition{}, "1 = 1"); c != 31 {
		t.Errorf("challenges = %d, want 31", c)
	}
	if c := countRows(t, db, &models.TitleDefinition{}, "1 = 1"); c != int64(len(DefaultTitles)) {
		t.Errorf("titles = %d, want %d", c, len(DefaultTitles))
	}
}
