package services

import (
	"reflect"
	"testing"
)

func TestRankingOrder(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankingService(db, 0, "https://avatar.example/default.png")
	createUser(t, db, "a", "Alice")
	createUser(t, db, "b", "Bob")
	setCoins(t, db, "b", 300)
	setCoins(t, db, "a", 500)

	entries, err := svc.GetRanking(bg)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].ID != "a" || entries[1].ID != "b" {
		t.Errorf("order = [%s %s], want [a b]", entries[0].ID, entries[1].ID)
	}
	if entries[0].Position != 1 || entries[0].Name != "Alice" || entries[0].RankingPoints != 500 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Avatar != "https://avatar.example/default.png" {
		t.Errorf("avatar = %q, want default", entries[0].Avatar)
	}
}

func TestRankingTieBreakAndLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewRankingService(db, 2, "")
	for _, id := range []string{"c", "a", "b"} {
		createUser(t, db, id, id)
		setCoins(t, db, id, 100)
	}

	entries, err := svc.GetRanking(bg)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestRankingJoinsTrophiesAndChallenges(t *testing.T) {
	db := newTestDB(t)
	ranking := NewRankingService(db, 50, "")
	trophies := NewTrophyService(db)
	challenges := NewChallengeService(db, false)
	shop := NewShopService(db)

	createUser(t, db, "u1", "alice")
	createCatalog(t, db, "g1", "A", "B")
	createChallenge(t, db, 2, 50)
	createChallenge(t, db, 1, 100)

	for _, n := range []string{"A", "B"} {
		if _, err := trophies.ToggleTrophy(bg, "u1", "g1", n); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	if _, err := trophies.ToggleTrophy(bg, "u1", "g2", "Z"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	for _, d := range []int{2, 1} {
		if _, err := challenges.Complete(bg, "u1", d); err != nil {
			t.Fatalf("Complete: %v", err)
		}
	}
	if _, err := shop.CreateTitle(bg, "Star Pilot", 100); err != nil {
		t.Fatalf("CreateTitle: %v", err)
	}
	if _, err := shop.Purchase(bg, "u1", "Star Pilot", nil); err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if _, err := shop.Equip(bg, "u1", "Star Pilot"); err != nil {
		t.Fatalf("Equip: %v", err)
	}

	entries, err := ranking.GetRanking(bg)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Platinums != 1 || e.TotalTrophies != 3 {
		t.Errorf("trophies = %d platinums / %d total, want 1 / 3", e.Platinums, e.TotalTrophies)
	}
	if !reflect.DeepEqual(e.CompletedChallenges, []int{1, 2}) {
		t.Errorf("challenges = %v, want [1 2]", e.CompletedChallenges)
	}
	if e.RankingPoints != 150 || e.Coins != 50 {
		t.Errorf("balances = %d points / %d coins, want 150 / 50", e.RankingPoints, e.Coins)
	}
	if e.EquippedTitle == nil || *e.EquippedTitle != "Star Pilot" {
		t.Errorf("equipped = %v", e.EquippedTitle)
	}
}

func TestUserStats(t *testing.T) {
	db := newTestDB(t)
	ranking := NewRankingService(db, 1, "")
	trophies := NewTrophyService(db)
	createUser(t, db, "u1", "alice")
	createUser(t, db, "u2", "bob")
	setCoins(t, db, "u1", 10)
	setCoins(t, db, "u2", 20)

	if _, err := trophies.SetTracked(bg, "u1", "g1", true); err != nil {
		t.Fatalf("SetTracked: %v", err)
	}
	if _, err := trophies.ToggleTrophy(bg, "u1", "g2", "A"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	stats, err := ranking.Stats(bg, "u1")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TrackedGames != 2 || stats.TotalTrophies != 1 {
		t.Errorf("stats = %+v, want 2 tracked games and 1 trophy", stats)
	}
	if stats.Position != nil {
		t.Errorf("position = %d, want nil outside the top 1", *stats.Position)
	}

	top, err := ranking.Stats(bg, "u2")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if top.Position == nil || *top.Position != 1 {
		t.Errorf("u2 position = %v, want 1", top.Position)
	}

	if _, err := ranking.Stats(bg, "ghost"); KindOf(err) != KindNotFound {
		t.Errorf("unknown user kind = %v, want not_found", KindOf(err))
	}
}

func TestRankingEmpty(t *testing.T) {
	svc := NewRankingService(newTestDB(t), 50, "")
	entries, err := svc.GetRanking(bg)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}

func TestRankingIncludesUsersWithoutEconomy(t *testing.T) {
	db := newTestDB(t)
	ranking := NewRankingService(db, 50, "")
	createUser(t, db, "alice", "alice")
	createUser(t, db, "bob", "bob")
	setCoins(t, db, "alice", 10)
	createCatalog(t, db, "g1", "Only")
	if _, err := NewTrophyService(db).ToggleTrophy(bg, "bob", "g1", "Only"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	entries, err := ranking.GetRanking(bg)
	if err != nil {
		t.Fatalf("GetRanking: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	bob := entries[1]
	if bob.ID != "bob" || bob.Position != 2 || bob.RankingPoints != 0 || bob.Platinums != 1 {
		t.Errorf("bob = %+v, want position 2 with 0 points and 1 platinum", bob)
	}

	stats, err := ranking.Stats(bg, "bob")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Position == nil || *stats.Position != 2 {
		t.Errorf("bob position = %v, want 2", stats.Position)
	}
}
