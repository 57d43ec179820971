package services

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"trophy-progression-system/models"
)

func TestToggleTrophyRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	if _, err := svc.ToggleTrophy(bg, "u1", "g1", "First Blood"); err != nil {
		t.Fatalf("seed toggle: %v", err)
	}
	before, err := svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}

	on, err := svc.ToggleTrophy(bg, "u1", "g1", "Second Wind")
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on.IsCompleted || on.TotalCompleted != 2 {
		t.Errorf("toggle on = %+v, want completed with 2 total", on)
	}

	off, err := svc.ToggleTrophy(bg, "u1", "g1", "Second Wind")
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if off.IsCompleted || off.TotalCompleted != 1 {
		t.Errorf("toggle off = %+v, want not completed with 1 total", off)
	}

	after, err := svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if !reflect.DeepEqual(before["g1"].CompletedTrophies, after["g1"].CompletedTrophies) {
		t.Errorf("completed = %v, want %v", after["g1"].CompletedTrophies, before["g1"].CompletedTrophies)
	}
}

func TestToggleTrophyCreatesTrackedRecord(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	if _, err := svc.ToggleTrophy(bg, "u1", "g1", "A"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	var prog models.TrophyProgress
	if err := db.Where("user_id = ? AND game_id = ?", "u1", "g1").First(&prog).Error; err != nil {
		t.Fatalf("load progress: %v", err)
	}
	if !prog.IsTracked {
		t.Error("new record should start tracked")
	}
}

func TestToggleTrophyKeepsUntrackedFlag(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	if _, err := svc.SetTracked(bg, "u1", "g1", false); err != nil {
		t.Fatalf("SetTracked: %v", err)
	}
	if _, err := svc.ToggleTrophy(bg, "u1", "g1", "A"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	progress, err := svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if progress["g1"].IsTracked {
		t.Error("existing untracked record should stay untracked")
	}
}

func TestToggleTrophyNormalizesNames(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	// "é" precomposed vs "e" + combining acute
	if _, err := svc.ToggleTrophy(bg, "u1", "g1", "Caf\u00e9"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	res, err := svc.ToggleTrophy(bg, "u1", "g1", "  Cafe\u0301 ")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.IsCompleted || res.TotalCompleted != 0 {
		t.Errorf("second toggle = %+v, want the same trophy removed", res)
	}
}

func TestToggleTrophyRequiresNames(t *testing.T) {
	svc := NewTrophyService(newTestDB(t))
	_, err := svc.ToggleTrophy(bg, "u1", "", "A")
	if KindOf(err) != KindBadRequest {
		t.Errorf("kind = %v, want bad_request", KindOf(err))
	}
}

func TestSetTrackedKeepsCompletedSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	if _, err := svc.ToggleTrophy(bg, "u1", "g1", "A"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	res, err := svc.SetTracked(bg, "u1", "g1", false)
	if err != nil {
		t.Fatalf("SetTracked: %v", err)
	}
	if res.IsTracked {
		t.Error("IsTracked = true, want false")
	}

	progress, err := svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	g := progress["g1"]
	if g.IsTracked || g.CompletedCount != 1 {
		t.Errorf("progress = %+v, want untracked with 1 completed", g)
	}
	if n := countRows(t, db, &models.TrophyProgress{}, "user_id = ?", "u1"); n != 1 {
		t.Errorf("progress rows = %d, want 1", n)
	}
}

func TestPlatinumScenario(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)
	createCatalog(t, db, "g1", "A", "B", "C")

	for _, n := range []string{"A", "B"} {
		if _, err := svc.ToggleTrophy(bg, "u1", "g1", n); err != nil {
			t.Fatalf("toggle %s: %v", n, err)
		}
	}
	progress, err := svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	g := progress["g1"]
	if g.IsPlatinum || g.ProgressPercentage != 67 || g.Total != 3 {
		t.Errorf("after 2/3: %+v, want not platinum, 67%%, total 3", g)
	}

	if _, err := svc.ToggleTrophy(bg, "u1", "g1", "C"); err != nil {
		t.Fatalf("toggle C: %v", err)
	}
	progress, err = svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	g = progress["g1"]
	if !g.IsPlatinum || g.ProgressPercentage != 100 {
		t.Errorf("after 3/3: %+v, want platinum at 100%%", g)
	}
}

func TestZeroCatalogNeverPlatinum(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	for _, n := range []string{"A", "B", "C"} {
		if _, err := svc.ToggleTrophy(bg, "u1", "indie", n); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	progress, err := svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	g := progress["indie"]
	if g.IsPlatinum || g.ProgressPercentage != 0 || g.Total != 0 {
		t.Errorf("progress = %+v, want no platinum for empty catalog", g)
	}
}

func TestToggleAllIntersectsWithCatalog(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)
	createCatalog(t, db, "g1", "A", "B", "C")

	res, err := svc.ToggleAll(bg, "u1", "g1", []string{"A", "B", "Bogus", "A"}, true)
	if err != nil {
		t.Fatalf("ToggleAll: %v", err)
	}
	if want := []string{"A", "B"}; !reflect.DeepEqual(res.CompletedTrophies, want) {
		t.Errorf("completed = %v, want %v", res.CompletedTrophies, want)
	}
	if !res.IsTracked {
		t.Error("markAll should set tracked")
	}
}

func TestToggleAllEmptyListMarksWholeCatalog(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)
	createCatalog(t, db, "g1", "A", "B", "C")

	res, err := svc.ToggleAll(bg, "u1", "g1", nil, true)
	if err != nil {
		t.Fatalf("ToggleAll: %v", err)
	}
	if res.TotalCompleted != 3 {
		t.Errorf("TotalCompleted = %d, want 3", res.TotalCompleted)
	}
	progress, err := svc.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if !progress["g1"].IsPlatinum {
		t.Error("marking the whole catalog should reach platinum")
	}
}

func TestToggleAllUnionsAndClears(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	if _, err := svc.ToggleTrophy(bg, "u1", "indie", "Existing"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	res, err := svc.ToggleAll(bg, "u1", "indie", []string{"New", "Existing"}, true)
	if err != nil {
		t.Fatalf("ToggleAll mark: %v", err)
	}
	got := append([]string(nil), res.CompletedTrophies...)
	sort.Strings(got)
	if want := []string{"Existing", "New"}; !reflect.DeepEqual(got, want) {
		t.Errorf("completed = %v, want %v", got, want)
	}

	res, err = svc.ToggleAll(bg, "u1", "indie", nil, false)
	if err != nil {
		t.Fatalf("ToggleAll clear: %v", err)
	}
	if len(res.CompletedTrophies) != 0 || res.TotalCompleted != 0 {
		t.Errorf("after clear = %+v, want empty", res)
	}
	if n := countRows(t, db, &models.TrophyProgress{}, "user_id = ? AND game_id = ?", "u1", "indie"); n != 1 {
		t.Errorf("progress rows = %d, want the record kept", n)
	}
}

func TestToggleAllClearOnNewGameStartsTracked(t *testing.T) {
	db := newTestDB(t)
	svc := NewTrophyService(db)

	res, err := svc.ToggleAll(bg, "u1", "fresh", nil, false)
	if err != nil {
		t.Fatalf("ToggleAll: %v", err)
	}
	if !res.IsTracked || res.TotalCompleted != 0 {
		t.Errorf("result = %+v, want tracked and empty", res)
	}
}

func TestGetProgressUnknownUser(t *testing.T) {
	svc := NewTrophyService(newTestDB(t))
	progress, err := svc.GetProgress(bg, "nobody")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(progress) != 0 {
		t.Errorf("progress = %v, want empty", progress)
	}
}

func TestCatalogDeleteKeepsCompletedNames(t *testing.T) {
	db := newTestDB(t)
	trophies := NewTrophyService(db)
	catalog := NewCatalogService(db, nil)
	createCatalog(t, db, "g1", "A", "B")

	if _, err := trophies.ToggleTrophy(bg, "u1", "g1", "A"); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	var entry models.TrophyCatalogEntry
	if err := db.Where("game_id = ? AND name = ?", "g1", "A").First(&entry).Error; err != nil {
		t.Fatalf("load entry: %v", err)
	}
	if err := catalog.Delete(bg, entry.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	progress, err := trophies.GetProgress(bg, "u1")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	g := progress["g1"]
	if !reflect.DeepEqual(g.CompletedTrophies, []string{"A"}) || g.Total != 1 {
		t.Errorf("progress = %+v, want A kept and total 1", g)
	}
	// 1 completed of 1 remaining entry
	if !g.IsPlatinum {
		t.Error("expected platinum against the shrunken catalog")
	}

	if err := catalog.Delete(bg, entry.ID); !errors.Is(err, ErrTrophyNotFound) {
		t.Errorf("second delete err = %v, want ErrTrophyNotFound", err)
	}
}
