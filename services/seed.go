package services

import (
	"context"
	"fmt"
	"log"

	"trophy-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTitles is the initial shop.
var DefaultTitles = []models.TitleDefinition{
	{Name: "🌸 Sakura Explorer 🌸", Cost: 100},
	{Name: "⚔️ Elite Hunter ⚔️", Cost: 200},
	{Name: "🧩 Puzzle Completionist 🧩", Cost: 150},
	{Name: "📝 Review Master 📝", Cost: 250},
	{Name: "✨ Star Collector ✨", Cost: 300},
	{Name: "🛡️ Legendary Defender 🛡️", Cost: 450},
	{Name: "🌌 Interdimensional Traveler 🌌", Cost: 500},
	{Name: "👑 Sovereign of the Realm 👑", Cost: 1000},
	{Name: "🔮 Mysterious Oracle 🔮", Cost: 750},
	{Name: "🚀 Star Pilot 🚀", Cost: 600},
	{Name: "💖 Heart of Gold 💖", Cost: 200},
	{Name: "⚙️ Master Engineer ⚙️", Cost: 350},
	{Name: "🖋️ Chronicler of History 🖋️", Cost: 250},
	{Name: "💎 Lost Treasure 💎", Cost: 850},
	{Name: "🌙 Night Sentinel 🌙", Cost: 400},
}

// calendarGames are the targets of the odd days, in order.
var calendarGames = []struct{ ID, Name string }{
	{"elden-ring", "Elden Ring"},
	{"grand-theft-auto-v", "Grand Theft Auto V"},
	{"hollow-knight", "Hollow Knight"},
	{"little-nightmares", "Little Nightmares"},
	{"bioshock-2", "BioShock 2"},
	{"half-life", "Half-Life"},
	{"dark-souls-iii", "Dark Souls III"},
	{"stardew-valley", "Stardew Valley"},
	{"hotline-miami", "Hotline Miami"},
	{"hitman", "Hitman"},
	{"far-cry-3", "Far Cry 3"},
	{"path-of-exile", "Path of Exile"},
	{"alan-wake", "Alan Wake"},
	{"borderlands", "Borderlands"},
	{"dishonored-2", "Dishonored 2"},
	{"celeste", "Celeste"},
}

// countRewards are the points of the even days (1..15 trophies).
var countRewards = []int64{50, 75, 90, 105, 120, 135, 150, 165, 190, 205, 220, 235, 250, 265, 290}

// DefaultChallenges builds the 31-day calendar: odd days ask for any trophy in a
// game, even days for a growing number of trophies.
func DefaultChallenges() []models.ChallengeDefinition {
	defs := make([]models.ChallengeDefinition, 0, MaxChallengeDay)
	for day := MinChallengeDay; day <= MaxChallengeDay; day++ {
		if day%2 == 1 {
			g := calendarGames[day/2]
			defs = append(defs, models.ChallengeDefinition{
				Day:          day,
				Title:        "Earn any trophy in " + g.Name,
				Points:       100,
				Kind:         models.ChallengeAnyTrophyInGame,
				TargetGameID: g.ID,
			})
			continue
		}
		n := day / 2
		title := fmt.Sprintf("Earn %d trophies", n)
		if n == 1 {
			title = "Earn 1 trophy"
		}
		defs = append(defs, models.ChallengeDefinition{
			Day:         day,
			Title:       title,
			Points:      countRewards[n-1],
			Kind:        models.ChallengeTrophyCount,
			TargetCount: n,
		})
	}
	return defs
}

// SeedTitles inserts missing default titles; existing names are left untouched.
func SeedTitles(ctx context.Context, db *gorm.DB) (int, error) {
	inserted := 0
	for _, t := range DefaultTitles {
		title := models.TitleDefinition{Name: t.Name, Cost: t.Cost}
		res := db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&title)
		if res.Error != nil {
			return inserted, fmt.Errorf("seed title %q: %w", t.Name, res.Error)
		}
		inserted += int(res.RowsAffected)
	}
	log.Printf("[SEED] 🏷️ Titles: %d inserted, %d already present", inserted, len(DefaultTitles)-inserted)
	return inserted, nil
}

// SeedChallenges upserts the default calendar by day.
func SeedChallenges(ctx context.Context, db *gorm.DB) (int, error) {
	defs := DefaultChallenges()
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "points", "kind", "target_game_id", "target_count", "updated_at"}),
	}).Create(&defs).Error
	if err != nil {
		return 0, fmt.Errorf("seed challenges: %w", err)
	}
	log.Printf("[SEED] 📅 Challenges: %d days upserted", len(defs))
	return len(defs), nil
}
