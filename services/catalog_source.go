package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"trophy-progression-system/models"
	"trophy-progression-system/utils"
)

const (
	catalogGamesFile        = "data.json"
	catalogAchievementsFile = "achievements.json"
)

// CatalogSource yields the raw canonical catalog files.
type CatalogSource interface {
	Name() string
	Load(ctx context.Context) (games, achievements []byte, err error)
}

// DirCatalogSource reads data.json and achievements.json from a local directory.
type DirCatalogSource struct {
	Dir string
}

func (s DirCatalogSource) Name() string { return "dir:" + s.Dir }

func (s DirCatalogSource) Load(ctx context.Context) ([]byte, []byte, error) {
	games, err := utils.ReadFileInDir(s.Dir, catalogGamesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", catalogGamesFile, err)
	}
	achievements, err := utils.ReadFileInDir(s.Dir, catalogAchievementsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", catalogAchievementsFile, err)
	}
	return games, achievements, nil
}

// R2CatalogSource reads the same two files from an R2 bucket, optionally under a prefix.
type R2CatalogSource struct {
	Client *utils.R2Client
	Prefix string
}

func (s R2CatalogSource) Name() string { return "r2:" + s.Prefix }

func (s R2CatalogSource) key(name string) string {
	p := strings.Trim(s.Prefix, "/")
	if p == "" {
		return name
	}
	return p + "/" + name
}

func (s R2CatalogSource) Load(ctx context.Context) ([]byte, []byte, error) {
	games, err := s.Client.FetchObject(ctx, s.key(catalogGamesFile))
	if err != nil {
		return nil, nil, err
	}
	achievements, err := s.Client.FetchObject(ctx, s.key(catalogAchievementsFile))
	if err != nil {
		return nil, nil, err
	}
	return games, achievements, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type catalogGamesDoc struct {
	Games []struct {
		ID   flexString `json:"id"`
		Name string     `json:"nome"`
	} `json:"games"`
}

type rawAchievement struct {
	ID          flexString `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Percent     flexString `json:"percent"`
}

// DifficultyForPercent derives a tier from the global unlock rate.
func DifficultyForPercent(raw string) string {
	pct, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return DefaultDifficulty
	}
	switch {
	case pct >= 50:
		return models.DifficultyBronze
	case pct >= 10:
		return models.DifficultySilver
	default:
		return models.DifficultyGold
	}
}

// DefaultDifficulty is used when no unlock rate is known.
const DefaultDifficulty = models.DifficultyBronze
