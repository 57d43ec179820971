package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"trophy-progression-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ShopService struct {
	DB *gorm.DB
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{DB: db}
}

type PurchaseResult struct {
	Coins       int64    `json:"coins"`
	OwnedTitles []string `json:"ownedTitles"`
}

type EquipResult struct {
	EquippedTitle string `json:"equippedTitle"`
}

// ListTitles returns the shop ordered by cost, then name.
func (s *ShopService) ListTitles(ctx context.Context) ([]models.TitleDefinition, error) {
	titles := []models.TitleDefinition{}
	if err := s.DB.WithContext(ctx).Order("cost ASC, name ASC").Find(&titles).Error; err != nil {
		return nil, Internal("failed to load titles", err)
	}
	return titles, nil
}

func (s *ShopService) CreateTitle(ctx context.Context, name string, cost int64) (*models.TitleDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, BadRequest("name is required")
	}
	if cost < 0 {
		return nil, BadRequest("cost must be non-negative")
	}
	title := models.TitleDefinition{Name: name, Cost: cost}
	if err := s.DB.WithContext(ctx).Create(&title).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateTitle
		}
		return nil, Internal("failed to create title", err)
	}
	log.Printf("[SHOP] ➕ Title %q created (cost=%d)", title.Name, title.Cost)
	return &title, nil
}

// UpdateTitle changes name and/or cost. Owned and equipped copies keep the old name.
func (s *ShopService) UpdateTitle(ctx context.Context, id string, name *string, cost *int64) (*models.TitleDefinition, error) {
	var title models.TitleDefinition
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&title).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTitleNotFound
			}
			return err
		}
		if name != nil {
			n := strings.TrimSpace(*name)
			if n == "" {
				return BadRequest("name cannot be empty")
			}
			title.Name = n
		}
		if cost != nil {
			if *cost < 0 {
				return BadRequest("cost must be non-negative")
			}
			title.Cost = *cost
		}
		if err := tx.Save(&title).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTitle
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to update title")
	}
	return &title, nil
}

func (s *ShopService) DeleteTitle(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.TitleDefinition{})
	if res.Error != nil {
		return Internal("failed to delete title", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTitleNotFound
	}
	return nil
}

// Purchase buys titleName for userID at the shop's price. clientCost, when given,
// must equal that price. The balance is checked before ownership. The debit is
// conditional on the balance and the ownership insert is guarded by the
// (user_id, title_name) unique index; a failure after the debit rolls it back.
func (s *ShopService) Purchase(ctx context.Context, userID, titleName string, clientCost *int64) (res *PurchaseResult, err error) {
	defer func() { titlePurchases.WithLabelValues(resultLabel(err)).Inc() }()

	titleName = strings.TrimSpace(titleName)
	res = &PurchaseResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var title models.TitleDefinition
		if err := tx.Where("name = ?", titleName).First(&title).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTitleNotFound
			}
			return fmt.Errorf("load title: %w", err)
		}
		if clientCost != nil && *clientCost != title.Cost {
			return ErrTitlePriceMismatch
		}

		ok, err := userExists(tx, userID)
		if err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}
		if !ok {
			return ErrUserNotFound
		}
		if err := ensureEconomy(tx, userID); err != nil {
			return fmt.Errorf("ensure economy: %w", err)
		}
		econ, err := loadEconomy(tx, userID)
		if err != nil {
			return fmt.Errorf("load economy: %w", err)
		}
		if econ.Coins < title.Cost {
			return ErrInsufficientCoins
		}
		var already int64
		if err := tx.Model(&models.OwnedTitle{}).
			Where("user_id = ? AND title_name = ?", userID, title.Name).
			Count(&already).Error; err != nil {
			return fmt.Errorf("check ownership: %w", err)
		}
		if already > 0 {
			return ErrTitleOwned
		}

		debit := tx.Model(&models.UserEconomy{}).
			Where("user_id = ? AND coins >= ?", userID, title.Cost).
			Update("coins", gorm.Expr("coins - ?", title.Cost))
		if debit.Error != nil {
			return fmt.Errorf("debit coins: %w", debit.Error)
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientCoins
		}

		owned := models.OwnedTitle{UserID: userID, TitleName: title.Name, CostPaid: title.Cost}
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "title_name"}},
			DoNothing: true,
		}).Create(&owned)
		if ins.Error != nil {
			return fmt.Errorf("grant title: %w", ins.Error)
		}
		if ins.RowsAffected == 0 {
			return ErrTitleOwned
		}

		econ, err = loadEconomy(tx, userID)
		if err != nil {
			return fmt.Errorf("reload economy: %w", err)
		}
		names, err := ownedTitleNames(tx, userID)
		if err != nil {
			return fmt.Errorf("load owned titles: %w", err)
		}
		res.Coins = econ.Coins
		res.OwnedTitles = names
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "failed to purchase title")
	}
	log.Printf("[SHOP] 🛒 %s bought %q → coins=%d", userID, titleName, res.Coins)
	return res, nil
}

// Equip sets the user's displayed title. Repeating the call is a no-op.
func (s *ShopService) Equip(ctx context.Context, userID, titleName string) (*EquipResult, error) {
	titleName = strings.TrimSpace(titleName)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := userExists(tx, userID)
		if err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}
		if !ok {
			return ErrUserNotFound
		}

		var n int64
		if err := tx.Model(&models.OwnedTitle{}).
			Where("user_id = ? AND title_name = ?", userID, titleName).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check ownership: %w", err)
		}
		if n == 0 {
			return ErrTitleNotOwned
		}

		if err := ensureEconomy(tx, userID); err != nil {
			return fmt.Errorf("ensure economy: %w", err)
		}
		return tx.Model(&models.UserEconomy{}).
			Where("user_id = ?", userID).
			Update("equipped_title", titleName).Error
	})
	if err != nil {
		return nil, asAppError(err, "failed to equip title")
	}
	return &EquipResult{EquippedTitle: titleName}, nil
}
