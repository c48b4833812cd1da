package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

var ErrAlreadyClaimedToday = errors.New("daily bonus already claimed today")

// ClaimDailyBonus grants the once-per-day coin bonus. The date guard and the
// credit commit in one transaction, and the guard is a conditional update on
// the claim date, so two concurrent claims on the same day produce exactly
// one credit.
func ClaimDailyBonus(accountID uint) (*models.LedgerEntry, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	today := dateOnly(time.Now())

	var entry *models.LedgerEntry
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			var account models.Account
			if txErr := tx.First(&account, accountID).Error; txErr != nil {
				if errors.Is(txErr, gorm.ErrRecordNotFound) {
					return ErrAccountNotFound
				}
				return txErr
			}

			if account.LastDailyBonusClaimDate != nil && !account.LastDailyBonusClaimDate.Before(today) {
				return ErrAlreadyClaimedToday
			}

			result := tx.Model(&models.Account{}).
				Where("id = ? AND (last_daily_bonus_claim_date IS NULL OR last_daily_bonus_claim_date < ?)",
					accountID, today).
				Updates(map[string]interface{}{
					"last_daily_bonus_claim_date": today,
					"updated_at":                  time.Now(),
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrAlreadyClaimedToday
			}

			e, txErr := creditTx(tx, accountID, cfg.DailyBonusCoins, models.EntryKindBonus, "daily_bonus", nil, nil)
			if txErr != nil {
				return txErr
			}
			entry = e
			return nil
		})
		if !errors.Is(err, errStaleAccount) {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	InvalidateAccountCache(accountID)
	return entry, nil
}

// dateOnly strips the time component, leaving midnight in server time.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
