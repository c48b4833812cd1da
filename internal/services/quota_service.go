package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

// IncrementUsage bumps the current calendar month's counter for a feature,
// creating it at 1 if this is the first use in the period. The upsert keeps
// concurrent increments from losing updates.
func IncrementUsage(accountID uint, feature string) error {
	now := time.Now()
	counter := models.UsageCounter{
		AccountID: accountID,
		Feature:   feature,
		Year:      now.Year(),
		Month:     int(now.Month()),
		Count:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"}, {Name: "feature"}, {Name: "year"}, {Name: "month"},
		},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("count + 1"),
			"updated_at": now,
		}),
	}).Create(&counter).Error
}

// CurrentUsage reads the current period's counter. Past periods are never
// consulted; a rolled-over month reads as zero because no row exists yet.
func CurrentUsage(accountID uint, feature string) (int, error) {
	now := time.Now()
	var counter models.UsageCounter
	err := database.DB.
		Where("account_id = ? AND feature = ? AND year = ? AND month = ?",
			accountID, feature, now.Year(), int(now.Month())).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return counter.Count, nil
}
