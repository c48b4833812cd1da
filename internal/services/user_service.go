package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

func accountCacheKey(accountID uint) string {
	return fmt.Sprintf("account:%d", accountID)
}

// FindAccountByID loads an account, serving from the redis cache when
// possible. Every balance or plan write invalidates the cached copy.
func FindAccountByID(accountID uint) (models.Account, error) {
	cacheKey := accountCacheKey(accountID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(database.Ctx, cacheKey).Result()
		if err == nil {
			var account models.Account
			if err := json.Unmarshal([]byte(val), &account); err == nil {
				return account, nil
			}
		}
	}

	var account models.Account
	if err := database.DB.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return account, ErrAccountNotFound
		}
		return account, err
	}

	// Set cache
	if database.RedisClient != nil {
		if data, err := json.Marshal(account); err == nil {
			database.RedisClient.Set(database.Ctx, cacheKey, data, time.Hour)
		}
	}

	return account, nil
}

// InvalidateAccountCache drops the cached copy after a write.
func InvalidateAccountCache(accountID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(database.Ctx, accountCacheKey(accountID))
	}
}

// FindAccounts retrieves a paginated list of accounts.
func FindAccounts(page, limit int) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	offset := (page - 1) * limit

	if err := database.DB.Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := database.DB.Limit(limit).Offset(offset).Find(&accounts).Error; err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}
