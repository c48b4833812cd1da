package services

import (
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

func setupBonusTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.Migrator().DropTable(&models.Account{}, &models.LedgerEntry{}, &models.UsageCounter{})
	db.AutoMigrate(&models.Account{}, &models.LedgerEntry{}, &models.UsageCounter{})

	database.DB = db
}

func setupBonusTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func seedBonusAccount() models.Account {
	account := models.Account{
		Email:        "bonus@test.com",
		Password:     "hashed",
		Role:         "user",
		ReferralCode: "BONUS001",
		Version:      1,
	}
	database.DB.Create(&account)
	return account
}

func TestClaimDailyBonus_GrantsOncePerDay(t *testing.T) {
	setupBonusTestDB()
	mr := setupBonusTestRedis()
	defer mr.Close()

	account := seedBonusAccount()

	entry, err := ClaimDailyBonus(account.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), entry.Amount)
	assert.Equal(t, models.EntryKindBonus, entry.Kind)
	assert.Equal(t, "daily_bonus", entry.Feature)

	_, err = ClaimDailyBonus(account.ID)
	assert.ErrorIs(t, err, ErrAlreadyClaimedToday)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(5), updated.CoinBalance)
	assert.NotNil(t, updated.LastDailyBonusClaimDate)
}

func TestClaimDailyBonus_NextDayClaimsAgain(t *testing.T) {
	setupBonusTestDB()
	mr := setupBonusTestRedis()
	defer mr.Close()

	account := seedBonusAccount()

	_, err := ClaimDailyBonus(account.ID)
	assert.NoError(t, err)

	// Move yesterday's claim back a day.
	yesterday := dateOnly(time.Now()).AddDate(0, 0, -1)
	database.DB.Model(&models.Account{}).Where("id = ?", account.ID).
		UpdateColumn("last_daily_bonus_claim_date", yesterday)
	InvalidateAccountCache(account.ID)

	_, err = ClaimDailyBonus(account.ID)
	assert.NoError(t, err)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(10), updated.CoinBalance)
}

func TestClaimDailyBonus_ConcurrentClaimsGrantOne(t *testing.T) {
	setupBonusTestDB()
	mr := setupBonusTestRedis()
	defer mr.Close()

	account := seedBonusAccount()

	var wg sync.WaitGroup
	results := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ClaimDailyBonus(account.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrAlreadyClaimedToday)
		}
	}
	assert.Equal(t, 1, succeeded)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(5), updated.CoinBalance)

	var count int64
	database.DB.Model(&models.LedgerEntry{}).Where("feature = ?", "daily_bonus").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestClaimDailyBonus_UnknownAccount(t *testing.T) {
	setupBonusTestDB()
	mr := setupBonusTestRedis()
	defer mr.Close()

	_, err := ClaimDailyBonus(9999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
