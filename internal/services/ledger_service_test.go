package services

import (
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

func setupLedgerTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect database")
	}

	// A single connection serializes transactions, which sqlite needs for
	// the concurrent cases below.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.Migrator().DropTable(&models.Account{}, &models.LedgerEntry{}, &models.UsageCounter{})
	db.AutoMigrate(&models.Account{}, &models.LedgerEntry{}, &models.UsageCounter{})

	database.DB = db
}

func setupLedgerTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func seedAccount(balance int64) models.Account {
	account := models.Account{
		Email:            "ledger@test.com",
		Password:         "hashed",
		Role:             "user",
		CoinBalance:      balance,
		TotalCoinsEarned: balance,
		ReferralCode:     "LEDGER01",
		Version:          1,
	}
	database.DB.Create(&account)
	return account
}

func TestCreditAndDebit_BalanceConservation(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(0)

	_, applied, err := Credit(account.ID, 100, models.EntryKindPurchase, "", nil, nil)
	assert.NoError(t, err)
	assert.True(t, applied)

	_, err = Debit(account.ID, 30, models.EntryKindUsage, "chat")
	assert.NoError(t, err)

	_, _, err = Credit(account.ID, 5, models.EntryKindBonus, "daily_bonus", nil, nil)
	assert.NoError(t, err)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(75), updated.CoinBalance)
	assert.Equal(t, int64(105), updated.TotalCoinsEarned)
	assert.Equal(t, int64(30), updated.TotalCoinsSpent)
	assert.Equal(t, updated.TotalCoinsEarned-updated.TotalCoinsSpent, updated.CoinBalance)

	// Replaying the entries from zero reproduces the final balance, and
	// every entry's running balance matches the sum so far.
	var entries []models.LedgerEntry
	database.DB.Where("account_id = ?", account.ID).Order("id").Find(&entries)
	assert.Len(t, entries, 3)

	var running int64
	for _, e := range entries {
		running += e.Amount
		assert.Equal(t, running, e.BalanceAfter)
	}
	assert.Equal(t, updated.CoinBalance, running)
}

func TestCredit_IdempotentByReference(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(0)
	reference := "PS_REF_123"

	first, applied, err := Credit(account.ID, 50, models.EntryKindPurchase, "", &reference, nil)
	assert.NoError(t, err)
	assert.True(t, applied)

	second, applied, err := Credit(account.ID, 50, models.EntryKindPurchase, "", &reference, nil)
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, first.ID, second.ID)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(50), updated.CoinBalance)

	var count int64
	database.DB.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCredit_NilReferencesDoNotCollide(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(0)

	_, applied, err := Credit(account.ID, 10, models.EntryKindBonus, "signup", nil, nil)
	assert.NoError(t, err)
	assert.True(t, applied)

	_, applied, err = Credit(account.ID, 10, models.EntryKindBonus, "daily_bonus", nil, nil)
	assert.NoError(t, err)
	assert.True(t, applied)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(20), updated.CoinBalance)
}

func TestCredit_RejectsNonPositiveAmount(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(0)

	_, _, err := Credit(account.ID, 0, models.EntryKindBonus, "", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, _, err = Credit(account.ID, -5, models.EntryKindBonus, "", nil, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Debit(account.ID, -5, models.EntryKindUsage, "chat")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDebit_InsufficientBalance(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(5)

	_, err := Debit(account.ID, 10, models.EntryKindUsage, "prescription")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing changed and nothing was recorded.
	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(5), updated.CoinBalance)

	var count int64
	database.DB.Model(&models.LedgerEntry{}).Where("account_id = ?", account.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDebit_ConcurrentNeverOverdraws(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(10)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Debit(account.ID, 3, models.EntryKindUsage, "drug_lookup")
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
			assert.ErrorIs(t, err, ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 3, succeeded)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(1), updated.CoinBalance)
	assert.GreaterOrEqual(t, updated.CoinBalance, int64(0))
}

func TestDebit_AccountNotFound(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	_, err := Debit(9999, 1, models.EntryKindUsage, "chat")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, _, err = Credit(9999, 1, models.EntryKindBonus, "", nil, nil)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestHistory_Pagination(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(0)
	for i := 0; i < 5; i++ {
		_, _, err := Credit(account.ID, 10, models.EntryKindBonus, "daily_bonus", nil, nil)
		assert.NoError(t, err)
	}

	entries, total, err := History(account.ID, 1, 3)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, entries, 3)

	entries, _, err = History(account.ID, 2, 3)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLedgerEntry_HashDetectsTampering(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(0)
	entry, _, err := Credit(account.ID, 40, models.EntryKindPurchase, "", nil, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, entry.Hash)

	var stored models.LedgerEntry
	database.DB.First(&stored, entry.ID)
	assert.Equal(t, stored.GenerateHash(ledgerHashSecret()), stored.Hash)

	stored.Amount = 400
	assert.NotEqual(t, stored.GenerateHash(ledgerHashSecret()), stored.Hash)
}

func TestCredit_DuplicateReferenceRollsBackBalance(t *testing.T) {
	setupLedgerTestDB()
	mr := setupLedgerTestRedis()
	defer mr.Close()

	account := seedAccount(0)
	reference := "PS_REF_ROLLBACK"

	_, _, err := Credit(account.ID, 25, models.EntryKindPurchase, "", &reference, nil)
	assert.NoError(t, err)

	// The duplicate aborts the whole transaction, so the balance update
	// inside it never lands.
	_, applied, err := Credit(account.ID, 25, models.EntryKindPurchase, "", &reference, nil)
	assert.NoError(t, err)
	assert.False(t, applied)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(25), updated.CoinBalance)

	var count int64
	database.DB.Model(&models.LedgerEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
