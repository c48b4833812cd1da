package services

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")

	// errStaleAccount signals that the optimistic version check lost a race
	// and the attempt should be retried against fresh state.
	errStaleAccount = errors.New("account row changed concurrently")
)

const maxBalanceRetries = 5

// Credit adds coins to an account and appends the matching ledger entry in
// one transaction. If externalReference is set and an entry with that
// reference already exists, the existing entry is returned with applied =
// false and the balance is untouched; the unique index on the reference
// column is what closes the race between two concurrent deliveries of the
// same provider event.
func Credit(accountID uint, amount int64, kind models.EntryKind, feature string, externalReference *string, metadata datatypes.JSON) (*models.LedgerEntry, bool, error) {
	if amount <= 0 {
		return nil, false, ErrInvalidAmount
	}

	var entry *models.LedgerEntry
	var err error
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			e, txErr := creditTx(tx, accountID, amount, kind, feature, externalReference, metadata)
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

	if errors.Is(err, gorm.ErrDuplicatedKey) && externalReference != nil {
		existing, findErr := EntryByReference(*externalReference)
		if findErr != nil {
			return nil, false, findErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	InvalidateAccountCache(accountID)
	return entry, true, nil
}

// Debit removes coins from an account. The balance check and the decrement
// are one conditional update, so two concurrent debits racing for the same
// coins cannot both succeed; the loser retries against fresh state and
// fails with ErrInsufficientBalance once the coins are gone.
func Debit(accountID uint, amount int64, kind models.EntryKind, feature string) (*models.LedgerEntry, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var entry *models.LedgerEntry
	var err error
	for attempt := 0; attempt < maxBalanceRetries; attempt++ {
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			e, txErr := debitTx(tx, accountID, amount, kind, feature)
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

// History returns an account's ledger entries, most recent first.
func History(accountID uint, page, limit int) ([]models.LedgerEntry, int64, error) {
	var entries []models.LedgerEntry
	var total int64

	query := database.DB.Model(&models.LedgerEntry{}).Where("account_id = ?", accountID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// EntryByReference looks up the ledger entry settled under an external
// payment reference.
func EntryByReference(reference string) (*models.LedgerEntry, error) {
	var entry models.LedgerEntry
	if err := database.DB.Where("external_reference = ?", reference).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func creditTx(tx *gorm.DB, accountID uint, amount int64, kind models.EntryKind, feature string, externalReference *string, metadata datatypes.JSON) (*models.LedgerEntry, error) {
	var account models.Account
	if err := tx.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	balanceAfter := account.CoinBalance + amount
	result := tx.Model(&models.Account{}).
		Where("id = ? AND version = ?", account.ID, account.Version).
		Updates(map[string]interface{}{
			"coin_balance":       balanceAfter,
			"total_coins_earned": account.TotalCoinsEarned + amount,
			"version":            account.Version + 1,
			"updated_at":         time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errStaleAccount
	}

	entry := &models.LedgerEntry{
		CreatedAt:         time.Now(),
		AccountID:         account.ID,
		Kind:              kind,
		Amount:            amount,
		Feature:           feature,
		ExternalReference: externalReference,
		BalanceAfter:      balanceAfter,
		Metadata:          metadata,
	}
	entry.Hash = entry.GenerateHash(ledgerHashSecret())

	if err := tx.Create(entry).Error; err != nil {
		// A duplicate external reference aborts the whole transaction,
		// including the balance update above.
		return nil, err
	}

	return entry, nil
}

func debitTx(tx *gorm.DB, accountID uint, amount int64, kind models.EntryKind, feature string) (*models.LedgerEntry, error) {
	var account models.Account
	if err := tx.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if account.CoinBalance < amount {
		return nil, ErrInsufficientBalance
	}

	balanceAfter := account.CoinBalance - amount
	result := tx.Model(&models.Account{}).
		Where("id = ? AND version = ? AND coin_balance >= ?", account.ID, account.Version, amount).
		Updates(map[string]interface{}{
			"coin_balance":      balanceAfter,
			"total_coins_spent": account.TotalCoinsSpent + amount,
			"version":           account.Version + 1,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errStaleAccount
	}

	entry := &models.LedgerEntry{
		CreatedAt:    time.Now(),
		AccountID:    account.ID,
		Kind:         kind,
		Amount:       -amount,
		Feature:      feature,
		BalanceAfter: balanceAfter,
	}
	entry.Hash = entry.GenerateHash(ledgerHashSecret())

	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}

	return entry, nil
}

func ledgerHashSecret() string {
	cfg, _ := config.LoadConfig()
	secret := "default-secret"
	if cfg != nil && cfg.JWTSecret != "" {
		secret = cfg.JWTSecret
	}
	return secret
}
