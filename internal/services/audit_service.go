package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

// LedgerFilter defines criteria for filtering ledger entries
type LedgerFilter struct {
	AccountID *uint
	Kind      *models.EntryKind
	Feature   *string
	StartTime *time.Time
	EndTime   *time.Time
	MinAmount *int64
	MaxAmount *int64
	Page      int
	Limit     int
}

// FindLedgerEntries retrieves a paginated list of ledger entries with filtering
func FindLedgerEntries(filter LedgerFilter) ([]models.LedgerEntry, int64, error) {
	var entries []models.LedgerEntry
	var total int64

	query := database.DB.Model(&models.LedgerEntry{})

	if filter.AccountID != nil {
		query = query.Where("account_id = ?", *filter.AccountID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.Feature != nil {
		query = query.Where("feature = ?", *filter.Feature)
	}
	if filter.StartTime != nil {
		query = query.Where("created_at >= ?", *filter.StartTime)
	}
	if filter.EndTime != nil {
		query = query.Where("created_at <= ?", *filter.EndTime)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at desc").Limit(filter.Limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// GenerateLedgerCSV generates a CSV file content for ledger entries
func GenerateLedgerCSV(entries []models.LedgerEntry) ([]byte, error) {
	b := &bytes.Buffer{}
	w := csv.NewWriter(b)

	header := []string{
		"ID", "Time", "Account ID", "Kind", "Amount",
		"Feature", "External Reference", "Balance After", "Hash",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, e := range entries {
		ref := ""
		if e.ExternalReference != nil {
			ref = *e.ExternalReference
		}
		record := []string{
			fmt.Sprintf("%d", e.ID),
			e.CreatedAt.Format(time.RFC3339Nano),
			fmt.Sprintf("%d", e.AccountID),
			string(e.Kind),
			fmt.Sprintf("%d", e.Amount),
			e.Feature,
			ref,
			fmt.Sprintf("%d", e.BalanceAfter),
			e.Hash,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
