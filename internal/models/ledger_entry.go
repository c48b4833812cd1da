package models

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type EntryKind string

const (
	EntryKindPurchase EntryKind = "purchase"
	EntryKindUsage    EntryKind = "usage"
	EntryKindBonus    EntryKind = "bonus"
	EntryKindRefund   EntryKind = "refund"
)

// LedgerEntry is one immutable record of a balance change. Amount is signed:
// positive for credits, negative for debits. BalanceAfter is the account's
// coin balance immediately after this entry committed, so replaying entries
// from zero reproduces the balance at every step. Entries are never edited
// or deleted.
type LedgerEntry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"precision:3"` // Millisecond precision

	AccountID uint      `gorm:"index;not null"`
	Kind      EntryKind `gorm:"type:varchar(20);index;not null"`
	Amount    int64     `gorm:"not null"`
	Feature   string    `gorm:"type:varchar(50);index"`

	// ExternalReference is the idempotency key for provider-settled credits.
	// The unique index is what enforces at-most-once crediting; NULLs are
	// distinct, so internal entries carry no reference.
	ExternalReference *string `gorm:"uniqueIndex;type:varchar(100)"`

	BalanceAfter int64 `gorm:"not null"`

	// Snapshot of the provider event for settled credits.
	Metadata datatypes.JSON

	Hash string `gorm:"type:varchar(64);default:''"` // HMAC SHA256
}

// GenerateHash generates a tamper-proof hash for the entry
func (e *LedgerEntry) GenerateHash(secret string) string {
	ref := ""
	if e.ExternalReference != nil {
		ref = *e.ExternalReference
	}
	data := fmt.Sprintf("%d|%d|%d|%d|%s|%s|%s",
		e.AccountID, e.CreatedAt.UnixNano(), e.Amount, e.BalanceAfter,
		e.Kind, e.Feature, ref)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
