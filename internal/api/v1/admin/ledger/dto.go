package ledger

import (
	"time"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

type LedgerListItem struct {
	ID                uint             `json:"id"`
	CreatedAt         time.Time        `json:"created_at"`
	AccountID         uint             `json:"account_id"`
	Kind              models.EntryKind `json:"kind"`
	Amount            int64            `json:"amount"`
	Feature           string           `json:"feature,omitempty"`
	ExternalReference *string          `json:"external_reference,omitempty"`
	BalanceAfter      int64            `json:"balance_after"`
	Hash              string           `json:"hash"`
}

type LedgerListResponse struct {
	Entries []LedgerListItem `json:"entries"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Limit   int              `json:"limit"`
}
