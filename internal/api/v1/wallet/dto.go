package wallet

import (
	"time"

	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

// BalanceResponse summarizes the account's coin position.
type BalanceResponse struct {
	CoinBalance      int64 `json:"coin_balance"`
	TotalCoinsEarned int64 `json:"total_coins_earned"`
	TotalCoinsSpent  int64 `json:"total_coins_spent"`
}

type LedgerEntryItem struct {
	ID                uint             `json:"id"`
	CreatedAt         time.Time        `json:"created_at"`
	Kind              models.EntryKind `json:"kind"`
	Amount            int64            `json:"amount"`
	Feature           string           `json:"feature,omitempty"`
	ExternalReference *string          `json:"external_reference,omitempty"`
	BalanceAfter      int64            `json:"balance_after"`
}

type LedgerListResponse struct {
	Entries []LedgerEntryItem `json:"entries"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
}
