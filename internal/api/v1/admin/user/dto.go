package user

import "github.com/GodwinAdu/med-pro-sub001/internal/api/v1/account"

type AccountListResponse struct {
	Accounts []account.AccountResponse `json:"accounts"`
	Total    int64                     `json:"total"`
	Page     int                       `json:"page"`
	Limit    int                       `json:"limit"`
}

// GrantCoinsInput is a manual ledger adjustment. Kind selects how the
// entry is recorded: bonus for goodwill grants, refund for reversals.
type GrantCoinsInput struct {
	Coins  int64  `json:"coins" binding:"required,gt=0"`
	Kind   string `json:"kind" binding:"required,oneof=bonus refund"`
	Reason string `json:"reason" binding:"required"`
}

type GrantCoinsResponse struct {
	AccountID    uint  `json:"account_id"`
	Coins        int64 `json:"coins"`
	BalanceAfter int64 `json:"balance_after"`
}
