package payments

// SettlementResponse reports what a webhook event or manual verification
// actually did to the account.
type SettlementResponse struct {
	Kind           string `json:"kind"`
	Reference      string `json:"reference,omitempty"`
	AccountID      uint   `json:"account_id,omitempty"`
	Coins          int64  `json:"coins,omitempty"`
	Plan           string `json:"plan,omitempty"`
	DurationMonths int    `json:"duration_months,omitempty"`
	AlreadySettled bool   `json:"already_settled"`
}
