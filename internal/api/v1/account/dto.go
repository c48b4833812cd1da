package account

import "time"

// AccountResponse defines the response structure for account information.
type AccountResponse struct {
	ID                    uint       `json:"id"`
	Email                 string     `json:"email"`
	Role                  string     `json:"role"`
	CoinBalance           int64      `json:"coin_balance"`
	TotalCoinsEarned      int64      `json:"total_coins_earned"`
	TotalCoinsSpent       int64      `json:"total_coins_spent"`
	SubscriptionPlan      string     `json:"subscription_plan"`
	SubscriptionStartDate *time.Time `json:"subscription_start_date,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscription_end_date,omitempty"`
	ReferralCode          string     `json:"referral_code"`
	ReferralCount         int        `json:"referral_count"`
	TrialEndsAt           time.Time  `json:"trial_ends_at"`
	CreatedAt             time.Time  `json:"created_at"`
	Token                 string     `json:"token,omitempty"`
}
