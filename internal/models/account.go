package models

import "time"

type SubscriptionPlan string

const (
	PlanNone  SubscriptionPlan = "none"
	PlanBasic SubscriptionPlan = "basic"
	PlanPro   SubscriptionPlan = "pro"
)

// Account is the single source of truth for a user's coin balance and plan.
// Balance fields are mutated exclusively through the ledger service; the
// Version column backs its conditional updates.
type Account struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
	Role     string `gorm:"not null;default:'user'"`

	CoinBalance      int64 `gorm:"not null;default:0"`
	TotalCoinsEarned int64 `gorm:"not null;default:0"`
	TotalCoinsSpent  int64 `gorm:"not null;default:0"`

	SubscriptionPlan      SubscriptionPlan `gorm:"type:varchar(20);not null;default:'none'"`
	SubscriptionStartDate *time.Time
	SubscriptionEndDate   *time.Time

	// Codes are stored uppercase so the unique index doubles as the
	// case-insensitive match.
	ReferralCode  string `gorm:"uniqueIndex;not null"`
	ReferralCount int    `gorm:"not null;default:0"`
	ReferredBy    *uint  `gorm:"index"`

	// Date only, midnight in server time.
	LastDailyBonusClaimDate *time.Time

	Version int `gorm:"default:1"`
}

// HasActiveSubscription reports whether the account holds a paid plan that
// has not expired at the given instant.
func (a *Account) HasActiveSubscription(now time.Time) bool {
	if a.SubscriptionPlan == PlanNone || a.SubscriptionPlan == "" {
		return false
	}
	return a.SubscriptionEndDate != nil && now.Before(*a.SubscriptionEndDate)
}
