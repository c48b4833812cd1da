package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

// Metered features. Coin-gated features charge a fixed coin cost per use;
// quota-gated features are capped per calendar month by the account's plan.
const (
	FeatureChat         = "chat"
	FeatureDrugLookup   = "drug_lookup"
	FeaturePrescription = "prescription"
	FeatureDiagnosis    = "diagnosis"
	FeatureCarePlan     = "care_plan"
)

type GateMode string

const (
	GateModeCoin  GateMode = "coin"
	GateModeQuota GateMode = "quota"
)

// UnlimitedUsage marks a plan limit with no monthly cap.
const UnlimitedUsage = -1

type FeatureConfig struct {
	Mode     GateMode
	CoinCost int64
	// MonthlyLimits is consulted for quota-gated features only. Accounts in
	// their trial window use the basic plan's limits.
	MonthlyLimits map[models.SubscriptionPlan]int
}

var (
	ErrUnknownFeature = errors.New("unknown feature")

	featureCatalog map[string]FeatureConfig
	trialDays      int
)

// InitEntitlements builds and validates the static feature catalog. Called
// once at startup; an invalid catalog is a deployment error, not a request
// error.
func InitEntitlements(cfg *config.Config) error {
	trialDays = cfg.TrialDays

	featureCatalog = map[string]FeatureConfig{
		FeatureChat:         {Mode: GateModeCoin, CoinCost: cfg.ChatCoinCost},
		FeatureDrugLookup:   {Mode: GateModeCoin, CoinCost: cfg.DrugLookupCoinCost},
		FeaturePrescription: {Mode: GateModeCoin, CoinCost: cfg.PrescriptionCoinCost},
		FeatureDiagnosis: {
			Mode: GateModeQuota,
			MonthlyLimits: map[models.SubscriptionPlan]int{
				models.PlanBasic: 20,
				models.PlanPro:   UnlimitedUsage,
			},
		},
		FeatureCarePlan: {
			Mode: GateModeQuota,
			MonthlyLimits: map[models.SubscriptionPlan]int{
				models.PlanBasic: 10,
				models.PlanPro:   UnlimitedUsage,
			},
		},
	}

	for name, fc := range featureCatalog {
		switch fc.Mode {
		case GateModeCoin:
			if fc.CoinCost <= 0 {
				return fmt.Errorf("feature %q: coin cost must be positive, got %d", name, fc.CoinCost)
			}
		case GateModeQuota:
			if len(fc.MonthlyLimits) == 0 {
				return fmt.Errorf("feature %q: quota-gated feature has no plan limits", name)
			}
			for plan, limit := range fc.MonthlyLimits {
				if limit < UnlimitedUsage || limit == 0 {
					return fmt.Errorf("feature %q: invalid limit %d for plan %q", name, limit, plan)
				}
			}
		default:
			return fmt.Errorf("feature %q: unknown gate mode %q", name, fc.Mode)
		}
	}
	return nil
}

// FeatureCatalog exposes the validated catalog (read-only by convention).
func FeatureCatalog() map[string]FeatureConfig {
	return featureCatalog
}

// TrialEnd reports when the account's free trial window closes.
func TrialEnd(account *models.Account) time.Time {
	return account.CreatedAt.AddDate(0, 0, trialDays)
}

// EffectivePlan reports which plan's limits apply to the account right now.
func EffectivePlan(account *models.Account) models.SubscriptionPlan {
	return effectivePlan(account, time.Now())
}

type DenialReason string

const (
	ReasonInsufficientCoins DenialReason = "insufficient_coins"
	ReasonTrialExpired      DenialReason = "trial_expired"
	ReasonLimitReached      DenialReason = "limit_reached"
)

// Decision is the structured outcome of an access check. Denials always
// carry the numbers the caller needs to render a top-up or upgrade prompt.
type Decision struct {
	Granted      bool         `json:"granted"`
	Reason       DenialReason `json:"reason,omitempty"`
	Balance      *int64       `json:"balance,omitempty"`
	Cost         *int64       `json:"cost,omitempty"`
	CurrentUsage *int         `json:"current_usage,omitempty"`
	Limit        *int         `json:"limit,omitempty"`
}

// CheckAccess decides whether the account may perform the metered feature
// right now. It never mutates anything; the caller performs the metered
// work only on a grant and then calls CommitUsage.
func CheckAccess(accountID uint, feature string) (*Decision, error) {
	fc, ok := featureCatalog[feature]
	if !ok {
		return nil, ErrUnknownFeature
	}

	account, err := FindAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	switch fc.Mode {
	case GateModeCoin:
		if account.CoinBalance < fc.CoinCost {
			balance := account.CoinBalance
			cost := fc.CoinCost
			return &Decision{
				Granted: false,
				Reason:  ReasonInsufficientCoins,
				Balance: &balance,
				Cost:    &cost,
			}, nil
		}
		return &Decision{Granted: true}, nil

	default: // GateModeQuota
		plan := effectivePlan(&account, time.Now())
		if plan == models.PlanNone {
			return &Decision{Granted: false, Reason: ReasonTrialExpired}, nil
		}

		limit, ok := fc.MonthlyLimits[plan]
		if !ok {
			// Plan without an explicit limit for this feature reads as the
			// basic allowance.
			limit = fc.MonthlyLimits[models.PlanBasic]
		}
		if limit == UnlimitedUsage {
			return &Decision{Granted: true}, nil
		}

		usage, err := CurrentUsage(accountID, feature)
		if err != nil {
			return nil, err
		}
		if usage >= limit {
			return &Decision{
				Granted:      false,
				Reason:       ReasonLimitReached,
				CurrentUsage: &usage,
				Limit:        &limit,
			}, nil
		}
		return &Decision{Granted: true}, nil
	}
}

// CommitUsage records the cost of a metered action after it has actually
// produced a result: a coin debit for coin-gated features, a counter bump
// for quota-gated ones. The returned entry is nil for quota commits.
func CommitUsage(accountID uint, feature string) (*models.LedgerEntry, error) {
	fc, ok := featureCatalog[feature]
	if !ok {
		return nil, ErrUnknownFeature
	}

	if fc.Mode == GateModeCoin {
		return Debit(accountID, fc.CoinCost, models.EntryKindUsage, feature)
	}
	return nil, IncrementUsage(accountID, feature)
}

// effectivePlan maps the account's subscription state to the plan whose
// limits apply now. An unexpired paid plan wins; otherwise the account is
// on trial (basic limits) until the trial window closes, after which there
// is no entitlement.
func effectivePlan(account *models.Account, now time.Time) models.SubscriptionPlan {
	if account.HasActiveSubscription(now) {
		return account.SubscriptionPlan
	}
	if now.Before(account.CreatedAt.AddDate(0, 0, trialDays)) {
		return models.PlanBasic
	}
	return models.PlanNone
}
