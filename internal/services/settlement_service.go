package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"gorm.io/datatypes"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/payment/paystack"
)

var (
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrVerificationFailed = errors.New("transaction verification failed")
	ErrMetadataMismatch   = errors.New("transaction does not belong to this account")
	ErrInvalidPlan        = errors.New("unknown subscription plan")
)

// Gateway is the provider client used by the manual verification path.
// Wired at startup; tests point it at a stub server.
var Gateway *paystack.Client

// SettlementOutcome describes what a provider event settled into.
// AlreadySettled means the reference had been credited before and nothing
// changed this time.
type SettlementOutcome struct {
	Kind           string                  `json:"kind"` // coin_purchase, subscription or ignored
	Reference      string                  `json:"reference,omitempty"`
	AccountID      uint                    `json:"account_id,omitempty"`
	Coins          int64                   `json:"coins,omitempty"`
	Plan           models.SubscriptionPlan `json:"plan,omitempty"`
	DurationMonths int                     `json:"duration_months,omitempty"`
	AlreadySettled bool                    `json:"already_settled"`
	Entry          *models.LedgerEntry     `json:"-"`
}

// HandlePaymentWebhook settles a provider webhook delivery. The signature
// is checked over the raw body before anything is parsed; unrecognized
// event types are accepted and ignored. The reference dedupe in the ledger
// makes repeated deliveries harmless.
func HandlePaymentWebhook(rawBody []byte, signature string) (*SettlementOutcome, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if !paystack.ValidSignature(cfg.PaystackSecretKey, rawBody, signature) {
		return nil, ErrInvalidSignature
	}

	var event paystack.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return nil, err
	}

	if event.Event != paystack.EventChargeSuccess || !event.Data.IsSuccessful() {
		zap.L().Info("webhook event ignored",
			zap.String("event", event.Event),
			zap.String("reference", event.Data.Reference))
		return &SettlementOutcome{Kind: "ignored", Reference: event.Data.Reference}, nil
	}

	return settleCharge(&event.Data)
}

// HandleManualVerify settles a charge the user reports by reference. The
// provider is the oracle: the charge must verify as successful and must
// have been initialized for the requesting account. Shares the ledger's
// reference dedupe with the webhook path, so either order of arrival
// credits exactly once.
func HandleManualVerify(ctx context.Context, reference string, requestingAccountID uint) (*SettlementOutcome, error) {
	data, err := Gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		if errors.Is(err, paystack.ErrTransactionNotFound) {
			return nil, ErrVerificationFailed
		}
		// Transport failure or timeout: unknown outcome. Surface as an
		// internal error so the caller retries later instead of assuming
		// the charge never happened.
		return nil, err
	}
	if !data.IsSuccessful() {
		return nil, ErrVerificationFailed
	}

	if uint(data.Metadata.UserID) != requestingAccountID {
		return nil, ErrMetadataMismatch
	}

	return settleCharge(data)
}

func settleCharge(data *paystack.ChargeData) (*SettlementOutcome, error) {
	accountID := uint(data.Metadata.UserID)

	switch data.Metadata.Type {
	case paystack.MetadataTypeCoinPurchase:
		coins := int64(data.Metadata.Coins)
		if coins <= 0 {
			return nil, ErrInvalidAmount
		}

		snapshot, _ := json.Marshal(map[string]interface{}{
			"reference": data.Reference,
			"amount":    data.Amount,
			"channel":   data.Channel,
			"paid_at":   data.PaidAt,
		})

		reference := data.Reference
		entry, applied, err := Credit(accountID, coins, models.EntryKindPurchase, "", &reference, datatypes.JSON(snapshot))
		if err != nil {
			return nil, err
		}

		zap.L().Info("coin purchase settled",
			zap.Uint("account_id", accountID),
			zap.String("reference", reference),
			zap.Int64("coins", coins),
			zap.Bool("already_settled", !applied))

		return &SettlementOutcome{
			Kind:           paystack.MetadataTypeCoinPurchase,
			Reference:      reference,
			AccountID:      accountID,
			Coins:          coins,
			AlreadySettled: !applied,
			Entry:          entry,
		}, nil

	case paystack.MetadataTypeSubscription:
		plan := models.SubscriptionPlan(data.Metadata.Plan)
		months := int(data.Metadata.Duration)
		if months <= 0 {
			months = 1
		}

		if err := ActivateSubscription(accountID, plan, months); err != nil {
			return nil, err
		}

		zap.L().Info("subscription settled",
			zap.Uint("account_id", accountID),
			zap.String("reference", data.Reference),
			zap.String("plan", string(plan)),
			zap.Int("months", months))

		return &SettlementOutcome{
			Kind:           paystack.MetadataTypeSubscription,
			Reference:      data.Reference,
			AccountID:      accountID,
			Plan:           plan,
			DurationMonths: months,
		}, nil

	default:
		// Successful charge with metadata this system did not create.
		zap.L().Warn("charge with unrecognized metadata type ignored",
			zap.String("reference", data.Reference),
			zap.String("type", data.Metadata.Type))
		return &SettlementOutcome{Kind: "ignored", Reference: data.Reference}, nil
	}
}

// ActivateSubscription sets the plan and its calendar-month validity window.
// Repeating the same activation overwrites the row with equivalent dates,
// so the webhook and manual-verify paths may both run it safely; coin
// credits are additive and go through the reference dedupe instead.
func ActivateSubscription(accountID uint, plan models.SubscriptionPlan, durationMonths int) error {
	if plan != models.PlanBasic && plan != models.PlanPro {
		return ErrInvalidPlan
	}

	now := time.Now()
	end := now.AddDate(0, durationMonths, 0)

	result := database.DB.Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"subscription_plan":       plan,
			"subscription_start_date": now,
			"subscription_end_date":   end,
			"updated_at":              now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	InvalidateAccountCache(accountID)
	return nil
}
