package services

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

var (
	ErrAlreadyRedeemed = errors.New("a referral code was already redeemed for this account")
	ErrUnknownCode     = errors.New("referral code not found")
	ErrSelfReferral    = errors.New("cannot redeem your own referral code")
)

// RedeemResult reports what a successful redemption issued.
type RedeemResult struct {
	ReferrerID    uint  `json:"referrer_id"`
	ReferrerBonus int64 `json:"referrer_bonus"`
	WelcomeBonus  int64 `json:"welcome_bonus"`
}

// RedeemReferralCode links the account to the code's owner and issues both
// bonuses. Redemption is one-shot per account forever: referred_by is set
// by a conditional update so a second redemption, however concurrent, fails
// with ErrAlreadyRedeemed. The two bonus credits are independent of each
// other; each follows the ledger's own atomicity contract.
func RedeemReferralCode(accountID uint, code string) (*RedeemResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrUnknownCode
	}

	account, err := FindAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	if account.ReferredBy != nil {
		return nil, ErrAlreadyRedeemed
	}

	// Codes are stored uppercase, so the equality match is the
	// case-insensitive lookup.
	var owner models.Account
	if err := database.DB.Where("referral_code = ?", code).First(&owner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownCode
		}
		return nil, err
	}
	if owner.ID == accountID {
		return nil, ErrSelfReferral
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Account{}).
			Where("id = ? AND referred_by IS NULL", accountID).
			Updates(map[string]interface{}{
				"referred_by": owner.ID,
				"updated_at":  time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadyRedeemed
		}

		return tx.Model(&models.Account{}).
			Where("id = ?", owner.ID).
			UpdateColumn("referral_count", gorm.Expr("referral_count + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	InvalidateAccountCache(accountID)
	InvalidateAccountCache(owner.ID)

	cfg, _ := config.LoadConfig()
	referrerBonus := cfg.ReferralBonusCoins
	welcomeBonus := cfg.WelcomeBonusCoins

	if _, _, err := Credit(owner.ID, referrerBonus, models.EntryKindBonus, "referral", nil, nil); err != nil {
		zap.L().Error("referrer bonus credit failed",
			zap.Uint("referrer_id", owner.ID),
			zap.Uint("account_id", accountID),
			zap.Error(err))
	}
	if _, _, err := Credit(accountID, welcomeBonus, models.EntryKindBonus, "referral", nil, nil); err != nil {
		zap.L().Error("welcome bonus credit failed",
			zap.Uint("account_id", accountID),
			zap.Error(err))
	}

	return &RedeemResult{
		ReferrerID:    owner.ID,
		ReferrerBonus: referrerBonus,
		WelcomeBonus:  welcomeBonus,
	}, nil
}
