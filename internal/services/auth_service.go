package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

var ErrAccountAlreadyExists = errors.New("account with this email already exists")

const referralCodeLength = 8

// RegisterAccount creates a new account with a unique referral code and the
// signup bonus, if one is configured. The first registered account becomes
// the admin.
func RegisterAccount(email, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.Account
	result := database.DB.Where("email = ?", email).First(&existing)
	if result.Error == nil {
		return nil, ErrAccountAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var accountCount int64
	database.DB.Model(&models.Account{}).Count(&accountCount)

	role := "user"
	if accountCount == 0 {
		role = "admin"
	}

	code, err := generateReferralCode()
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Email:            email,
		Password:         string(hashedPassword),
		Role:             role,
		ReferralCode:     code,
		SubscriptionPlan: models.PlanNone,
	}

	if err := database.DB.Create(account).Error; err != nil {
		return nil, err
	}

	cfg, _ := config.LoadConfig()
	if cfg != nil && cfg.SignupBonusCoins > 0 {
		if _, _, err := Credit(account.ID, cfg.SignupBonusCoins, models.EntryKindBonus, "signup", nil, nil); err == nil {
			account.CoinBalance = cfg.SignupBonusCoins
			account.TotalCoinsEarned = cfg.SignupBonusCoins
		}
	}

	return account, nil
}

func LoginAccount(email, password string) (string, *models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var account models.Account
	if err := database.DB.Where("email = ?", email).First(&account).Error; err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return "", nil, errors.New("invalid credentials")
	}

	token, err := utils.GenerateToken(account.ID, account.Role)
	if err != nil {
		return "", nil, err
	}

	return token, &account, nil
}

// generateReferralCode derives an uppercase code from a fresh UUID and
// retries on the unlikely collision.
func generateReferralCode() (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
		code := raw[:referralCodeLength]

		var count int64
		if err := database.DB.Model(&models.Account{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique referral code")
}
