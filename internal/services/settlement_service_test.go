package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
	"github.com/GodwinAdu/med-pro-sub001/internal/payment/paystack"
)

const testPaystackSecret = "sk_test_secret"

func setupSettlementTestDB() {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		panic("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	db.Migrator().DropTable(&models.Account{}, &models.LedgerEntry{}, &models.UsageCounter{})
	db.AutoMigrate(&models.Account{}, &models.LedgerEntry{}, &models.UsageCounter{})

	database.DB = db
}

func setupSettlementTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

func seedSettlementAccount() models.Account {
	account := models.Account{
		Email:        "payer@test.com",
		Password:     "hashed",
		Role:         "user",
		ReferralCode: "PAYER001",
		Version:      1,
	}
	database.DB.Create(&account)
	return account
}

func signBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testPaystackSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func coinPurchaseEvent(accountID uint, reference string, coins int64) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"event": "charge.success",
		"data": map[string]interface{}{
			"status":    "success",
			"reference": reference,
			"amount":    coins * 100,
			"channel":   "card",
			"customer":  map[string]string{"email": "payer@test.com"},
			"metadata": map[string]interface{}{
				"type":   "coin_purchase",
				"userId": fmt.Sprintf("%d", accountID), // numeric string, as form metadata arrives
				"coins":  coins,
			},
		},
	})
	return body
}

func TestHandlePaymentWebhook_RejectsBadSignature(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()
	t.Setenv("PAYSTACK_SECRET_KEY", testPaystackSecret)

	account := seedSettlementAccount()
	body := coinPurchaseEvent(account.ID, "REF_SIG", 100)

	_, err := HandlePaymentWebhook(body, "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(0), updated.CoinBalance)
}

func TestHandlePaymentWebhook_CreditsCoinPurchase(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()
	t.Setenv("PAYSTACK_SECRET_KEY", testPaystackSecret)

	account := seedSettlementAccount()
	body := coinPurchaseEvent(account.ID, "REF_OK", 100)

	outcome, err := HandlePaymentWebhook(body, signBody(body))
	assert.NoError(t, err)
	assert.Equal(t, "coin_purchase", outcome.Kind)
	assert.Equal(t, account.ID, outcome.AccountID)
	assert.Equal(t, int64(100), outcome.Coins)
	assert.False(t, outcome.AlreadySettled)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(100), updated.CoinBalance)

	entry, err := EntryByReference("REF_OK")
	assert.NoError(t, err)
	assert.Equal(t, models.EntryKindPurchase, entry.Kind)
	assert.Equal(t, int64(100), entry.Amount)
}

func TestHandlePaymentWebhook_DuplicateDeliveryIsNoOp(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()
	t.Setenv("PAYSTACK_SECRET_KEY", testPaystackSecret)

	account := seedSettlementAccount()
	body := coinPurchaseEvent(account.ID, "REF_DUP", 100)
	sig := signBody(body)

	_, err := HandlePaymentWebhook(body, sig)
	assert.NoError(t, err)

	outcome, err := HandlePaymentWebhook(body, sig)
	assert.NoError(t, err)
	assert.True(t, outcome.AlreadySettled)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(100), updated.CoinBalance)

	var count int64
	database.DB.Model(&models.LedgerEntry{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestHandlePaymentWebhook_IgnoresOtherEvents(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()
	t.Setenv("PAYSTACK_SECRET_KEY", testPaystackSecret)

	seedSettlementAccount()
	body, _ := json.Marshal(map[string]interface{}{
		"event": "transfer.success",
		"data":  map[string]interface{}{"status": "success", "reference": "REF_XFER"},
	})

	outcome, err := HandlePaymentWebhook(body, signBody(body))
	assert.NoError(t, err)
	assert.Equal(t, "ignored", outcome.Kind)
}

func TestHandlePaymentWebhook_ActivatesSubscription(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()
	t.Setenv("PAYSTACK_SECRET_KEY", testPaystackSecret)

	account := seedSettlementAccount()
	body, _ := json.Marshal(map[string]interface{}{
		"event": "charge.success",
		"data": map[string]interface{}{
			"status":    "success",
			"reference": "REF_SUB",
			"amount":    500000,
			"metadata": map[string]interface{}{
				"type":     "subscription",
				"userId":   account.ID,
				"plan":     "pro",
				"duration": 3,
			},
		},
	})

	outcome, err := HandlePaymentWebhook(body, signBody(body))
	assert.NoError(t, err)
	assert.Equal(t, "subscription", outcome.Kind)
	assert.Equal(t, models.PlanPro, outcome.Plan)
	assert.Equal(t, 3, outcome.DurationMonths)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, models.PlanPro, updated.SubscriptionPlan)
	assert.NotNil(t, updated.SubscriptionEndDate)
	assert.True(t, updated.HasActiveSubscription(time.Now()))

	// Redelivering the event overwrites with an equivalent window.
	_, err = HandlePaymentWebhook(body, signBody(body))
	assert.NoError(t, err)
	database.DB.First(&updated, account.ID)
	assert.Equal(t, models.PlanPro, updated.SubscriptionPlan)
}

func TestActivateSubscription_RejectsUnknownPlan(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()

	account := seedSettlementAccount()
	err := ActivateSubscription(account.ID, "platinum", 1)
	assert.ErrorIs(t, err, ErrInvalidPlan)
}

func newPaystackStub(t *testing.T, charges map[string]paystack.ChargeData) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reference := r.URL.Path[len("/transaction/verify/"):]
		data, ok := charges[reference]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data":    data,
		})
	}))
}

func TestHandleManualVerify_CreditsOnce(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()

	account := seedSettlementAccount()
	stub := newPaystackStub(t, map[string]paystack.ChargeData{
		"REF_VERIFY": {
			Status:    "success",
			Reference: "REF_VERIFY",
			Amount:    10000,
			Metadata: paystack.Metadata{
				Type:   paystack.MetadataTypeCoinPurchase,
				UserID: paystack.FlexInt(account.ID),
				Coins:  100,
			},
		},
	})
	defer stub.Close()
	Gateway = paystack.NewClient(testPaystackSecret, stub.URL)

	outcome, err := HandleManualVerify(context.Background(), "REF_VERIFY", account.ID)
	assert.NoError(t, err)
	assert.False(t, outcome.AlreadySettled)

	// Verifying again, or the webhook arriving later, settles nothing new.
	outcome, err = HandleManualVerify(context.Background(), "REF_VERIFY", account.ID)
	assert.NoError(t, err)
	assert.True(t, outcome.AlreadySettled)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(100), updated.CoinBalance)
}

func TestHandleManualVerify_WebhookThenVerifyCreditsOnce(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()
	t.Setenv("PAYSTACK_SECRET_KEY", testPaystackSecret)

	account := seedSettlementAccount()
	body := coinPurchaseEvent(account.ID, "REF_RACE", 100)
	_, err := HandlePaymentWebhook(body, signBody(body))
	assert.NoError(t, err)

	stub := newPaystackStub(t, map[string]paystack.ChargeData{
		"REF_RACE": {
			Status:    "success",
			Reference: "REF_RACE",
			Metadata: paystack.Metadata{
				Type:   paystack.MetadataTypeCoinPurchase,
				UserID: paystack.FlexInt(account.ID),
				Coins:  100,
			},
		},
	})
	defer stub.Close()
	Gateway = paystack.NewClient(testPaystackSecret, stub.URL)

	outcome, err := HandleManualVerify(context.Background(), "REF_RACE", account.ID)
	assert.NoError(t, err)
	assert.True(t, outcome.AlreadySettled)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(100), updated.CoinBalance)
}

func TestHandleManualVerify_UnknownReference(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()

	account := seedSettlementAccount()
	stub := newPaystackStub(t, nil)
	defer stub.Close()
	Gateway = paystack.NewClient(testPaystackSecret, stub.URL)

	_, err := HandleManualVerify(context.Background(), "REF_MISSING", account.ID)
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestHandleManualVerify_FailedChargeDoesNotSettle(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()

	account := seedSettlementAccount()
	stub := newPaystackStub(t, map[string]paystack.ChargeData{
		"REF_FAILED": {
			Status:    "failed",
			Reference: "REF_FAILED",
			Metadata: paystack.Metadata{
				Type:   paystack.MetadataTypeCoinPurchase,
				UserID: paystack.FlexInt(account.ID),
				Coins:  100,
			},
		},
	})
	defer stub.Close()
	Gateway = paystack.NewClient(testPaystackSecret, stub.URL)

	_, err := HandleManualVerify(context.Background(), "REF_FAILED", account.ID)
	assert.ErrorIs(t, err, ErrVerificationFailed)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(0), updated.CoinBalance)
}

func TestHandleManualVerify_WrongAccount(t *testing.T) {
	setupSettlementTestDB()
	mr := setupSettlementTestRedis()
	defer mr.Close()

	account := seedSettlementAccount()
	stub := newPaystackStub(t, map[string]paystack.ChargeData{
		"REF_OTHER": {
			Status:    "success",
			Reference: "REF_OTHER",
			Metadata: paystack.Metadata{
				Type:   paystack.MetadataTypeCoinPurchase,
				UserID: paystack.FlexInt(account.ID + 1),
				Coins:  100,
			},
		},
	})
	defer stub.Close()
	Gateway = paystack.NewClient(testPaystackSecret, stub.URL)

	_, err := HandleManualVerify(context.Background(), "REF_OTHER", account.ID)
	assert.ErrorIs(t, err, ErrMetadataMismatch)
}
