package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/GodwinAdu/med-pro-sub001/config"
	"github.com/GodwinAdu/med-pro-sub001/internal/assistant"
	"github.com/GodwinAdu/med-pro-sub001/internal/database"
	"github.com/GodwinAdu/med-pro-sub001/internal/models"
)

func setupAssistantTestDB() {
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

func setupAssistantTestRedis() *miniredis.Miniredis {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	database.RedisClient = redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr
}

// newAssistantStub counts provider calls so tests can assert that denied
// requests never reach the provider.
func newAssistantStub(calls *int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Take with food."}},
			},
			"usage": map[string]int{"prompt_tokens": 12, "completion_tokens": 8, "total_tokens": 20},
		})
	}))
}

func initAssistantTestEntitlements(t *testing.T) {
	err := InitEntitlements(&config.Config{
		ChatCoinCost:         1,
		DrugLookupCoinCost:   2,
		PrescriptionCoinCost: 5,
		TrialDays:            7,
	})
	assert.NoError(t, err)
}

func TestRunAssistantFeature_ChargesAfterCompletion(t *testing.T) {
	setupAssistantTestDB()
	mr := setupAssistantTestRedis()
	defer mr.Close()
	initAssistantTestEntitlements(t)

	var calls int64
	stub := newAssistantStub(&calls)
	defer stub.Close()
	Assistant = assistant.NewClient("test-key", stub.URL, "test-model")

	account := models.Account{
		Email:        "asst@test.com",
		Password:     "hashed",
		Role:         "user",
		CoinBalance:  10,
		ReferralCode: "ASST0001",
		Version:      1,
	}
	database.DB.Create(&account)

	result, err := RunAssistantFeature(context.Background(), account.ID, FeatureDrugLookup,
		[]assistant.Message{{Role: "user", Content: "amoxicillin"}})
	assert.NoError(t, err)
	assert.Nil(t, result.Denied)
	assert.Equal(t, "Take with food.", result.Reply.Content)
	assert.Equal(t, 20, result.Reply.TotalTokens)
	assert.NotNil(t, result.Entry)
	assert.Equal(t, int64(-2), result.Entry.Amount)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(8), updated.CoinBalance)
}

func TestRunAssistantFeature_DeniedWithoutProviderCall(t *testing.T) {
	setupAssistantTestDB()
	mr := setupAssistantTestRedis()
	defer mr.Close()
	initAssistantTestEntitlements(t)

	var calls int64
	stub := newAssistantStub(&calls)
	defer stub.Close()
	Assistant = assistant.NewClient("test-key", stub.URL, "test-model")

	account := models.Account{
		Email:        "broke@test.com",
		Password:     "hashed",
		Role:         "user",
		CoinBalance:  1,
		ReferralCode: "BROKE001",
		Version:      1,
	}
	database.DB.Create(&account)

	result, err := RunAssistantFeature(context.Background(), account.ID, FeaturePrescription,
		[]assistant.Message{{Role: "user", Content: "draft"}})
	assert.NoError(t, err)
	assert.NotNil(t, result.Denied)
	assert.Equal(t, ReasonInsufficientCoins, result.Denied.Reason)
	assert.Nil(t, result.Reply)
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(1), updated.CoinBalance)
}

func TestRunAssistantFeature_FailedCompletionCostsNothing(t *testing.T) {
	setupAssistantTestDB()
	mr := setupAssistantTestRedis()
	defer mr.Close()
	initAssistantTestEntitlements(t)

	stub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer stub.Close()
	Assistant = assistant.NewClient("test-key", stub.URL, "test-model")

	account := models.Account{
		Email:        "unlucky@test.com",
		Password:     "hashed",
		Role:         "user",
		CoinBalance:  10,
		ReferralCode: "LUCK0001",
		Version:      1,
	}
	database.DB.Create(&account)

	_, err := RunAssistantFeature(context.Background(), account.ID, FeatureChat,
		[]assistant.Message{{Role: "user", Content: "hello"}})
	assert.Error(t, err)

	var updated models.Account
	database.DB.First(&updated, account.ID)
	assert.Equal(t, int64(10), updated.CoinBalance)

	var count int64
	database.DB.Model(&models.LedgerEntry{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRunAssistantFeature_QuotaFeatureIncrementsCounter(t *testing.T) {
	setupAssistantTestDB()
	mr := setupAssistantTestRedis()
	defer mr.Close()
	initAssistantTestEntitlements(t)

	var calls int64
	stub := newAssistantStub(&calls)
	defer stub.Close()
	Assistant = assistant.NewClient("test-key", stub.URL, "test-model")

	account := models.Account{
		Email:        "quota@test.com",
		Password:     "hashed",
		Role:         "user",
		ReferralCode: "QUOTA001",
		Version:      1,
	}
	database.DB.Create(&account)

	result, err := RunAssistantFeature(context.Background(), account.ID, FeatureDiagnosis,
		[]assistant.Message{{Role: "user", Content: "fever and rash"}})
	assert.NoError(t, err)
	assert.Nil(t, result.Denied)
	assert.Nil(t, result.Entry)

	usage, err := CurrentUsage(account.ID, FeatureDiagnosis)
	assert.NoError(t, err)
	assert.Equal(t, 1, usage)
}
