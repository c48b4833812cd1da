// Package paystack is the boundary to the payment provider: webhook
// signature validation and the verify-by-reference read endpoint. It knows
// nothing about accounts or coins; the settlement service owns those rules.
package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/GodwinAdu/med-pro-sub001/internal/utils"
)

// ErrTransactionNotFound is returned when the provider does not recognize
// the reference at all.
var ErrTransactionNotFound = errors.New("transaction reference not found")

const (
	DefaultBaseURL = "https://api.paystack.co"

	// SignatureHeader carries the HMAC-SHA512 hex digest of the raw
	// webhook body, keyed with the account's secret key.
	SignatureHeader = "x-paystack-signature"

	EventChargeSuccess = "charge.success"

	MetadataTypeCoinPurchase = "coin_purchase"
	MetadataTypeSubscription = "subscription"
)

// ValidSignature recomputes the webhook HMAC over the raw body and compares
// it byte-exactly against the header value.
func ValidSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// FlexInt tolerates both JSON numbers and numeric strings; provider
// metadata round-trips through form fields and arrives as either.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric metadata value %q", s)
	}
	*f = FlexInt(v)
	return nil
}

// Metadata is the charge metadata this application attaches when
// initializing a transaction.
type Metadata struct {
	Type     string  `json:"type"`
	UserID   FlexInt `json:"userId"`
	Coins    FlexInt `json:"coins,omitempty"`
	Plan     string  `json:"plan,omitempty"`
	Duration FlexInt `json:"duration,omitempty"`
}

type Customer struct {
	Email string `json:"email"`
}

// ChargeData is the charge payload shared by webhook events and the verify
// endpoint's response.
type ChargeData struct {
	Status    string   `json:"status"`
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	PaidAt    string   `json:"paid_at"`
	Channel   string   `json:"channel"`
	Customer  Customer `json:"customer"`
	Metadata  Metadata `json:"metadata"`
}

func (d *ChargeData) IsSuccessful() bool {
	return d.Status == "success"
}

// WebhookEvent is the envelope the provider POSTs to the webhook endpoint.
type WebhookEvent struct {
	Event string     `json:"event"`
	Data  ChargeData `json:"data"`
}

// Client calls the provider's REST API with a bounded timeout. A timed-out
// call is an unknown outcome, not a failed charge; callers must not treat
// transport errors as "not settled".
type Client struct {
	secretKey  string
	baseURL    string
	httpClient *http.Client
}

func NewClient(secretKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		secretKey:  secretKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: utils.NewHTTPClient(15 * time.Second),
	}
}

type verifyResponse struct {
	Status  bool       `json:"status"`
	Message string     `json:"message"`
	Data    ChargeData `json:"data"`
}

// VerifyTransaction reads a charge by reference. The returned data reports
// the provider's view of the charge; a non-success status there is a
// definitive "not settled", unlike a transport error.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*ChargeData, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrTransactionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paystack verify returned %s", resp.Status)
	}

	var vr verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&vr); err != nil {
		return nil, err
	}
	if !vr.Status {
		return nil, ErrTransactionNotFound
	}

	return &vr.Data, nil
}
