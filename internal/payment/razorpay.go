// Package payment talks to the Razorpay orders API.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/saajjewels/storefront/config"
)

var ErrNotConfigured = errors.New("razorpay is not configured")

// GatewayOrder is the subset of a Razorpay order the storefront uses
type GatewayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type gatewayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Client is a minimal Razorpay REST client
type Client struct {
	keyId     string
	keySecret string
	baseURL   string
	currency  string
	timeout   time.Duration
}

func NewClient(cfg config.RazorpayConfig) *Client {
	return &Client{
		keyId:     cfg.KeyId,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		currency:  cfg.Currency,
		timeout:   15 * time.Second,
	}
}

// Enabled reports whether API credentials are set
func (c *Client) Enabled() bool {
	return c.keyId != "" && c.keySecret != ""
}

// KeyId is the public key handed to the checkout widget
func (c *Client) KeyId() string {
	return c.keyId
}

// Currency returns the configured settlement currency
func (c *Client) Currency() string {
	return c.currency
}

// ToSubunits converts a rupee amount into paise
func ToSubunits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreateOrder registers a payment order of amount (in rupees) with Razorpay
func (c *Client) CreateOrder(ctx context.Context, amount float64, receipt string) (*GatewayOrder, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	var (
		body   []byte
		status int
	)
	err := gout.POST(c.baseURL+"/orders").
		WithContext(ctx).
		SetTimeout(c.timeout).
		SetBasicAuth(c.keyId, c.keySecret).
		SetJSON(gout.H{
			"amount":   ToSubunits(amount),
			"currency": c.currency,
			"receipt":  receipt,
		}).
		BindBody(&body).
		Code(&status).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "razorpay create order")
	}
	if status != http.StatusOK {
		var gwErr gatewayError
		_ = jsoniter.Unmarshal(body, &gwErr)
		return nil, errors.Errorf("razorpay create order: status %d: %s", status, gwErr.Error.Description)
	}
	var order GatewayOrder
	if err := jsoniter.Unmarshal(body, &order); err != nil {
		return nil, errors.Wrap(err, "razorpay create order: decode response")
	}
	return &order, nil
}

// VerifySignature checks the checkout callback signature, which is the
// hex HMAC-SHA256 of "orderId|paymentId" keyed with the API secret.
func (c *Client) VerifySignature(orderId, paymentId, signature string) bool {
	if c.keySecret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(c.keySecret, orderId, paymentId)), []byte(signature))
}

// Sign computes the checkout signature for the given order and payment
func Sign(secret, orderId, paymentId string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderId + "|" + paymentId))
	return hex.EncodeToString(mac.Sum(nil))
}
