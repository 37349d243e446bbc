// Package payment wraps the third-party checkout provider. Only the
// paid/unpaid fact crosses into the rest of the system; everything else the
// provider returns stays an opaque bag.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// CheckoutSession is the provider's session record, reduced to the fields
// the server needs.
type CheckoutSession struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Paid          bool              `json:"paid"`
	CustomerEmail string            `json:"customer_email"`
	Metadata      map[string]string `json:"metadata"`
}

// Client defines what the server layer needs from the checkout provider.
type Client interface {
	CreateCheckout(ctx context.Context, reportSessionID string, successURL, cancelURL string) (*CheckoutSession, error)
	GetCheckout(ctx context.Context, checkoutID string) (*CheckoutSession, error)
}

// HTTPClient talks to the checkout provider API with a bearer key.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckout opens a checkout session carrying our report session id in
// the metadata so the webhook can route the payment back.
func (c *HTTPClient) CreateCheckout(ctx context.Context, reportSessionID, successURL, cancelURL string) (*CheckoutSession, error) {
	if reportSessionID == "" {
		return nil, errors.New("empty report session id")
	}
	body, err := json.Marshal(map[string]any{
		"success_url": successURL,
		"cancel_url":  cancelURL,
		"metadata":    map[string]string{"report_session": reportSessionID},
	})
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/sessions", bytes.NewReader(body))
	c.auth(req)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// GetCheckout polls a session's current state.
func (c *HTTPClient) GetCheckout(ctx context.Context, checkoutID string) (*CheckoutSession, error) {
	if checkoutID == "" {
		return nil, errors.New("empty checkout id")
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/checkout/sessions/"+checkoutID, nil)
	c.auth(req)
	return c.do(req)
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *HTTPClient) do(req *http.Request) (*CheckoutSession, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("checkout api status %d", resp.StatusCode)
	}
	var out CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WebhookEvent is the payload the provider posts on payment completion.
type WebhookEvent struct {
	Type    string          `json:"type"`
	Session CheckoutSession `json:"session"`
}

// ErrBadSignature rejects webhook payloads whose signature does not match.
var ErrBadSignature = errors.New("webhook signature mismatch")

// VerifyWebhook checks the hex HMAC-SHA256 signature over the raw body and
// decodes the event. Comparison is constant-time.
func VerifyWebhook(body []byte, signature, secret string) (*WebhookEvent, error) {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return nil, ErrBadSignature
	}
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid webhook payload: %w", err)
	}
	return &event, nil
}

// SignWebhook produces the signature the provider would send; used by tests
// and local tooling.
func SignWebhook(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
