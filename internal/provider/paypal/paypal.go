// Package paypal adapts PayPal's order flow: OAuth client-credentials,
// create-order in USD (converted from the VND settlement amount), and the
// client-driven synchronous capture call whose response is the outcome
// source. Authenticity of the capture path comes from the server-side API
// call itself, not a webhook signature.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/currency"
	"github.com/vqminh/tour-booking/internal/provider"
)

const (
	statusCompleted = "COMPLETED"
	statusDeclined  = "DECLINED"
)

type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

type Adapter struct {
	cfg       Config
	client    *http.Client
	converter *currency.Converter
	logger    *slog.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewAdapter(cfg Config, converter *currency.Converter, logger *slog.Logger) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Adapter{
		cfg:       cfg,
		client:    &http.Client{Timeout: timeout},
		converter: converter,
		logger:    logger,
	}
}

func (a *Adapter) Name() string {
	return "paypal"
}

// token returns a cached OAuth access token, refreshing it one minute before
// expiry.
func (a *Adapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.tokenExpiry.Add(-time.Minute)) {
		return a.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build paypal token request: %w", err)
	}
	req.SetBasicAuth(a.cfg.ClientID, a.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", internal.NewExternalError("paypal token call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", internal.NewExternalError(
			fmt.Sprintf("paypal token call returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", internal.NewExternalError("paypal token response unreadable", err)
	}

	a.accessToken = parsed.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return a.accessToken, nil
}

type orderAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnit struct {
	ReferenceID string      `json:"reference_id"`
	Description string      `json:"description,omitempty"`
	Amount      orderAmount `json:"amount"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// CreateIntent creates a CAPTURE-intent order quoted in USD. The returned
// pay URL is the "approve" link the customer is sent to; the PayPal order id
// becomes the session's order id.
func (a *Adapter) CreateIntent(ctx context.Context, intent provider.Intent) (*provider.IntentResult, error) {
	accessToken, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []purchaseUnit{{
			ReferenceID: intent.OrderID,
			Description: intent.OrderInfo,
			Amount: orderAmount{
				CurrencyCode: "USD",
				Value:        a.converter.USDString(intent.AmountVND),
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal paypal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/v2/checkout/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build paypal order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	// Provider idempotency token: a replayed create returns the same order.
	req.Header.Set("PayPal-Request-Id", intent.RequestID)

	a.logger.Info("creating paypal order",
		"reference_id", intent.OrderID,
		"amount_vnd", intent.AmountVND,
		"amount_usd", a.converter.USDString(intent.AmountVND))

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, internal.NewExternalError("paypal order call failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.NewExternalError("paypal order response unreadable", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		a.logger.Error("paypal rejected order",
			"reference_id", intent.OrderID,
			"status", resp.StatusCode,
			"response", string(raw))
		return nil, internal.NewExternalError(
			fmt.Sprintf("paypal order rejected: status %d", resp.StatusCode), nil)
	}

	var parsed orderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, internal.NewExternalError("paypal order response unreadable", err)
	}

	var approveURL string
	for _, link := range parsed.Links {
		if link.Rel == "approve" {
			approveURL = link.Href
			break
		}
	}

	return &provider.IntentResult{
		PayURL: approveURL,
		Raw:    json.RawMessage(raw),
	}, nil
}

// ProviderOrderID extracts the PayPal order id from a create response; the
// session is keyed by it so the capture callback can find its way back.
func ProviderOrderID(raw json.RawMessage) (string, error) {
	var parsed orderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse paypal order id: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("paypal order response missing id")
	}
	return parsed.ID, nil
}

type captureResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

// Capture performs the synchronous capture call for a client-approved order
// and maps the response to the reconciler's outcome. A transport-level
// failure is returned as an error, not a Failed outcome: nothing is known
// about the payment yet.
func (a *Adapter) Capture(ctx context.Context, orderID string) (provider.Outcome, error) {
	accessToken, err := a.token(ctx)
	if err != nil {
		return provider.Outcome{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.cfg.BaseURL+"/v2/checkout/orders/"+orderID+"/capture", bytes.NewReader([]byte("{}")))
	if err != nil {
		return provider.Outcome{}, fmt.Errorf("build paypal capture request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	a.logger.Info("capturing paypal order", "order_id", orderID)

	resp, err := a.client.Do(req)
	if err != nil {
		return provider.Outcome{}, internal.NewExternalError("paypal capture call failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.Outcome{}, internal.NewExternalError("paypal capture response unreadable", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return provider.Outcome{}, internal.NewExternalError(
			fmt.Sprintf("paypal capture returned %d", resp.StatusCode), nil)
	}

	var parsed captureResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return provider.Outcome{}, internal.NewExternalError("paypal capture response unreadable", err)
	}

	out := provider.Outcome{
		ResultCode: parsed.Status,
		Raw:        json.RawMessage(raw),
	}

	if (resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusOK) && parsed.Status == statusCompleted {
		out.Status = provider.OutcomePaid
		out.TransactionRef = captureRef(parsed)
		return out, nil
	}

	out.Status = provider.OutcomeFailed
	out.Message = fmt.Sprintf("capture not completed: %s", parsed.Status)
	if parsed.Status == "" {
		out.ResultCode = statusDeclined
		out.Message = fmt.Sprintf("capture rejected with status %d", resp.StatusCode)
	}
	return out, nil
}

func captureRef(c captureResponse) string {
	for _, pu := range c.PurchaseUnits {
		for _, cap := range pu.Payments.Captures {
			if cap.ID != "" {
				return cap.ID
			}
		}
	}
	return c.ID
}
