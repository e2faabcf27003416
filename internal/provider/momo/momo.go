// Package momo adapts MoMo's captureWallet flow: a signed create request
// that returns a payUrl, and a server-pushed IPN webhook whose HMAC-SHA256
// signature must verify before any processing happens.
package momo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/provider"
)

const (
	createPath  = "/v2/gateway/api/create"
	requestType = "captureWallet"

	// resultCodeSuccess is MoMo's "transaction succeeded".
	resultCodeSuccess = 0
)

type Config struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RedirectURL string
	IPNURL      string
	Timeout     time.Duration
}

type Adapter struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func NewAdapter(cfg Config, logger *slog.Logger) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Adapter{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (a *Adapter) Name() string {
	return "momo"
}

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message     string `json:"message"`
	ResultCode  int    `json:"resultCode"`
	PayURL      string `json:"payUrl"`
}

// CreateIntent opens a captureWallet transaction and returns the payUrl the
// storefront redirects the customer to.
func (a *Adapter) CreateIntent(ctx context.Context, intent provider.Intent) (*provider.IntentResult, error) {
	req := createRequest{
		PartnerCode: a.cfg.PartnerCode,
		RequestID:   intent.RequestID,
		Amount:      intent.AmountVND,
		OrderID:     intent.OrderID,
		OrderInfo:   intent.OrderInfo,
		RedirectURL: a.cfg.RedirectURL,
		IPNURL:      a.cfg.IPNURL,
		RequestType: requestType,
		ExtraData:   "",
		Lang:        "vi",
	}
	req.Signature = a.signCreate(req)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal momo create request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint+createPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build momo create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	a.logger.Info("opening momo transaction",
		"order_id", intent.OrderID,
		"request_id", intent.RequestID,
		"amount", intent.AmountVND)

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, internal.NewExternalError("momo create call failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.NewExternalError("momo create response unreadable", err)
	}

	var parsed createResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, internal.NewExternalError("momo create response unreadable", err)
	}

	if resp.StatusCode != http.StatusOK || parsed.ResultCode != resultCodeSuccess {
		a.logger.Error("momo rejected create request",
			"order_id", intent.OrderID,
			"status", resp.StatusCode,
			"result_code", parsed.ResultCode,
			"message", parsed.Message)
		return nil, internal.NewExternalError(
			fmt.Sprintf("momo create rejected: %s", parsed.Message), nil)
	}

	return &provider.IntentResult{
		PayURL: parsed.PayURL,
		Raw:    json.RawMessage(raw),
	}, nil
}

// signCreate builds the HMAC over MoMo's documented canonical ordering for
// the create call (fields sorted by name, accessKey first).
func (a *Adapter) signCreate(r createRequest) string {
	canonical := "accessKey=" + a.cfg.AccessKey +
		"&amount=" + strconv.FormatInt(r.Amount, 10) +
		"&extraData=" + r.ExtraData +
		"&ipnUrl=" + r.IPNURL +
		"&orderId=" + r.OrderID +
		"&orderInfo=" + r.OrderInfo +
		"&partnerCode=" + r.PartnerCode +
		"&redirectUrl=" + r.RedirectURL +
		"&requestId=" + r.RequestID +
		"&requestType=" + r.RequestType
	return a.hmacSHA256(canonical)
}

// IPNPayload is the body of MoMo's server-pushed notification.
type IPNPayload struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// VerifyIPN recomputes the signature over MoMo's canonical IPN field
// ordering and compares in constant time. A payload that fails here must be
// rejected before any processing.
func (a *Adapter) VerifyIPN(p IPNPayload) error {
	canonical := "accessKey=" + a.cfg.AccessKey +
		"&amount=" + strconv.FormatInt(p.Amount, 10) +
		"&extraData=" + p.ExtraData +
		"&message=" + p.Message +
		"&orderId=" + p.OrderID +
		"&orderInfo=" + p.OrderInfo +
		"&orderType=" + p.OrderType +
		"&partnerCode=" + p.PartnerCode +
		"&payType=" + p.PayType +
		"&requestId=" + p.RequestID +
		"&responseTime=" + strconv.FormatInt(p.ResponseTime, 10) +
		"&resultCode=" + strconv.Itoa(p.ResultCode) +
		"&transId=" + strconv.FormatInt(p.TransID, 10)

	expected := a.hmacSHA256(canonical)
	if !hmac.Equal([]byte(expected), []byte(p.Signature)) {
		return internal.NewUnauthorizedError("momo ipn signature mismatch", internal.ErrCodeInvalidSignature)
	}
	return nil
}

// ToOutcome maps a verified IPN payload to the reconciler's outcome signal.
func (a *Adapter) ToOutcome(p IPNPayload, raw json.RawMessage) provider.Outcome {
	out := provider.Outcome{
		ResultCode: strconv.Itoa(p.ResultCode),
		Message:    p.Message,
		Raw:        raw,
	}
	if p.ResultCode == resultCodeSuccess {
		out.Status = provider.OutcomePaid
		out.TransactionRef = strconv.FormatInt(p.TransID, 10)
	} else {
		out.Status = provider.OutcomeFailed
	}
	return out
}

func (a *Adapter) hmacSHA256(message string) string {
	mac := hmac.New(sha256.New, []byte(a.cfg.SecretKey))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
