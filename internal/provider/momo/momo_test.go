package momo_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/provider"
	"github.com/vqminh/tour-booking/internal/provider/momo"
)

func TestMoMo(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MoMo Adapter Suite")
}

const (
	testAccessKey = "access-key"
	testSecretKey = "secret-key"
)

// signIPN recomputes the documented IPN signature so tests can produce
// payloads the adapter must accept.
func signIPN(p momo.IPNPayload) string {
	canonical := "accessKey=" + testAccessKey +
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

	mac := hmac.New(sha256.New, []byte(testSecretKey))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ = Describe("MoMoAdapter", func() {
	var (
		adapter *momo.Adapter
		ctx     context.Context
	)

	newAdapter := func(endpoint string) *momo.Adapter {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		cfg := momo.Config{
			Endpoint:    endpoint,
			PartnerCode: "PARTNER",
			AccessKey:   testAccessKey,
			SecretKey:   testSecretKey,
			RedirectURL: "https://shop.example.com/payment/return",
			IPNURL:      "https://shop.example.com/api/v1/payments/momo/ipn",
		}
		return momo.NewAdapter(cfg, logger)
	}

	newPayload := func(resultCode int) momo.IPNPayload {
		p := momo.IPNPayload{
			PartnerCode:  "PARTNER",
			OrderID:      "order-1",
			RequestID:    "req-1",
			Amount:       1250000,
			OrderInfo:    "tour booking order order-1",
			OrderType:    "momo_wallet",
			TransID:      4088878653,
			ResultCode:   resultCode,
			Message:      "Successful.",
			PayType:      "qr",
			ResponseTime: 1756600000000,
		}
		p.Signature = signIPN(p)
		return p
	}

	BeforeEach(func() {
		adapter = newAdapter("https://test-payment.momo.vn")
		ctx = context.Background()
	})

	Describe("VerifyIPN", func() {
		It("should accept a correctly signed payload", func() {
			Expect(adapter.VerifyIPN(newPayload(0))).NotTo(HaveOccurred())
		})

		It("should reject a payload whose amount was tampered with", func() {
			p := newPayload(0)
			p.Amount = 1
			err := adapter.VerifyIPN(p)
			Expect(internal.IsErrorCode(err, internal.ErrCodeInvalidSignature)).To(BeTrue())
		})

		It("should reject a payload with a forged signature", func() {
			p := newPayload(0)
			p.Signature = "deadbeef"
			err := adapter.VerifyIPN(p)
			Expect(internal.IsErrorCode(err, internal.ErrCodeInvalidSignature)).To(BeTrue())
		})

		It("should reject a payload signed with a different secret", func() {
			p := newPayload(0)
			mac := hmac.New(sha256.New, []byte("other-secret"))
			mac.Write([]byte("anything"))
			p.Signature = hex.EncodeToString(mac.Sum(nil))
			err := adapter.VerifyIPN(p)
			Expect(internal.IsErrorCode(err, internal.ErrCodeInvalidSignature)).To(BeTrue())
		})
	})

	Describe("ToOutcome", func() {
		It("should map result code 0 to a paid outcome with the transaction id", func() {
			p := newPayload(0)
			raw, _ := json.Marshal(p)
			out := adapter.ToOutcome(p, raw)
			Expect(out.Paid()).To(BeTrue())
			Expect(out.TransactionRef).To(Equal("4088878653"))
			Expect(out.ResultCode).To(Equal("0"))
			Expect(out.Raw).To(Equal(json.RawMessage(raw)))
		})

		It("should map a non-zero result code to a failed outcome", func() {
			p := newPayload(1006)
			p.Message = "Transaction denied by user."
			out := adapter.ToOutcome(p, nil)
			Expect(out.Paid()).To(BeFalse())
			Expect(out.Status).To(Equal(provider.OutcomeFailed))
			Expect(out.ResultCode).To(Equal("1006"))
			Expect(out.Message).To(Equal("Transaction denied by user."))
		})
	})

	Describe("CreateIntent", func() {
		It("should post a signed create request and return the pay url", func() {
			var received map[string]interface{}
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/v2/gateway/api/create"))
				Expect(json.NewDecoder(r.Body).Decode(&received)).NotTo(HaveOccurred())
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]interface{}{
					"partnerCode": "PARTNER",
					"orderId":     received["orderId"],
					"requestId":   received["requestId"],
					"amount":      received["amount"],
					"resultCode":  0,
					"message":     "Successful.",
					"payUrl":      "https://test-payment.momo.vn/pay/abc",
				})
			}))
			defer server.Close()

			adapter = newAdapter(server.URL)
			result, err := adapter.CreateIntent(ctx, provider.Intent{
				OrderID:   "order-1",
				RequestID: "req-1",
				AmountVND: 1250000,
				OrderInfo: "tour booking order order-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PayURL).To(Equal("https://test-payment.momo.vn/pay/abc"))
			Expect(result.Raw).NotTo(BeEmpty())

			Expect(received["partnerCode"]).To(Equal("PARTNER"))
			Expect(received["requestType"]).To(Equal("captureWallet"))
			Expect(received["signature"]).NotTo(BeEmpty())
		})

		It("should surface a provider rejection", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]interface{}{
					"resultCode": 41,
					"message":    "Duplicate orderId",
				})
			}))
			defer server.Close()

			adapter = newAdapter(server.URL)
			_, err := adapter.CreateIntent(ctx, provider.Intent{
				OrderID:   "order-1",
				RequestID: "req-1",
				AmountVND: 1250000,
			})
			Expect(internal.IsErrorCode(err, internal.ErrCodeProviderError)).To(BeTrue())
		})
	})
})
