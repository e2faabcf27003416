package payment_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vqminh/tour-booking/internal"
	bookingdm "github.com/vqminh/tour-booking/internal/core/datamodel/booking"
	"github.com/vqminh/tour-booking/internal/payment"
	"github.com/vqminh/tour-booking/internal/provider/momo"
	"github.com/vqminh/tour-booking/internal/transport"
)

const (
	ipnAccessKey = "access-key"
	ipnSecretKey = "secret-key"
)

func signedIPN(resultCode int) momo.IPNPayload {
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

	canonical := "accessKey=" + ipnAccessKey +
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

	mac := hmac.New(sha256.New, []byte(ipnSecretKey))
	mac.Write([]byte(canonical))
	p.Signature = hex.EncodeToString(mac.Sum(nil))
	return p
}

var _ = Describe("WebhookHandler", func() {
	var (
		reconciler *mockReconciler
		handler    *payment.WebhookHandler
	)

	post := func(payload momo.IPNPayload) *httptest.ResponseRecorder {
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/momo/ipn", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		handler.HandleMoMoIPN(rec, req)
		return rec
	}

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		adapter := momo.NewAdapter(momo.Config{
			PartnerCode: "PARTNER",
			AccessKey:   ipnAccessKey,
			SecretKey:   ipnSecretKey,
		}, logger)
		reconciler = &mockReconciler{
			booking: &bookingdm.Booking{ID: 1, UserID: 1, Status: bookingdm.StatusPaid},
		}
		handler = payment.NewWebhookHandler(transport.NewBaseHandler(logger), adapter, reconciler, logger)
	})

	It("should acknowledge a verified paid notification with 204", func() {
		rec := post(signedIPN(0))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(reconciler.orderIDs).To(Equal([]string{"order-1"}))
		Expect(reconciler.outcomes[0].Paid()).To(BeTrue())
	})

	It("should map a failed notification to a failed outcome", func() {
		rec := post(signedIPN(1006))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(reconciler.outcomes[0].Paid()).To(BeFalse())
	})

	It("should reject a bad signature with 403 before any processing", func() {
		payload := signedIPN(0)
		payload.Amount = 1
		rec := post(payload)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(reconciler.orderIDs).To(BeEmpty())
	})

	It("should reject an unreadable body with 400", func() {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/momo/ipn", bytes.NewReader([]byte("not-json")))
		rec := httptest.NewRecorder()
		handler.HandleMoMoIPN(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should acknowledge an unknown session with 204", func() {
		reconciler.err = internal.ErrSessionNotFound
		reconciler.booking = nil
		rec := post(signedIPN(0))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("should flag a conflicting outcome with 409", func() {
		reconciler.err = internal.NewConflictingOutcomeError("order-1", "paid", "failed")
		reconciler.booking = nil
		rec := post(signedIPN(1006))
		Expect(rec.Code).To(Equal(http.StatusConflict))
	})

	It("should acknowledge a settled seat conflict with 204", func() {
		reconciler.err = internal.NewConflictError(
			"payment captured but the departure is oversold; booking flagged for manual processing",
			internal.ErrCodeSeatCommitConflict)
		rec := post(signedIPN(0))
		Expect(rec.Code).To(Equal(http.StatusNoContent))
	})

	It("should ask for a retry with 500 on a transient failure", func() {
		reconciler.err = internal.NewInternalError("database unavailable", nil)
		reconciler.booking = nil
		rec := post(signedIPN(0))
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
	})
})
