package payment

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/vqminh/tour-booking/internal"
	"github.com/vqminh/tour-booking/internal/provider/momo"
	"github.com/vqminh/tour-booking/internal/transport"
)

// WebhookHandler receives MoMo's server-pushed IPN. Response codes steer the
// provider's retry behavior: 204 acknowledges (including duplicates and
// unknown sessions, which retries cannot fix), 403 rejects a bad signature,
// 409 flags a conflicting outcome for operations, and 5xx asks for a retry.
type WebhookHandler struct {
	*transport.BaseHandler
	momo       *momo.Adapter
	reconciler Reconciler
	logger     *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, momoAdapter *momo.Adapter, reconciler Reconciler, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: baseHandler,
		momo:        momoAdapter,
		reconciler:  reconciler,
		logger:      logger,
	}
}

// HandleMoMoIPN handles POST /api/v1/payments/momo/ipn
func (h *WebhookHandler) HandleMoMoIPN(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("momo ipn: failed to read body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var payload momo.IPNPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("momo ipn: invalid body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.logger.Info("received momo ipn",
		"order_id", payload.OrderID,
		"request_id", payload.RequestID,
		"result_code", payload.ResultCode,
		"amount", payload.Amount)

	if err := h.momo.VerifyIPN(payload); err != nil {
		h.logger.Error("momo ipn: signature verification failed",
			"order_id", payload.OrderID)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	outcome := h.momo.ToOutcome(payload, raw)

	_, err = h.reconciler.Reconcile(r.Context(), payload.OrderID, outcome)
	if err != nil {
		switch {
		case internal.IsErrorCode(err, internal.ErrCodeSessionNotFound):
			// Retrying will not make the session appear; acknowledge and
			// leave the payload in the logs for investigation.
			h.logger.Warn("momo ipn for unknown session",
				"order_id", payload.OrderID,
				"result_code", payload.ResultCode)
			w.WriteHeader(http.StatusNoContent)
			return
		case internal.IsErrorCode(err, internal.ErrCodeConflictingOutcome):
			h.logger.Error("momo ipn conflicts with stored outcome",
				"order_id", payload.OrderID,
				"error", err)
			w.WriteHeader(http.StatusConflict)
			return
		case internal.IsErrorCode(err, internal.ErrCodeSeatCommitConflict):
			// Booking exists and is flagged; the payment itself is settled.
			h.logger.Error("momo ipn settled with seat conflict",
				"order_id", payload.OrderID)
			w.WriteHeader(http.StatusNoContent)
			return
		default:
			h.logger.Error("momo ipn processing failed",
				"order_id", payload.OrderID,
				"error", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
