package adaptor

import (
	"encoding/json"
	"io"
	"net/http"

	"activity-booking/internal/dto/request"
	"activity-booking/internal/usecase"
	"activity-booking/pkg/utils"

	"go.uber.org/zap"
)

// Providers retry on non-2xx; bodies past this size are not ours.
const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// CreateCheckoutSession handles POST /api/payments/checkout-session (protected)
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	session, err := h.service.CreateCheckoutSession(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "create checkout session")
		return
	}

	utils.ResponseCreated(w, "success", session)
}

// HandleWebhook handles POST /api/webhooks/payment (public, signed).
// The body must reach the verifier byte-for-byte as the provider signed
// it, so it is read raw before any decoding.
func (h *PaymentHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.ResponseBadRequest(w, "Unreadable request body", nil)
		return
	}

	signature := r.Header.Get("X-Webhook-Signature")
	if signature == "" {
		utils.ResponseBadRequest(w, "Missing signature header", nil)
		return
	}

	ack, err := h.service.HandleWebhook(r.Context(), signature, body)
	if err != nil {
		handleServiceError(h.log, w, err, "payment webhook")
		return
	}

	utils.ResponseSuccess(w, "success", ack)
}
