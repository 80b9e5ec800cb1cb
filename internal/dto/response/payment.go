package response

import (
	"time"

	"activity-booking/internal/data/entity"
)

type PaymentResponse struct {
	ID            string               `json:"id"`
	ReservationID string               `json:"reservation_id"`
	Provider      string               `json:"provider"`
	ProviderTxnID string               `json:"provider_txn_id"`
	Amount        string               `json:"amount"`
	Currency      string               `json:"currency"`
	Status        entity.PaymentStatus `json:"status"`
	PaidAt        *time.Time           `json:"paid_at,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// WebhookAckResponse tells the provider what happened to the event.
// Duplicates and events for unknown reservations still ack with 200 so
// the provider stops retrying.
type WebhookAckResponse struct {
	EventID string `json:"event_id"`
	Result  string `json:"result"` // applied | duplicate | ignored
}

// Helper converters
func PaymentToResponse(payment *entity.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID.String(),
		ReservationID: payment.ReservationID.String(),
		Provider:      payment.Provider,
		ProviderTxnID: payment.ProviderTxnID,
		Amount:        payment.Amount.String(),
		Currency:      payment.Currency,
		Status:        payment.Status,
		PaidAt:        payment.PaidAt,
		CreatedAt:     payment.CreatedAt,
	}
}
