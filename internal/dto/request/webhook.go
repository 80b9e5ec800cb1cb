package request

import "time"

// WebhookEvent is the provider's notification envelope. The raw body is
// what gets signature-checked and stored; this struct only reads the
// fields the reconciler acts on. Unknown event types are acknowledged
// and ignored, so Type is not restricted here.
type WebhookEvent struct {
	ID   string           `json:"id" validate:"required"`
	Type string           `json:"type" validate:"required"`
	Data WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	TransactionID string            `json:"transaction_id"`
	Amount        string            `json:"amount"`
	Currency      string            `json:"currency"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"` // carries reservation_id
}
