package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	Base
	ReservationID uuid.UUID       `db:"reservation_id"`
	Provider      string          `db:"provider"`
	ProviderTxnID string          `db:"provider_txn_id"` // dedup key together with provider
	Amount        decimal.Decimal `db:"amount"`
	Currency      string          `db:"currency"`
	Status        PaymentStatus   `db:"status"`
	PaidAt        *time.Time      `db:"paid_at"`
	RawPayload    []byte          `db:"raw_payload"` // opaque audit copy of the provider event
}
