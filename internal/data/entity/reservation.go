package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	Base
	Reference  string            `db:"reference"`
	ActivityID uuid.UUID         `db:"activity_id"`
	UserID     uuid.UUID         `db:"user_id"`
	Quantity   int               `db:"quantity"`
	UnitPrice  decimal.Decimal   `db:"unit_price"` // snapshot of the activity price at creation, never updated
	Status     ReservationStatus `db:"status"`
	ReservedAt time.Time         `db:"reserved_at"`
	ExpiresAt  *time.Time        `db:"expires_at"`
	PaymentID  *uuid.UUID        `db:"payment_id"` // set exactly once by payment reconciliation
}

// TotalAmount is derived, never stored.
func (r *Reservation) TotalAmount() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}

// Terminal reports whether no further application-driven transition applies.
func (r *Reservation) Terminal() bool {
	return r.Status == ReservationStatusConfirmed || r.Status == ReservationStatusCancelled
}
