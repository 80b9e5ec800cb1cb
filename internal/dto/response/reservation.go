package response

import (
	"time"

	"activity-booking/internal/data/entity"
)

type ReservationResponse struct {
	ID            string                   `json:"id"`
	Reference     string                   `json:"reference"`
	ActivityID    string                   `json:"activity_id"`
	ActivityTitle string                   `json:"activity_title,omitempty"`
	UserID        string                   `json:"user_id"`
	Quantity      int                      `json:"quantity"`
	UnitPrice     string                   `json:"unit_price"`
	TotalAmount   string                   `json:"total_amount"`
	Status        entity.ReservationStatus `json:"status"`
	ReservedAt    time.Time                `json:"reserved_at"`
	PaymentID     *string                  `json:"payment_id,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

type CheckoutResponse struct {
	ReservationID string `json:"reservation_id"`
	SessionID     string `json:"session_id"`
	CheckoutURL   string `json:"checkout_url"`
}

// Helper converters
func ReservationToResponse(reservation *entity.Reservation) ReservationResponse {
	resp := ReservationResponse{
		ID:          reservation.ID.String(),
		Reference:   reservation.Reference,
		ActivityID:  reservation.ActivityID.String(),
		UserID:      reservation.UserID.String(),
		Quantity:    reservation.Quantity,
		UnitPrice:   reservation.UnitPrice.String(),
		TotalAmount: reservation.TotalAmount().String(),
		Status:      reservation.Status,
		ReservedAt:  reservation.ReservedAt,
		CreatedAt:   reservation.CreatedAt,
	}

	if reservation.PaymentID != nil {
		paymentID := reservation.PaymentID.String()
		resp.PaymentID = &paymentID
	}

	return resp
}
