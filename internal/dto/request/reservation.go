package request

type CreateReservationRequest struct {
	ActivityID string `json:"activity_id" validate:"required,uuid4"`
	Quantity   int    `json:"quantity" validate:"required,min=1,max=100"`
}

type CheckoutRequest struct {
	ReservationID string `json:"reservation_id" validate:"required,uuid4"`
}
