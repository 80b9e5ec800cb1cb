package request

import "time"

type CreateActivityRequest struct {
	Title       string     `json:"title" validate:"required,min=2,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=1"`
	Price       string     `json:"price" validate:"required"`
	Currency    string     `json:"currency" validate:"required,len=3,uppercase"`
}

type UpdateActivityRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=200"`
	StartAt     *time.Time `json:"start_at,omitempty"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty" validate:"omitempty,min=1"`
	Price       *string    `json:"price,omitempty"`
	Currency    *string    `json:"currency,omitempty" validate:"omitempty,len=3,uppercase"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

type SearchActivityRequest struct {
	PaginatedRequest
	Search string `json:"search" validate:"omitempty,max=200"`
}
