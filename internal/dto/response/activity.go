package response

import (
	"time"

	"activity-booking/internal/data/entity"
)

type ActivityResponse struct {
	ID          string                `json:"id"`
	CompanyID   string                `json:"company_id"`
	Title       string                `json:"title"`
	Description *string               `json:"description,omitempty"`
	Location    *string               `json:"location,omitempty"`
	StartAt     *time.Time            `json:"start_at,omitempty"`
	EndAt       *time.Time            `json:"end_at,omitempty"`
	Capacity    *int                  `json:"capacity,omitempty"`
	Remaining   *int                  `json:"remaining,omitempty"`
	Price       string                `json:"price"`
	Currency    string                `json:"currency"`
	Status      entity.ActivityStatus `json:"status"`
	AvgRating   float64               `json:"avg_rating"`
	RatingCount int                   `json:"rating_count"`
	CreatedAt   time.Time             `json:"created_at"`
}

// Helper converters
func ActivityToResponse(activity *entity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          activity.ID.String(),
		CompanyID:   activity.CompanyID.String(),
		Title:       activity.Title,
		Description: activity.Description,
		Location:    activity.Location,
		StartAt:     activity.StartAt,
		EndAt:       activity.EndAt,
		Capacity:    activity.Capacity,
		Price:       activity.Price.String(),
		Currency:    activity.Currency,
		Status:      activity.Status,
		AvgRating:   activity.AvgRating,
		RatingCount: activity.RatingCount,
		CreatedAt:   activity.CreatedAt,
	}
}

// ActivityToResponseWithRemaining includes the live slot count. Remaining
// is omitted for unlimited-capacity activities.
func ActivityToResponseWithRemaining(activity *entity.Activity, reserved int) ActivityResponse {
	resp := ActivityToResponse(activity)
	if activity.Capacity != nil {
		remaining := *activity.Capacity - reserved
		if remaining < 0 {
			remaining = 0
		}
		resp.Remaining = &remaining
	}
	return resp
}
