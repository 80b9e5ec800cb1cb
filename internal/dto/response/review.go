package response

import (
	"time"

	"activity-booking/internal/data/entity"
)

type ReviewResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	ActivityID string    `json:"activity_id"`
	Rating     int       `json:"rating"`
	Title      *string   `json:"title,omitempty"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ActivityRatingResponse struct {
	ActivityID  string  `json:"activity_id"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}

// Helper converters
func ReviewToResponse(review *entity.Review) ReviewResponse {
	return ReviewResponse{
		ID:         review.ID.String(),
		UserID:     review.UserID.String(),
		ActivityID: review.ActivityID.String(),
		Rating:     review.Rating,
		Title:      review.Title,
		Comment:    review.Comment,
		CreatedAt:  review.CreatedAt,
	}
}
