package request

type CreateReviewRequest struct {
	ActivityID string  `json:"activity_id" validate:"required,uuid4"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Title      *string `json:"title,omitempty" validate:"omitempty,max=200"`
	Comment    *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}
