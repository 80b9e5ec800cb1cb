package wire

import (
	"activity-booking/internal/adaptor"
	"activity-booking/internal/data/repository"
	"activity-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Public
	r.Get("/api/activities/{id}/reviews", reviewHandler.GetActivityReviews)
	r.Get("/api/activities/{id}/rating", reviewHandler.GetActivityRating)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/reviews", reviewHandler.AddReview)
		r.Delete("/api/reviews/{id}", reviewHandler.DeleteReview)
	})
}
