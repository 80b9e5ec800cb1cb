package wire

import (
	"activity-booking/internal/adaptor"
	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"
	"activity-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireActivity(
	r chi.Router,
	activityHandler *adaptor.ActivityHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Public catalogue
	r.Get("/api/activities", activityHandler.ListPublished)
	r.Get("/api/activities/{id}", activityHandler.GetActivity)

	// Company-side mutations; the scope resolver guards ownership, the
	// role middleware keeps plain users out early.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.RequireRole(log,
			string(entity.RoleAdmin), string(entity.RoleCompany), string(entity.RoleEmployee)))

		r.Post("/api/activities", activityHandler.CreateActivity)
		r.Put("/api/activities/{id}", activityHandler.UpdateActivity)
		r.Delete("/api/activities/{id}", activityHandler.ArchiveActivity)
		r.Get("/api/manage/activities", activityHandler.ListScoped)
	})
}
