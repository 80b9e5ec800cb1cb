package wire

import (
	"activity-booking/internal/adaptor"
	"activity-booking/internal/data/repository"
	"activity-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCompany(
	r chi.Router,
	companyHandler *adaptor.CompanyHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// Public company profile
	r.Get("/api/companies/{id}", companyHandler.GetCompany)

	// Protected; ownership checks live in the service
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/companies", companyHandler.CreateCompany)
		r.Put("/api/companies/{id}", companyHandler.UpdateCompany)

		r.Get("/api/companies/{id}/members", companyHandler.ListMembers)
		r.Post("/api/companies/{id}/members", companyHandler.AddMember)
		r.Delete("/api/companies/{id}/members/{userID}", companyHandler.RemoveMember)
	})
}
