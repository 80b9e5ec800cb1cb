package wire

import (
	"activity-booking/internal/adaptor"
	"activity-booking/internal/data/repository"
	"activity-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReservation(
	r chi.Router,
	reservationHandler *adaptor.ReservationHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/reservations", reservationHandler.CreateReservation)
		r.Get("/api/reservations/{id}", reservationHandler.GetReservation)
		r.Post("/api/reservations/{id}/cancel", reservationHandler.CancelReservation)

		r.Get("/api/user/reservations", reservationHandler.ListMyReservations)
		r.Get("/api/manage/reservations", reservationHandler.ListReservations)
	})
}
