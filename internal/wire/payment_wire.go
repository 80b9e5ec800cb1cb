package wire

import (
	"activity-booking/internal/adaptor"
	"activity-booking/internal/data/repository"
	"activity-booking/pkg/middleware"
	"activity-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) {
	// Protected checkout
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Post("/api/payments/checkout-session", paymentHandler.CreateCheckoutSession)
	})

	// Public webhook, signature-checked in the service. Rate limited so a
	// provider outage replay burst cannot starve the rest of the API.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(float64(config.Payment.RequestsPerSecond), config.Payment.RequestsPerSecond*2))

		r.Post("/api/webhooks/payment", paymentHandler.HandleWebhook)
	})
}
