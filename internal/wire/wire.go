package wire

import (
	"net/http"

	"activity-booking/internal/adaptor"
	"activity-booking/internal/data/repository"
	"activity-booking/internal/usecase"
	"activity-booking/pkg/cache"
	"activity-booking/pkg/database"
	"activity-booking/pkg/middleware"
	"activity-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring connects repositories, services, handlers and routes.
func Wiring(
	repo *repository.Repository,
	client usecase.CheckoutClient,
	c *cache.Cache,
	db database.PgxIface,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, client, c, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, db, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	db database.PgxIface,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Metrics())

	wireAuth(r, handler.Auth, repo, logger)
	wireCompany(r, handler.Company, repo, logger)
	wireActivity(r, handler.Activity, repo, logger)
	wireReservation(r, handler.Reservation, repo, logger)
	wirePayment(r, handler.Payment, repo, config, logger)
	wireReview(r, handler.Review, repo, logger)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := db.Ping(req.Context()); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("DB unavailable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
