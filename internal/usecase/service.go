package usecase

import (
	"activity-booking/internal/data/repository"
	"activity-booking/pkg/cache"
	"activity-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth        AuthService
	Company     CompanyService
	Activity    ActivityService
	Reservation ReservationService
	Payment     PaymentService
	Review      ReviewService
	Scope       ScopeResolver
}

func NewService(repo *repository.Repository, client CheckoutClient, c *cache.Cache, config *utils.Config, log *zap.Logger) *Service {
	scope := NewScopeResolver(repo, log)

	return &Service{
		Auth:        NewAuthService(repo, config, log),
		Company:     NewCompanyService(repo, scope, log),
		Activity:    NewActivityService(repo, scope, log),
		Reservation: NewReservationService(repo, scope, log),
		Payment:     NewPaymentService(repo, client, c, config, log),
		Review:      NewReviewService(repo, log),
		Scope:       scope,
	}
}
