package adaptor

import (
	"errors"
	"net/http"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/usecase"
	"activity-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth        *AuthHandler
	Company     *CompanyHandler
	Activity    *ActivityHandler
	Reservation *ReservationHandler
	Payment     *PaymentHandler
	Review      *ReviewHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(service.Auth, log),
		Company:     NewCompanyHandler(service.Company, log),
		Activity:    NewActivityHandler(service.Activity, log),
		Reservation: NewReservationHandler(service.Reservation, log),
		Payment:     NewPaymentHandler(service.Payment, log),
		Review:      NewReviewHandler(service.Review, log),
	}
}

// handleServiceError maps domain sentinels to HTTP statuses. Anything
// unmatched is a 500 with a generic message; the wrapped detail stays in
// the logs.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, entity.ErrValidation),
		errors.Is(err, entity.ErrInvalidSignature),
		errors.Is(err, entity.ErrBadEvent):
		log.Warn(operation+" rejected", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, entity.ErrUnauthorized):
		log.Warn(operation+" unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, entity.ErrNotAssociated):
		log.Warn(operation+" forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, entity.ErrNotFound):
		log.Warn(operation+" not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, entity.ErrCapacityExceeded),
		errors.Is(err, entity.ErrInvalidState),
		errors.Is(err, entity.ErrDuplicate),
		errors.Is(err, entity.ErrConflict):
		log.Warn(operation+" conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	default:
		log.Error(operation+" failed", zap.Error(err))
		utils.ResponseInternalError(w, "internal server error")
	}
}

// actorFromContext pulls the authenticated caller set by the session
// middleware.
func actorFromContext(r *http.Request) (uuid.UUID, entity.UserRole, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	role, ok := utils.GetRoleFromContext(r.Context())
	if !ok {
		return uuid.Nil, "", false
	}
	return userID, entity.UserRole(role), true
}
