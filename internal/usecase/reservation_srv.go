package usecase

import (
	"context"
	"errors"
	"fmt"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"
	"activity-booking/internal/dto/request"
	"activity-booking/internal/dto/response"
	"activity-booking/pkg/metrics"
	"activity-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReservationService interface {
	CreateReservation(ctx context.Context, userID uuid.UUID, req *request.CreateReservationRequest) (*response.ReservationResponse, error)
	GetReservation(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, reservationID uuid.UUID) (*response.ReservationResponse, error)
	CancelReservation(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, reservationID uuid.UUID) error
	ListMyReservations(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
	ListReservations(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error)
}

type reservationService struct {
	repo  *repository.Repository
	scope ScopeResolver
	log   *zap.Logger
}

func NewReservationService(repo *repository.Repository, scope ScopeResolver, log *zap.Logger) ReservationService {
	return &reservationService{
		repo:  repo,
		scope: scope,
		log:   log.With(zap.String("service", "reservation")),
	}
}

// CreateReservation validates and delegates the admission to the capacity
// ledger; the check-and-insert runs in one transaction there.
func (s *reservationService) CreateReservation(ctx context.Context, userID uuid.UUID, req *request.CreateReservationRequest) (*response.ReservationResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create reservation validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	activityID, err := uuid.Parse(req.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("invalid activity ID %s: %w", req.ActivityID, entity.ErrValidation)
	}

	reference := utils.GenerateReference()
	reservation, err := s.repo.Reservation.CreateReserved(ctx, activityID, userID, req.Quantity, reference)
	if err != nil {
		if errors.Is(err, entity.ErrCapacityExceeded) {
			metrics.CapacityRejections.Inc()
		}
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	s.log.Info("Reservation created",
		zap.String("reservation_id", reservation.ID.String()),
		zap.String("reference", reservation.Reference),
		zap.String("activity_id", activityID.String()),
		zap.Int("quantity", req.Quantity))

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

func (s *reservationService) GetReservation(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, reservationID uuid.UUID) (*response.ReservationResponse, error) {
	reservation, err := s.loadVisible(ctx, actorID, actorRole, reservationID)
	if err != nil {
		return nil, err
	}

	resp := response.ReservationToResponse(reservation)
	return &resp, nil
}

// CancelReservation lets the owner or an admin cancel a pending
// reservation; confirmed is terminal. Cancelled rows stop counting toward
// capacity, so the slots return implicitly.
func (s *reservationService) CancelReservation(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, reservationID uuid.UUID) error {
	reservation, err := s.repo.Reservation.FindByID(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation == nil {
		return fmt.Errorf("reservation %s: %w", reservationID.String(), entity.ErrNotFound)
	}

	scope, err := s.scope.Resolve(ctx, actorID, actorRole)
	if err != nil {
		return err
	}
	if !scope.CoversUser(reservation.UserID) {
		return fmt.Errorf("user %s does not own reservation %s: %w",
			actorID.String(), reservationID.String(), entity.ErrNotAssociated)
	}

	if err := s.repo.Reservation.Cancel(ctx, reservationID); err != nil {
		return err
	}

	s.log.Info("Reservation cancelled",
		zap.String("reservation_id", reservationID.String()),
		zap.String("actor", actorID.String()))

	return nil
}

func (s *reservationService) ListMyReservations(ctx context.Context, userID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	reservations, err := s.repo.Reservation.FindByUserID(ctx, userID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list user reservations", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	total, err := s.repo.Reservation.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return paginateReservations(reservations, req, total), nil
}

// ListReservations is the dashboard listing: admins see everything,
// company scopes see reservations against their activities, plain users
// fall back to their own.
func (s *reservationService) ListReservations(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReservationResponse], error) {
	scope, err := s.scope.Resolve(ctx, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	var (
		reservations []*entity.Reservation
		total        int64
	)

	switch scope.Kind {
	case ScopeAll:
		reservations, err = s.repo.Reservation.FindAll(ctx, req.Limit(), req.Offset())
		if err == nil {
			total, err = s.repo.Reservation.CountAll(ctx)
		}
	case ScopeCompany:
		reservations, err = s.repo.Reservation.FindByCompanyID(ctx, scope.CompanyID, req.Limit(), req.Offset())
		if err == nil {
			total, err = s.repo.Reservation.CountByCompanyID(ctx, scope.CompanyID)
		}
	default:
		reservations, err = s.repo.Reservation.FindByUserID(ctx, actorID, req.Limit(), req.Offset())
		if err == nil {
			total, err = s.repo.Reservation.CountByUserID(ctx, actorID)
		}
	}
	if err != nil {
		s.log.Error("Failed to list reservations", zap.Error(err))
		return nil, err
	}

	return paginateReservations(reservations, req, total), nil
}

// loadVisible fetches the reservation and applies the scope: owner,
// owning company's scope, or admin.
func (s *reservationService) loadVisible(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, reservationID uuid.UUID) (*entity.Reservation, error) {
	reservation, err := s.repo.Reservation.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation %s: %w", reservationID.String(), entity.ErrNotFound)
	}

	scope, err := s.scope.Resolve(ctx, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	if scope.CoversUser(reservation.UserID) {
		return reservation, nil
	}
	if scope.Kind == ScopeCompany {
		activity, err := s.repo.Activity.FindByID(ctx, reservation.ActivityID)
		if err != nil {
			return nil, err
		}
		if activity != nil && scope.CoversCompany(activity.CompanyID) {
			return reservation, nil
		}
	}

	return nil, fmt.Errorf("user %s cannot view reservation %s: %w",
		actorID.String(), reservationID.String(), entity.ErrNotAssociated)
}

func paginateReservations(reservations []*entity.Reservation, req *request.PaginatedRequest, total int64) *response.PaginatedResponse[response.ReservationResponse] {
	items := make([]response.ReservationResponse, 0, len(reservations))
	for _, reservation := range reservations {
		items = append(items, response.ReservationToResponse(reservation))
	}
	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total)
}
