package usecase

import (
	"context"
	"fmt"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"
	"activity-booking/internal/dto/request"
	"activity-booking/internal/dto/response"
	"activity-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ActivityService interface {
	CreateActivity(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, req *request.CreateActivityRequest) (*response.ActivityResponse, error)
	UpdateActivity(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, activityID uuid.UUID, req *request.UpdateActivityRequest) (*response.ActivityResponse, error)
	ArchiveActivity(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, activityID uuid.UUID) error

	// Public surface
	GetActivity(ctx context.Context, activityID uuid.UUID) (*response.ActivityResponse, error)
	ListPublished(ctx context.Context, req *request.SearchActivityRequest) (*response.PaginatedResponse[response.ActivityResponse], error)

	// Scoped listing for company/admin dashboards
	ListScoped(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ActivityResponse], error)
}

type activityService struct {
	repo  *repository.Repository
	scope ScopeResolver
	log   *zap.Logger
}

func NewActivityService(repo *repository.Repository, scope ScopeResolver, log *zap.Logger) ActivityService {
	return &activityService{
		repo:  repo,
		scope: scope,
		log:   log.With(zap.String("service", "activity")),
	}
}

// CreateActivity creates a draft under the actor's company. Drafts are
// invisible to the public listing and refuse reservations until
// published.
func (s *activityService) CreateActivity(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, req *request.CreateActivityRequest) (*response.ActivityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create activity validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	scope, err := s.scope.Resolve(ctx, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	if scope.Kind != ScopeCompany {
		return nil, fmt.Errorf("only company accounts can create activities: %w", entity.ErrNotAssociated)
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("invalid price %q: %w", req.Price, entity.ErrValidation)
	}

	now := time.Now()
	activity := &entity.Activity{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CompanyID:   scope.CompanyID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Capacity:    req.Capacity,
		Price:       price,
		Currency:    req.Currency,
		Status:      entity.ActivityStatusDraft,
	}

	if err := s.repo.Activity.Create(ctx, activity); err != nil {
		s.log.Error("Failed to create activity", zap.Error(err), zap.String("company_id", scope.CompanyID.String()))
		return nil, err
	}

	s.log.Info("Activity created",
		zap.String("activity_id", activity.ID.String()),
		zap.String("company_id", scope.CompanyID.String()))

	resp := response.ActivityToResponse(activity)
	return &resp, nil
}

func (s *activityService) UpdateActivity(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, activityID uuid.UUID, req *request.UpdateActivityRequest) (*response.ActivityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update activity validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	activity, err := s.guardMutation(ctx, actorID, actorRole, activityID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.Description != nil {
		activity.Description = req.Description
	}
	if req.Location != nil {
		activity.Location = req.Location
	}
	if req.StartAt != nil {
		activity.StartAt = req.StartAt
	}
	if req.EndAt != nil {
		activity.EndAt = req.EndAt
	}
	if req.Capacity != nil {
		activity.Capacity = req.Capacity
	}
	if req.Price != nil {
		price, err := decimal.NewFromString(*req.Price)
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("invalid price %q: %w", *req.Price, entity.ErrValidation)
		}
		// Existing reservations keep their snapshotted unit price.
		activity.Price = price
	}
	if req.Currency != nil {
		activity.Currency = *req.Currency
	}
	if req.Status != nil {
		next := entity.ActivityStatus(*req.Status)
		if !validStatusTransition(activity.Status, next) {
			return nil, fmt.Errorf("cannot move activity from %s to %s: %w",
				activity.Status, next, entity.ErrInvalidState)
		}
		activity.Status = next
	}
	activity.UpdatedAt = time.Now()

	if err := s.repo.Activity.Update(ctx, activity); err != nil {
		s.log.Error("Failed to update activity", zap.Error(err), zap.String("activity_id", activityID.String()))
		return nil, err
	}

	resp := response.ActivityToResponse(activity)
	return &resp, nil
}

func (s *activityService) ArchiveActivity(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, activityID uuid.UUID) error {
	if _, err := s.guardMutation(ctx, actorID, actorRole, activityID); err != nil {
		return err
	}

	if err := s.repo.Activity.Archive(ctx, activityID); err != nil {
		s.log.Error("Failed to archive activity", zap.Error(err), zap.String("activity_id", activityID.String()))
		return err
	}

	s.log.Info("Activity archived", zap.String("activity_id", activityID.String()))
	return nil
}

func (s *activityService) GetActivity(ctx context.Context, activityID uuid.UUID) (*response.ActivityResponse, error) {
	activity, err := s.repo.Activity.FindByID(ctx, activityID)
	if err != nil {
		s.log.Error("Failed to find activity", zap.Error(err), zap.String("activity_id", activityID.String()))
		return nil, fmt.Errorf("find activity %s: %w", activityID.String(), err)
	}
	if activity == nil {
		return nil, fmt.Errorf("activity %s: %w", activityID.String(), entity.ErrNotFound)
	}

	reserved, err := s.repo.Reservation.SumActiveQuantity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	resp := response.ActivityToResponseWithRemaining(activity, reserved)
	return &resp, nil
}

func (s *activityService) ListPublished(ctx context.Context, req *request.SearchActivityRequest) (*response.PaginatedResponse[response.ActivityResponse], error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("List published validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	activities, err := s.repo.Activity.FindPublished(ctx, req.Search, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list published activities", zap.Error(err))
		return nil, err
	}

	total, err := s.repo.Activity.CountPublished(ctx, req.Search)
	if err != nil {
		return nil, err
	}

	items := make([]response.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		items = append(items, response.ActivityToResponse(activity))
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *activityService) ListScoped(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ActivityResponse], error) {
	scope, err := s.scope.Resolve(ctx, actorID, actorRole)
	if err != nil {
		return nil, err
	}

	var (
		activities []*entity.Activity
		total      int64
	)

	switch scope.Kind {
	case ScopeAll:
		activities, err = s.repo.Activity.FindAll(ctx, req.Limit(), req.Offset())
		if err == nil {
			total, err = s.repo.Activity.CountAll(ctx)
		}
	case ScopeCompany:
		activities, err = s.repo.Activity.FindByCompanyID(ctx, scope.CompanyID, req.Limit(), req.Offset())
		if err == nil {
			total, err = s.repo.Activity.CountByCompanyID(ctx, scope.CompanyID)
		}
	default:
		return nil, fmt.Errorf("scope %s cannot list company activities: %w", scope.Kind, entity.ErrNotAssociated)
	}
	if err != nil {
		s.log.Error("Failed to list scoped activities", zap.Error(err))
		return nil, err
	}

	items := make([]response.ActivityResponse, 0, len(activities))
	for _, activity := range activities {
		items = append(items, response.ActivityToResponse(activity))
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

// guardMutation admits admins and actors whose company scope covers the
// activity's owning company.
func (s *activityService) guardMutation(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, activityID uuid.UUID) (*entity.Activity, error) {
	activity, err := s.repo.Activity.FindByID(ctx, activityID)
	if err != nil {
		s.log.Error("Failed to find activity", zap.Error(err), zap.String("activity_id", activityID.String()))
		return nil, fmt.Errorf("find activity %s: %w", activityID.String(), err)
	}
	if activity == nil {
		return nil, fmt.Errorf("activity %s: %w", activityID.String(), entity.ErrNotFound)
	}

	scope, err := s.scope.Resolve(ctx, actorID, actorRole)
	if err != nil {
		return nil, err
	}
	if !scope.CoversCompany(activity.CompanyID) {
		return nil, fmt.Errorf("user %s cannot modify activities of company %s: %w",
			actorID.String(), activity.CompanyID.String(), entity.ErrNotAssociated)
	}

	return activity, nil
}

// Drafts publish, published archive. Archived is terminal.
func validStatusTransition(from, to entity.ActivityStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case entity.ActivityStatusDraft:
		return to == entity.ActivityStatusPublished
	case entity.ActivityStatusPublished:
		return to == entity.ActivityStatusArchived
	}
	return false
}
