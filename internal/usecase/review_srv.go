package usecase

import (
	"context"
	"fmt"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"
	"activity-booking/internal/dto/request"
	"activity-booking/internal/dto/response"
	"activity-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	AddReview(ctx context.Context, userID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	DeleteReview(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, reviewID uuid.UUID) error
	GetActivityReviews(ctx context.Context, activityID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
	GetActivityRating(ctx context.Context, activityID uuid.UUID) (*response.ActivityRatingResponse, error)
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

// AddReview requires a confirmed reservation; the eligibility check, the
// insert and the aggregate update share one transaction in the repository.
func (s *reviewService) AddReview(ctx context.Context, userID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Add review validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	activityID, err := uuid.Parse(req.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("invalid activity ID %s: %w", req.ActivityID, entity.ErrValidation)
	}

	review := &entity.Review{
		UserID:     userID,
		ActivityID: activityID,
		Rating:     req.Rating,
		Title:      req.Title,
		Comment:    req.Comment,
	}

	if err := s.repo.Review.CreateWithAggregate(ctx, review); err != nil {
		return nil, err
	}

	s.log.Info("Review added",
		zap.String("review_id", review.ID.String()),
		zap.String("activity_id", activityID.String()),
		zap.Int("rating", req.Rating))

	resp := response.ReviewToResponse(review)
	return &resp, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, reviewID uuid.UUID) error {
	review, err := s.repo.Review.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return fmt.Errorf("review %s: %w", reviewID.String(), entity.ErrNotFound)
	}

	if actorRole != entity.RoleAdmin && review.UserID != actorID {
		return fmt.Errorf("user %s does not own review %s: %w",
			actorID.String(), reviewID.String(), entity.ErrNotAssociated)
	}

	if err := s.repo.Review.DeleteWithAggregate(ctx, reviewID); err != nil {
		return err
	}

	s.log.Info("Review deleted",
		zap.String("review_id", reviewID.String()),
		zap.String("actor", actorID.String()))

	return nil
}

func (s *reviewService) GetActivityReviews(ctx context.Context, activityID uuid.UUID, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	reviews, err := s.repo.Review.FindByActivityID(ctx, activityID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list reviews", zap.Error(err), zap.String("activity_id", activityID.String()))
		return nil, err
	}

	total, err := s.repo.Review.CountByActivityID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	items := make([]response.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		item := response.ReviewToResponse(review)
		if user, err := s.repo.User.FindByID(ctx, review.UserID); err == nil && user != nil {
			item.Username = user.Username
		}
		items = append(items, item)
	}

	return response.NewPaginatedResponse(items, req.Page, req.Limit(), total), nil
}

func (s *reviewService) GetActivityRating(ctx context.Context, activityID uuid.UUID) (*response.ActivityRatingResponse, error) {
	activity, err := s.repo.Activity.FindByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, fmt.Errorf("activity %s: %w", activityID.String(), entity.ErrNotFound)
	}

	return &response.ActivityRatingResponse{
		ActivityID:  activity.ID.String(),
		AvgRating:   activity.AvgRating,
		RatingCount: activity.RatingCount,
	}, nil
}
