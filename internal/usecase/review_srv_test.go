package usecase

import (
	"context"
	"testing"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/dto/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newReviewFixture(t *testing.T) (*memStore, ReviewService, *entity.Activity) {
	t.Helper()
	store := newMemStore()
	activity := seedActivity(store, intPtr(100), "15.00", entity.ActivityStatusPublished)
	repo := newFakeRepository(store)
	return store, NewReviewService(repo, zap.NewNop()), activity
}

func confirmReservation(store *memStore, userID, activityID uuid.UUID) {
	now := time.Now()
	reservation := &entity.Reservation{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Reference:  "RES-" + userID.String()[:8],
		ActivityID: activityID,
		UserID:     userID,
		Quantity:   1,
		Status:     entity.ReservationStatusConfirmed,
		ReservedAt: now,
	}
	store.reservations[reservation.ID] = reservation
}

func addRating(t *testing.T, svc ReviewService, store *memStore, activityID uuid.UUID, rating int) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	confirmReservation(store, userID, activityID)
	resp, err := svc.AddReview(context.Background(), userID, &request.CreateReviewRequest{
		ActivityID: activityID.String(),
		Rating:     rating,
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

func TestAddReviewRequiresConfirmedReservation(t *testing.T) {
	_, svc, activity := newReviewFixture(t)

	_, err := svc.AddReview(context.Background(), uuid.New(), &request.CreateReviewRequest{
		ActivityID: activity.ID.String(),
		Rating:     5,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestAddReviewPendingReservationNotEnough(t *testing.T) {
	store, svc, activity := newReviewFixture(t)
	userID := uuid.New()

	now := time.Now()
	reservation := &entity.Reservation{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: now},
		ActivityID: activity.ID,
		UserID:     userID,
		Quantity:   1,
		Status:     entity.ReservationStatusPending,
		ReservedAt: now,
	}
	store.reservations[reservation.ID] = reservation

	_, err := svc.AddReview(context.Background(), userID, &request.CreateReviewRequest{
		ActivityID: activity.ID.String(),
		Rating:     4,
	})
	assert.ErrorIs(t, err, entity.ErrInvalidState)
}

func TestAddReviewRejectsDuplicate(t *testing.T) {
	store, svc, activity := newReviewFixture(t)
	userID := uuid.New()
	confirmReservation(store, userID, activity.ID)

	_, err := svc.AddReview(context.Background(), userID, &request.CreateReviewRequest{
		ActivityID: activity.ID.String(), Rating: 5,
	})
	require.NoError(t, err)

	_, err = svc.AddReview(context.Background(), userID, &request.CreateReviewRequest{
		ActivityID: activity.ID.String(), Rating: 1,
	})
	assert.ErrorIs(t, err, entity.ErrDuplicate)
}

func TestRatingAggregate(t *testing.T) {
	store, svc, activity := newReviewFixture(t)

	addRating(t, svc, store, activity.ID, 5)
	addRating(t, svc, store, activity.ID, 4)
	reviewToRemove := addRating(t, svc, store, activity.ID, 3)

	assert.InDelta(t, 4.0, activity.AvgRating, 1e-9)
	assert.Equal(t, 3, activity.RatingCount)

	// removing the 3 recomputes from the remaining {5,4}
	owner := store.reviews[reviewToRemove].UserID
	require.NoError(t, svc.DeleteReview(context.Background(), owner, entity.RoleUser, reviewToRemove))

	assert.InDelta(t, 4.5, activity.AvgRating, 1e-9)
	assert.Equal(t, 2, activity.RatingCount)
}

func TestAddThenRemoveRestoresAggregate(t *testing.T) {
	store, svc, activity := newReviewFixture(t)

	addRating(t, svc, store, activity.ID, 5)
	addRating(t, svc, store, activity.ID, 2)

	prevAvg, prevCount := activity.AvgRating, activity.RatingCount

	reviewID := addRating(t, svc, store, activity.ID, 4)
	owner := store.reviews[reviewID].UserID
	require.NoError(t, svc.DeleteReview(context.Background(), owner, entity.RoleUser, reviewID))

	assert.InDelta(t, prevAvg, activity.AvgRating, 1e-9)
	assert.Equal(t, prevCount, activity.RatingCount)
}

func TestDeleteLastReviewZeroesAggregate(t *testing.T) {
	store, svc, activity := newReviewFixture(t)

	reviewID := addRating(t, svc, store, activity.ID, 5)
	owner := store.reviews[reviewID].UserID
	require.NoError(t, svc.DeleteReview(context.Background(), owner, entity.RoleUser, reviewID))

	assert.Zero(t, activity.AvgRating)
	assert.Zero(t, activity.RatingCount)
}

func TestDeleteReviewOwnerOnly(t *testing.T) {
	store, svc, activity := newReviewFixture(t)
	reviewID := addRating(t, svc, store, activity.ID, 5)

	err := svc.DeleteReview(context.Background(), uuid.New(), entity.RoleUser, reviewID)
	assert.ErrorIs(t, err, entity.ErrNotAssociated)

	// admin override
	assert.NoError(t, svc.DeleteReview(context.Background(), uuid.New(), entity.RoleAdmin, reviewID))
}

func TestGetActivityReviewsPaged(t *testing.T) {
	store, svc, activity := newReviewFixture(t)

	for i := 0; i < 3; i++ {
		addRating(t, svc, store, activity.ID, 4)
	}

	got, err := svc.GetActivityReviews(context.Background(), activity.ID, &request.PaginatedRequest{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, got.Data, 2)
	assert.Equal(t, int64(3), got.Pagination.Total)
	assert.Equal(t, 2, got.Pagination.TotalPages)

	rating, err := svc.GetActivityRating(context.Background(), activity.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rating.AvgRating, 1e-9)
	assert.Equal(t, 3, rating.RatingCount)
}
