package repository

import (
	"context"
	"fmt"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	// CreateWithAggregate inserts the review and folds its rating into
	// the activity's running average in one transaction.
	CreateWithAggregate(ctx context.Context, review *entity.Review) error

	// DeleteWithAggregate removes the review and recomputes the
	// activity's average from the remaining rows in one transaction.
	DeleteWithAggregate(ctx context.Context, reviewID uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error)
	FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*entity.Review, error)
	FindByActivityID(ctx context.Context, activityID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	CountByActivityID(ctx context.Context, activityID uuid.UUID) (int64, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

const reviewColumns = `id, user_id, activity_id, rating, title, comment, created_at`

func scanReview(row pgx.Row) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.UserID,
		&review.ActivityID,
		&review.Rating,
		&review.Title,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// CreateWithAggregate locks the activity row (serializing against other
// review writes and the admission path), verifies the author holds a
// confirmed reservation for the activity, inserts the review and updates
// the running average incrementally:
//
//	newAvg = (oldAvg*oldCount + rating) / (oldCount + 1)
//
// A second review from the same user trips the unique index on
// (user_id, activity_id) and comes back as ErrDuplicate, which also
// rolls back the aggregate update.
func (r *reviewRepository) CreateWithAggregate(ctx context.Context, review *entity.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			avgRating   float64
			ratingCount int
		)

		lockQuery := `SELECT avg_rating, rating_count FROM activities WHERE id = $1 FOR UPDATE`
		err := tx.QueryRow(ctx, lockQuery, review.ActivityID).Scan(&avgRating, &ratingCount)
		if err == pgx.ErrNoRows {
			return fmt.Errorf("activity %s: %w", review.ActivityID.String(), entity.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock activity %s: %w", review.ActivityID.String(), err)
		}

		var eligible bool
		eligibleQuery := `
			SELECT EXISTS (
				SELECT 1 FROM reservations
				WHERE user_id = $1 AND activity_id = $2 AND status = 'confirmed'
			)
		`
		if err := tx.QueryRow(ctx, eligibleQuery, review.UserID, review.ActivityID).Scan(&eligible); err != nil {
			return fmt.Errorf("check review eligibility: %w", err)
		}
		if !eligible {
			return fmt.Errorf("user %s has no confirmed reservation for activity %s: %w",
				review.UserID.String(), review.ActivityID.String(), entity.ErrInvalidState)
		}

		insertQuery := `
			INSERT INTO reviews (id, user_id, activity_id, rating, title, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = tx.Exec(ctx, insertQuery,
			review.ID,
			review.UserID,
			review.ActivityID,
			review.Rating,
			review.Title,
			review.Comment,
			review.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("user %s already reviewed activity %s: %w",
					review.UserID.String(), review.ActivityID.String(), entity.ErrDuplicate)
			}
			return fmt.Errorf("insert review: %w", err)
		}

		newAvg := (avgRating*float64(ratingCount) + float64(review.Rating)) / float64(ratingCount+1)

		updateQuery := `
			UPDATE activities
			SET avg_rating = $1, rating_count = $2, updated_at = NOW()
			WHERE id = $3
		`
		if _, err := tx.Exec(ctx, updateQuery, newAvg, ratingCount+1, review.ActivityID); err != nil {
			return fmt.Errorf("update rating aggregate for activity %s: %w", review.ActivityID.String(), err)
		}

		return nil
	})

	if err != nil {
		r.log.Warn("Failed to create review",
			zap.Error(err),
			zap.String("user_id", review.UserID.String()),
			zap.String("activity_id", review.ActivityID.String()),
		)
		return err
	}

	return nil
}

// DeleteWithAggregate removes the review, then recomputes the average
// with a full AVG() over the remaining rows rather than reversing the
// incremental formula, so repeated add/remove cycles cannot accumulate
// float drift. An empty set resets the aggregate to zero.
func (r *reviewRepository) DeleteWithAggregate(ctx context.Context, reviewID uuid.UUID) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var activityID uuid.UUID
		findQuery := `SELECT activity_id FROM reviews WHERE id = $1`
		err := tx.QueryRow(ctx, findQuery, reviewID).Scan(&activityID)
		if err == pgx.ErrNoRows {
			return fmt.Errorf("review %s: %w", reviewID.String(), entity.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("find review %s: %w", reviewID.String(), err)
		}

		lockQuery := `SELECT 1 FROM activities WHERE id = $1 FOR UPDATE`
		var one int
		if err := tx.QueryRow(ctx, lockQuery, activityID).Scan(&one); err != nil {
			return fmt.Errorf("lock activity %s: %w", activityID.String(), err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, reviewID)
		if err != nil {
			return fmt.Errorf("delete review %s: %w", reviewID.String(), err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("review %s: %w", reviewID.String(), entity.ErrNotFound)
		}

		recomputeQuery := `
			UPDATE activities
			SET avg_rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE activity_id = $1), 0),
			    rating_count = (SELECT COUNT(*) FROM reviews WHERE activity_id = $1),
			    updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, recomputeQuery, activityID); err != nil {
			return fmt.Errorf("recompute rating aggregate for activity %s: %w", activityID.String(), err)
		}

		return nil
	})

	if err != nil {
		r.log.Warn("Failed to delete review",
			zap.Error(err),
			zap.String("review_id", reviewID.String()),
		)
		return err
	}

	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by ID",
			zap.Error(err),
			zap.String("review_id", id.String()),
		)
		return nil, fmt.Errorf("find review by ID %s: %w", id.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) FindByUserAndActivity(ctx context.Context, userID, activityID uuid.UUID) (*entity.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND activity_id = $2`

	review, err := scanReview(r.db.QueryRow(ctx, query, userID, activityID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by user and activity",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("activity_id", activityID.String()),
		)
		return nil, fmt.Errorf("find review for user %s on activity %s: %w",
			userID.String(), activityID.String(), err)
	}

	return review, nil
}

func (r *reviewRepository) FindByActivityID(ctx context.Context, activityID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE activity_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, activityID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by activity ID",
			zap.Error(err),
			zap.String("activity_id", activityID.String()),
		)
		return nil, fmt.Errorf("find reviews by activity ID %s: %w", activityID.String(), err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, nil
}

func (r *reviewRepository) CountByActivityID(ctx context.Context, activityID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE activity_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, activityID).Scan(&count); err != nil {
		r.log.Error("Failed to count reviews by activity ID",
			zap.Error(err),
			zap.String("activity_id", activityID.String()),
		)
		return 0, fmt.Errorf("count reviews by activity ID %s: %w", activityID.String(), err)
	}

	return count, nil
}
