package repository

import (
	"context"
	"fmt"

	"activity-booking/internal/data/entity"
	"activity-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	Update(ctx context.Context, activity *entity.Activity) error
	Archive(ctx context.Context, id uuid.UUID) error

	// Listing queries
	FindPublished(ctx context.Context, search string, limit, offset int) ([]*entity.Activity, error)
	CountPublished(ctx context.Context, search string) (int64, error)
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*entity.Activity, error)
	CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Activity, error)
	CountAll(ctx context.Context) (int64, error)
}

type activityRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewActivityRepository(db database.PgxIface, log *zap.Logger) ActivityRepository {
	return &activityRepository{
		db:  db,
		log: log.With(zap.String("repository", "activity")),
	}
}

const activityColumns = `id, company_id, title, description, location, start_at, end_at,
	       capacity, price, currency, status, avg_rating, rating_count, created_at, updated_at`

func scanActivity(row pgx.Row) (*entity.Activity, error) {
	var activity entity.Activity
	err := row.Scan(
		&activity.ID,
		&activity.CompanyID,
		&activity.Title,
		&activity.Description,
		&activity.Location,
		&activity.StartAt,
		&activity.EndAt,
		&activity.Capacity,
		&activity.Price,
		&activity.Currency,
		&activity.Status,
		&activity.AvgRating,
		&activity.RatingCount,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepository) scanActivityRows(rows pgx.Rows) ([]*entity.Activity, error) {
	defer rows.Close()

	var activities []*entity.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			r.log.Error("Failed to scan activity row", zap.Error(err))
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		activities = append(activities, activity)
	}

	return activities, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	query := `
		INSERT INTO activities (id, company_id, title, description, location, start_at, end_at,
		                        capacity, price, currency, status, avg_rating, rating_count,
		                        created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		activity.ID,
		activity.CompanyID,
		activity.Title,
		activity.Description,
		activity.Location,
		activity.StartAt,
		activity.EndAt,
		activity.Capacity,
		activity.Price,
		activity.Currency,
		activity.Status,
		activity.AvgRating,
		activity.RatingCount,
		activity.CreatedAt,
		activity.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create activity",
			zap.Error(err),
			zap.String("company_id", activity.CompanyID.String()),
			zap.String("title", activity.Title),
		)
		return fmt.Errorf("create activity %s: %w", activity.Title, err)
	}

	return nil
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	activity, err := scanActivity(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find activity by ID",
			zap.Error(err),
			zap.String("activity_id", id.String()),
		)
		return nil, fmt.Errorf("find activity by ID %s: %w", id.String(), err)
	}

	return activity, nil
}

// Update writes all mutable fields except avg_rating/rating_count, which
// only the rating aggregator touches.
func (r *activityRepository) Update(ctx context.Context, activity *entity.Activity) error {
	query := `
		UPDATE activities
		SET title = $2, description = $3, location = $4, start_at = $5, end_at = $6,
		    capacity = $7, price = $8, currency = $9, status = $10, updated_at = $11
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		activity.ID,
		activity.Title,
		activity.Description,
		activity.Location,
		activity.StartAt,
		activity.EndAt,
		activity.Capacity,
		activity.Price,
		activity.Currency,
		activity.Status,
		activity.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update activity",
			zap.Error(err),
			zap.String("activity_id", activity.ID.String()),
		)
		return fmt.Errorf("update activity %s: %w", activity.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", activity.ID.String(), entity.ErrNotFound)
	}

	return nil
}

func (r *activityRepository) Archive(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE activities SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, entity.ActivityStatusArchived)
	if err != nil {
		r.log.Error("Failed to archive activity",
			zap.Error(err),
			zap.String("activity_id", id.String()),
		)
		return fmt.Errorf("archive activity %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", id.String(), entity.ErrNotFound)
	}

	return nil
}

func (r *activityRepository) FindPublished(ctx context.Context, search string, limit, offset int) ([]*entity.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE status = 'published'
		  AND ($1 = '' OR title ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, search, limit, offset)
	if err != nil {
		r.log.Error("Failed to find published activities",
			zap.Error(err),
			zap.String("search", search),
		)
		return nil, fmt.Errorf("find published activities: %w", err)
	}

	return r.scanActivityRows(rows)
}

func (r *activityRepository) CountPublished(ctx context.Context, search string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM activities
		WHERE status = 'published'
		  AND ($1 = '' OR title ILIKE '%' || $1 || '%')
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, search).Scan(&count); err != nil {
		r.log.Error("Failed to count published activities", zap.Error(err))
		return 0, fmt.Errorf("count published activities: %w", err)
	}

	return count, nil
}

func (r *activityRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*entity.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find activities by company ID",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
		)
		return nil, fmt.Errorf("find activities by company ID %s: %w", companyID.String(), err)
	}

	return r.scanActivityRows(rows)
}

func (r *activityRepository) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM activities WHERE company_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		r.log.Error("Failed to count activities by company ID",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
		)
		return 0, fmt.Errorf("count activities by company ID %s: %w", companyID.String(), err)
	}

	return count, nil
}

func (r *activityRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all activities", zap.Error(err))
		return nil, fmt.Errorf("find all activities: %w", err)
	}

	return r.scanActivityRows(rows)
}

func (r *activityRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM activities`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count all activities", zap.Error(err))
		return 0, fmt.Errorf("count all activities: %w", err)
	}

	return count, nil
}
