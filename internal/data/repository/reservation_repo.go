package repository

import (
	"context"
	"fmt"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ReservationRepository interface {
	// CreateReserved is the capacity admission path: check and insert run
	// in one transaction against a row lock on the activity.
	CreateReserved(ctx context.Context, activityID, userID uuid.UUID, quantity int, reference string) (*entity.Reservation, error)

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*entity.Reservation, error)
	CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)
	FindAll(ctx context.Context, limit, offset int) ([]*entity.Reservation, error)
	CountAll(ctx context.Context) (int64, error)

	// Business queries
	Cancel(ctx context.Context, id uuid.UUID) error
	SumActiveQuantity(ctx context.Context, activityID uuid.UUID) (int, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `id, reference, activity_id, user_id, quantity, unit_price, status,
	       reserved_at, expires_at, payment_id, created_at, updated_at`

func scanReservation(row pgx.Row) (*entity.Reservation, error) {
	var reservation entity.Reservation
	err := row.Scan(
		&reservation.ID,
		&reservation.Reference,
		&reservation.ActivityID,
		&reservation.UserID,
		&reservation.Quantity,
		&reservation.UnitPrice,
		&reservation.Status,
		&reservation.ReservedAt,
		&reservation.ExpiresAt,
		&reservation.PaymentID,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepository) scanReservationRows(rows pgx.Rows) ([]*entity.Reservation, error) {
	defer rows.Close()

	var reservations []*entity.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			r.log.Error("Failed to scan reservation row", zap.Error(err))
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, nil
}

// CreateReserved locks the activity row, sums the quantity held by all
// non-cancelled reservations (pending holds a provisional slot), checks
// the admission against capacity and inserts the pending reservation.
// The unit price is snapshotted from the activity inside the same
// transaction; later price changes never touch existing reservations.
func (r *reservationRepository) CreateReserved(ctx context.Context, activityID, userID uuid.UUID, quantity int, reference string) (*entity.Reservation, error) {
	var reservation *entity.Reservation

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var (
			capacity *int
			price    decimal.Decimal
			currency string
			status   entity.ActivityStatus
		)

		// Row lock on the aggregate: concurrent admissions against the
		// same activity serialize here, so no pair can jointly overshoot.
		lockQuery := `
			SELECT capacity, price, currency, status
			FROM activities
			WHERE id = $1
			FOR UPDATE
		`
		err := tx.QueryRow(ctx, lockQuery, activityID).Scan(&capacity, &price, &currency, &status)
		if err == pgx.ErrNoRows {
			return fmt.Errorf("activity %s: %w", activityID.String(), entity.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock activity %s: %w", activityID.String(), err)
		}

		if status != entity.ActivityStatusPublished {
			return fmt.Errorf("activity %s is not published: %w", activityID.String(), entity.ErrNotFound)
		}

		var reserved int
		sumQuery := `
			SELECT COALESCE(SUM(quantity), 0)
			FROM reservations
			WHERE activity_id = $1 AND status <> 'cancelled'
		`
		if err := tx.QueryRow(ctx, sumQuery, activityID).Scan(&reserved); err != nil {
			return fmt.Errorf("sum reserved quantity for activity %s: %w", activityID.String(), err)
		}

		if capacity != nil && reserved+quantity > *capacity {
			return fmt.Errorf("activity %s has %d of %d slots taken: %w",
				activityID.String(), reserved, *capacity, entity.ErrCapacityExceeded)
		}

		now := time.Now()
		reservation = &entity.Reservation{
			Base: entity.Base{
				ID:        uuid.New(),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Reference:  reference,
			ActivityID: activityID,
			UserID:     userID,
			Quantity:   quantity,
			UnitPrice:  price,
			Status:     entity.ReservationStatusPending,
			ReservedAt: now,
		}

		insertQuery := `
			INSERT INTO reservations (id, reference, activity_id, user_id, quantity, unit_price,
			                          status, reserved_at, expires_at, payment_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err = tx.Exec(ctx, insertQuery,
			reservation.ID,
			reservation.Reference,
			reservation.ActivityID,
			reservation.UserID,
			reservation.Quantity,
			reservation.UnitPrice,
			reservation.Status,
			reservation.ReservedAt,
			reservation.ExpiresAt,
			reservation.PaymentID,
			reservation.CreatedAt,
			reservation.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert reservation %s: %w", reservation.Reference, err)
		}

		return nil
	})

	if err != nil {
		r.log.Warn("Reservation admission failed",
			zap.Error(err),
			zap.String("activity_id", activityID.String()),
			zap.String("user_id", userID.String()),
			zap.Int("quantity", quantity),
		)
		return nil, err
	}

	return reservation, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservation(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find reservation by ID",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return nil, fmt.Errorf("find reservation by ID %s: %w", id.String(), err)
	}

	return reservation, nil
}

func (r *reservationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY reserved_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find reservations by user ID %s: %w", userID.String(), err)
	}

	return r.scanReservationRows(rows)
}

func (r *reservationRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count reservations by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *reservationRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT r.id, r.reference, r.activity_id, r.user_id, r.quantity, r.unit_price, r.status,
		       r.reserved_at, r.expires_at, r.payment_id, r.created_at, r.updated_at
		FROM reservations r
		JOIN activities a ON a.id = r.activity_id
		WHERE a.company_id = $1
		ORDER BY r.reserved_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reservations by company ID",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
		)
		return nil, fmt.Errorf("find reservations by company ID %s: %w", companyID.String(), err)
	}

	return r.scanReservationRows(rows)
}

func (r *reservationRepository) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM reservations r
		JOIN activities a ON a.id = r.activity_id
		WHERE a.company_id = $1
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		r.log.Error("Failed to count reservations by company ID",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
		)
		return 0, fmt.Errorf("count reservations by company ID %s: %w", companyID.String(), err)
	}

	return count, nil
}

func (r *reservationRepository) FindAll(ctx context.Context, limit, offset int) ([]*entity.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		ORDER BY reserved_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find all reservations", zap.Error(err))
		return nil, fmt.Errorf("find all reservations: %w", err)
	}

	return r.scanReservationRows(rows)
}

func (r *reservationRepository) CountAll(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM reservations`

	var count int64
	if err := r.db.QueryRow(ctx, query).Scan(&count); err != nil {
		r.log.Error("Failed to count all reservations", zap.Error(err))
		return 0, fmt.Errorf("count all reservations: %w", err)
	}

	return count, nil
}

// Cancel moves a pending reservation to cancelled. Confirmed is terminal:
// a paid reservation cannot be voided here. The status guard also keeps a
// concurrent payment from racing the cancel; cancelled rows simply stop
// counting toward capacity.
func (r *reservationRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reservations
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to cancel reservation",
			zap.Error(err),
			zap.String("reservation_id", id.String()),
		)
		return fmt.Errorf("cancel reservation %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("reservation %s cannot be cancelled: %w", id.String(), entity.ErrInvalidState)
	}

	return nil
}

func (r *reservationRepository) SumActiveQuantity(ctx context.Context, activityID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM reservations
		WHERE activity_id = $1 AND status <> 'cancelled'
	`

	var total int
	if err := r.db.QueryRow(ctx, query, activityID).Scan(&total); err != nil {
		r.log.Error("Failed to sum active quantity",
			zap.Error(err),
			zap.String("activity_id", activityID.String()),
		)
		return 0, fmt.Errorf("sum active quantity for activity %s: %w", activityID.String(), err)
	}

	return total, nil
}
