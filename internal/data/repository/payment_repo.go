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

type PaymentRepository interface {
	// ApplyCompleted records a completed provider payment and confirms its
	// reservation in one transaction. The (provider, provider_txn_id)
	// unique index is the dedup backstop regardless of cache state.
	ApplyCompleted(ctx context.Context, payment *entity.Payment) error

	// CreateFailed records a failed provider event for audit. The
	// reservation is left untouched.
	CreateFailed(ctx context.Context, payment *entity.Payment) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	FindByProviderTxn(ctx context.Context, provider, providerTxnID string) (*entity.Payment, error)
	FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*entity.Payment, error)

	// Reconciliation sweep support
	FindUnreconciled(ctx context.Context, limit int) ([]*entity.Payment, error)
	ApplyToReservation(ctx context.Context, paymentID, reservationID uuid.UUID) (bool, error)
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, reservation_id, provider, provider_txn_id, amount, currency,
	       status, paid_at, raw_payload, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	err := row.Scan(
		&payment.ID,
		&payment.ReservationID,
		&payment.Provider,
		&payment.ProviderTxnID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&payment.PaidAt,
		&payment.RawPayload,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

const insertPaymentQuery = `
	INSERT INTO payments (id, reservation_id, provider, provider_txn_id, amount, currency,
	                      status, paid_at, raw_payload, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

func insertPayment(ctx context.Context, tx pgx.Tx, payment *entity.Payment) error {
	_, err := tx.Exec(ctx, insertPaymentQuery,
		payment.ID,
		payment.ReservationID,
		payment.Provider,
		payment.ProviderTxnID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.PaidAt,
		payment.RawPayload,
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	return err
}

// ApplyCompleted inserts the payment row and flips the reservation from
// pending to confirmed inside one transaction, so a crash between the two
// writes can never leave a completed payment applied halfway. A replayed
// event trips the unique index on (provider, provider_txn_id) and rolls
// the whole transaction back as ErrDuplicate.
//
// The reservation update is guarded on status = 'pending': a payment that
// lands after the reservation was cancelled is still recorded for the
// reconciliation sweep to pick up, but the cancelled reservation stays
// cancelled.
func (r *paymentRepository) ApplyCompleted(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	payment.Status = entity.PaymentStatusCompleted

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertPayment(ctx, tx, payment); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("payment %s/%s already recorded: %w",
					payment.Provider, payment.ProviderTxnID, entity.ErrDuplicate)
			}
			return fmt.Errorf("insert payment %s/%s: %w", payment.Provider, payment.ProviderTxnID, err)
		}

		updateQuery := `
			UPDATE reservations
			SET status = 'confirmed', payment_id = $1, updated_at = NOW()
			WHERE id = $2 AND status = 'pending' AND payment_id IS NULL
		`
		_, err := tx.Exec(ctx, updateQuery, payment.ID, payment.ReservationID)
		if err != nil {
			return fmt.Errorf("confirm reservation %s: %w", payment.ReservationID.String(), err)
		}

		return nil
	})

	if err != nil {
		r.log.Warn("Failed to apply completed payment",
			zap.Error(err),
			zap.String("provider", payment.Provider),
			zap.String("provider_txn_id", payment.ProviderTxnID),
			zap.String("reservation_id", payment.ReservationID.String()),
		)
		return err
	}

	return nil
}

func (r *paymentRepository) CreateFailed(ctx context.Context, payment *entity.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now
	payment.Status = entity.PaymentStatusFailed

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return insertPayment(ctx, tx, payment)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("payment %s/%s already recorded: %w",
				payment.Provider, payment.ProviderTxnID, entity.ErrDuplicate)
		}
		r.log.Error("Failed to record failed payment",
			zap.Error(err),
			zap.String("provider", payment.Provider),
			zap.String("provider_txn_id", payment.ProviderTxnID),
		)
		return fmt.Errorf("insert failed payment %s/%s: %w", payment.Provider, payment.ProviderTxnID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by ID",
			zap.Error(err),
			zap.String("payment_id", id.String()),
		)
		return nil, fmt.Errorf("find payment by ID %s: %w", id.String(), err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByProviderTxn(ctx context.Context, provider, providerTxnID string) (*entity.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE provider = $1 AND provider_txn_id = $2`

	payment, err := scanPayment(r.db.QueryRow(ctx, query, provider, providerTxnID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by provider txn",
			zap.Error(err),
			zap.String("provider", provider),
			zap.String("provider_txn_id", providerTxnID),
		)
		return nil, fmt.Errorf("find payment %s/%s: %w", provider, providerTxnID, err)
	}

	return payment, nil
}

func (r *paymentRepository) FindByReservationID(ctx context.Context, reservationID uuid.UUID) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE reservation_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, reservationID)
	if err != nil {
		r.log.Error("Failed to find payments by reservation ID",
			zap.Error(err),
			zap.String("reservation_id", reservationID.String()),
		)
		return nil, fmt.Errorf("find payments by reservation ID %s: %w", reservationID.String(), err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, nil
}

// FindUnreconciled returns completed payments whose reservation is still
// pending, which only happens when the confirm half of ApplyCompleted was
// skipped (for example a payment recorded after its reservation got stuck
// mid-flight). The sweep re-applies these.
func (r *paymentRepository) FindUnreconciled(ctx context.Context, limit int) ([]*entity.Payment, error) {
	query := `
		SELECT p.id, p.reservation_id, p.provider, p.provider_txn_id, p.amount, p.currency,
		       p.status, p.paid_at, p.raw_payload, p.created_at, p.updated_at
		FROM payments p
		JOIN reservations r ON r.id = p.reservation_id
		WHERE p.status = 'completed' AND r.status = 'pending' AND r.payment_id IS NULL
		ORDER BY p.created_at
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.log.Error("Failed to find unreconciled payments", zap.Error(err))
		return nil, fmt.Errorf("find unreconciled payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			r.log.Error("Failed to scan payment row", zap.Error(err))
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, payment)
	}

	return payments, nil
}

// ApplyToReservation re-runs the confirm half for the sweep. Returns
// false when the reservation moved out of pending in the meantime.
func (r *paymentRepository) ApplyToReservation(ctx context.Context, paymentID, reservationID uuid.UUID) (bool, error) {
	query := `
		UPDATE reservations
		SET status = 'confirmed', payment_id = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'pending' AND payment_id IS NULL
	`

	result, err := r.db.Exec(ctx, query, paymentID, reservationID)
	if err != nil {
		r.log.Error("Failed to apply payment to reservation",
			zap.Error(err),
			zap.String("payment_id", paymentID.String()),
			zap.String("reservation_id", reservationID.String()),
		)
		return false, fmt.Errorf("apply payment %s to reservation %s: %w",
			paymentID.String(), reservationID.String(), err)
	}

	return result.RowsAffected() > 0, nil
}
