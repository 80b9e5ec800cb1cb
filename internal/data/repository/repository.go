package repository

import (
	"errors"

	"activity-booking/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type Repository struct {
	User        UserRepository
	Session     SessionRepository
	Company     CompanyRepository
	Employee    EmployeeRepository
	Activity    ActivityRepository
	Reservation ReservationRepository
	Payment     PaymentRepository
	Review      ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:        NewUserRepository(db, log),
		Session:     NewSessionRepository(db, log),
		Company:     NewCompanyRepository(db, log),
		Employee:    NewEmployeeRepository(db, log),
		Activity:    NewActivityRepository(db, log),
		Reservation: NewReservationRepository(db, log),
		Payment:     NewPaymentRepository(db, log),
		Review:      NewReviewRepository(db, log),
	}
}

// isUniqueViolation reports whether err is a violated unique constraint.
// Unique indexes are the final backstop for every check-then-insert race;
// callers translate a violation into the matching domain error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
