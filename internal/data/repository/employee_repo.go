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

type EmployeeRepository interface {
	AddMember(ctx context.Context, membership *entity.EmployeeCompany) error
	RemoveMember(ctx context.Context, companyID, userID uuid.UUID) error
	FindCompanyForUser(ctx context.Context, userID uuid.UUID) (*entity.EmployeeCompany, error)
	ListMembers(ctx context.Context, companyID uuid.UUID) ([]*entity.EmployeeCompany, error)
}

type employeeRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEmployeeRepository(db database.PgxIface, log *zap.Logger) EmployeeRepository {
	return &employeeRepository{
		db:  db,
		log: log.With(zap.String("repository", "employee")),
	}
}

func (r *employeeRepository) AddMember(ctx context.Context, membership *entity.EmployeeCompany) error {
	query := `
		INSERT INTO employee_companies (company_id, user_id, role_in_company, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Exec(ctx, query,
		membership.CompanyID,
		membership.UserID,
		membership.RoleInCompany,
		membership.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("membership %s/%s: %w",
				membership.CompanyID.String(), membership.UserID.String(), entity.ErrDuplicate)
		}
		r.log.Error("Failed to add company member",
			zap.Error(err),
			zap.String("company_id", membership.CompanyID.String()),
			zap.String("user_id", membership.UserID.String()),
		)
		return fmt.Errorf("add member to company %s: %w", membership.CompanyID.String(), err)
	}

	return nil
}

func (r *employeeRepository) RemoveMember(ctx context.Context, companyID, userID uuid.UUID) error {
	query := `DELETE FROM employee_companies WHERE company_id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, companyID, userID)
	if err != nil {
		r.log.Error("Failed to remove company member",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
			zap.String("user_id", userID.String()),
		)
		return fmt.Errorf("remove member from company %s: %w", companyID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("membership %s/%s: %w", companyID.String(), userID.String(), entity.ErrNotFound)
	}

	return nil
}

func (r *employeeRepository) FindCompanyForUser(ctx context.Context, userID uuid.UUID) (*entity.EmployeeCompany, error) {
	query := `
		SELECT company_id, user_id, role_in_company, created_at
		FROM employee_companies
		WHERE user_id = $1
	`

	var membership entity.EmployeeCompany
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&membership.CompanyID,
		&membership.UserID,
		&membership.RoleInCompany,
		&membership.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find employment for user",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find employment for user %s: %w", userID.String(), err)
	}

	return &membership, nil
}

func (r *employeeRepository) ListMembers(ctx context.Context, companyID uuid.UUID) ([]*entity.EmployeeCompany, error) {
	query := `
		SELECT company_id, user_id, role_in_company, created_at
		FROM employee_companies
		WHERE company_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		r.log.Error("Failed to list company members",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
		)
		return nil, fmt.Errorf("list members of company %s: %w", companyID.String(), err)
	}
	defer rows.Close()

	var members []*entity.EmployeeCompany
	for rows.Next() {
		var membership entity.EmployeeCompany
		err := rows.Scan(
			&membership.CompanyID,
			&membership.UserID,
			&membership.RoleInCompany,
			&membership.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan membership row", zap.Error(err))
			return nil, fmt.Errorf("scan membership row: %w", err)
		}
		members = append(members, &membership)
	}

	return members, nil
}
