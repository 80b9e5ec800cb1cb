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

type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	FindByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*entity.Company, error)
	Update(ctx context.Context, company *entity.Company) error
}

type companyRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCompanyRepository(db database.PgxIface, log *zap.Logger) CompanyRepository {
	return &companyRepository{
		db:  db,
		log: log.With(zap.String("repository", "company")),
	}
}

const companyColumns = `id, name, description, owner_user_id, is_active, created_at, updated_at`

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var company entity.Company
	err := row.Scan(
		&company.ID,
		&company.Name,
		&company.Description,
		&company.OwnerUserID,
		&company.IsActive,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, description, owner_user_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Description,
		company.OwnerUserID,
		company.IsActive,
		company.CreatedAt,
		company.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("company for owner %s: %w", company.OwnerUserID.String(), entity.ErrDuplicate)
		}
		r.log.Error("Failed to create company",
			zap.Error(err),
			zap.String("name", company.Name),
		)
		return fmt.Errorf("create company %s: %w", company.Name, err)
	}

	return nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`

	company, err := scanCompany(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find company by ID",
			zap.Error(err),
			zap.String("company_id", id.String()),
		)
		return nil, fmt.Errorf("find company by ID %s: %w", id.String(), err)
	}

	return company, nil
}

func (r *companyRepository) FindByOwnerUserID(ctx context.Context, ownerUserID uuid.UUID) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE owner_user_id = $1 AND is_active = true`

	company, err := scanCompany(r.db.QueryRow(ctx, query, ownerUserID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find company by owner",
			zap.Error(err),
			zap.String("owner_user_id", ownerUserID.String()),
		)
		return nil, fmt.Errorf("find company by owner %s: %w", ownerUserID.String(), err)
	}

	return company, nil
}

func (r *companyRepository) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies
		SET name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Description,
		company.IsActive,
		company.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to update company",
			zap.Error(err),
			zap.String("company_id", company.ID.String()),
		)
		return fmt.Errorf("update company %s: %w", company.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", company.ID.String(), entity.ErrNotFound)
	}

	return nil
}
