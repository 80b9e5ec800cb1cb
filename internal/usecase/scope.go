package usecase

import (
	"context"
	"fmt"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ScopeKind string

const (
	// ScopeAll sees every record.
	ScopeAll ScopeKind = "all"
	// ScopeCompany sees records belonging to one company.
	ScopeCompany ScopeKind = "company"
	// ScopeSelf sees only the caller's own records.
	ScopeSelf ScopeKind = "self"
)

// Scope is the resolved visibility of one authenticated caller.
type Scope struct {
	Kind      ScopeKind
	UserID    uuid.UUID
	CompanyID uuid.UUID // set for ScopeCompany
}

type ScopeResolver interface {
	// Resolve maps a caller's role to their data scope. Company and
	// employee callers with no company association get ErrNotAssociated;
	// unrecognized roles get ErrUnauthorized.
	Resolve(ctx context.Context, userID uuid.UUID, role entity.UserRole) (*Scope, error)
}

type scopeResolver struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewScopeResolver(repo *repository.Repository, log *zap.Logger) ScopeResolver {
	return &scopeResolver{
		repo: repo,
		log:  log.With(zap.String("service", "scope")),
	}
}

func (s *scopeResolver) Resolve(ctx context.Context, userID uuid.UUID, role entity.UserRole) (*Scope, error) {
	switch role {
	case entity.RoleAdmin:
		return &Scope{Kind: ScopeAll, UserID: userID}, nil

	case entity.RoleCompany:
		company, err := s.repo.Company.FindByOwnerUserID(ctx, userID)
		if err != nil {
			s.log.Error("Failed to resolve company for owner",
				zap.Error(err), zap.String("user_id", userID.String()))
			return nil, fmt.Errorf("resolve company scope: %w", err)
		}
		if company == nil {
			return nil, fmt.Errorf("user %s owns no active company: %w", userID.String(), entity.ErrNotAssociated)
		}
		return &Scope{Kind: ScopeCompany, UserID: userID, CompanyID: company.ID}, nil

	case entity.RoleEmployee:
		membership, err := s.repo.Employee.FindCompanyForUser(ctx, userID)
		if err != nil {
			s.log.Error("Failed to resolve membership for employee",
				zap.Error(err), zap.String("user_id", userID.String()))
			return nil, fmt.Errorf("resolve employee scope: %w", err)
		}
		if membership == nil {
			return nil, fmt.Errorf("user %s belongs to no company: %w", userID.String(), entity.ErrNotAssociated)
		}
		return &Scope{Kind: ScopeCompany, UserID: userID, CompanyID: membership.CompanyID}, nil

	case entity.RoleUser:
		return &Scope{Kind: ScopeSelf, UserID: userID}, nil
	}

	// Fail closed on anything unrecognized.
	s.log.Warn("Unknown role in scope resolution",
		zap.String("user_id", userID.String()), zap.String("role", string(role)))
	return nil, fmt.Errorf("role %q grants no scope: %w", role, entity.ErrUnauthorized)
}

// CoversCompany reports whether the scope may see records of companyID.
func (sc *Scope) CoversCompany(companyID uuid.UUID) bool {
	switch sc.Kind {
	case ScopeAll:
		return true
	case ScopeCompany:
		return sc.CompanyID == companyID
	}
	return false
}

// CoversUser reports whether the scope may act on records owned by
// userID. A company scope covers only the holder's own records here; what
// it sees of its customers goes through CoversCompany on the activity.
func (sc *Scope) CoversUser(userID uuid.UUID) bool {
	if sc.Kind == ScopeAll {
		return true
	}
	return sc.UserID == userID
}
