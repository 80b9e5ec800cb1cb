package usecase

import (
	"context"
	"fmt"
	"time"

	"activity-booking/internal/data/entity"
	"activity-booking/internal/data/repository"
	"activity-booking/internal/dto/request"
	"activity-booking/internal/dto/response"
	"activity-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CompanyService interface {
	CreateCompany(ctx context.Context, actorID uuid.UUID, req *request.CreateCompanyRequest) (*response.CompanyResponse, error)
	GetCompany(ctx context.Context, companyID uuid.UUID) (*response.CompanyResponse, error)
	UpdateCompany(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID uuid.UUID, req *request.UpdateCompanyRequest) (*response.CompanyResponse, error)
	AddMember(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID uuid.UUID, req *request.AddMemberRequest) (*response.MemberResponse, error)
	RemoveMember(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID, memberID uuid.UUID) error
	ListMembers(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID uuid.UUID) ([]response.MemberResponse, error)
}

type companyService struct {
	repo  *repository.Repository
	scope ScopeResolver
	log   *zap.Logger
}

func NewCompanyService(repo *repository.Repository, scope ScopeResolver, log *zap.Logger) CompanyService {
	return &companyService{
		repo:  repo,
		scope: scope,
		log:   log.With(zap.String("service", "company")),
	}
}

// CreateCompany makes the actor the owner and promotes their account to
// the company role. The unique index on owner_user_id keeps it to one
// company per account.
func (s *companyService) CreateCompany(ctx context.Context, actorID uuid.UUID, req *request.CreateCompanyRequest) (*response.CompanyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create company validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	now := time.Now()
	company := &entity.Company{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Description: req.Description,
		OwnerUserID: actorID,
		IsActive:    true,
	}

	if err := s.repo.Company.Create(ctx, company); err != nil {
		s.log.Warn("Failed to create company", zap.Error(err), zap.String("owner", actorID.String()))
		return nil, err
	}

	if err := s.repo.User.UpdateRole(ctx, actorID, entity.RoleCompany); err != nil {
		s.log.Error("Failed to promote owner role",
			zap.Error(err), zap.String("user_id", actorID.String()))
		return nil, fmt.Errorf("promote owner role: %w", err)
	}

	s.log.Info("Company created",
		zap.String("company_id", company.ID.String()),
		zap.String("owner", actorID.String()))

	resp := response.CompanyToResponse(company)
	return &resp, nil
}

func (s *companyService) GetCompany(ctx context.Context, companyID uuid.UUID) (*response.CompanyResponse, error) {
	company, err := s.repo.Company.FindByID(ctx, companyID)
	if err != nil {
		s.log.Error("Failed to find company", zap.Error(err), zap.String("company_id", companyID.String()))
		return nil, fmt.Errorf("find company %s: %w", companyID.String(), err)
	}
	if company == nil {
		return nil, fmt.Errorf("company %s: %w", companyID.String(), entity.ErrNotFound)
	}

	resp := response.CompanyToResponse(company)
	return &resp, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID uuid.UUID, req *request.UpdateCompanyRequest) (*response.CompanyResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update company validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	company, err := s.guardOwner(ctx, actorID, actorRole, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.Description != nil {
		company.Description = req.Description
	}
	company.UpdatedAt = time.Now()

	if err := s.repo.Company.Update(ctx, company); err != nil {
		s.log.Error("Failed to update company", zap.Error(err), zap.String("company_id", companyID.String()))
		return nil, err
	}

	resp := response.CompanyToResponse(company)
	return &resp, nil
}

func (s *companyService) AddMember(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID uuid.UUID, req *request.AddMemberRequest) (*response.MemberResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Add member validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("%w: %s", entity.ErrValidation, utils.FormatValidationErrors(errs))
	}

	if _, err := s.guardOwner(ctx, actorID, actorRole, companyID); err != nil {
		return nil, err
	}

	memberID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %s: %w", req.UserID, entity.ErrValidation)
	}

	user, err := s.repo.User.FindByID(ctx, memberID)
	if err != nil {
		s.log.Error("Failed to find member candidate", zap.Error(err), zap.String("user_id", req.UserID))
		return nil, fmt.Errorf("find user %s: %w", req.UserID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", req.UserID, entity.ErrNotFound)
	}

	membership := &entity.EmployeeCompany{
		CompanyID:     companyID,
		UserID:        memberID,
		RoleInCompany: req.RoleInCompany,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Employee.AddMember(ctx, membership); err != nil {
		s.log.Warn("Failed to add member",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
			zap.String("user_id", memberID.String()))
		return nil, err
	}

	// Plain users gain the employee role on joining. Owners and admins
	// keep theirs.
	if user.Role == entity.RoleUser {
		if err := s.repo.User.UpdateRole(ctx, memberID, entity.RoleEmployee); err != nil {
			s.log.Error("Failed to set employee role",
				zap.Error(err), zap.String("user_id", memberID.String()))
			return nil, fmt.Errorf("set employee role: %w", err)
		}
	}

	s.log.Info("Member added",
		zap.String("company_id", companyID.String()),
		zap.String("user_id", memberID.String()))

	resp := response.MemberToResponse(membership, user)
	return &resp, nil
}

func (s *companyService) RemoveMember(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID, memberID uuid.UUID) error {
	if _, err := s.guardOwner(ctx, actorID, actorRole, companyID); err != nil {
		return err
	}

	if err := s.repo.Employee.RemoveMember(ctx, companyID, memberID); err != nil {
		s.log.Warn("Failed to remove member",
			zap.Error(err),
			zap.String("company_id", companyID.String()),
			zap.String("user_id", memberID.String()))
		return err
	}

	s.log.Info("Member removed",
		zap.String("company_id", companyID.String()),
		zap.String("user_id", memberID.String()))

	return nil
}

func (s *companyService) ListMembers(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID uuid.UUID) ([]response.MemberResponse, error) {
	if _, err := s.guardOwner(ctx, actorID, actorRole, companyID); err != nil {
		return nil, err
	}

	memberships, err := s.repo.Employee.ListMembers(ctx, companyID)
	if err != nil {
		s.log.Error("Failed to list members", zap.Error(err), zap.String("company_id", companyID.String()))
		return nil, fmt.Errorf("list members for company %s: %w", companyID.String(), err)
	}

	members := make([]response.MemberResponse, 0, len(memberships))
	for _, membership := range memberships {
		user, err := s.repo.User.FindByID(ctx, membership.UserID)
		if err != nil {
			s.log.Error("Failed to load member user", zap.Error(err), zap.String("user_id", membership.UserID.String()))
			return nil, fmt.Errorf("load member %s: %w", membership.UserID.String(), err)
		}
		members = append(members, response.MemberToResponse(membership, user))
	}

	return members, nil
}

// guardOwner admits the company owner or an admin; everyone else gets
// ErrNotAssociated.
func (s *companyService) guardOwner(ctx context.Context, actorID uuid.UUID, actorRole entity.UserRole, companyID uuid.UUID) (*entity.Company, error) {
	company, err := s.repo.Company.FindByID(ctx, companyID)
	if err != nil {
		s.log.Error("Failed to find company", zap.Error(err), zap.String("company_id", companyID.String()))
		return nil, fmt.Errorf("find company %s: %w", companyID.String(), err)
	}
	if company == nil {
		return nil, fmt.Errorf("company %s: %w", companyID.String(), entity.ErrNotFound)
	}

	if actorRole != entity.RoleAdmin && company.OwnerUserID != actorID {
		return nil, fmt.Errorf("user %s does not own company %s: %w",
			actorID.String(), companyID.String(), entity.ErrNotAssociated)
	}

	return company, nil
}
