package usecase

import (
	"context"
	"testing"

	"activity-booking/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newScopeResolver(store *memStore) ScopeResolver {
	return NewScopeResolver(newFakeRepository(store), zap.NewNop())
}

func TestResolveAdminScope(t *testing.T) {
	resolver := newScopeResolver(newMemStore())
	adminID := uuid.New()

	scope, err := resolver.Resolve(context.Background(), adminID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, ScopeAll, scope.Kind)
	assert.Equal(t, adminID, scope.UserID)
}

func TestResolveCompanyOwnerScope(t *testing.T) {
	store := newMemStore()
	ownerID := uuid.New()
	company := &entity.Company{
		Base:        entity.Base{ID: uuid.New()},
		Name:        "Trailhead Tours",
		OwnerUserID: ownerID,
		IsActive:    true,
	}
	store.companies[company.ID] = company

	scope, err := newScopeResolver(store).Resolve(context.Background(), ownerID, entity.RoleCompany)
	require.NoError(t, err)
	assert.Equal(t, ScopeCompany, scope.Kind)
	assert.Equal(t, company.ID, scope.CompanyID)
}

func TestResolveCompanyRoleWithoutCompany(t *testing.T) {
	_, err := newScopeResolver(newMemStore()).Resolve(context.Background(), uuid.New(), entity.RoleCompany)
	assert.ErrorIs(t, err, entity.ErrNotAssociated)
}

func TestResolveCompanyRoleIgnoresInactiveCompany(t *testing.T) {
	store := newMemStore()
	ownerID := uuid.New()
	company := &entity.Company{
		Base:        entity.Base{ID: uuid.New()},
		Name:        "Closed Shop",
		OwnerUserID: ownerID,
		IsActive:    false,
	}
	store.companies[company.ID] = company

	_, err := newScopeResolver(store).Resolve(context.Background(), ownerID, entity.RoleCompany)
	assert.ErrorIs(t, err, entity.ErrNotAssociated)
}

func TestResolveEmployeeScope(t *testing.T) {
	store := newMemStore()
	employeeID := uuid.New()
	companyID := uuid.New()
	store.memberships = append(store.memberships, &entity.EmployeeCompany{
		CompanyID: companyID,
		UserID:    employeeID,
	})

	scope, err := newScopeResolver(store).Resolve(context.Background(), employeeID, entity.RoleEmployee)
	require.NoError(t, err)
	assert.Equal(t, ScopeCompany, scope.Kind)
	assert.Equal(t, companyID, scope.CompanyID)
}

func TestResolveEmployeeWithoutMembership(t *testing.T) {
	_, err := newScopeResolver(newMemStore()).Resolve(context.Background(), uuid.New(), entity.RoleEmployee)
	assert.ErrorIs(t, err, entity.ErrNotAssociated)
}

func TestResolveUserScope(t *testing.T) {
	userID := uuid.New()

	scope, err := newScopeResolver(newMemStore()).Resolve(context.Background(), userID, entity.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, ScopeSelf, scope.Kind)
	assert.Equal(t, userID, scope.UserID)
}

func TestResolveUnknownRoleFailsClosed(t *testing.T) {
	_, err := newScopeResolver(newMemStore()).Resolve(context.Background(), uuid.New(), entity.UserRole("superuser"))
	assert.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestScopeCoversCompany(t *testing.T) {
	companyID := uuid.New()

	assert.True(t, (&Scope{Kind: ScopeAll}).CoversCompany(companyID))
	assert.True(t, (&Scope{Kind: ScopeCompany, CompanyID: companyID}).CoversCompany(companyID))
	assert.False(t, (&Scope{Kind: ScopeCompany, CompanyID: uuid.New()}).CoversCompany(companyID))
	assert.False(t, (&Scope{Kind: ScopeSelf}).CoversCompany(companyID))
}

func TestScopeCoversUser(t *testing.T) {
	userID := uuid.New()

	assert.True(t, (&Scope{Kind: ScopeAll}).CoversUser(userID))
	assert.True(t, (&Scope{Kind: ScopeSelf, UserID: userID}).CoversUser(userID))
	assert.False(t, (&Scope{Kind: ScopeSelf, UserID: uuid.New()}).CoversUser(userID))
}
