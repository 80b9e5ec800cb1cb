package response

import (
	"time"

	"activity-booking/internal/data/entity"
)

type CompanyResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerUserID string    `json:"owner_user_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username,omitempty"`
	Email         string    `json:"email,omitempty"`
	RoleInCompany *string   `json:"role_in_company,omitempty"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Helper converters
func CompanyToResponse(company *entity.Company) CompanyResponse {
	return CompanyResponse{
		ID:          company.ID.String(),
		Name:        company.Name,
		Description: company.Description,
		OwnerUserID: company.OwnerUserID.String(),
		IsActive:    company.IsActive,
		CreatedAt:   company.CreatedAt,
	}
}

func MemberToResponse(member *entity.EmployeeCompany, user *entity.User) MemberResponse {
	resp := MemberResponse{
		UserID:        member.UserID.String(),
		RoleInCompany: member.RoleInCompany,
		JoinedAt:      member.CreatedAt,
	}

	if user != nil {
		resp.Username = user.Username
		resp.Email = user.Email
	}

	return resp
}
