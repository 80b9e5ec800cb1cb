package request

type CreateCompanyRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type AddMemberRequest struct {
	UserID        string  `json:"user_id" validate:"required,uuid4"`
	RoleInCompany *string `json:"role_in_company,omitempty" validate:"omitempty,max=50"`
}
