package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmployeeCompany links a user to the company that employs them.
// Composite key (company_id, user_id).
type EmployeeCompany struct {
	CompanyID     uuid.UUID `db:"company_id"`
	UserID        uuid.UUID `db:"user_id"`
	RoleInCompany *string   `db:"role_in_company"`
	CreatedAt     time.Time `db:"created_at"`
}
