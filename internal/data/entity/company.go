package entity

import (
	"github.com/google/uuid"
)

type Company struct {
	Base
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	OwnerUserID uuid.UUID `db:"owner_user_id"`
	IsActive    bool      `db:"is_active"`
}
