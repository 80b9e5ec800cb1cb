package entity

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleCompany  UserRole = "company"
	RoleEmployee UserRole = "employee"
	RoleUser     UserRole = "user"
)

type User struct {
	Base
	Username     string   `db:"username"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Role         UserRole `db:"role"`
	IsActive     bool     `db:"is_active"`
}
