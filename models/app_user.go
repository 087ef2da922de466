package models

import "time"

// Role distinguishes the two marketplace actors. It is resolved once from the
// auth token at the boundary and passed explicitly from there on.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCarrier  Role = "carrier"
)

// ParseRole validates a role string coming from a signup payload or token claim.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleCarrier:
		return Role(s), nil
	}
	return "", NewValidationError("unknown role %q", s)
}

type AppUser struct {
	ID          string    `json:"id" bson:"_id,omitempty" db:"id"`
	Name        string    `json:"name" bson:"name" db:"name"`
	Email       string    `json:"email" bson:"email" db:"email"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty" db:"phone"`
	CompanyName string    `json:"company_name,omitempty" bson:"company_name,omitempty" db:"company_name"`
	Role        Role      `json:"role" bson:"role" db:"role"`
	Password    string    `json:"password,omitempty" bson:"password" db:"password_hash"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// UserSummary is the subset of user fields shown to the counterparty when
// reviewing quotes. Never includes credentials.
type UserSummary struct {
	ID          string `json:"id" bson:"_id" db:"id"`
	Name        string `json:"name" bson:"name" db:"name"`
	Email       string `json:"email" bson:"email" db:"email"`
	Phone       string `json:"phone,omitempty" bson:"phone,omitempty" db:"phone"`
	CompanyName string `json:"company_name,omitempty" bson:"company_name,omitempty" db:"company_name"`
}

// Summary strips an AppUser down to its public contact fields.
func (u *AppUser) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		CompanyName: u.CompanyName,
	}
}
