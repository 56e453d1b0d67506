package model

import (
	"time"
)

const RoleAdmin = "admin"

type Admin struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	Name         *string   `db:"name" json:"name,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type CreateAdminParams struct {
	Email        string
	PasswordHash string
	Name         *string
}

// AdminIdentity is the projection carried in the session token. It never
// includes the password hash.
type AdminIdentity struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Role  string  `json:"role"`
}

func (a *Admin) Identity() *AdminIdentity {
	return &AdminIdentity{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  RoleAdmin,
	}
}

// DisplayName returns the name when set, otherwise the email.
func (a *AdminIdentity) DisplayName() string {
	if a.Name != nil && *a.Name != "" {
		return *a.Name
	}
	return a.Email
}
