package models

import "time"

// Admin lives in a namespace disjoint from User: being an administrator is
// membership in the admins table, not a flag on the user row.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type PublicAdmin struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Admin) Public() PublicAdmin {
	return PublicAdmin{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}
