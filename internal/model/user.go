package model

import "strings"

const (
	RoleCustomer = "cliente"
	RoleAdmin    = "admin"
)

type User struct {
	ID              int64   `db:"id" json:"id"`
	Email           string  `db:"email" json:"email"`
	PasswordHash    string  `db:"password_hash" json:"-"`
	FirstName       string  `db:"first_name" json:"first_name"`
	LastName        string  `db:"last_name" json:"last_name"`
	Phone           *string `db:"phone" json:"phone"`
	Address         *string `db:"address" json:"address"`
	ProfileImageURI *string `db:"profile_image_uri" json:"profile_image_uri"`
	Role            string  `db:"role" json:"role"`
	UpdatedAt       int64   `db:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SplitName splits "First Middle Last" into first name and the rest, the way
// the backend's single name field maps onto the local columns.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
