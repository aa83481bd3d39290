package model

import "time"

// Role distinguishes admin staff from customers.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Account represents an admin or customer able to sign in.
type Account struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	Name         string
	Email        string
	Mobile       string
	CreatedAt    time.Time
}

// Session identifies the authenticated caller of a request.
type Session struct {
	AccountID int64
	Role      Role
}

// IsAdmin reports whether the session belongs to admin staff.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
