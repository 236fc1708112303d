package domain

// Role of an authenticated user as carried in the token.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Actor is the identity performing an operation. The zero value is anonymous.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAnonymous() bool { return a.UserID == "" }
func (a Actor) IsAdmin() bool     { return a.UserID != "" && a.Role == RoleAdmin }
