package dto

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// UserClaims is the authenticated caller as seen by handlers.
type UserClaims struct {
	EmpID string
	Name  string
	Role  string
}

func (c *UserClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
