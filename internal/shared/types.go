package shared

// Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the acting user attached to an authenticated request.
// It lives here so domains can share it without importing each other.
type Identity struct {
	ID       string
	Username string
	Name     string
	Role     string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsRole reports whether r is one of the known roles.
func IsRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}
