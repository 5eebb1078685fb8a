package types

// Role is the authorization level of an authenticated user
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// ParseRole maps a claim value onto a role, defaulting to USER.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleUser
}

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}
