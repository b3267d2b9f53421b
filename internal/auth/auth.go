package auth

// Role is the authorization level carried by an authenticated caller.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps an arbitrary claim string onto a known role. Anything that
// is not exactly "admin" is an ordinary user.
func ParseRole(s string) Role {
	if s == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

// AuthUser is the minimal security context attached to a request: an id and
// a role, nothing else. It is deliberately not the persisted User model, so
// authorization decisions never touch the ORM.
type AuthUser struct {
	ID   uint
	Role Role
}

// CanMutate reports whether a role may create, update or delete products.
func CanMutate(r Role) bool {
	return r == RoleAdmin
}
