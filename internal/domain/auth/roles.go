package auth

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

var validRoles = map[string]bool{
	RoleAdmin:    true,
	RoleManager:  true,
	RoleEmployee: true,
}

func ValidRole(role string) bool {
	return validRoles[role]
}

// Permit reports whether the caller's role is in the allowed set. There is no
// hierarchy: admin does not satisfy a manager check unless listed. A nil
// claims value is never permitted.
func Permit(claims *Claims, allowed ...string) bool {
	if claims == nil {
		return false
	}
	for _, role := range allowed {
		if claims.Role == role {
			return true
		}
	}
	return false
}
