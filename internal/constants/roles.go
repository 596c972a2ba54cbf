package constants

const (
	Admin    = "admin"
	Investor = "investor"
)

// ValidRoles is every role a session may carry.
var ValidRoles = []string{Admin, Investor}

// IsValidRole returns true if role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
