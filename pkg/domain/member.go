package domain

// Member roles.
const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

// Roles lists the roles an account can be created with, in display order.
var Roles = []string{RoleAdmin, RoleUser}

// ValidRole returns true if role is one the API accepts.
func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Member is a user account attached to an organization.
type Member struct {
	ID          string `json:"id"`
	FullName    string `json:"fullName"`
	UserName    string `json:"userName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Role        string `json:"role"`
}
