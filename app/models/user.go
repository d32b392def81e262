package models

// Role is the access level the backend issues with a token.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleStoreManager Role = "STORE_MANAGER"
	RoleUser         Role = "USER"
)

// Roles lists every role, most privileged first.
var Roles = []Role{RoleAdmin, RoleStoreManager, RoleUser}

// ParseRole maps anything unrecognised to USER, the least privileged role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleStoreManager:
		return Role(s)
	}
	return RoleUser
}

// Home is the page a role lands on after login.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin-dashboard"
	case RoleStoreManager:
		return "/dashboard"
	default:
		return "/user-dashboard"
	}
}

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	Email string `json:"email,omitempty"`
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Contact  string `json:"contact"`
	Location string `json:"location"`
	Role     string `json:"role"     validate:"nullable,in=ADMIN,STORE_MANAGER,USER"`
}

// PasswordReset is the body of POST /auth/reset-password-direct.
type PasswordReset struct {
	Email       string `json:"email"       validate:"required,email"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}
