package models

import (
	"net/url"
	"time"
)

// User roles.
const (
	RoleAdmin     = "admin"
	RoleCounselor = "counselor"
	RoleTeacher   = "teacher"
	RolePrincipal = "principal"
)

// User is a staff account.
type User struct {
	ID        string    `json:"id"`
	SchoolID  string    `json:"school_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserFilter lists users.
type UserFilter struct {
	Page
	Role   string `json:"role"`
	Active *bool  `json:"active"`
}

func (f UserFilter) Values() url.Values {
	v := url.Values{}
	f.Page.apply(v)
	setString(v, "role", f.Role)
	setBool(v, "active", f.Active)
	return v
}

// CreateUserRequest invites a staff member.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=admin counselor teacher principal"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

// UpdateUserRequest edits a staff account.
type UpdateUserRequest struct {
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty" validate:"omitempty,email"`
	Role   string `json:"role,omitempty" validate:"omitempty,oneof=admin counselor teacher principal"`
	Phone  string `json:"phone,omitempty"`
	Active *bool  `json:"active,omitempty"`
}

// UpdateProfileRequest edits the signed-in user's own profile.
type UpdateProfileRequest struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// LoginRequest exchanges credentials for a bearer token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
