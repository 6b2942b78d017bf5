package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Role identifies the principal class carried in access tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Valid reports whether the role is one the platform knows about.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// RequestMeta carries caller metadata recorded on audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// LoginRequest holds credentials for authenticating a principal. The
// identifier is a username for admins and a matric number for students.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Role       Role   `json:"role" validate:"required"`
	IP         string `json:"-"`
	UserAgent  string `json:"-"`
}

// LoginResponse returns the issued token and principal profile.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Role        Role   `json:"role"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Matric      string `json:"matric,omitempty"`
}

// RegisterAdminRequest is the payload for creating administrators.
type RegisterAdminRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// JWTClaims is the structured claim set carried in access tokens. Role and
// identifier are separate claims rather than a delimited subject string so
// identifiers containing ':' cannot be misparsed.
type JWTClaims struct {
	Role       Role   `json:"role"`
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	jwt.RegisteredClaims
}
