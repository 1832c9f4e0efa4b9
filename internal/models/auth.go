package models

import "github.com/golang-jwt/jwt/v5"

// UserRole names a caller role carried in bearer tokens.
type UserRole string

// Roles allowed to change records.
const (
	RoleAdmin     UserRole = "ADMIN"
	RoleRegistrar UserRole = "REGISTRAR"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	Role UserRole `json:"role"`
	jwt.RegisteredClaims
}
