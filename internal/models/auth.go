package models

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required"`
	Role      UserRole `json:"role" validate:"omitempty"`
	IP        string   `json:"-"`
	UserAgent string   `json:"-"`
}

// LoginResponse returns the issued token and user info.
type LoginResponse struct {
	Message   string      `json:"message"`
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expires_in"`
	User      UserProfile `json:"user"`
}

// ChangePasswordRequest payload for updating password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// VerifyResponse echoes the identity carried by a valid token.
type VerifyResponse struct {
	Valid bool      `json:"valid"`
	User  TokenUser `json:"user"`
}

// TokenUser is the identity triple embedded in every access token.
type TokenUser struct {
	UserID int64    `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID int64    `json:"userId"`
	Email  string   `json:"email"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the identity triple carried by the claims.
func (c *JWTClaims) Identity() TokenUser {
	return TokenUser{UserID: c.UserID, Email: c.Email, Role: c.Role}
}

// Owns reports whether the claims belong to the given user or carry admin rights.
func (c *JWTClaims) Owns(userID int64) bool {
	if c == nil {
		return false
	}
	return c.UserID == userID || CapabilitiesOf(c.Role).Administer
}

// SubjectFor renders a user id as a JWT subject.
func SubjectFor(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
