package credential

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session describes the identity carried by a bearer token.
type Session struct {
	Subject   string
	Email     string
	Role      string
	SchoolID  string
	ExpiresAt *time.Time
}

type sessionClaims struct {
	Email    string `json:"email"`
	Role     string `json:"role"`
	SchoolID string `json:"school_id"`
	UserID   string `json:"user_id"`
	jwt.RegisteredClaims
}

// Inspect decodes the claims of a JWT without verifying its signature.
// The backend remains the authority; this is for display and for warning
// about expired sessions before a request is sent.
func Inspect(token string) (*Session, error) {
	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	session := &Session{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
		SchoolID: claims.SchoolID,
	}
	if session.Subject == "" {
		session.Subject = claims.UserID
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		session.ExpiresAt = &exp
	}
	return session, nil
}

// Expired reports whether the session expiry is at or before now.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt == nil {
		return false
	}
	return !now.Before(*s.ExpiresAt)
}
