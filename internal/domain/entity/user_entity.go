package entity

import (
	"time"
)

// Roles a user can finalize registration with. Anything else is rejected at
// the boundary, never coerced.
const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

// ValidRole reports whether role is one of the enumerated account roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAgent
}

// User is the aggregate root for the identity domain.
//
// An empty Password means registration never finished; such an identity can
// never authenticate. OTPHash/OTPExpiresAt hold the pending challenge and are
// both cleared when the challenge is consumed, making every code single-use.
type User struct {
	ID           string
	Email        string
	Password     string // bcrypt hash; empty until phase-2 registration completes
	Name         string
	Phone        string
	Address      string
	Role         string
	IsActive     bool
	IsVerified   bool
	OTPHash      string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPendingChallenge reports whether an OTP challenge is stored, expired or not.
func (u *User) HasPendingChallenge() bool {
	return u.OTPHash != "" && u.OTPExpiresAt != nil
}
