package repository

import (
	"context"
	"errors"
	"time"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
)

// ErrNotFound is returned by all repositories when the requested row does not
// exist or is not visible to the caller (wrong owner/recipient).
var ErrNotFound = errors.New("not found")

// UserRepository defines persistence for identities and their OTP challenge
// state. Emails are stored lowercased; callers normalize before lookup.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// UpsertOTPChallenge stores hash+expiry against the identity keyed by
	// email, creating an unverified placeholder identity if none exists.
	// A pending challenge is overwritten (single active challenge, last
	// writer wins).
	UpsertOTPChallenge(ctx context.Context, email, otpHash string, expiresAt time.Time) error

	// ConsumeOTPChallenge atomically clears the challenge iff the stored
	// hash equals otpHash and the challenge has not expired at now. It
	// reports whether this call consumed it; under two racing verifies at
	// most one caller observes true.
	ConsumeOTPChallenge(ctx context.Context, email, otpHash string, now time.Time) (bool, error)

	// FinalizeRegistration sets name, password hash, role and the verified
	// flag on the identity keyed by u.Email.
	FinalizeRegistration(ctx context.Context, u *entity.User) error

	UpdateProfile(ctx context.Context, u *entity.User) error

	SavedPropertyIDs(ctx context.Context, userID string) ([]string, error)
	IsPropertySaved(ctx context.Context, userID, propertyID string) (bool, error)
	SaveProperty(ctx context.Context, userID, propertyID string) error
	UnsaveProperty(ctx context.Context, userID, propertyID string) error
}
