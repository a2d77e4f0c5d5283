package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	"github.com/homehunt/homehunt-api/pkg/helpers"
	tpl "github.com/homehunt/homehunt-api/pkg/mailer/templates"
)

var (
	// ErrInvalidCredentials covers unknown email, unset password and wrong
	// password alike so responses cannot be used for account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountBlocked     = errors.New("account blocked")
	ErrChallengeNotFound  = errors.New("otp challenge not found")
	ErrChallengeExpired   = errors.New("otp challenge expired")
	ErrInvalidChallenge   = errors.New("invalid otp code")
	ErrAlreadyRegistered  = errors.New("email already registered")
	ErrInvalidRole        = errors.New("invalid role")
	ErrDeliveryFailure    = errors.New("otp delivery failed")
	ErrUserNotFound       = errors.New("user not found")
)

// Mailer is the synchronous mail collaborator used for OTP delivery.
// *mailer.Mailgun satisfies it.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// AuthService owns the OTP challenge engine, the two-phase registration flow
// and session issuance.
type AuthService struct {
	Repo        repository.UserRepository
	JWT         *helpers.JWTManager
	Mail        Mailer
	MailEnabled bool
	OTPTTL      time.Duration
	Logger      *logrus.Logger

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

func NewAuthService(repo repository.UserRepository, jwt *helpers.JWTManager, mail Mailer, mailEnabled bool, otpTTL time.Duration, logger *logrus.Logger) *AuthService {
	return &AuthService{
		Repo:        repo,
		JWT:         jwt,
		Mail:        mail,
		MailEnabled: mailEnabled,
		OTPTTL:      otpTTL,
		Logger:      logger,
		Now:         time.Now,
	}
}

// NormalizeEmail lowercases and trims an email; every entry point goes
// through this so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RequestOTP runs registration phase 1: mint a code, deliver it, then persist
// the challenge. The challenge is stored only after Mailgun accepts the
// message, so a delivery failure never leaves an undeliverable challenge
// behind. Re-requesting overwrites any pending challenge.
//
// Already-verified emails are a silent no-op: the caller responds with the
// same generic success either way to avoid leaking account existence.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = NormalizeEmail(email)

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if u != nil && u.IsVerified {
		if s.Logger != nil {
			s.Logger.WithField("email", email).Debug("otp requested for verified account, skipping")
		}
		return nil
	}

	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}

	if s.Mail != nil && s.MailEnabled {
		if err := s.sendOTPMail(ctx, email, code); err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("email", email).Error("otp mail delivery failed")
			}
			return fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
		}
	} else if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"email": email, "code": code}).Debug("mail sending disabled, otp not delivered")
	}

	expiresAt := s.Now().Add(s.OTPTTL)
	return s.Repo.UpsertOTPChallenge(ctx, email, helpers.HashOTPCode(code), expiresAt)
}

func (s *AuthService) sendOTPMail(ctx context.Context, email, code string) error {
	text, html, err := tpl.Render(tpl.OTPCode, map[string]any{
		"Code":             code,
		"ExpiresInMinutes": int(s.OTPTTL.Minutes()),
	})
	if err != nil {
		return err
	}
	return s.Mail.Send(ctx, email, tpl.SubjectFor(tpl.OTPCode), text, html)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	OTP      string
	Role     string
}

// Register runs registration phase 2: consume the pending challenge and
// finalize the identity. There is no path that sets a password without a
// consumed challenge, and a verified identity can never be re-registered
// (role stays immutable after finalization).
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.Email = NormalizeEmail(in.Email)
	if !entity.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	u, err := s.Repo.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChallengeNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.IsVerified {
		return nil, ErrAlreadyRegistered
	}
	if !u.HasPendingChallenge() {
		return nil, ErrChallengeNotFound
	}

	now := s.Now()
	if now.After(*u.OTPExpiresAt) {
		return nil, ErrChallengeExpired
	}

	codeMatches := helpers.MatchOTPCode(u.OTPHash, in.OTP)

	// Consumption is the atomic step; everything above is classification.
	consumed, err := s.Repo.ConsumeOTPChallenge(ctx, in.Email, helpers.HashOTPCode(in.OTP), now)
	if err != nil {
		return nil, err
	}
	if !consumed {
		if !codeMatches {
			return nil, ErrInvalidChallenge
		}
		// Valid code, nothing consumed: a racing verify won, or the
		// challenge expired between the read and the update.
		if s.Now().After(*u.OTPExpiresAt) {
			return nil, ErrChallengeExpired
		}
		return nil, ErrChallengeNotFound
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u.Name = in.Name
	u.Password = hash
	u.Role = in.Role
	if err := s.Repo.FinalizeRegistration(ctx, u); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("registration finalized")
	}
	return u, nil
}

// Login validates credentials and mints a 7-day session token. The blocked
// check runs only after the credentials held up, so a wrong password never
// reveals that an account is blocked.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, string, time.Time, error) {
	email = NormalizeEmail(email)

	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if u.Password == "" {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, "", time.Time{}, ErrAccountBlocked
	}

	token, exp, err := s.JWT.GenerateSessionToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate session token failed")
		}
		return nil, "", time.Time{}, err
	}
	return u, token, exp, nil
}

// GetIdentity resolves a session subject to its identity.
func (s *AuthService) GetIdentity(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
