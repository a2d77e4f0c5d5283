package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	"github.com/homehunt/homehunt-api/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository with the same challenge
// semantics as the SQL implementation.
type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*entity.User
	saved   map[string]map[string]bool
	nextID  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*entity.User),
		saved:   make(map[string]map[string]bool),
	}
}

func clone(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	c := *u
	if u.OTPExpiresAt != nil {
		t := *u.OTPExpiresAt
		c.OTPExpiresAt = &t
	}
	return &c
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == id {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *fakeUserRepo) UpsertOTPChallenge(_ context.Context, email, otpHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok {
		r.nextID++
		u = &entity.User{
			ID:       fmt.Sprintf("user-%d", r.nextID),
			Email:    email,
			Role:     entity.RoleUser,
			IsActive: true,
		}
		r.byEmail[email] = u
	}
	u.OTPHash = otpHash
	exp := expiresAt
	u.OTPExpiresAt = &exp
	return nil
}

func (r *fakeUserRepo) ConsumeOTPChallenge(_ context.Context, email, otpHash string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[email]
	if !ok || u.OTPHash == "" || u.OTPExpiresAt == nil {
		return false, nil
	}
	if u.OTPHash != otpHash || !u.OTPExpiresAt.After(now) {
		return false, nil
	}
	u.OTPHash = ""
	u.OTPExpiresAt = nil
	return true, nil
}

func (r *fakeUserRepo) FinalizeRegistration(_ context.Context, in *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byEmail[in.Email]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = in.Name
	u.Password = in.Password
	u.Role = in.Role
	u.IsVerified = true
	in.ID = u.ID
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, in *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byEmail {
		if u.ID == in.ID {
			u.Name, u.Phone, u.Address = in.Name, in.Phone, in.Address
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeUserRepo) SavedPropertyIDs(_ context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for id := range r.saved[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeUserRepo) IsPropertySaved(_ context.Context, userID, propertyID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved[userID][propertyID], nil
}

func (r *fakeUserRepo) SaveProperty(_ context.Context, userID, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saved[userID] == nil {
		r.saved[userID] = make(map[string]bool)
	}
	r.saved[userID][propertyID] = true
	return nil
}

func (r *fakeUserRepo) UnsaveProperty(_ context.Context, userID, propertyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.saved[userID], propertyID)
	return nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakeMailer records deliveries and optionally fails them.
type fakeMailer struct {
	fail  bool
	sends []struct{ to, subject, text string }
}

func (m *fakeMailer) Send(_ context.Context, to, subject, text, _ string) error {
	if m.fail {
		return errors.New("mailgun unreachable")
	}
	m.sends = append(m.sends, struct{ to, subject, text string }{to, subject, text})
	return nil
}

var codePattern = regexp.MustCompile(`\d{6}`)

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.sends, "no mail delivered")
	code := codePattern.FindString(m.sends[len(m.sends)-1].text)
	require.Len(t, code, 6)
	return code
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestAuthService(repo *fakeUserRepo, mail *fakeMailer) *AuthService {
	jwt := helpers.NewJWTManager("test-secret", 7*24*time.Hour)
	return NewAuthService(repo, jwt, mail, true, 5*time.Minute, quietLogger())
}

func TestRequestOTPStoresChallengeAfterSend(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)

	require.NoError(t, svc.RequestOTP(context.Background(), "new@example.com"))

	u, err := repo.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.True(t, u.HasPendingChallenge())
	assert.False(t, u.IsVerified)
	assert.Len(t, mail.sends, 1)
	assert.Equal(t, "new@example.com", mail.sends[0].to)
	// storage never sees the plaintext code
	assert.NotEqual(t, mail.lastCode(t), u.OTPHash)
	assert.True(t, helpers.MatchOTPCode(u.OTPHash, mail.lastCode(t)))
}

func TestRequestOTPDeliveryFailureStoresNothing(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo, &fakeMailer{fail: true})

	err := svc.RequestOTP(context.Background(), "new@example.com")
	require.ErrorIs(t, err, ErrDeliveryFailure)

	_, err = repo.GetByEmail(context.Background(), "new@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRequestOTPVerifiedAccountIsSilentNoop(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)
	registerUser(t, svc, mail, "taken@example.com", entity.RoleUser)

	sent := len(mail.sends)
	require.NoError(t, svc.RequestOTP(context.Background(), "taken@example.com"))
	assert.Len(t, mail.sends, sent, "verified account must not receive a code")
}

func TestRequestOTPReissueOverwrites(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)

	require.NoError(t, svc.RequestOTP(context.Background(), "new@example.com"))
	first := mail.lastCode(t)
	require.NoError(t, svc.RequestOTP(context.Background(), "new@example.com"))
	second := mail.lastCode(t)

	in := RegisterInput{Name: "N", Email: "new@example.com", Password: "password123", Role: entity.RoleUser}

	if first != second {
		in.OTP = first
		_, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidChallenge, "superseded code must not verify")
	}

	in.OTP = second
	_, err := svc.Register(context.Background(), in)
	assert.NoError(t, err)
}

func TestRegisterHappyPath(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)

	require.NoError(t, svc.RequestOTP(context.Background(), "agent@example.com"))
	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Demo Agent",
		Email:    "agent@example.com",
		Password: "password123",
		OTP:      mail.lastCode(t),
		Role:     entity.RoleAgent,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAgent, u.Role)

	stored, err := repo.GetByEmail(context.Background(), "agent@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.False(t, stored.HasPendingChallenge(), "challenge must be consumed")
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "password123"))
}

func TestRegisterWrongCodeDoesNotConsume(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)

	require.NoError(t, svc.RequestOTP(context.Background(), "new@example.com"))
	code := mail.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	in := RegisterInput{Name: "N", Email: "new@example.com", Password: "password123", Role: entity.RoleUser}

	in.OTP = wrong
	_, err := svc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidChallenge)

	// a wrong guess must not burn the pending challenge
	in.OTP = code
	_, err = svc.Register(context.Background(), in)
	assert.NoError(t, err)
}

func TestRegisterVerifiedIdentityRejected(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)
	registerUser(t, svc, mail, "taken@example.com", entity.RoleUser)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Again", Email: "taken@example.com", Password: "password123",
		OTP: "123456", Role: entity.RoleUser,
	})
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterExpiredChallenge(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)

	require.NoError(t, svc.RequestOTP(context.Background(), "new@example.com"))
	code := mail.lastCode(t)

	svc.Now = func() time.Time { return time.Now().Add(6 * time.Minute) }
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "N", Email: "new@example.com", Password: "password123",
		OTP: code, Role: entity.RoleUser,
	})
	assert.ErrorIs(t, err, ErrChallengeExpired)
}

func TestRegisterWithoutChallenge(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), &fakeMailer{})
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "N", Email: "nobody@example.com", Password: "password123",
		OTP: "123456", Role: entity.RoleUser,
	})
	assert.ErrorIs(t, err, ErrChallengeNotFound)
}

func TestRegisterInvalidRole(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), &fakeMailer{})
	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "N", Email: "new@example.com", Password: "password123",
		OTP: "123456", Role: "admin",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestEmailNormalization(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)

	require.NoError(t, svc.RequestOTP(context.Background(), "  User@Example.COM "))
	_, err := repo.GetByEmail(context.Background(), "user@example.com")
	require.NoError(t, err, "challenge stored under normalized email")

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "N", Email: "USER@example.com", Password: "password123",
		OTP: mail.lastCode(t), Role: entity.RoleUser,
	})
	assert.NoError(t, err)
}

func TestLoginCredentialFailuresIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)
	registerUser(t, svc, mail, "user@example.com", entity.RoleUser)

	_, _, _, errUnknown := svc.Login(context.Background(), "ghost@example.com", "password123")
	_, _, _, errWrongPwd := svc.Login(context.Background(), "user@example.com", "wrong-password")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPwd, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPwd)
}

func TestLoginUnfinishedRegistration(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)

	// phase 1 only: identity exists but has no password yet
	require.NoError(t, svc.RequestOTP(context.Background(), "pending@example.com"))

	_, _, _, err := svc.Login(context.Background(), "pending@example.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginBlockedAccount(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)
	registerUser(t, svc, mail, "blocked@example.com", entity.RoleUser)

	repo.mu.Lock()
	repo.byEmail["blocked@example.com"].IsActive = false
	repo.mu.Unlock()

	_, _, _, err := svc.Login(context.Background(), "blocked@example.com", "password123")
	assert.ErrorIs(t, err, ErrAccountBlocked)
}

func TestLoginIssuesParsableSession(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestAuthService(repo, mail)
	registerUser(t, svc, mail, "user@example.com", entity.RoleUser)

	u, token, exp, err := svc.Login(context.Background(), "user@example.com", "password123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, time.Minute)

	claims, err := svc.JWT.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
}

// gatedUserRepo holds every caller at the consume step until all expected
// callers have arrived, so racing verifies each read the challenge as
// pending before any of them clears it.
type gatedUserRepo struct {
	*fakeUserRepo
	arrive sync.WaitGroup
}

func (r *gatedUserRepo) ConsumeOTPChallenge(ctx context.Context, email, otpHash string, now time.Time) (bool, error) {
	r.arrive.Done()
	r.arrive.Wait()
	return r.fakeUserRepo.ConsumeOTPChallenge(ctx, email, otpHash, now)
}

func TestRegisterRacingVerifiesSingleWinner(t *testing.T) {
	repo := &gatedUserRepo{fakeUserRepo: newFakeUserRepo()}
	repo.arrive.Add(2)
	mail := &fakeMailer{}
	jwt := helpers.NewJWTManager("test-secret", 7*24*time.Hour)
	svc := NewAuthService(repo, jwt, mail, true, 5*time.Minute, quietLogger())

	require.NoError(t, svc.RequestOTP(context.Background(), "race@example.com"))
	in := RegisterInput{
		Name:     "N",
		Email:    "race@example.com",
		Password: "password123",
		OTP:      mail.lastCode(t),
		Role:     entity.RoleUser,
	}

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Register(context.Background(), in)
			errs <- err
		}()
	}

	var wins int
	var loserErr error
	for i := 0; i < 2; i++ {
		if err := <-errs; err == nil {
			wins++
		} else {
			loserErr = err
		}
	}
	assert.Equal(t, 1, wins, "exactly one verify may consume the challenge")
	assert.ErrorIs(t, loserErr, ErrChallengeNotFound,
		"the loser held a valid code but found nothing left to consume")

	stored, err := repo.fakeUserRepo.GetByEmail(context.Background(), "race@example.com")
	require.NoError(t, err)
	assert.True(t, stored.IsVerified)
	assert.False(t, stored.HasPendingChallenge())
}

// registerUser drives the full two-phase flow with password "password123".
func registerUser(t *testing.T, svc *AuthService, mail *fakeMailer, email, role string) *entity.User {
	t.Helper()
	require.NoError(t, svc.RequestOTP(context.Background(), email))
	u, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Test User",
		Email:    email,
		Password: "password123",
		OTP:      mail.lastCode(t),
		Role:     role,
	})
	require.NoError(t, err)
	return u
}
