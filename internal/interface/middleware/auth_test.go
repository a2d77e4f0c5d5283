package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehunt/homehunt-api/internal/domain/entity"
	"github.com/homehunt/homehunt-api/internal/domain/repository"
	"github.com/homehunt/homehunt-api/pkg/helpers"
)

type stubUserRepo struct {
	users map[string]*entity.User
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) GetByEmail(context.Context, string) (*entity.User, error) {
	return nil, repository.ErrNotFound
}
func (r *stubUserRepo) UpsertOTPChallenge(context.Context, string, string, time.Time) error {
	return nil
}
func (r *stubUserRepo) ConsumeOTPChallenge(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
func (r *stubUserRepo) FinalizeRegistration(context.Context, *entity.User) error { return nil }
func (r *stubUserRepo) UpdateProfile(context.Context, *entity.User) error        { return nil }
func (r *stubUserRepo) SavedPropertyIDs(context.Context, string) ([]string, error) {
	return nil, nil
}
func (r *stubUserRepo) IsPropertySaved(context.Context, string, string) (bool, error) {
	return false, nil
}
func (r *stubUserRepo) SaveProperty(context.Context, string, string) error   { return nil }
func (r *stubUserRepo) UnsaveProperty(context.Context, string, string) error { return nil }

var _ repository.UserRepository = (*stubUserRepo)(nil)

func guardedRouter(repo repository.UserRepository, jwt *helpers.JWTManager, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{Auth(repo, jwt)}, extra...)
	grp := r.Group("/", chain...)
	grp.GET("/me", func(c *gin.Context) {
		u, _ := Identity(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "role": u.Role, "password": u.Password})
	})
	return r
}

func sessionCookie(t *testing.T, jwt *helpers.JWTManager, userID string) *http.Cookie {
	t.Helper()
	token, _, err := jwt.GenerateSessionToken(userID)
	require.NoError(t, err)
	return &http.Cookie{Name: helpers.SessionCookieName, Value: token}
}

func TestAuthMissingCookie(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := guardedRouter(&stubUserRepo{}, jwt)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthBadToken(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := guardedRouter(&stubUserRepo{}, jwt)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: helpers.SessionCookieName, Value: "garbage"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthExpiredToken(t *testing.T) {
	expired := helpers.NewJWTManager("secret", -time.Minute)
	live := helpers.NewJWTManager("secret", time.Hour)
	repo := &stubUserRepo{users: map[string]*entity.User{"u1": {ID: "u1", Role: entity.RoleUser}}}
	r := guardedRouter(repo, live)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie(t, expired, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthUnknownSubject(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	r := guardedRouter(&stubUserRepo{users: map[string]*entity.User{}}, jwt)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie(t, jwt, "ghost"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthResolvesIdentityWithoutPassword(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	repo := &stubUserRepo{users: map[string]*entity.User{
		"u1": {ID: "u1", Role: entity.RoleAgent, Password: "bcrypt-hash", IsActive: true},
	}}
	r := guardedRouter(repo, jwt)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie(t, jwt, "u1"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u1"`)
	assert.Contains(t, w.Body.String(), `"password":""`, "hash must not reach handlers")
}

func TestRequireRole(t *testing.T) {
	jwt := helpers.NewJWTManager("secret", time.Hour)
	repo := &stubUserRepo{users: map[string]*entity.User{
		"agent": {ID: "agent", Role: entity.RoleAgent, IsActive: true},
		"user":  {ID: "user", Role: entity.RoleUser, IsActive: true},
	}}
	r := guardedRouter(repo, jwt, RequireRole(entity.RoleAgent))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie(t, jwt, "agent"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sessionCookie(t, jwt, "user"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
