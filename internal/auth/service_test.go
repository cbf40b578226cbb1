package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Shashankphatkure/equico-app/internal/users"
	pkgAuth "github.com/Shashankphatkure/equico-app/pkg/auth"
	"github.com/Shashankphatkure/equico-app/pkg/config"
	"github.com/Shashankphatkure/equico-app/pkg/db/dbtest"
	pkgerrors "github.com/Shashankphatkure/equico-app/pkg/errors"
	"github.com/Shashankphatkure/equico-app/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	created map[string]string
	revoked []string
}

func (f *fakeSessions) Create(_ context.Context, accessID, userID string) error {
	if f.created == nil {
		f.created = map[string]string{}
	}
	f.created[accessID] = userID
	return nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "equico", ExpirationMinutes: 60 * 24 * 7}

func testHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32})
}

func TestRegisterThenLogin(t *testing.T) {
	conn := dbtest.Open(t)
	repo := users.NewRepository(conn)
	hasher := testHasher()

	reg, err := NewRegisterService(RegisterServiceParams{UserRepo: repo, Passwords: hasher})
	require.NoError(t, err)
	created, err := reg.Register(context.Background(), RegisterRequest{
		Name:        "Ada Rider",
		Email:       "  Ada@Example.com ",
		Password:    "correct horse",
		DateOfBirth: "1990-05-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", created.User.Email)
	assert.True(t, created.User.IsOver18)

	sessions := &fakeSessions{}
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: sessions, Passwords: hasher, JWTConfig: testJWT})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), LoginRequest{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, result.Response.User.ID)

	claims, err := pkgAuth.ParseAccessToken(testJWT, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.User.ID, claims.UserID)
	assert.Equal(t, created.User.ID.String(), sessions.created[claims.ID])
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), result.ExpiresAt, time.Minute)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	conn := dbtest.Open(t)
	reg, err := NewRegisterService(RegisterServiceParams{UserRepo: users.NewRepository(conn), Passwords: testHasher()})
	require.NoError(t, err)

	req := RegisterRequest{Name: "A", Email: "a@example.com", Password: "password1", DateOfBirth: "1990-01-01"}
	_, err = reg.Register(context.Background(), req)
	require.NoError(t, err)

	req.Email = "A@EXAMPLE.COM"
	_, err = reg.Register(context.Background(), req)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestRegisterRejectsBadDate(t *testing.T) {
	conn := dbtest.Open(t)
	reg, err := NewRegisterService(RegisterServiceParams{UserRepo: users.NewRepository(conn), Passwords: testHasher()})
	require.NoError(t, err)

	_, err = reg.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@example.com", Password: "password1", DateOfBirth: "01/02/1990"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestLoginWrongPassword(t *testing.T) {
	conn := dbtest.Open(t)
	repo := users.NewRepository(conn)
	hasher := testHasher()
	reg, _ := NewRegisterService(RegisterServiceParams{UserRepo: repo, Passwords: hasher})
	_, err := reg.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@example.com", Password: "password1", DateOfBirth: "1990-01-01"})
	require.NoError(t, err)

	svc, _ := NewService(ServiceParams{UserRepo: repo, SessionManager: &fakeSessions{}, Passwords: hasher, JWTConfig: testJWT})
	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "nope"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "password1"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessions{}
	svc, err := NewService(ServiceParams{UserRepo: users.NewRepository(dbtest.Open(t)), SessionManager: sessions, Passwords: testHasher(), JWTConfig: testJWT})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "jti-1"))
	assert.Equal(t, []string{"jti-1"}, sessions.revoked)
	assert.True(t, pkgerrors.IsCode(svc.Logout(context.Background(), ""), pkgerrors.CodeUnauthorized))
}

func TestAgeOnCountsBirthdays(t *testing.T) {
	dob := time.Date(2006, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 17, AgeOn(dob, time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, AgeOn(dob, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 18, AgeOn(dob, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
}
