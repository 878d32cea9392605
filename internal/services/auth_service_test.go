package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/services/servicetest"
)

type authFixture struct {
	users  *servicetest.Users
	creds  *servicetest.Credentials
	tokens *TokenStore
	clock  *servicetest.Clock
	svc    *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	f := &authFixture{
		users:  servicetest.NewUsers(),
		creds:  servicetest.NewCredentials(),
		tokens: NewTokenStore(time.Hour),
		clock:  servicetest.NewClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)),
	}
	t.Cleanup(f.tokens.Close)
	f.svc = NewAuthService(f.users, f.creds, nil, f.tokens, AuthConfig{
		Secret:      []byte("test-secret"),
		TTL:         time.Hour,
		AdminEmails: []string{"Chefe@Aroeira.pt"},
	})
	f.svc.now = f.clock.Now
	return f
}

func register(t *testing.T, svc *AuthService, name, email string) *models.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &models.RegisterRequest{
		Name: name, Email: email, Password: "segredo123", Password2: "segredo123",
	})
	require.NoError(t, err)
	return resp
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	reg := register(t, f.svc, "Ana", "Ana@Aroeira.pt")
	assert.NotEmpty(t, reg.UID)
	assert.Empty(t, reg.Role, "new members start without a role")

	profile, err := f.users.Get(ctx, reg.UID)
	require.NoError(t, err)
	assert.Equal(t, "ana@aroeira.pt", profile.Email)
	assert.Nil(t, profile.NewsCount)

	login, err := f.svc.Login(ctx, &models.LoginRequest{Email: "ana@aroeira.pt", Password: "segredo123"})
	require.NoError(t, err)
	assert.Equal(t, reg.UID, login.UID)
	assert.Equal(t, "Ana", login.Name)

	session, err := f.svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.UID, session.UID)
	assert.Equal(t, f.clock.Now().Add(time.Hour).Unix(), session.ExpiresAt.Unix())
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	register(t, f.svc, "Ana", "ana@aroeira.pt")

	tests := []struct {
		name string
		req  models.RegisterRequest
		code apperrors.ErrorCode
	}{
		{"mismatch", models.RegisterRequest{Name: "Rui", Email: "rui@aroeira.pt", Password: "segredo123", Password2: "segredo124"}, apperrors.CodeBadRequest},
		{"short password", models.RegisterRequest{Name: "Rui", Email: "rui@aroeira.pt", Password: "curta", Password2: "curta"}, apperrors.CodeBadRequest},
		{"blank name", models.RegisterRequest{Name: "  ", Email: "rui@aroeira.pt", Password: "segredo123", Password2: "segredo123"}, apperrors.CodeBadRequest},
		{"taken", models.RegisterRequest{Name: "Ana 2", Email: "ANA@aroeira.pt", Password: "segredo123", Password2: "segredo123"}, apperrors.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.svc.Register(ctx, &req)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAuthService_AdminEmails(t *testing.T) {
	f := newAuthFixture(t)
	resp := register(t, f.svc, "Chefe", "chefe@aroeira.pt")
	assert.Equal(t, models.RoleAdmin, resp.Role)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	register(t, f.svc, "Ana", "ana@aroeira.pt")

	_, err := f.svc.Login(ctx, &models.LoginRequest{Email: "ana@aroeira.pt", Password: "errada1234"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = f.svc.Login(ctx, &models.LoginRequest{Email: "ninguem@aroeira.pt", Password: "segredo123"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestAuthService_LogoutAndRefresh(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	reg := register(t, f.svc, "Ana", "ana@aroeira.pt")

	session, err := f.svc.Authenticate(ctx, reg.Token)
	require.NoError(t, err)

	refreshed, err := f.svc.Refresh(ctx, session)
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, reg.Token)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized), "old token is revoked")

	session, err = f.svc.Authenticate(ctx, refreshed.Token)
	require.NoError(t, err)
	f.svc.Logout(session)
	_, err = f.svc.Authenticate(ctx, refreshed.Token)
	assert.Error(t, err)
}

func TestAuthService_RejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	reg := register(t, f.svc, "Ana", "ana@aroeira.pt")

	f.clock.Advance(2 * time.Hour)
	_, err := f.svc.Authenticate(ctx, reg.Token)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   reg.UID,
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(f.clock.Now().Add(time.Hour)),
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, forged)
	assert.Error(t, err)

	_, err = f.svc.Authenticate(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestAuthService_UpdateFCMToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	reg := register(t, f.svc, "Ana", "ana@aroeira.pt")

	assert.Error(t, f.svc.UpdateFCMToken(ctx, reg.UID, " "))
	require.NoError(t, f.svc.UpdateFCMToken(ctx, reg.UID, "device-1"))
	p, _ := f.users.Get(ctx, reg.UID)
	assert.Equal(t, "device-1", p.FCMToken)
}

func TestTokenStore_PurgesExpired(t *testing.T) {
	ts := NewTokenStore(time.Hour)
	defer ts.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return now }

	ts.Revoke("old", now.Add(-time.Minute))
	ts.Revoke("live", now.Add(time.Minute))
	ts.Revoke("", now.Add(time.Minute))
	assert.Equal(t, 2, ts.Len())

	ts.purge()
	assert.False(t, ts.IsRevoked("old"))
	assert.True(t, ts.IsRevoked("live"))
}
