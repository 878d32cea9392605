package services

import (
	"context"
	"strings"
	"time"

	"firebase.google.com/go/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/tommyfonseca7/teams-coms-public/internal/apperrors"
	"github.com/tommyfonseca7/teams-coms-public/internal/logger"
	"github.com/tommyfonseca7/teams-coms-public/internal/models"
	"github.com/tommyfonseca7/teams-coms-public/internal/repository"
	"github.com/tommyfonseca7/teams-coms-public/pkg/utils"
)

const tokenIssuer = "aroeira-team"

// IdentityProvider is the part of the Firebase Auth client the service
// uses. *auth.Client satisfies it.
type IdentityProvider interface {
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthConfig struct {
	Secret      []byte
	TTL         time.Duration
	AdminEmails []string
}

// Session is an authenticated request's identity.
type Session struct {
	UID       string
	TokenID   string // empty for Firebase ID tokens, which cannot be revoked here
	ExpiresAt time.Time
}

type AuthService struct {
	users    UserStore
	creds    CredentialStore
	identity IdentityProvider
	tokens   *TokenStore
	cfg      AuthConfig
	now      func() time.Time
}

// NewAuthService creates the service. identity may be nil, in which case
// account ids are generated locally and only service tokens are accepted.
func NewAuthService(users UserStore, creds CredentialStore, identity IdentityProvider, tokens *TokenStore, cfg AuthConfig) *AuthService {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		creds:    creds,
		identity: identity,
		tokens:   tokens,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *AuthService) isAdminEmail(email string) bool {
	for _, e := range s.cfg.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

// Register creates a new account and its profile.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	for _, err := range []error{
		utils.ValidateName(name),
		utils.ValidateEmail(email),
		utils.ValidatePassword(req.Password),
		utils.ValidatePasswordConfirmation(req.Password, req.Password2),
	} {
		if err != nil {
			return nil, apperrors.BadRequest("auth", err.Error())
		}
	}

	existing, err := s.creds.GetByEmail(ctx, email)
	if err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("auth", "email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	uid, err := s.createAccount(ctx, name, email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.creds.Create(ctx, &repository.Credential{
		UID:          uid,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
	}); err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		UID:       uid,
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}
	if s.isAdminEmail(email) {
		profile.Role = models.RoleAdmin
	}
	if err := s.users.Create(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info("account registered", zap.String("uid", uid), zap.String("role", string(profile.Role)))
	return s.issue(profile)
}

func (s *AuthService) createAccount(ctx context.Context, name, email, password string) (string, error) {
	if s.identity == nil {
		return uuid.NewString(), nil
	}

	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(name)
	record, err := s.identity.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", apperrors.Conflict("auth", "email already registered")
		}
		return "", errors.Wrap(err, "create firebase user")
	}
	return record.UID, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	invalid := apperrors.Unauthorized("invalid email or password")

	cred, err := s.creds.GetByEmail(ctx, req.Email)
	if apperrors.HasCode(err, apperrors.CodeNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	profile, err := s.users.Get(ctx, cred.UID)
	if err != nil {
		return nil, err
	}
	return s.issue(profile)
}

// Logout revokes the session's token.
func (s *AuthService) Logout(session *Session) {
	s.tokens.Revoke(session.TokenID, session.ExpiresAt)
}

// Refresh replaces the session's token with a fresh one.
func (s *AuthService) Refresh(ctx context.Context, session *Session) (*models.AuthResponse, error) {
	profile, err := s.users.Get(ctx, session.UID)
	if err != nil {
		return nil, err
	}
	s.tokens.Revoke(session.TokenID, session.ExpiresAt)
	return s.issue(profile)
}

// UpdateFCMToken updates the user's FCM token
func (s *AuthService) UpdateFCMToken(ctx context.Context, uid, fcmToken string) error {
	if strings.TrimSpace(fcmToken) == "" {
		return apperrors.BadRequest("auth", "fcm token cannot be empty")
	}
	return s.users.UpdateFCMToken(ctx, uid, fcmToken)
}

func (s *AuthService) issue(profile *models.UserProfile) (*models.AuthResponse, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.TTL)

	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   profile.UID,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign token")
	}

	return &models.AuthResponse{
		UID:       profile.UID,
		Name:      profile.Name,
		Role:      profile.Role,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate resolves a bearer token. Service tokens are tried first,
// then Firebase ID tokens when Firebase Auth is configured.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*Session, error) {
	session, err := s.parse(raw)
	if err == nil {
		return session, nil
	}
	if s.identity == nil {
		return nil, err
	}

	tok, idErr := s.identity.VerifyIDToken(ctx, raw)
	if idErr != nil {
		return nil, err
	}
	return &Session{UID: tok.UID, ExpiresAt: time.Unix(tok.Expires, 0)}, nil
}

func (s *AuthService) parse(raw string) (*Session, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired token").WithError(err)
	}
	if claims.Subject == "" {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}
	if s.tokens.IsRevoked(claims.ID) {
		return nil, apperrors.Unauthorized("token has been revoked")
	}

	return &Session{
		UID:       claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
