package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "redpen/errors"
	"redpen/utils"
	"redpen/web/types"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	maxNameLength     = 100

	// OAuthPasswordPlaceholder marks accounts that can only sign in with Google.
	OAuthPasswordPlaceholder = "oauth:google"
)

// UserStore is the persistence the auth flows need.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string, name *string) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, string, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
	UpdateUserName(ctx context.Context, id uuid.UUID, name string) error
}

// AuthError carries a client-facing message. Unwrap yields the apperrors
// sentinel that decides the HTTP status.
type AuthError struct {
	Kind    error
	Message string
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Kind }

func authErr(kind error, msg string) error {
	return &AuthError{Kind: kind, Message: msg}
}

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	store    UserStore
	google   GoogleVerifier
	secret   []byte
	expiry   time.Duration
	hashCost int
	logger   *zap.Logger
}

func NewAuthService(store UserStore, google GoogleVerifier, secret string, expiry time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:    store,
		google:   google,
		secret:   []byte(secret),
		expiry:   expiry,
		hashCost: bcrypt.DefaultCost,
		logger:   logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req types.RegisterRequest) (*types.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, authErr(apperrors.ErrInvalidInput, "Email and password are required")
	}
	email := utils.NormalizeEmail(req.Email)
	if !utils.ValidateEmail(email) {
		return nil, authErr(apperrors.ErrInvalidInput, "Invalid email address")
	}
	if len(req.Password) < minPasswordLength {
		return nil, authErr(apperrors.ErrInvalidInput, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, authErr(apperrors.ErrInvalidInput, "Password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var name *string
	if trimmed := strings.TrimSpace(req.Name); trimmed != "" {
		trimmed, _ = utils.TruncateRunes(trimmed, maxNameLength)
		name = &trimmed
	}

	user, err := s.store.CreateUser(ctx, email, string(hash), name)
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, authErr(apperrors.ErrConflict, "An account with this email already exists")
		}
		return nil, err
	}
	return s.respond("Account created", user)
}

func (s *AuthService) Login(ctx context.Context, req types.LoginRequest) (*types.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, authErr(apperrors.ErrInvalidInput, "Email and password are required")
	}
	email := utils.NormalizeEmail(req.Email)

	user, hash, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, authErr(apperrors.ErrUnauthorized, "Invalid email or password")
		}
		return nil, err
	}
	if hash == OAuthPasswordPlaceholder {
		return nil, authErr(apperrors.ErrUnauthorized, "This account uses Google sign-in. Use the Google button to log in.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, authErr(apperrors.ErrUnauthorized, "Invalid email or password")
	}
	return s.respond("Logged in", user)
}

// GoogleLogin verifies a Google ID token and signs the matching user in,
// creating the account on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*types.AuthResponse, error) {
	if s.google == nil || !s.google.Configured() {
		return nil, authErr(apperrors.ErrNotConfigured, "Google sign-in is not configured")
	}
	if strings.TrimSpace(idToken) == "" {
		return nil, authErr(apperrors.ErrInvalidInput, "Google token is required")
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn("Google token rejected", zap.Error(err))
		return nil, authErr(apperrors.ErrUnauthorized, "Invalid Google sign-in")
	}
	email := utils.NormalizeEmail(identity.Email)
	if email == "" {
		return nil, authErr(apperrors.ErrInvalidInput, "Google account has no email")
	}

	user, _, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case apperrors.IsNotFound(err):
		var name *string
		if n := identity.Name; n != "" {
			name = &n
		}
		user, err = s.store.CreateUser(ctx, email, OAuthPasswordPlaceholder, name)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case identity.Name != "" && (user.Name == nil || *user.Name != identity.Name):
		if err := s.store.UpdateUserName(ctx, user.ID, identity.Name); err != nil {
			return nil, err
		}
		name := identity.Name
		user.Name = &name
	}
	return s.respond("Logged in", user)
}

// Me loads the user a verified token names.
func (s *AuthService) Me(ctx context.Context, userID string) (*types.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, authErr(apperrors.ErrUnauthorized, "Invalid or expired token")
	}
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, authErr(apperrors.ErrUnauthorized, "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) IssueToken(user *types.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseToken validates signature and expiry. Only HS256 is accepted.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrUnauthorized, err.Error())
	}
	return claims, nil
}

func (s *AuthService) respond(message string, user *types.User) (*types.AuthResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &types.AuthResponse{
		Message:   message,
		User:      user,
		Token:     token,
		ExpiresIn: FormatExpiry(s.expiry),
	}, nil
}

// FormatExpiry renders a token lifetime the way clients expect it ("7d", "12h").
func FormatExpiry(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%dh", d/time.Hour)
	default:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	}
}
