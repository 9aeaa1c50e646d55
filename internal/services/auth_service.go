package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vytor/numguess/internal/errors"
	"github.com/vytor/numguess/internal/logger"
	"github.com/vytor/numguess/internal/models"
	"github.com/vytor/numguess/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	invalidCredentialsMessage = "Invalid email or password"
)

// AuthConfig holds token signing and password hashing settings.
type AuthConfig struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	BcryptCost int
}

// Principal is the authenticated caller extracted from an access token.
type Principal struct {
	UserID string
	Email  string
}

// AuthService handles registration, login and token lifecycle
type AuthService interface {
	Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	Logout(ctx context.Context, userID string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Profile(ctx context.Context, userID string) (*models.Profile, error)
	Authenticate(ctx context.Context, accessToken string) (*Principal, error)
}

type authService struct {
	store repository.Store
	cfg   AuthConfig
	now   func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(store repository.Store, cfg AuthConfig, opts ...Option) AuthService {
	o := applyOptions(opts)
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &authService{store: store, cfg: cfg, now: o.now}
}

type tokenClaims struct {
	Email string `json:"email"`
	Stamp string `json:"stamp"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

func (s *authService) Register(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("registering user")

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cfg.BcryptCost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now()
	user := models.User{
		ID:            uuid.NewString(),
		Email:         strings.TrimSpace(in.Email),
		PasswordHash:  string(hash),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		IsActive:      true,
		SecurityStamp: uuid.NewString(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.store.WithinTx(ctx, func(uow repository.UnitOfWork) error {
		if err := uow.Users().Create(ctx, user); err != nil {
			return err
		}
		_, err := getOrCreateStatistics(ctx, uow.Statistics(), user.ID, now)
		return err
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.NewConflictError("A user with this email already exists", nil)
		}
		log.Error("failed to register user: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("user registered: id=%s", user.ID)
	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	log := logger.FromContext(ctx)

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			log.Debug("login failed: unknown email")
			return nil, errors.NewUnauthorizedError(invalidCredentialsMessage)
		}
		log.Error("failed to load user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !user.IsActive {
		return nil, errors.NewUnauthorizedError("Account is deactivated")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debug("login failed: wrong password for user_id=%s", user.ID)
		return nil, errors.NewUnauthorizedError(invalidCredentialsMessage)
	}

	log.Info("user logged in: id=%s", user.ID)
	return s.issue(*user)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResult, error) {
	user, err := s.verify(ctx, refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return s.issue(*user)
}

func (s *authService) Logout(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx)
	if err := s.store.Users().UpdateSecurityStamp(ctx, userID, uuid.NewString(), s.now()); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("user", userID)
		}
		log.Error("failed to rotate security stamp: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("user logged out: id=%s", userID)
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	log := logger.FromContext(ctx)

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("user", userID)
		}
		log.Error("failed to load user: %v", err)
		return errors.NewInternalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return errors.NewValidationError("currentPassword", "is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cfg.BcryptCost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return errors.NewInternalError(err)
	}
	if err := s.store.Users().UpdatePassword(ctx, userID, string(hash), uuid.NewString(), s.now()); err != nil {
		log.Error("failed to update password: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("password changed: user_id=%s", userID)
	return nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	log := logger.FromContext(ctx)

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("user", userID)
		}
		log.Error("failed to load user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	stats, err := getOrCreateStatistics(ctx, s.store.Statistics(), userID, s.now())
	if err != nil {
		log.Error("failed to load statistics: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.Profile{
		User:         *user,
		GamesPlayed:  stats.GamesPlayed,
		GamesWon:     stats.GamesWon,
		TotalScore:   stats.TotalScore,
		WinRate:      stats.WinRate(),
		BestAttempts: stats.BestAttempts,
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	user, err := s.verify(ctx, accessToken, tokenTypeAccess)
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: user.ID, Email: user.Email}, nil
}

// verify parses a token of the wanted type and checks it against the
// user's current security stamp.
func (s *authService) verify(ctx context.Context, token, wantType string) (*models.User, error) {
	log := logger.FromContext(ctx)

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		log.Debug("token rejected: %v", err)
		return nil, errors.NewUnauthorizedError("Invalid or expired token")
	}
	if claims.Type != wantType {
		return nil, errors.NewUnauthorizedError("Invalid token type")
	}

	user, err := s.store.Users().GetByID(ctx, claims.Subject)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewUnauthorizedError("Invalid or expired token")
		}
		log.Error("failed to load token subject: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !user.IsActive {
		return nil, errors.NewUnauthorizedError("Account is deactivated")
	}
	if user.SecurityStamp != claims.Stamp {
		return nil, errors.NewUnauthorizedError("Token has been revoked")
	}
	return user, nil
}

func (s *authService) sign(user models.User, tokenType string, issuedAt time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := issuedAt.Add(ttl)
	claims := tokenClaims{
		Email: user.Email,
		Stamp: user.SecurityStamp,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, expiresAt, nil
}

func (s *authService) issue(user models.User) (*models.AuthResult, error) {
	now := s.now()
	access, expiresAt, err := s.sign(user, tokenTypeAccess, now, s.cfg.AccessTTL)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	refresh, _, err := s.sign(user, tokenTypeRefresh, now, s.cfg.RefreshTTL)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return &models.AuthResult{
		AuthTokens: models.AuthTokens{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresAt:    expiresAt,
			TokenType:    "Bearer",
		},
		User: user,
	}, nil
}
