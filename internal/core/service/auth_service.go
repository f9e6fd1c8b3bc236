package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/storefront/internal/core/domain"
	"github.com/99minutos/storefront/internal/core/ports"
)

const defaultTokenTTL = 30 * time.Minute

// accessClaims is the payload of an access token: the subject is the
// username.
type accessClaims struct {
	Admin bool `json:"adm,omitempty"`
	jwt.RegisteredClaims
}

// AuthService implements registration, token issuance and token resolution.
type AuthService struct {
	repo      ports.AccountRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	logger    zerolog.Logger
	metrics   ports.AccountMetrics
	now       func() time.Time
}

// NewAuthService panics on an empty secret; configuration loading rejects
// that case before this point.
func NewAuthService(repo ports.AccountRepository, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if jwtSecret == "" {
		panic("service: empty JWT secret")
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		logger:    logger,
		metrics:   nopMetrics{},
		now:       time.Now,
	}
}

// WithMetrics replaces the default no-op recorder.
func (s *AuthService) WithMetrics(m ports.AccountMetrics) *AuthService {
	s.metrics = m
	return s
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if len(in.Password) > MaxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, MaxPasswordBytes)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Account{
		Username:     username,
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		IsAdmin:      in.IsAdmin,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Registered()
	s.logger.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("account registered")
	return created, nil
}

// Authenticate never tells the caller whether the username exists.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		s.metrics.Login(false)
		return "", domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.metrics.Login(false)
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.metrics.Login(false)
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(account)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	s.metrics.Login(true)
	return token, nil
}

// Resolve fails closed: any parse, signature, algorithm or expiry problem is
// reported as domain.ErrInvalidToken.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Account, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}

	return s.repo.FindByUsername(ctx, claims.Subject)
}

func (s *AuthService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.List(ctx)
}

func (s *AuthService) generateToken(account *domain.Account) (string, error) {
	now := s.now()
	claims := accessClaims{
		Admin: account.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.jwtSecret)
}

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

// HashPassword returns the bcrypt hash stored for an account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
