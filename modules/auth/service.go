package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	domain "github.com/example/task-tracker/domain/user"
	"github.com/google/uuid"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72
	// dummyPassword is hashed once so unknown emails cost one bcrypt compare too.
	dummyPassword = "task-tracker-dummy-password"
)

var (
	// ErrInvalidCredentials is returned when the email or password does not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidEmail is returned when the email is not a bare address.
	ErrInvalidEmail = errors.New("invalid email format")
	// ErrWeakPassword is returned when the password is too short.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when the password exceeds bcrypt's limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

// AuthService owns accounts and credentials.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	tokens *JWTManager
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, tokens *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// normalizeEmail lowercases the address so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. The email must be unique.
func (s *AuthService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}

	if len(password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if len(password) > maxPasswordLen {
		return nil, ErrPasswordTooLong
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	u := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

// Authenticate checks credentials and returns the account. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.verifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// verifyDummy spends the same bcrypt work as a real compare.
func (s *AuthService) verifyDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			log.Printf("[auth] Warning: failed to hash dummy password: %v", err)
			return
		}
		s.dummyHash = hash
	})
	s.hasher.Verify(password, s.dummyHash)
}

// Login authenticates and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(domain.Identity{UserID: u.ID, Email: u.Email})
}

// RefreshTokens exchanges a refresh token for a new pair, provided the
// account still exists.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	id, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return s.tokens.Issue(domain.Identity{UserID: u.ID, Email: u.Email})
}

// ValidateToken parses an access token.
func (s *AuthService) ValidateToken(_ context.Context, token string) (domain.Identity, error) {
	return s.tokens.ParseAccess(token)
}

// GetUser loads an account by id.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.FindByID(ctx, userID)
}
