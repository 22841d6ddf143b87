package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is malformed, forged or of the wrong kind.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// tokenClaims is the JWT payload for both token kinds.
type tokenClaims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email"`
	Kind   tokenKind `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager issues and parses the HS256 bearer tokens used by the JSON API.
type JWTManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTManager creates a JWTManager from the auth settings.
func NewJWTManager(cfg config.AuthConfig) *JWTManager {
	return &JWTManager{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.JWTIssuer,
		accessTTL:  cfg.AccessTokenDuration,
		refreshTTL: cfg.RefreshTokenDuration,
		now:        time.Now,
	}
}

// Issue signs a new access/refresh pair for id.
func (m *JWTManager) Issue(id domain.Identity) (*domain.TokenPair, error) {
	access, err := m.sign(id, kindAccess, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := m.sign(id, kindRefresh, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(m.accessTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ParseAccess validates an access token and returns its identity.
func (m *JWTManager) ParseAccess(token string) (domain.Identity, error) {
	return m.parse(token, kindAccess)
}

// ParseRefresh validates a refresh token and returns its identity.
func (m *JWTManager) ParseRefresh(token string) (domain.Identity, error) {
	return m.parse(token, kindRefresh)
}

func (m *JWTManager) sign(id domain.Identity, kind tokenKind, ttl time.Duration) (string, error) {
	now := m.now()
	claims := tokenClaims{
		UserID: id.UserID,
		Email:  id.Email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *JWTManager) parse(raw string, kind tokenKind) (domain.Identity, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrExpiredToken
		}
		return domain.Identity{}, ErrInvalidToken
	}
	if !token.Valid || claims.Kind != kind || claims.UserID == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
