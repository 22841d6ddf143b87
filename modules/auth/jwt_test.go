package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/user"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-secret-key",
		JWTIssuer:            "test-issuer",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	}
}

var testIdentity = domain.Identity{UserID: "user-123", Email: "test@example.com"}

func TestJWTManager_IssueAndParse(t *testing.T) {
	manager := NewJWTManager(testAuthConfig())

	pair, err := manager.Issue(testIdentity)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("Issue() returned an empty token")
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("TokenType = %q, want Bearer", pair.TokenType)
	}
	if pair.ExpiresIn != 15*60 {
		t.Errorf("ExpiresIn = %d, want %d", pair.ExpiresIn, 15*60)
	}

	id, err := manager.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccess() error = %v", err)
	}
	if id != testIdentity {
		t.Errorf("ParseAccess() = %+v, want %+v", id, testIdentity)
	}

	id, err = manager.ParseRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefresh() error = %v", err)
	}
	if id != testIdentity {
		t.Errorf("ParseRefresh() = %+v, want %+v", id, testIdentity)
	}
}

func TestJWTManager_TokenKindsAreNotInterchangeable(t *testing.T) {
	manager := NewJWTManager(testAuthConfig())
	pair, err := manager.Issue(testIdentity)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := manager.ParseRefresh(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseRefresh(access) error = %v, want ErrInvalidToken", err)
	}
	if _, err := manager.ParseAccess(pair.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ParseAccess(refresh) error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTManager_RejectsBadTokens(t *testing.T) {
	manager := NewJWTManager(testAuthConfig())

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "another-secret"
	forged, err := NewJWTManager(otherCfg).Issue(testIdentity)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	otherIssuer := testAuthConfig()
	otherIssuer.JWTIssuer = "someone-else"
	foreign, err := NewJWTManager(otherIssuer).Issue(testIdentity)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "random string", token: "not.a.valid.token"},
		{name: "malformed jwt", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid"},
		{name: "wrong secret", token: forged.AccessToken},
		{name: "wrong issuer", token: foreign.AccessToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := manager.ParseAccess(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ParseAccess() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestJWTManager_ExpiredToken(t *testing.T) {
	manager := NewJWTManager(testAuthConfig())
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	pair, err := manager.Issue(testIdentity)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	manager.now = func() time.Time { return issuedAt.Add(14 * time.Minute) }
	if _, err := manager.ParseAccess(pair.AccessToken); err != nil {
		t.Fatalf("ParseAccess() before expiry error = %v", err)
	}

	manager.now = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	if _, err := manager.ParseAccess(pair.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ParseAccess() after expiry error = %v, want ErrExpiredToken", err)
	}
	if _, err := manager.ParseRefresh(pair.RefreshToken); err != nil {
		t.Errorf("ParseRefresh() error = %v, refresh token should outlive access token", err)
	}
}
