package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	domain "github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Service names registered by the auth module.
const (
	ServiceRegister      = "register"
	ServiceAuthenticate  = "authenticate"
	ServiceLogin         = "login"
	ServiceRefreshToken  = "refresh-token"
	ServiceValidateToken = "validate-token"
	ServiceGetUser       = "get-user"
)

// AuthPort is what other modules use to reach the auth module.
type AuthPort interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	ValidateToken(ctx context.Context, token string) (domain.Identity, error)
	GetUser(ctx context.Context, userID string) (*domain.User, error)
}

// AuthAdapter implements AuthPort over the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{container: container}
}

// Register creates an account.
func (a *AuthAdapter) Register(ctx context.Context, email, password string) (*domain.User, error) {
	var resp UserResponse
	if err := call(ctx, a.container, ServiceRegister, &CredentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return fromUserResponse(resp), nil
}

// Authenticate verifies credentials without issuing tokens.
func (a *AuthAdapter) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	var resp UserResponse
	if err := call(ctx, a.container, ServiceAuthenticate, &CredentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return fromUserResponse(resp), nil
}

// Login verifies credentials and issues a token pair.
func (a *AuthAdapter) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	var resp TokenResponse
	if err := call(ctx, a.container, ServiceLogin, &CredentialsRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return fromTokenResponse(resp), nil
}

// Refresh exchanges a refresh token for a new pair.
func (a *AuthAdapter) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	var resp TokenResponse
	if err := call(ctx, a.container, ServiceRefreshToken, &RefreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return nil, err
	}
	return fromTokenResponse(resp), nil
}

// ValidateToken resolves an access token to an identity.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (domain.Identity, error) {
	var resp ValidateTokenResponse
	if err := call(ctx, a.container, ServiceValidateToken, &ValidateTokenRequest{Token: token}, &resp); err != nil {
		return domain.Identity{}, err
	}
	if !resp.Valid {
		if resp.Error == ErrExpiredToken.Error() {
			return domain.Identity{}, ErrExpiredToken
		}
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{UserID: resp.UserID, Email: resp.Email}, nil
}

// GetUser loads an account by id.
func (a *AuthAdapter) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var resp UserResponse
	if err := call(ctx, a.container, ServiceGetUser, &GetUserRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return fromUserResponse(resp), nil
}

// call runs a request-reply service and maps known errors back to their sentinels.
func call[Resp any](ctx context.Context, container mono.ServiceContainer, service string, req any, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		if sentinel := translateError(err); sentinel != nil {
			return sentinel
		}
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// knownErrors are the auth errors that keep their identity across the service boundary.
var knownErrors = []error{
	ErrInvalidCredentials,
	ErrUserExists,
	ErrUserNotFound,
	ErrInvalidEmail,
	ErrWeakPassword,
	ErrPasswordTooLong,
	ErrExpiredToken,
	ErrInvalidToken,
}

// translateError maps a remote error back to its sentinel by message.
// It returns nil when the error is not a known auth error.
func translateError(err error) error {
	for _, known := range knownErrors {
		if errors.Is(err, known) || strings.Contains(err.Error(), known.Error()) {
			return known
		}
	}
	return nil
}

func fromUserResponse(r UserResponse) *domain.User {
	return &domain.User{ID: r.ID, Email: r.Email, CreatedAt: r.CreatedAt}
}

func fromTokenResponse(r TokenResponse) *domain.TokenPair {
	return &domain.TokenPair{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    r.ExpiresIn,
		TokenType:    r.TokenType,
	}
}
