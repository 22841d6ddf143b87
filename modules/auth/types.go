package auth

import (
	"time"
)

// CredentialsRequest carries an email/password pair for the register,
// authenticate and login services.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is returned by the login and refresh-token services.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest is the refresh-token service request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ValidateTokenRequest is the validate-token service request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse reports the identity behind an access token.
// Validation failures are carried in Error rather than as a service error.
type ValidateTokenResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Error  string `json:"error,omitempty"`
}

// GetUserRequest is the get-user service request.
type GetUserRequest struct {
	UserID string `json:"user_id"`
}
