package user

import (
	"time"
)

// User is a registered account. Only the bcrypt hash of the password is stored.
type User struct {
	ID           string    `gorm:"primaryKey;type:text" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;type:text" json:"email"`
	PasswordHash string    `gorm:"not null;type:text" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the table name for the User entity.
func (User) TableName() string {
	return "users"
}

// Identity is the authenticated owner threaded through every task call.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// IsZero reports whether no one is authenticated.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// TokenPair is an access/refresh JWT pair issued by the JSON API login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
