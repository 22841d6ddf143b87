package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	domain "github.com/example/task-tracker/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// Each new connection to :memory: is a fresh database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newTestService(t *testing.T) *AuthService {
	t.Helper()
	return NewAuthService(
		NewUserRepository(setupTestDB(t)),
		NewPasswordHasher(bcrypt.MinCost),
		NewJWTManager(testAuthConfig()),
	)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid", email: "user@example.com", password: "password123"},
		{name: "plus address", email: "user+tag@example.com", password: "password123"},
		{name: "missing @", email: "userexample.com", password: "password123", wantErr: ErrInvalidEmail},
		{name: "missing domain", email: "user@", password: "password123", wantErr: ErrInvalidEmail},
		{name: "display name form", email: "Bob <bob@example.com>", password: "password123", wantErr: ErrInvalidEmail},
		{name: "empty email", email: "", password: "password123", wantErr: ErrInvalidEmail},
		{name: "7 characters", email: "short@example.com", password: "1234567", wantErr: ErrWeakPassword},
		{name: "8 characters", email: "eight@example.com", password: "12345678"},
		{name: "72 characters", email: "max@example.com", password: strings.Repeat("a", 72)},
		{name: "73 characters", email: "long@example.com", password: strings.Repeat("a", 73), wantErr: ErrPasswordTooLong},
	}

	svc := newTestService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Register(context.Background(), tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if u.ID == "" {
				t.Error("Register() returned user without ID")
			}
			if u.PasswordHash == tt.password {
				t.Error("Register() stored the plaintext password")
			}
		})
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dup@example.com", "password123"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(ctx, "  DUP@example.com ", "password456")
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("second Register() error = %v, want ErrUserExists", err)
	}
}

func TestUserRepository_CreateDuplicateMapsToErrUserExists(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.User{ID: "1", Email: "a@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(ctx, &domain.User{ID: "2", Email: "a@example.com", PasswordHash: "y"})
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("Create() error = %v, want ErrUserExists", err)
	}
}

func TestAuthService_Authenticate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "login@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "correct", email: "login@example.com", password: "correct-horse"},
		{name: "email case-insensitive", email: "Login@Example.com", password: "correct-horse"},
		{name: "wrong password", email: "login@example.com", password: "battery-staple", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "correct-horse", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && u.ID != registered.ID {
				t.Errorf("Authenticate() user = %s, want %s", u.ID, registered.ID)
			}
		})
	}
}

func TestAuthService_AuthenticateUnknownEmailRunsBcrypt(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Authenticate(context.Background(), "nobody@example.com", "correct-horse")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Authenticate() error = %v, want %v", err, ErrInvalidCredentials)
	}
	if svc.dummyHash == "" {
		t.Fatal("unknown email did not compare against a hash")
	}
	cost, err := bcrypt.Cost([]byte(svc.dummyHash))
	if err != nil {
		t.Fatalf("dummy hash is not a bcrypt hash: %v", err)
	}
	if cost != svc.hasher.Cost() {
		t.Errorf("dummy hash cost = %d, want %d", cost, svc.hasher.Cost())
	}
}

func TestAuthService_LoginRefreshValidate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "tokens@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	pair, err := svc.Login(ctx, "tokens@example.com", "password123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	id, err := svc.ValidateToken(ctx, pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if id.UserID != u.ID || id.Email != u.Email {
		t.Errorf("ValidateToken() = %+v, want user %s", id, u.ID)
	}

	refreshed, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshTokens() error = %v", err)
	}
	if _, err := svc.ValidateToken(ctx, refreshed.AccessToken); err != nil {
		t.Errorf("ValidateToken(refreshed) error = %v", err)
	}

	if _, err := svc.RefreshTokens(ctx, pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("RefreshTokens(access token) error = %v, want ErrInvalidToken", err)
	}
}

func TestAuthService_RefreshForDeletedUser(t *testing.T) {
	svc := newTestService(t)
	pair, err := svc.tokens.Issue(domain.Identity{UserID: "ghost", Email: "ghost@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := svc.RefreshTokens(context.Background(), pair.RefreshToken); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("RefreshTokens() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_GetUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "get@example.com", "password123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := svc.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if got.Email != "get@example.com" {
		t.Errorf("GetUser() email = %q", got.Email)
	}

	if _, err := svc.GetUser(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetUser(missing) error = %v, want ErrUserNotFound", err)
	}
}
