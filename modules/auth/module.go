package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/example/task-tracker/config"
	domain "github.com/example/task-tracker/domain/user"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// AuthModule owns user accounts and exposes them as request-reply services.
type AuthModule struct {
	db      *gorm.DB
	service *AuthService
	dbCfg   config.DatabaseConfig
	authCfg config.AuthConfig
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(cfg *config.Config) *AuthModule {
	return &AuthModule{
		dbCfg:   cfg.Database,
		authCfg: cfg.Auth,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user store and builds the service.
func (m *AuthModule) Start(_ context.Context) error {
	logLevel := logger.Silent
	if m.dbCfg.Debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbCfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := db.AutoMigrate(&domain.User{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	hasher := NewPasswordHasher(m.authCfg.BcryptCost)
	m.service = NewAuthService(NewUserRepository(db), hasher, NewJWTManager(m.authCfg))

	log.Printf("[auth] Module started (database: %s, bcrypt cost: %d)", m.dbCfg.Path, hasher.Cost())
	return nil
}

// Stop closes the database connection.
func (m *AuthModule) Stop(_ context.Context) error {
	if m.db != nil {
		if sqlDB, err := m.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("[auth] Failed to close database: %v", err)
			}
		}
	}
	log.Println("[auth] Module stopped")
	return nil
}

// Health pings the user store.
func (m *AuthModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbCfg.Path,
		},
	}
}

// RegisterServices registers the auth request-reply services.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRegister, json.Unmarshal, json.Marshal, m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRegister, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceAuthenticate, json.Unmarshal, json.Marshal, m.handleAuthenticate,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceAuthenticate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceLogin, json.Unmarshal, json.Marshal, m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceLogin, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceRefreshToken, json.Unmarshal, json.Marshal, m.handleRefresh,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRefreshToken, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceValidateToken, json.Unmarshal, json.Marshal, m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceValidateToken, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetUser, json.Unmarshal, json.Marshal, m.handleGetUser,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetUser, err)
	}

	log.Printf("[auth] Registered services: register, authenticate, login, refresh-token, validate-token, get-user")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req CredentialsRequest, _ *mono.Msg) (UserResponse, error) {
	u, err := m.service.Register(ctx, req.Email, req.Password)
	if err != nil {
		return UserResponse{}, err
	}
	log.Printf("[auth] Registered user %s", u.ID)
	return toUserResponse(u), nil
}

func (m *AuthModule) handleAuthenticate(ctx context.Context, req CredentialsRequest, _ *mono.Msg) (UserResponse, error) {
	u, err := m.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(u), nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req CredentialsRequest, _ *mono.Msg) (TokenResponse, error) {
	tokens, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return TokenResponse{}, err
	}
	return toTokenResponse(tokens), nil
}

func (m *AuthModule) handleRefresh(ctx context.Context, req RefreshRequest, _ *mono.Msg) (TokenResponse, error) {
	tokens, err := m.service.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return TokenResponse{}, err
	}
	return toTokenResponse(tokens), nil
}

func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	id, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		msg := ErrInvalidToken.Error()
		if errors.Is(err, ErrExpiredToken) {
			msg = ErrExpiredToken.Error()
		}
		return ValidateTokenResponse{Valid: false, Error: msg}, nil
	}
	return ValidateTokenResponse{Valid: true, UserID: id.UserID, Email: id.Email}, nil
}

func (m *AuthModule) handleGetUser(ctx context.Context, req GetUserRequest, _ *mono.Msg) (UserResponse, error) {
	u, err := m.service.GetUser(ctx, req.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	return toUserResponse(u), nil
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func toTokenResponse(t *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresIn:    t.ExpiresIn,
		TokenType:    t.TokenType,
	}
}
