package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"shop-backend/internal/auth"
	"shop-backend/internal/models"
	"shop-backend/internal/store"
	"shop-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService handles registration, login and password changes
type UserService struct {
	store       UserStore
	publisher   EventPublisher
	invalidator TokenInvalidator
	jwt         *auth.JWTService
	bcryptCost  int
	refreshTTL  time.Duration
	logger      *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userStore UserStore,
	publisher EventPublisher,
	invalidator TokenInvalidator,
	jwtService *auth.JWTService,
	bcryptCost int,
	refreshTTL time.Duration,
) *UserService {
	return &UserService{
		store:       userStore,
		publisher:   publisher,
		invalidator: invalidator,
		jwt:         jwtService,
		bcryptCost:  bcryptCost,
		refreshTTL:  refreshTTL,
		logger:      util.GetLogger(),
	}
}

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the wire shape for a created user
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Register creates a user with a bcrypt-hashed password
func (s *UserService) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Register")
	defer span.End()

	email := strings.TrimSpace(strings.ToLower(req.Email))

	ve := NewValidationError()
	if email == "" {
		ve.Add("email", "This field is required.")
	} else if _, err := mail.ParseAddress(email); err != nil {
		ve.Add("email", "Enter a valid email address.")
	}
	if req.Password == "" {
		ve.Add("password", "This field is required.")
	}
	if ve.HasErrors() {
		return nil, ve
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			ve := NewValidationError()
			ve.Add("email", "user with this email already exists.")
			return nil, ve
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered", zap.Int64("user_id", user.ID))

	event := &models.UserRegisteredEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeUserRegistered,
			Timestamp: time.Now(),
		},
		UserID: user.ID,
		Email:  user.Email,
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Error("Failed to publish UserRegistered event", zap.Error(err))
	}

	return &UserResponse{ID: user.ID, Email: user.Email}, nil
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues a token pair. Unknown email and bad
// password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req *LoginRequest) (*auth.TokenPair, error) {
	ctx, span := util.StartSpan(ctx, "UserService.Login")
	defer span.End()

	email := strings.TrimSpace(strings.ToLower(req.Email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		util.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		util.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwt.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	util.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return pair, nil
}

// Refresh issues a new access token from a valid refresh token
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	_, span := util.StartSpan(ctx, "UserService.Refresh")
	defer span.End()

	claims, err := s.jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	return s.jwt.GenerateAccessToken(claims.UserID, claims.Email)
}

// ChangePasswordRequest is the password change payload
type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// ChangePassword rehashes and persists the password for an authenticated
// user, then revokes tokens issued before the change.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *ChangePasswordRequest) error {
	ctx, span := util.StartSpan(ctx, "UserService.ChangePassword")
	defer span.End()

	if req.Password == "" {
		ve := NewValidationError()
		ve.Add("password", "Password is required")
		return ve
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.UpdateUserPassword(ctx, userID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	util.PasswordChangesTotal.Inc()
	s.logger.Info("Password changed", zap.Int64("user_id", userID))

	// Tokens from before the change stay dead until every one of them has
	// expired on its own, hence the refresh TTL.
	if err := s.invalidator.InvalidateTokensBefore(ctx, userID, time.Now(), s.refreshTTL); err != nil {
		s.logger.Error("Failed to invalidate old tokens",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}

	return nil
}
