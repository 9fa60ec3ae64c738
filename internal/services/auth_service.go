package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
	"github.com/turi/backend/libs/auth/service"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthUserRepository is the interface that wraps methods for users table data access needed by auth service
type AuthUserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// "user" parameter is used to create a new user. Its ID must already be set.
	//
	// If a user with such email exists, models.ErrConflict is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, models.ErrNotFound is returned.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrNotFound is returned.
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// UserTokenRepository is the interface that wraps methods for user_tokens table data access
type UserTokenRepository interface {
	// Method Create inserts a new refresh token.
	Create(ctx context.Context, userToken *models.UserToken) error
	// Method GetByToken retrieves a refresh token row.
	//
	// If there is no such token, models.ErrNotFound is returned.
	GetByToken(ctx context.Context, token string) (*models.UserToken, error)
	// Method UpdateToken replaces oldToken of the user with newToken.
	//
	// If oldToken is not stored for the user, models.ErrNotFound is returned.
	UpdateToken(ctx context.Context, oldToken, newToken string, userID uuid.UUID) error
	// Method DeleteByToken deletes a refresh token. Deleting a missing token is not an error.
	DeleteByToken(ctx context.Context, token string) error
	// Method DeleteExpiredTokens deletes tokens created at or before expiryTime and returns their count.
	DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error)
}

// AnonymousMerger replays progress recorded before signup into a user account
type AnonymousMerger interface {
	MergeAnonymousProgress(ctx context.Context, userID, anonymousID uuid.UUID, entries []models.AnonymousCompletion) (*models.MergeResult, error)
}

// RecheckEnqueuer schedules a background progress reconciliation
type RecheckEnqueuer interface {
	EnqueueRecheck(ctx context.Context, userID uuid.UUID) error
}

// authService implements AuthService
type authService struct {
	userRepo           AuthUserRepository
	userTokenRepo      UserTokenRepository
	merger             AnonymousMerger
	enqueuer           RecheckEnqueuer
	tokenGenerator     *service.TokenGenerator
	refreshTokenExpiry time.Duration
	logger             *zap.Logger
}

// NewAuthService creates a new auth service.
// enqueuer may be nil, in which case logins do not schedule a progress recheck.
func NewAuthService(
	userRepo AuthUserRepository,
	userTokenRepo UserTokenRepository,
	merger AnonymousMerger,
	enqueuer RecheckEnqueuer,
	tokenGenerator *service.TokenGenerator,
	refreshTokenExpiry time.Duration,
	logger *zap.Logger,
) *authService {
	return &authService{
		userRepo:           userRepo,
		userTokenRepo:      userTokenRepo,
		merger:             merger,
		enqueuer:           enqueuer,
		tokenGenerator:     tokenGenerator,
		refreshTokenExpiry: refreshTokenExpiry,
		logger:             logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// passwordRegex validates password: at least 8 chars, uppercase, lowercase, number, special: !_?^&+-=|
var passwordRegex = []*regexp.Regexp{
	regexp.MustCompile(`.{8,}`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[0-9]`),
	regexp.MustCompile(`[!_?^&+\-=|]`),
}

// Signup creates a new account, issues tokens and merges progress recorded before signup.
// A failed merge is logged and does not fail the signup.
func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !emailRegex.MatchString(email) {
		return "", "", invalidInput("invalid email format")
	}
	for _, regex := range passwordRegex {
		if !regex.MatchString(req.Password) {
			return "", "", invalidInput("password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one special character (!_?^&+-=|)")
		}
	}
	mother, ok := models.ParseLanguage(req.MotherLanguage)
	if !ok {
		return "", "", invalidInput("unsupported mother language %q", req.MotherLanguage)
	}
	target, ok := models.ParseLanguage(req.TargetLanguage)
	if !ok {
		return "", "", invalidInput("unsupported target language %q", req.TargetLanguage)
	}

	anonymousID := uuid.Nil
	if raw := strings.TrimSpace(req.AnonymousID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return "", "", invalidInput("invalid anonymous id")
		}
		anonymousID = parsed
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:             uuid.New(),
		Email:          email,
		PasswordHash:   string(passwordHash),
		MotherLanguage: string(mother),
		TargetLanguage: string(target),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return "", "", ErrEmailTaken
		}
		return "", "", fmt.Errorf("failed to create user: %w", err)
	}

	accessToken, refreshToken, err := s.generateAndSaveTokens(ctx, user.ID)
	if err != nil {
		return "", "", err
	}

	if anonymousID != uuid.Nil || len(req.AnonymousEntries) > 0 {
		result, err := s.merger.MergeAnonymousProgress(ctx, user.ID, anonymousID, req.AnonymousEntries)
		if err != nil {
			s.logger.Warn("failed to merge anonymous progress on signup",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		} else {
			s.logger.Info("anonymous progress merged on signup",
				zap.String("user_id", user.ID.String()),
				zap.Int("merged", result.Merged),
			)
		}
	}

	return accessToken, refreshToken, nil
}

// Login authenticates a user and schedules a progress recheck
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (string, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return "", "", invalidInput("email cannot be empty")
	}
	if req.Password == "" {
		return "", "", invalidInput("password cannot be empty")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	// Placeholder users have no password and cannot log in
	if user.PasswordHash == "" {
		return "", "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.generateAndSaveTokens(ctx, user.ID)
	if err != nil {
		return "", "", err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueRecheck(ctx, user.ID); err != nil {
			s.logger.Warn("failed to enqueue progress recheck",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}

	return accessToken, refreshToken, nil
}

// Refresh rotates a refresh token and issues a new access token
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", "", notAuthenticated("refresh token is required")
	}

	if err := s.tokenGenerator.ValidateRefreshToken(refreshToken); err != nil {
		// Expired tokens are useless, drop them if they are still stored
		if delErr := s.userTokenRepo.DeleteByToken(ctx, refreshToken); delErr != nil {
			s.logger.Warn("failed to delete invalid refresh token", zap.Error(delErr))
		}
		return "", "", notAuthenticated("invalid or expired refresh token")
	}

	userToken, err := s.userTokenRepo.GetByToken(ctx, refreshToken)
	if errors.Is(err, models.ErrNotFound) {
		return "", "", ErrTokenNotFound
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to get user token by refresh token: %w", err)
	}

	if _, err := s.userRepo.GetByID(ctx, userToken.UserID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", "", ErrUserNotFound
		}
		return "", "", fmt.Errorf("failed to get user: %w", err)
	}

	accessToken, newRefreshToken, err := s.tokenGenerator.GenerateTokens(userToken.UserID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.userTokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, userToken.UserID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Another request rotated the token first
			return "", "", ErrTokenNotFound
		}
		return "", "", fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return accessToken, newRefreshToken, nil
}

// Logout deletes a refresh token
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	if err := s.userTokenRepo.DeleteByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// CleanupExpiredTokens deletes refresh tokens older than the refresh token lifetime
func (s *authService) CleanupExpiredTokens(ctx context.Context) (int, error) {
	expiryTime := time.Now().Add(-s.refreshTokenExpiry)
	deleted, err := s.userTokenRepo.DeleteExpiredTokens(ctx, expiryTime)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	s.logger.Info("expired refresh tokens deleted", zap.Int("count", deleted))
	return deleted, nil
}

// generateAndSaveTokens issues a token pair and stores the refresh token
func (s *authService) generateAndSaveTokens(ctx context.Context, userID uuid.UUID) (string, string, error) {
	accessToken, refreshToken, err := s.tokenGenerator.GenerateTokens(userID)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	userToken := &models.UserToken{
		UserID: userID,
		Token:  refreshToken,
	}
	if err := s.userTokenRepo.Create(ctx, userToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
