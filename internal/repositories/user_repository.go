package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
	"go.uber.org/zap"
)

type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, COALESCE(email, ''), COALESCE(password_hash, ''), mother_language, target_language, total_minutes, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.MotherLanguage,
		&user.TargetLanguage,
		&user.TotalMinutes,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a registered user. A duplicate email returns models.ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, mother_language, target_language)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.MotherLanguage,
		user.TargetLanguage,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if translated := translateError(err); errors.Is(translated, models.ErrConflict) {
			return translated
		}
		r.logger.Error("failed to create user", zap.String("user_id", user.ID.String()), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// EnsureExists creates a placeholder user with the given target language if the id is unknown.
// An existing row is left as it is.
func (r *userRepository) EnsureExists(ctx context.Context, userID uuid.UUID, targetLanguage string) error {
	query := `
		INSERT INTO users (id, mother_language, target_language)
		VALUES ($1, $2, $2)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, userID.String(), targetLanguage); err != nil {
		r.logger.Error("failed to ensure user exists", zap.String("user_id", userID.String()), zap.Error(err))
		return fmt.Errorf("failed to ensure user exists: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID. A missing user returns models.ErrNotFound.
func (r *userRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, userID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a registered user by normalized email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// UpdateLanguages changes mother and target languages of a user
func (r *userRepository) UpdateLanguages(ctx context.Context, userID uuid.UUID, motherLanguage, targetLanguage string) error {
	query := `
		UPDATE users
		SET mother_language = $1, target_language = $2, updated_at = now()
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, motherLanguage, targetLanguage, userID.String())
	if err != nil {
		return fmt.Errorf("failed to update user languages: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// AddMinutes atomically increments practice minutes and returns the new total
func (r *userRepository) AddMinutes(ctx context.Context, userID uuid.UUID, minutes int) (int, error) {
	query := `
		UPDATE users
		SET total_minutes = total_minutes + $1, updated_at = now()
		WHERE id = $2
		RETURNING total_minutes
	`

	var total int
	err := r.db.QueryRowContext(ctx, query, minutes, userID.String()).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add minutes: %w", err)
	}

	return total, nil
}
