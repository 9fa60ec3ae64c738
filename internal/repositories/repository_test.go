package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turi/backend/internal/models"
	"go.uber.org/zap"
)

// setupTestDB creates a mock database and a no-op logger
func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *zap.Logger) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, mock, zap.NewNop()
}

func TestTranslateError(t *testing.T) {
	other := errors.New("boom")

	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{name: "nil", err: nil, expected: nil},
		{name: "no rows", err: sql.ErrNoRows, expected: models.ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}, expected: models.ErrConflict},
		{name: "foreign key violation", err: &pgconn.PgError{Code: "23503"}, expected: models.ErrMissingReference},
		{name: "other pg error", err: &pgconn.PgError{Code: "42P01"}},
		{name: "other error", err: other, expected: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if tt.expected == nil && tt.err != nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestUserRepository_Create(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock, *models.User)
		expectedError error
		expectAnyErr  bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users \(id, email, password_hash, mother_language, target_language\)`).
					WithArgs(u.ID.String(), u.Email, u.PasswordHash, u.MotherLanguage, u.TargetLanguage).
					WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
			},
		},
		{
			name: "email taken",
			setupMock: func(mock sqlmock.Sqlmock, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pgconn.PgError{Code: "23505"})
			},
			expectedError: models.ErrConflict,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock, u *models.User) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(errors.New("connection refused"))
			},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupTestDB(t)
			repo := NewUserRepository(db, logger)
			user := &models.User{
				ID:             uuid.New(),
				Email:          "learner@example.com",
				PasswordHash:   "hash",
				MotherLanguage: "en",
				TargetLanguage: "es",
			}
			tt.setupMock(mock, user)

			err := repo.Create(t.Context(), user)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
			case tt.expectAnyErr:
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, now, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_EnsureExists(t *testing.T) {
	db, mock, logger := setupTestDB(t)
	repo := NewUserRepository(db, logger)
	userID := uuid.New()

	mock.ExpectExec(`INSERT INTO users \(id, mother_language, target_language\) .* ON CONFLICT \(id\) DO NOTHING`).
		WithArgs(userID.String(), "en").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.EnsureExists(t.Context(), userID, "en"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID(t *testing.T) {
	userID := uuid.New()
	now := time.Now()
	columns := []string{"id", "email", "password_hash", "mother_language", "target_language", "total_minutes", "created_at", "updated_at"}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		expectAnyErr  bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs(userID.String()).
					WillReturnRows(sqlmock.NewRows(columns).AddRow(userID.String(), "a@b.io", "hash", "en", "fr", 42, now, now))
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs(userID.String()).
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WillReturnError(errors.New("timeout"))
			},
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, logger := setupTestDB(t)
			repo := NewUserRepository(db, logger)
			tt.setupMock(mock)

			user, err := repo.GetByID(t.Context(), userID)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			case tt.expectAnyErr:
				assert.Error(t, err)
				assert.Nil(t, user)
			default:
				require.NoError(t, err)
				assert.Equal(t, userID, user.ID)
				assert.Equal(t, "fr", user.TargetLanguage)
				assert.Equal(t, 42, user.TotalMinutes)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdateLanguages(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock, logger := setupTestDB(t)
		repo := NewUserRepository(db, logger)
		mock.ExpectExec(`UPDATE users SET mother_language = \$1, target_language = \$2`).
			WithArgs("en", "de", userID.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateLanguages(t.Context(), userID, "en", "de"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user not found", func(t *testing.T) {
		db, mock, logger := setupTestDB(t)
		repo := NewUserRepository(db, logger)
		mock.ExpectExec(`UPDATE users`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateLanguages(t.Context(), userID, "en", "de"), models.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_AddMinutes(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		db, mock, logger := setupTestDB(t)
		repo := NewUserRepository(db, logger)
		mock.ExpectQuery(`SET total_minutes = total_minutes \+ \$1`).
			WithArgs(15, userID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"total_minutes"}).AddRow(75))

		total, err := repo.AddMinutes(t.Context(), userID, 15)
		require.NoError(t, err)
		assert.Equal(t, 75, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user not found", func(t *testing.T) {
		db, mock, logger := setupTestDB(t)
		repo := NewUserRepository(db, logger)
		mock.ExpectQuery(`SET total_minutes`).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.AddMinutes(t.Context(), userID, 15)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUserTokenRepository(t *testing.T) {
	userID := uuid.New()

	t.Run("create", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		repo := NewUserTokenRepository(db)
		mock.ExpectQuery(`INSERT INTO user_tokens \(user_id, token\)`).
			WithArgs(userID.String(), "refresh").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		token := &models.UserToken{UserID: userID, Token: "refresh"}
		require.NoError(t, repo.Create(t.Context(), token))
		assert.Equal(t, 7, token.ID)
	})

	t.Run("get by token not found", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		repo := NewUserTokenRepository(db)
		mock.ExpectQuery(`FROM user_tokens WHERE token = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		token, err := repo.GetByToken(t.Context(), "missing")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.Nil(t, token)
	})

	t.Run("get by token", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		repo := NewUserTokenRepository(db)
		mock.ExpectQuery(`FROM user_tokens WHERE token = \$1`).
			WithArgs("refresh").
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token"}).AddRow(3, userID.String(), "refresh"))

		token, err := repo.GetByToken(t.Context(), "refresh")
		require.NoError(t, err)
		assert.Equal(t, userID, token.UserID)
	})

	t.Run("update token mismatch", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		repo := NewUserTokenRepository(db)
		mock.ExpectExec(`UPDATE user_tokens SET token = \$1`).
			WithArgs("new", "old", userID.String()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateToken(t.Context(), "old", "new", userID), models.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		db, mock, _ := setupTestDB(t)
		repo := NewUserTokenRepository(db)
		mock.ExpectExec(`DELETE FROM user_tokens WHERE created_at <= \$1`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 4))

		deleted, err := repo.DeleteExpiredTokens(t.Context(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, 4, deleted)
	})
}
