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

type languageLevelRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLanguageLevelRepository creates a new language level repository
func NewLanguageLevelRepository(db *sql.DB, logger *zap.Logger) *languageLevelRepository {
	return &languageLevelRepository{
		db:     db,
		logger: logger,
	}
}

const languageLevelColumns = `id, user_id, target_language, level, word_progress, dialogue_number, created_at, updated_at`

func scanLanguageLevel(row interface{ Scan(...any) error }) (*models.LanguageLevel, error) {
	ll := &models.LanguageLevel{}
	err := row.Scan(
		&ll.ID,
		&ll.UserID,
		&ll.TargetLanguage,
		&ll.Level,
		&ll.WordProgress,
		&ll.DialogueNumber,
		&ll.CreatedAt,
		&ll.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ll, nil
}

// Get retrieves the summary row of a user for one language.
// A missing row returns models.ErrNotFound.
func (r *languageLevelRepository) Get(ctx context.Context, userID uuid.UUID, targetLanguage string) (*models.LanguageLevel, error) {
	query := `SELECT ` + languageLevelColumns + `
		FROM language_levels
		WHERE user_id = $1 AND target_language = $2`

	ll, err := scanLanguageLevel(r.db.QueryRowContext(ctx, query, userID.String(), targetLanguage))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get language level: %w", err)
	}

	return ll, nil
}

// Upsert merges the given summary into the stored row in one statement.
//
// The dialogue number only moves forward and the level is derived from the merged
// dialogue number. Word progress is taken from the side that owns the higher dialogue
// number. When nothing changes the row is not written and the stored row is returned.
func (r *languageLevelRepository) Upsert(ctx context.Context, ll *models.LanguageLevel) (*models.LanguageLevel, error) {
	query := `
		INSERT INTO language_levels AS cur (user_id, target_language, level, word_progress, dialogue_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, target_language) DO UPDATE SET
			dialogue_number = GREATEST(cur.dialogue_number, EXCLUDED.dialogue_number),
			level = (GREATEST(cur.dialogue_number, EXCLUDED.dialogue_number, 1) - 1) / 5 + 1,
			word_progress = CASE
				WHEN EXCLUDED.dialogue_number >= cur.dialogue_number THEN EXCLUDED.word_progress
				ELSE cur.word_progress
			END,
			updated_at = now()
		WHERE EXCLUDED.dialogue_number > cur.dialogue_number
			OR (EXCLUDED.dialogue_number = cur.dialogue_number AND EXCLUDED.word_progress <> cur.word_progress)
			OR cur.level <> (GREATEST(cur.dialogue_number, EXCLUDED.dialogue_number, 1) - 1) / 5 + 1
		RETURNING ` + languageLevelColumns

	stored, err := scanLanguageLevel(r.db.QueryRowContext(ctx, query,
		ll.UserID.String(),
		ll.TargetLanguage,
		ll.Level,
		ll.WordProgress,
		ll.DialogueNumber,
	))
	if errors.Is(err, sql.ErrNoRows) {
		// The row exists and already holds these values
		return r.Get(ctx, ll.UserID, ll.TargetLanguage)
	}
	if err != nil {
		r.logger.Error("failed to upsert language level",
			zap.String("user_id", ll.UserID.String()),
			zap.String("target_language", ll.TargetLanguage),
			zap.Int("dialogue_number", ll.DialogueNumber),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to upsert language level: %w", translateError(err))
	}

	return stored, nil
}

// UpdateDerived rewrites level and word progress of an existing row, provided its
// dialogue number still equals ll.DialogueNumber. It reports whether a row was written.
func (r *languageLevelRepository) UpdateDerived(ctx context.Context, ll *models.LanguageLevel) (bool, error) {
	query := `
		UPDATE language_levels
		SET level = $1, word_progress = $2, updated_at = now()
		WHERE user_id = $3 AND target_language = $4 AND dialogue_number = $5
			AND (level <> $1 OR word_progress <> $2)
	`

	result, err := r.db.ExecContext(ctx, query,
		ll.Level,
		ll.WordProgress,
		ll.UserID.String(),
		ll.TargetLanguage,
		ll.DialogueNumber,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update language level: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// ListDrifted returns users whose summary row for their current target language is
// missing or lags behind the completion log
func (r *languageLevelRepository) ListDrifted(ctx context.Context, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT u.id
		FROM users u
		JOIN (
			SELECT user_id, MAX(dialogue_id) AS max_dialogue
			FROM user_progress
			GROUP BY user_id
		) p ON p.user_id = u.id
		LEFT JOIN language_levels ll ON ll.user_id = u.id AND ll.target_language = u.target_language
		WHERE ll.id IS NULL OR ll.dialogue_number < p.max_dialogue
		ORDER BY u.id
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("failed to query drifted users", zap.Error(err))
		return nil, fmt.Errorf("failed to query drifted users: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return userIDs, nil
}
