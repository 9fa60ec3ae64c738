package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
	"go.uber.org/zap"
)

// completionRepository works with the user_progress completion log
type completionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCompletionRepository creates a new completion repository
func NewCompletionRepository(db *sql.DB, logger *zap.Logger) *completionRepository {
	return &completionRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert records a completed dialogue. A repeated completion keeps the best score
// and refreshes the completion time.
func (r *completionRepository) Upsert(ctx context.Context, c *models.DialogueCompletion) error {
	query := `
		INSERT INTO user_progress AS cur (user_id, character_id, dialogue_id, score)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, character_id, dialogue_id) DO UPDATE SET
			score = GREATEST(cur.score, EXCLUDED.score),
			completed_at = now()
		RETURNING id, score, completed_at
	`

	err := r.db.QueryRowContext(ctx, query,
		c.UserID.String(),
		c.CharacterID,
		c.DialogueID,
		c.Score,
	).Scan(&c.ID, &c.Score, &c.CompletedAt)
	if err != nil {
		r.logger.Error("failed to upsert dialogue completion",
			zap.String("user_id", c.UserID.String()),
			zap.Int("dialogue_id", c.DialogueID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upsert dialogue completion: %w", translateError(err))
	}

	return nil
}

// MaxDialogueID returns the highest completed dialogue id of a user, or 0 without completions
func (r *completionRepository) MaxDialogueID(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(dialogue_id), 0) FROM user_progress WHERE user_id = $1`

	var maxID int
	if err := r.db.QueryRowContext(ctx, query, userID.String()).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("failed to get max dialogue id: %w", err)
	}

	return maxID, nil
}

// ListByUser returns the completion log of a user ordered by dialogue
func (r *completionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.DialogueCompletion, error) {
	query := `
		SELECT id, user_id, character_id, dialogue_id, score, completed_at
		FROM user_progress
		WHERE user_id = $1
		ORDER BY dialogue_id, character_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	completions := []models.DialogueCompletion{}
	for rows.Next() {
		var c models.DialogueCompletion
		if err := rows.Scan(&c.ID, &c.UserID, &c.CharacterID, &c.DialogueID, &c.Score, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return completions, nil
}
