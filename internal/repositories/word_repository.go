package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/turi/backend/internal/models"
)

// wordRepository reads the words_quiz content table
type wordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new word repository
func NewWordRepository(db *sql.DB) *wordRepository {
	return &wordRepository{
		db: db,
	}
}

// CountUpToDialogue counts quiz words introduced by dialogues up to and including dialogueID
func (r *wordRepository) CountUpToDialogue(ctx context.Context, dialogueID int) (int, error) {
	query := `SELECT COUNT(*) FROM words_quiz WHERE dialogue_id <= $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, dialogueID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}

	return count, nil
}

// ListByDialogue returns quiz words of one dialogue
func (r *wordRepository) ListByDialogue(ctx context.Context, dialogueID int) ([]models.Word, error) {
	query := `
		SELECT id, dialogue_id, word, translation, language
		FROM words_quiz
		WHERE dialogue_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, dialogueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query words: %w", err)
	}
	defer rows.Close()

	words := []models.Word{}
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.DialogueID, &w.Word, &w.Translation, &w.Language); err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return words, nil
}
