package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/turi/backend/internal/models"
	"go.uber.org/zap"
)

// wordExplanationRepository caches generated explanations in one table per language
type wordExplanationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWordExplanationRepository creates a new word explanation repository
func NewWordExplanationRepository(db *sql.DB, logger *zap.Logger) *wordExplanationRepository {
	return &wordExplanationRepository{
		db:     db,
		logger: logger,
	}
}

// tableFor returns the explanation table of a language.
// Only whitelisted languages produce a name, so the result is safe to interpolate.
func tableFor(language string) (string, error) {
	lang, ok := models.ParseLanguage(language)
	if !ok {
		return "", fmt.Errorf("unsupported language: %s", language)
	}
	return "word_explanations_" + string(lang), nil
}

// Get retrieves a cached explanation. A missing word returns models.ErrNotFound.
func (r *wordExplanationRepository) Get(ctx context.Context, language, word string) (*models.CachedExplanation, error) {
	table, err := tableFor(language)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT explanation, model, created_at FROM %s WHERE word = $1`, table)

	var (
		raw    []byte
		cached models.CachedExplanation
	)
	err = r.db.QueryRowContext(ctx, query, word).Scan(&raw, &cached.Model, &cached.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word explanation: %w", err)
	}

	if err := json.Unmarshal(raw, &cached.Explanation); err != nil {
		// A corrupt cache entry is treated as a miss and regenerated
		r.logger.Warn("failed to decode cached explanation",
			zap.String("table", table),
			zap.String("word", word),
			zap.Error(err),
		)
		return nil, models.ErrNotFound
	}

	return &cached, nil
}

// Save stores an explanation, replacing any row already stored for the word.
// Get reports an undecodable row as a miss, so the regenerated entry must overwrite it.
func (r *wordExplanationRepository) Save(ctx context.Context, language, word string, explanation models.WordExplanation, model string) error {
	table, err := tableFor(language)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(explanation)
	if err != nil {
		return fmt.Errorf("failed to encode explanation: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (word, explanation, model)
		VALUES ($1, $2, $3)
		ON CONFLICT (word) DO UPDATE
		SET explanation = EXCLUDED.explanation, model = EXCLUDED.model, created_at = now()
	`, table)

	if _, err := r.db.ExecContext(ctx, query, word, raw, model); err != nil {
		return fmt.Errorf("failed to save word explanation: %w", err)
	}

	return nil
}
