package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/turi/backend/internal/models"
	"go.uber.org/zap"
)

// LanguageLevelRepository is the interface that wraps methods for language_levels table data access
type LanguageLevelRepository interface {
	// Method Get retrieves the summary row of a user for one language.
	//
	// If there is no such row, models.ErrNotFound is returned.
	Get(ctx context.Context, userID uuid.UUID, targetLanguage string) (*models.LanguageLevel, error)
	// Method Upsert atomically inserts or merges a summary row and returns the stored row.
	//
	// The stored dialogue number never decreases.
	Upsert(ctx context.Context, ll *models.LanguageLevel) (*models.LanguageLevel, error)
	// Method UpdateDerived rewrites level and word progress of a row whose dialogue number
	// still equals ll.DialogueNumber. It reports whether the row was written.
	UpdateDerived(ctx context.Context, ll *models.LanguageLevel) (bool, error)
	// Method ListDrifted returns up to "limit" users whose summary row is missing or behind the completion log.
	ListDrifted(ctx context.Context, limit int) ([]uuid.UUID, error)
}

// CompletionRepository is the interface that wraps methods for the completion log
type CompletionRepository interface {
	// Method Upsert records a completed dialogue keeping the best score.
	Upsert(ctx context.Context, c *models.DialogueCompletion) error
	// Method MaxDialogueID returns the highest completed dialogue id, or 0 without completions.
	MaxDialogueID(ctx context.Context, userID uuid.UUID) (int, error)
	// Method ListByUser returns all completions of a user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.DialogueCompletion, error)
}

// ProgressUserRepository is the interface that wraps user lookups needed by progress tracking
type ProgressUserRepository interface {
	// Method GetByID retrieves a user. A missing user returns models.ErrNotFound.
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
	// Method EnsureExists creates a placeholder user if the id is unknown.
	EnsureExists(ctx context.Context, userID uuid.UUID, targetLanguage string) error
}

// WordCounter counts quiz words introduced up to a dialogue
type WordCounter interface {
	CountUpToDialogue(ctx context.Context, dialogueID int) (int, error)
}

// AnonymousStore keeps completions recorded before signup
type AnonymousStore interface {
	Record(ctx context.Context, anonymousID uuid.UUID, entry models.AnonymousCompletion) error
	List(ctx context.Context, anonymousID uuid.UUID) ([]models.AnonymousCompletion, error)
	// Method Remove deletes merged entries unless a better score was recorded since.
	Remove(ctx context.Context, anonymousID uuid.UUID, merged []models.AnonymousCompletion) error
}

type progressService struct {
	levelRepo       LanguageLevelRepository
	completionRepo  CompletionRepository
	userRepo        ProgressUserRepository
	words           WordCounter
	anonymousStore  AnonymousStore
	defaultLanguage string
	logger          *zap.Logger
}

// NewProgressService creates a new progress service.
// defaultLanguage is the target language given to users created implicitly by progress tracking.
func NewProgressService(
	levelRepo LanguageLevelRepository,
	completionRepo CompletionRepository,
	userRepo ProgressUserRepository,
	words WordCounter,
	anonymousStore AnonymousStore,
	defaultLanguage string,
	logger *zap.Logger,
) *progressService {
	return &progressService{
		levelRepo:       levelRepo,
		completionRepo:  completionRepo,
		userRepo:        userRepo,
		words:           words,
		anonymousStore:  anonymousStore,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

func validateCompletion(characterID, dialogueID, score int) error {
	if characterID <= 0 {
		return invalidInput("characterId must be positive")
	}
	if dialogueID <= 0 {
		return invalidInput("dialogueId must be positive")
	}
	if score < 0 || score > models.MaxScore {
		return invalidInput("score must be between 0 and %d", models.MaxScore)
	}
	return nil
}

// TrackCompletedDialogue records a completed dialogue and advances the summary row of the
// user's target language. Repeated and concurrent calls converge on the highest dialogue seen.
func (s *progressService) TrackCompletedDialogue(ctx context.Context, userID uuid.UUID, characterID, dialogueID, score int) (*models.LanguageLevel, error) {
	if userID == uuid.Nil {
		return nil, invalidInput("user id is required")
	}
	if err := validateCompletion(characterID, dialogueID, score); err != nil {
		return nil, err
	}

	targetLanguage, err := s.resolveTargetLanguage(ctx, userID)
	if err != nil {
		return nil, err
	}

	completion := &models.DialogueCompletion{
		UserID:      userID,
		CharacterID: characterID,
		DialogueID:  dialogueID,
		Score:       score,
	}
	if err := s.completionRepo.Upsert(ctx, completion); err != nil {
		if errors.Is(err, models.ErrMissingReference) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	level, wordProgress := s.derive(ctx, dialogueID)
	stored, err := s.levelRepo.Upsert(ctx, &models.LanguageLevel{
		UserID:         userID,
		TargetLanguage: targetLanguage,
		Level:          level,
		WordProgress:   wordProgress,
		DialogueNumber: dialogueID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	s.logger.Debug("dialogue completion tracked",
		zap.String("user_id", userID.String()),
		zap.String("target_language", targetLanguage),
		zap.Int("dialogue_id", dialogueID),
		zap.Int("level", stored.Level),
	)

	return stored, nil
}

// resolveTargetLanguage returns the user's target language, creating a placeholder user
// with the default language when the id is unknown
func (s *progressService) resolveTargetLanguage(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		if err := s.userRepo.EnsureExists(ctx, userID, s.defaultLanguage); err != nil {
			return "", fmt.Errorf("failed to create placeholder user: %w", err)
		}
		user, err = s.userRepo.GetByID(ctx, userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.TargetLanguage == "" {
		return s.defaultLanguage, nil
	}
	return user.TargetLanguage, nil
}

// derive computes level and word progress for a dialogue high-water mark.
// A failed word count falls back to an estimate.
func (s *progressService) derive(ctx context.Context, dialogueID int) (int, int) {
	level := LevelForDialogue(dialogueID)
	if dialogueID < 1 {
		return level, 0
	}

	count, err := s.words.CountUpToDialogue(ctx, dialogueID)
	if err != nil {
		s.logger.Warn("failed to count words, using estimate",
			zap.Int("dialogue_id", dialogueID),
			zap.Error(err),
		)
		return level, FallbackWordProgress(dialogueID)
	}

	return level, ClampWordProgress(count)
}

// CheckAndUpdateUserProgress reconciles the summary row of the user's current target language
// with the completion log. A user without completions returns nil.
func (s *progressService) CheckAndUpdateUserProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error) {
	if userID == uuid.Nil {
		return nil, invalidInput("user id is required")
	}

	maxDialogue, err := s.completionRepo.MaxDialogueID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read completion log: %w", err)
	}
	if maxDialogue == 0 {
		return nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	targetLanguage := user.TargetLanguage
	if targetLanguage == "" {
		targetLanguage = s.defaultLanguage
	}

	current, err := s.levelRepo.Get(ctx, userID, targetLanguage)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	highest := maxDialogue
	if current != nil {
		highest = max(highest, current.DialogueNumber)
	}
	level, wordProgress := s.derive(ctx, highest)

	if current != nil && current.DialogueNumber == highest && current.Level == level && current.WordProgress == wordProgress {
		return current, nil
	}

	fields := []zap.Field{
		zap.String("user_id", userID.String()),
		zap.String("target_language", targetLanguage),
		zap.Int("max_dialogue", maxDialogue),
		zap.Int("level", level),
		zap.Int("word_progress", wordProgress),
	}
	if current != nil {
		fields = append(fields,
			zap.Int("stored_dialogue", current.DialogueNumber),
			zap.Int("stored_level", current.Level),
			zap.Int("stored_word_progress", current.WordProgress),
		)
	}
	s.logger.Info("repairing drifted progress", fields...)

	stored, err := s.levelRepo.Upsert(ctx, &models.LanguageLevel{
		UserID:         userID,
		TargetLanguage: targetLanguage,
		Level:          level,
		WordProgress:   wordProgress,
		DialogueNumber: highest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to repair progress: %w", err)
	}

	return stored, nil
}

// SyncWordProgress recomputes word progress and level of an existing summary row from its
// dialogue number. It never creates a row: a missing row returns nil.
// An empty targetLanguage means the user's current target language.
func (s *progressService) SyncWordProgress(ctx context.Context, userID uuid.UUID, targetLanguage string) (*models.LanguageLevel, error) {
	if userID == uuid.Nil {
		return nil, invalidInput("user id is required")
	}

	if targetLanguage == "" {
		user, err := s.userRepo.GetByID(ctx, userID)
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get user: %w", err)
		}
		targetLanguage = user.TargetLanguage
	} else {
		lang, ok := models.ParseLanguage(targetLanguage)
		if !ok {
			return nil, invalidInput("unsupported target language %q", targetLanguage)
		}
		targetLanguage = string(lang)
	}

	current, err := s.levelRepo.Get(ctx, userID, targetLanguage)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	level, wordProgress := s.derive(ctx, current.DialogueNumber)
	if current.Level == level && current.WordProgress == wordProgress {
		return current, nil
	}

	next := *current
	next.Level = level
	next.WordProgress = wordProgress
	updated, err := s.levelRepo.UpdateDerived(ctx, &next)
	if err != nil {
		return nil, fmt.Errorf("failed to sync word progress: %w", err)
	}
	if updated {
		return &next, nil
	}

	// The row advanced concurrently and that write already derived fresh values
	latest, err := s.levelRepo.Get(ctx, userID, targetLanguage)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return latest, nil
}

// MergeAnonymousProgress replays completions recorded before signup into the user's log.
//
// Entries are collected from the anonymous store (when anonymousID is set) and from the
// request, deduplicated per dialogue keeping the best score, and replayed in ascending
// dialogue order. Merged store entries are removed only after every entry was replayed,
// so a failed merge can be retried without losing data and without double counting.
// Completions recorded while the merge runs stay in the store for the next merge.
func (s *progressService) MergeAnonymousProgress(ctx context.Context, userID, anonymousID uuid.UUID, entries []models.AnonymousCompletion) (*models.MergeResult, error) {
	if userID == uuid.Nil {
		return nil, invalidInput("user id is required")
	}
	for _, e := range entries {
		if err := validateCompletion(e.CharacterID, e.DialogueID, e.Score); err != nil {
			return nil, err
		}
	}

	all := make([]models.AnonymousCompletion, 0, len(entries))
	var stored []models.AnonymousCompletion
	if anonymousID != uuid.Nil {
		var err error
		stored, err = s.anonymousStore.List(ctx, anonymousID)
		if err != nil {
			return nil, fmt.Errorf("failed to read anonymous progress: %w", err)
		}
		for _, e := range stored {
			if err := validateCompletion(e.CharacterID, e.DialogueID, e.Score); err != nil {
				s.logger.Warn("skipping invalid anonymous entry",
					zap.String("anonymous_id", anonymousID.String()),
					zap.Int("dialogue_id", e.DialogueID),
					zap.Error(err),
				)
				continue
			}
			all = append(all, e)
		}
	}
	all = append(all, entries...)

	merged := dedupeCompletions(all)
	result := &models.MergeResult{}
	for _, e := range merged {
		progress, err := s.TrackCompletedDialogue(ctx, userID, e.CharacterID, e.DialogueID, e.Score)
		if err != nil {
			s.logger.Error("anonymous merge interrupted",
				zap.String("user_id", userID.String()),
				zap.Int("merged", result.Merged),
				zap.Int("dialogue_id", e.DialogueID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("failed to merge anonymous progress: %w", err)
		}
		result.Merged++
		result.Progress = progress
	}

	if anonymousID != uuid.Nil {
		if err := s.anonymousStore.Remove(ctx, anonymousID, stored); err != nil {
			// Replaying again is harmless, so a stale store is only logged
			s.logger.Warn("failed to clear anonymous progress",
				zap.String("anonymous_id", anonymousID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("anonymous progress merged",
		zap.String("user_id", userID.String()),
		zap.Int("merged", result.Merged),
	)

	return result, nil
}

// dedupeCompletions keeps one entry per (character, dialogue) with the best score,
// ordered by dialogue then character
func dedupeCompletions(entries []models.AnonymousCompletion) []models.AnonymousCompletion {
	type key struct{ character, dialogue int }
	best := make(map[key]models.AnonymousCompletion, len(entries))
	for _, e := range entries {
		k := key{e.CharacterID, e.DialogueID}
		if cur, ok := best[k]; !ok || e.Score > cur.Score {
			best[k] = e
		}
	}

	out := make([]models.AnonymousCompletion, 0, len(best))
	for _, e := range best {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DialogueID != out[j].DialogueID {
			return out[i].DialogueID < out[j].DialogueID
		}
		return out[i].CharacterID < out[j].CharacterID
	})
	return out
}

// RecordAnonymousCompletion stores a completion of a user without an account
func (s *progressService) RecordAnonymousCompletion(ctx context.Context, anonymousID uuid.UUID, characterID, dialogueID, score int) error {
	if anonymousID == uuid.Nil {
		return invalidInput("anonymous id is required")
	}
	if err := validateCompletion(characterID, dialogueID, score); err != nil {
		return err
	}

	entry := models.AnonymousCompletion{
		CharacterID: characterID,
		DialogueID:  dialogueID,
		Score:       score,
	}
	if err := s.anonymousStore.Record(ctx, anonymousID, entry); err != nil {
		return fmt.Errorf("failed to record anonymous completion: %w", err)
	}

	return nil
}

// ListAnonymousProgress returns completions stored for an anonymous id
func (s *progressService) ListAnonymousProgress(ctx context.Context, anonymousID uuid.UUID) ([]models.AnonymousCompletion, error) {
	if anonymousID == uuid.Nil {
		return nil, invalidInput("anonymous id is required")
	}

	entries, err := s.anonymousStore.List(ctx, anonymousID)
	if err != nil {
		return nil, fmt.Errorf("failed to list anonymous progress: %w", err)
	}
	return entries, nil
}

// GetProgress returns the summary row of the user's current target language.
// Without a row a level 1 summary with no progress is returned.
func (s *progressService) GetProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	progress, err := s.levelRepo.Get(ctx, userID, user.TargetLanguage)
	if errors.Is(err, models.ErrNotFound) {
		return &models.LanguageLevel{
			UserID:         userID,
			TargetLanguage: user.TargetLanguage,
			Level:          1,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return progress, nil
}

// ListCompletions returns the completion log of a user
func (s *progressService) ListCompletions(ctx context.Context, userID uuid.UUID) ([]models.DialogueCompletion, error) {
	completions, err := s.completionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	return completions, nil
}

// SweepDriftedProgress reconciles up to limit users whose summary lags the completion log.
// Failures of single users are counted and do not stop the sweep.
func (s *progressService) SweepDriftedProgress(ctx context.Context, limit int) (*models.SweepResult, error) {
	if limit <= 0 {
		return nil, invalidInput("limit must be positive")
	}

	userIDs, err := s.levelRepo.ListDrifted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list drifted users: %w", err)
	}

	result := &models.SweepResult{}
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++
		progress, err := s.CheckAndUpdateUserProgress(ctx, userID)
		if err != nil {
			result.Failed++
			s.logger.Warn("failed to repair user progress", zap.String("user_id", userID.String()), zap.Error(err))
			continue
		}
		if progress != nil {
			result.Repaired++
		}
	}

	s.logger.Info("progress sweep finished",
		zap.Int("checked", result.Checked),
		zap.Int("repaired", result.Repaired),
		zap.Int("failed", result.Failed),
	)

	return result, nil
}
