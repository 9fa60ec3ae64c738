package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/turi/backend/internal/models"
	"github.com/turi/backend/internal/services"
	"github.com/turi/backend/internal/tasks"
	"go.uber.org/zap"
)

// ProgressReconciler defines the progress operations run in the background
type ProgressReconciler interface {
	// Method CheckAndUpdateUserProgress recomputes the summary of a user from the completion log.
	//
	// If some error occurs during the recheck, the error will be returned together with "nil" value.
	CheckAndUpdateUserProgress(ctx context.Context, userID uuid.UUID) (*models.LanguageLevel, error)
	// Method SweepDriftedProgress repairs up to "limit" users whose summary lags behind their completions.
	SweepDriftedProgress(ctx context.Context, limit int) (*models.SweepResult, error)
}

// TokenCleaner deletes expired refresh tokens
type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// Worker handles task processing
type Worker struct {
	logger       *zap.Logger
	progress     ProgressReconciler
	tokenCleaner TokenCleaner
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, progress ProgressReconciler, tokenCleaner TokenCleaner) *Worker {
	return &Worker{
		logger:       logger,
		progress:     progress,
		tokenCleaner: tokenCleaner,
	}
}

// Register binds task handlers to the mux
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(tasks.TypeProgressRecheck, w.HandleProgressRecheck)
	mux.HandleFunc(tasks.TypeProgressSweep, w.HandleProgressSweep)
	mux.HandleFunc(tasks.TypeTokenCleanup, w.HandleTokenCleanup)
}

// HandleProgressRecheck reconciles progress of one user
func (w *Worker) HandleProgressRecheck(ctx context.Context, t *asynq.Task) error {
	userID, err := tasks.ParseRecheckPayload(t)
	if err != nil {
		// A malformed payload never becomes valid, retrying is pointless
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	progress, err := w.progress.CheckAndUpdateUserProgress(ctx, userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			w.logger.Info("Skipping recheck of deleted user", zap.String("user_id", userID.String()))
			return nil
		}
		return fmt.Errorf("failed to recheck progress of user %s: %w", userID, err)
	}

	if progress == nil {
		w.logger.Debug("User has no completions to reconcile", zap.String("user_id", userID.String()))
		return nil
	}

	w.logger.Info("Progress recheck completed",
		zap.String("user_id", userID.String()),
		zap.Int("level", progress.Level),
		zap.Int("word_progress", progress.WordProgress),
		zap.Int("dialogue_number", progress.DialogueNumber),
	)
	return nil
}

// HandleProgressSweep repairs a batch of users with drifted progress
func (w *Worker) HandleProgressSweep(ctx context.Context, t *asynq.Task) error {
	limit, err := tasks.ParseSweepPayload(t)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	result, err := w.progress.SweepDriftedProgress(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to sweep drifted progress: %w", err)
	}

	w.logger.Info("Progress sweep completed",
		zap.Int("checked", result.Checked),
		zap.Int("repaired", result.Repaired),
		zap.Int("failed", result.Failed),
	)
	return nil
}

// HandleTokenCleanup deletes expired refresh tokens
func (w *Worker) HandleTokenCleanup(ctx context.Context, _ *asynq.Task) error {
	if _, err := w.tokenCleaner.CleanupExpiredTokens(ctx); err != nil {
		return fmt.Errorf("failed to clean up tokens: %w", err)
	}
	return nil
}
