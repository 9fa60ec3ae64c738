// Package tasks defines background task types shared by the API, worker and scheduler.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task types
const (
	TypeProgressRecheck = "progress:recheck"
	TypeProgressSweep   = "progress:sweep"
	TypeTokenCleanup    = "tokens:cleanup"
)

// Queues
const (
	QueueRecheck = "recheck"
	QueueDefault = "default"
)

// recheckUniqueWindow suppresses repeated rechecks of one user, e.g. on rapid re-logins
const recheckUniqueWindow = time.Minute

// NewRecheckTask creates a task that reconciles progress of one user
func NewRecheckTask(userID uuid.UUID) *asynq.Task {
	return asynq.NewTask(TypeProgressRecheck, []byte(userID.String()))
}

// ParseRecheckPayload extracts the user id from a recheck task
func ParseRecheckPayload(t *asynq.Task) (uuid.UUID, error) {
	userID, err := uuid.Parse(strings.TrimSpace(string(t.Payload())))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse user ID: %w", err)
	}
	if userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user ID must not be nil")
	}
	return userID, nil
}

// NewSweepTask creates a task that repairs up to limit drifted users
func NewSweepTask(limit int) *asynq.Task {
	return asynq.NewTask(TypeProgressSweep, []byte(strconv.Itoa(limit)))
}

// ParseSweepPayload extracts the batch limit from a sweep task
func ParseSweepPayload(t *asynq.Task) (int, error) {
	limit, err := strconv.Atoi(strings.TrimSpace(string(t.Payload())))
	if err != nil {
		return 0, fmt.Errorf("failed to parse sweep limit: %w", err)
	}
	if limit <= 0 {
		return 0, fmt.Errorf("sweep limit must be positive, got %d", limit)
	}
	return limit, nil
}

// NewTokenCleanupTask creates a task that deletes expired refresh tokens
func NewTokenCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeTokenCleanup, nil)
}

// Enqueuer puts tasks on the asynq queues
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer creates a new enqueuer
func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

// EnqueueRecheck schedules a progress recheck of a user.
// A recheck of the same user already waiting in the queue is not duplicated.
func (e *Enqueuer) EnqueueRecheck(ctx context.Context, userID uuid.UUID) error {
	_, err := e.client.EnqueueContext(ctx, NewRecheckTask(userID),
		asynq.Queue(QueueRecheck),
		asynq.Unique(recheckUniqueWindow),
		asynq.MaxRetry(5),
	)
	if err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
		return fmt.Errorf("failed to enqueue progress recheck: %w", err)
	}
	return nil
}

// EnqueueSweep schedules a drift sweep over at most limit users
func (e *Enqueuer) EnqueueSweep(ctx context.Context, limit int) error {
	if _, err := e.client.EnqueueContext(ctx, NewSweepTask(limit), asynq.Queue(QueueDefault), asynq.MaxRetry(1)); err != nil {
		return fmt.Errorf("failed to enqueue progress sweep: %w", err)
	}
	return nil
}

// EnqueueTokenCleanup schedules deletion of expired refresh tokens
func (e *Enqueuer) EnqueueTokenCleanup(ctx context.Context) error {
	if _, err := e.client.EnqueueContext(ctx, NewTokenCleanupTask(), asynq.Queue(QueueDefault), asynq.MaxRetry(1)); err != nil {
		return fmt.Errorf("failed to enqueue token cleanup: %w", err)
	}
	return nil
}
