package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	lockKeyPrefix = "scheduler:lock:"
	// lockTTL outlives the tick interval so a second scheduler replica cannot take the same slot
	lockTTL      = 10 * time.Minute
	tickInterval = 10 * time.Second
)

// TaskEnqueuer defines the background tasks the scheduler triggers
type TaskEnqueuer interface {
	EnqueueSweep(ctx context.Context, limit int) error
	EnqueueTokenCleanup(ctx context.Context) error
}

// SlotLocker claims a schedule slot across scheduler replicas
type SlotLocker interface {
	// Method Acquire reports whether the caller is the first to claim "key".
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type redisLocker struct {
	redis *redis.Client
}

// NewRedisLocker creates a slot locker backed by SETNX
func NewRedisLocker(rdb *redis.Client) SlotLocker {
	return &redisLocker{redis: rdb}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.redis.SetNX(ctx, key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return ok, nil
}

// job is a cron entry with the time of its next run
type job struct {
	name     string
	schedule cron.Schedule
	next     time.Time
	run      func(ctx context.Context) error
}

// Scheduler enqueues periodic maintenance tasks
type Scheduler struct {
	locker   SlotLocker
	logger   *zap.Logger
	jobs     []*job
	now      func() time.Time
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
}

// NewScheduler creates a new scheduler instance.
// sweepCron and cleanupCron are standard five-field cron expressions or descriptors such as "@daily".
func NewScheduler(locker SlotLocker, enqueuer TaskEnqueuer, logger *zap.Logger, sweepCron string, sweepBatch int, cleanupCron string) (*Scheduler, error) {
	sweepSchedule, err := cron.ParseStandard(sweepCron)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", sweepCron, err)
	}
	cleanupSchedule, err := cron.ParseStandard(cleanupCron)
	if err != nil {
		return nil, fmt.Errorf("invalid token cleanup schedule %q: %w", cleanupCron, err)
	}

	s := &Scheduler{
		locker:   locker,
		logger:   logger,
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	s.jobs = []*job{
		{
			name:     "progress-sweep",
			schedule: sweepSchedule,
			run: func(ctx context.Context) error {
				return enqueuer.EnqueueSweep(ctx, sweepBatch)
			},
		},
		{
			name:     "token-cleanup",
			schedule: cleanupSchedule,
			run:      enqueuer.EnqueueTokenCleanup,
		},
	}
	return s, nil
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	now := s.now()
	for _, j := range s.jobs {
		j.next = j.schedule.Next(now)
		s.logger.Info("Job scheduled", zap.String("job", j.name), zap.Time("next_run", j.next))
	}
	s.ticker = time.NewTicker(tickInterval)
	s.logger.Info("Scheduler started")
	go s.run()
}

// Stop stops the scheduler and waits for the running tick to finish
func (s *Scheduler) Stop() {
	s.ticker.Stop()
	close(s.stopChan)
	<-s.done
	s.logger.Info("Scheduler stopped")
}

// run executes the scheduler loop
func (s *Scheduler) run() {
	defer close(s.done)
	ctx := context.Background()

	for {
		select {
		case <-s.ticker.C:
			s.tick(ctx)
		case <-s.stopChan:
			return
		}
	}
}

// tick fires every job whose slot has come. A missed slot fires once, not once per missed period.
func (s *Scheduler) tick(ctx context.Context) {
	now := s.now()
	for _, j := range s.jobs {
		if now.Before(j.next) {
			continue
		}
		slot := j.next
		j.next = j.schedule.Next(now)
		s.fire(ctx, j, slot)
	}
}

func (s *Scheduler) fire(ctx context.Context, j *job, slot time.Time) {
	key := fmt.Sprintf("%s%s:%d", lockKeyPrefix, j.name, slot.Unix())
	acquired, err := s.locker.Acquire(ctx, key, lockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire schedule slot", zap.String("job", j.name), zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("Schedule slot taken by another replica", zap.String("job", j.name), zap.Time("slot", slot))
		return
	}

	if err := j.run(ctx); err != nil {
		s.logger.Error("Failed to enqueue job", zap.String("job", j.name), zap.Error(err))
		return
	}
	s.logger.Info("Job enqueued", zap.String("job", j.name), zap.Time("slot", slot), zap.Time("next_run", j.next))
}
