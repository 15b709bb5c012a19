package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ReminderScheduler fires the reminder cycle once a day at a fixed time.
type ReminderScheduler struct {
	scheduler *SchedulerService
	reminders *ReminderService
	fireAt    string
	logger    *slog.Logger

	mu      sync.Mutex
	entry   cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

func NewReminderScheduler(scheduler *SchedulerService, reminders *ReminderService, fireAt string, logger *slog.Logger) (*ReminderScheduler, error) {
	if _, _, err := ParseClock(fireAt); err != nil {
		return nil, fmt.Errorf("reminder time: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReminderScheduler{
		scheduler: scheduler,
		reminders: reminders,
		fireAt:    fireAt,
		logger:    logger,
	}, nil
}

// Start registers the daily job and starts the underlying scheduler.
func (r *ReminderScheduler) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())
	entry, err := r.scheduler.ScheduleDaily(r.fireAt, r.fire)
	if err != nil {
		r.cancel()
		return fmt.Errorf("schedule reminders: %w", err)
	}
	r.entry = entry
	r.started = true
	r.scheduler.Start()
	r.logger.Info("reminder scheduler started", "fire_at", r.fireAt, "next", r.scheduler.Next(entry))
	return nil
}

// Stop cancels an in-flight cycle, drops the daily entry and waits for the
// cycle to return. Start may be called again afterwards.
func (r *ReminderScheduler) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.started = false
	cancel, entry := r.cancel, r.entry
	r.entry = 0
	r.mu.Unlock()

	cancel()
	r.scheduler.Remove(entry)
	r.scheduler.Stop()
	r.logger.Info("reminder scheduler stopped")
}

// RunNow executes one cycle synchronously, outside the schedule.
func (r *ReminderScheduler) RunNow(ctx context.Context) CycleReport {
	return r.reminders.RunCycle(ctx)
}

func (r *ReminderScheduler) fire() {
	r.mu.Lock()
	ctx := r.ctx
	r.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	report := r.reminders.RunCycle(ctx)
	r.logger.Info("reminder cycle done",
		"date", report.Date, "sent", report.Sent, "failed", report.Failed, "took", time.Since(start))
}
