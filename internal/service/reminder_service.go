package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recuring/internal/model"
	"recuring/internal/notify"
)

// DefaultSendTimeout bounds one notifier call.
const DefaultSendTimeout = 30 * time.Second

// UserDirectory lists every account that may receive a digest.
type UserDirectory interface {
	ListAll(ctx context.Context) ([]model.User, error)
}

// PendingTasks returns a user's incomplete tasks for a date, (group, id) ordered.
type PendingTasks interface {
	ListIncompleteByOwnerAndDate(ctx context.Context, userID uint, date string) ([]model.Task, error)
}

// CycleReport summarises one firing cycle.
type CycleReport struct {
	Date    string
	Users   int
	Sent    int
	Skipped int
	Failed  int
	Err     error
}

// ReminderService runs the daily digest pass over all users.
type ReminderService struct {
	users       UserDirectory
	tasks       PendingTasks
	digest      *DigestBuilder
	notifier    notify.Notifier
	loc         *time.Location
	now         func() time.Time
	sendTimeout time.Duration
	logger      *slog.Logger
}

type ReminderOption func(*ReminderService)

// WithClock overrides the time source used to pick "today".
func WithClock(now func() time.Time) ReminderOption {
	return func(s *ReminderService) { s.now = now }
}

func WithSendTimeout(d time.Duration) ReminderOption {
	return func(s *ReminderService) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) ReminderOption {
	return func(s *ReminderService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewReminderService(users UserDirectory, tasks PendingTasks, digest *DigestBuilder, notifier notify.Notifier, loc *time.Location, opts ...ReminderOption) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	s := &ReminderService{
		users:       users,
		tasks:       tasks,
		digest:      digest,
		notifier:    notifier,
		loc:         loc,
		now:         time.Now,
		sendTimeout: DefaultSendTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current calendar date in the service's location.
func (s *ReminderService) Today() string {
	return s.now().In(s.loc).Format(model.DateLayout)
}

// RunCycle sends today's digest to every user with an email and pending
// tasks. "Today" is fixed once at the start. A failure for one user is logged
// and counted; it never stops the remaining users.
func (s *ReminderService) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{Date: s.Today()}
	log := s.logger.With("date", report.Date)

	users, err := s.users.ListAll(ctx)
	if err != nil {
		report.Err = fmt.Errorf("list users: %w", err)
		log.ErrorContext(ctx, "reminder cycle aborted", "error", err)
		return report
	}
	report.Users = len(users)

	for _, user := range users {
		if ctx.Err() != nil {
			report.Err = ctx.Err()
			log.WarnContext(ctx, "reminder cycle interrupted", "error", ctx.Err())
			break
		}
		sent, err := s.remind(ctx, user, report.Date)
		switch {
		case err != nil:
			report.Failed++
			log.ErrorContext(ctx, "reminder failed", "user", user.Username, "error", err)
		case sent:
			report.Sent++
			log.InfoContext(ctx, "reminder sent", "user", user.Username)
		default:
			report.Skipped++
		}
	}

	log.InfoContext(ctx, "reminder cycle finished",
		"users", report.Users, "sent", report.Sent, "skipped", report.Skipped, "failed", report.Failed)
	return report
}

// remind handles one user. A panic is turned into an error.
func (s *ReminderService) remind(ctx context.Context, user model.User, today string) (sent bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			sent = false
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	email := strings.TrimSpace(user.EmailAddress())
	if email == "" {
		s.logger.DebugContext(ctx, "no email configured, skipping", "user", user.Username)
		return false, nil
	}

	tasks, err := s.tasks.ListIncompleteByOwnerAndDate(ctx, user.ID, today)
	if err != nil {
		return false, fmt.Errorf("load tasks: %w", err)
	}

	body := s.digest.Build(user.Username, today, tasks)
	if body == "" {
		s.logger.DebugContext(ctx, "no pending tasks, skipping", "user", user.Username, "date", today)
		return false, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.notifier.Send(sendCtx, email, s.digest.Subject(today), body); err != nil {
		return false, fmt.Errorf("send digest: %w", err)
	}
	return true, nil
}
