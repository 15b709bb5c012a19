package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recuring/internal/model"
)

type fakeDirectory struct {
	users []model.User
	err   error
}

func (f *fakeDirectory) ListAll(ctx context.Context) ([]model.User, error) {
	return f.users, f.err
}

type fakePending struct {
	mu      sync.Mutex
	byUser  map[uint][]model.Task
	errFor  map[uint]error
	queried []string
}

func (f *fakePending) ListIncompleteByOwnerAndDate(ctx context.Context, userID uint, date string) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queried = append(f.queried, date)
	if err := f.errFor[userID]; err != nil {
		return nil, err
	}
	return f.byUser[userID], nil
}

type sentMessage struct {
	to, subject, body string
	hasDeadline       bool
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]error
	panicOn string
}

func (f *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	if to == f.panicOn {
		panic("notifier exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	f.sent = append(f.sent, sentMessage{to: to, subject: subject, body: body, hasDeadline: hasDeadline})
	return f.failFor[to]
}

func email(s string) *string { return &s }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newReminderFixture(users []model.User, pending *fakePending, notifier *fakeNotifier, now time.Time) *ReminderService {
	return NewReminderService(&fakeDirectory{users: users}, pending, NewDigestBuilder(""), notifier, time.UTC,
		WithClock(fixedClock(now)), WithLogger(discardLogger()))
}

func TestRunCycleFailureDoesNotBlockOtherUsers(t *testing.T) {
	users := []model.User{
		{ID: 1, Username: "alice", Email: email("alice@example.com")},
		{ID: 2, Username: "bob", Email: email("bob@example.com")},
		{ID: 3, Username: "carol", Email: email("carol@example.com")},
	}
	pending := &fakePending{byUser: map[uint][]model.Task{
		1: {{Text: "a"}},
		2: {{Text: "b"}},
		3: {{Text: "c"}},
	}}
	notifier := &fakeNotifier{failFor: map[string]error{"alice@example.com": errors.New("smtp down")}}
	svc := newReminderFixture(users, pending, notifier, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC))

	report := svc.RunCycle(context.Background())

	require.Len(t, notifier.sent, 3)
	assert.Equal(t, "alice@example.com", notifier.sent[0].to)
	assert.Equal(t, "bob@example.com", notifier.sent[1].to)
	assert.Equal(t, "carol@example.com", notifier.sent[2].to)
	assert.Equal(t, CycleReport{Date: "2024-03-01", Users: 3, Sent: 2, Failed: 1}, report)
}

func TestRunCycleSkipsUsersWithoutEmailOrTasks(t *testing.T) {
	users := []model.User{
		{ID: 1, Username: "noemail"},
		{ID: 2, Username: "blank", Email: email("  ")},
		{ID: 3, Username: "idle", Email: email("idle@example.com")},
		{ID: 4, Username: "busy", Email: email("busy@example.com")},
	}
	pending := &fakePending{byUser: map[uint][]model.Task{
		1: {{Text: "never sent"}},
		4: {{Text: "x"}},
	}}
	notifier := &fakeNotifier{}
	svc := newReminderFixture(users, pending, notifier, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC))

	report := svc.RunCycle(context.Background())

	require.Len(t, notifier.sent, 1)
	msg := notifier.sent[0]
	assert.Equal(t, "busy@example.com", msg.to)
	assert.Equal(t, "RecuRing: Your Daily Tasks for 2024-03-01", msg.subject)
	assert.Contains(t, msg.body, "Hello busy,")
	assert.Contains(t, msg.body, "- x\n")
	assert.True(t, msg.hasDeadline)
	assert.Equal(t, 1, report.Sent)
	assert.Equal(t, 3, report.Skipped)
	assert.Zero(t, report.Failed)
}

func TestRunCycleStoreErrorIsIsolated(t *testing.T) {
	users := []model.User{
		{ID: 1, Username: "alice", Email: email("alice@example.com")},
		{ID: 2, Username: "bob", Email: email("bob@example.com")},
	}
	pending := &fakePending{
		byUser: map[uint][]model.Task{2: {{Text: "b"}}},
		errFor: map[uint]error{1: errors.New("database is locked")},
	}
	notifier := &fakeNotifier{}
	svc := newReminderFixture(users, pending, notifier, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC))

	report := svc.RunCycle(context.Background())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "bob@example.com", notifier.sent[0].to)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Sent)
}

func TestRunCycleRecoversPanics(t *testing.T) {
	users := []model.User{
		{ID: 1, Username: "alice", Email: email("alice@example.com")},
		{ID: 2, Username: "bob", Email: email("bob@example.com")},
	}
	pending := &fakePending{byUser: map[uint][]model.Task{1: {{Text: "a"}}, 2: {{Text: "b"}}}}
	notifier := &fakeNotifier{panicOn: "alice@example.com"}
	svc := newReminderFixture(users, pending, notifier, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC))

	var report CycleReport
	require.NotPanics(t, func() { report = svc.RunCycle(context.Background()) })
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Sent)
}

func TestRunCycleSnapshotsTodayOnce(t *testing.T) {
	users := []model.User{
		{ID: 1, Username: "alice", Email: email("alice@example.com")},
		{ID: 2, Username: "bob", Email: email("bob@example.com")},
	}
	pending := &fakePending{byUser: map[uint][]model.Task{1: {{Text: "a"}}, 2: {{Text: "b"}}}}
	notifier := &fakeNotifier{}

	// every call to the clock moves one hour past midnight
	now := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	clock := func() time.Time {
		t := now
		now = now.Add(time.Hour)
		return t
	}
	svc := NewReminderService(&fakeDirectory{users: users}, pending, NewDigestBuilder(""), notifier, time.UTC,
		WithClock(clock), WithLogger(discardLogger()))

	report := svc.RunCycle(context.Background())

	assert.Equal(t, "2024-03-01", report.Date)
	assert.Equal(t, []string{"2024-03-01", "2024-03-01"}, pending.queried)
}

func TestRunCycleUsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	pending := &fakePending{}
	svc := NewReminderService(&fakeDirectory{}, pending, NewDigestBuilder(""), &fakeNotifier{}, loc,
		WithClock(fixedClock(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC))), WithLogger(discardLogger()))

	assert.Equal(t, "2024-03-02", svc.Today())
}

func TestRunCycleDirectoryError(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewReminderService(&fakeDirectory{err: errors.New("no db")}, &fakePending{}, NewDigestBuilder(""), notifier, time.UTC,
		WithLogger(discardLogger()))

	report := svc.RunCycle(context.Background())

	require.Error(t, report.Err)
	assert.Contains(t, report.Err.Error(), "no db")
	assert.Empty(t, notifier.sent)
}

func TestRunCycleStopsOnCancelledContext(t *testing.T) {
	users := []model.User{{ID: 1, Username: "alice", Email: email("alice@example.com")}}
	pending := &fakePending{byUser: map[uint][]model.Task{1: {{Text: "a"}}}}
	notifier := &fakeNotifier{}
	svc := newReminderFixture(users, pending, notifier, time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := svc.RunCycle(ctx)

	assert.ErrorIs(t, report.Err, context.Canceled)
	assert.Empty(t, notifier.sent)
}
