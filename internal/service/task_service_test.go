package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recuring/internal/model"
	"recuring/internal/repository"
)

type taskFixture struct {
	svc   *TaskService
	repo  *repository.TaskRepository
	users *repository.UserRepository
}

func newTaskFixture(t *testing.T) taskFixture {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "tasks.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	repo := repository.NewTaskRepository(db)
	return taskFixture{svc: NewTaskService(repo), repo: repo, users: repository.NewUserRepository(db)}
}

func (f taskFixture) user(t *testing.T, name string) uint {
	t.Helper()
	u := &model.User{Username: name, PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u.ID
}

func TestAddTaskCreatesRecurrence(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	tests := []struct {
		date     string
		wantNext string
	}{
		{"2024-01-31", "2024-02-29"},
		{"2023-01-31", "2023-02-28"},
		{"2024-12-10", "2025-01-10"},
	}
	for _, tc := range tests {
		t.Run(tc.date, func(t *testing.T) {
			orig, next, err := f.svc.AddTask(ctx, alice, TaskInput{Date: tc.date, Text: " gym ", Group: "Health"})
			require.NoError(t, err)

			assert.NotZero(t, orig.ID)
			assert.NotZero(t, next.ID)
			assert.NotEqual(t, orig.ID, next.ID)
			assert.Equal(t, tc.date, orig.Date)
			assert.Equal(t, tc.wantNext, next.Date)
			assert.Equal(t, "gym", orig.Text)
			assert.Equal(t, orig.Text, next.Text)
			assert.Equal(t, orig.Group(), next.Group())
			assert.Equal(t, orig.Completed, next.Completed)

			stored, err := f.repo.FindByID(ctx, alice, next.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantNext, stored.Date)
			assert.Equal(t, "Health", stored.Group())
		})
	}
}

func TestAddTaskCarriesCompletedFlag(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	orig, next, err := f.svc.AddTask(ctx, alice, TaskInput{Date: "2024-05-05", Text: "## Work", Completed: true})
	require.NoError(t, err)
	assert.True(t, orig.Completed)
	assert.True(t, next.Completed)
	assert.Nil(t, orig.GroupName)
}

func TestAddTaskValidation(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	for _, in := range []TaskInput{
		{Date: "", Text: "x"},
		{Date: "2024-01-01", Text: "  "},
		{Date: "tomorrow", Text: "x"},
	} {
		_, _, err := f.svc.AddTask(ctx, alice, in)
		assert.ErrorIs(t, err, model.ErrValidation)
	}

	all, err := f.svc.ListTasks(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRecurrenceIsIndependent(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	orig, next, err := f.svc.AddTask(ctx, alice, TaskInput{Date: "2024-03-10", Text: "rent"})
	require.NoError(t, err)

	done := true
	n, err := f.svc.UpdateTask(ctx, alice, orig.ID, model.TaskUpdate{Completed: &done})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = f.svc.DeleteTask(ctx, alice, orig.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stored, err := f.repo.FindByID(ctx, alice, next.ID)
	require.NoError(t, err)
	assert.False(t, stored.Completed)

	all, err := f.svc.ListTasks(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, all["2024-04-10"], 1)
}

func TestTaskServiceCrossUserIsNoop(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	orig, _, err := f.svc.AddTask(ctx, alice, TaskInput{Date: "2024-03-10", Text: "rent"})
	require.NoError(t, err)

	text := "stolen"
	n, err := f.svc.UpdateTask(ctx, bob, orig.ID, model.TaskUpdate{Text: &text})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.svc.DeleteTask(ctx, bob, orig.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	bobs, err := f.svc.ListTasks(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)

	stored, err := f.repo.FindByID(ctx, alice, orig.ID)
	require.NoError(t, err)
	assert.Equal(t, "rent", stored.Text)
}

func TestUpdateTaskRejectsEmptyText(t *testing.T) {
	f := newTaskFixture(t)
	empty := " "
	_, err := f.svc.UpdateTask(context.Background(), 1, 1, model.TaskUpdate{Text: &empty})
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestListPending(t *testing.T) {
	f := newTaskFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	_, _, err := f.svc.AddTask(ctx, alice, TaskInput{Date: "2024-03-10", Text: "b", Group: "Work"})
	require.NoError(t, err)
	_, _, err = f.svc.AddTask(ctx, alice, TaskInput{Date: "2024-03-10", Text: "a"})
	require.NoError(t, err)
	_, _, err = f.svc.AddTask(ctx, alice, TaskInput{Date: "2024-03-10", Text: "done", Completed: true})
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx, alice, "2024-03-10")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].Text)
	assert.Equal(t, "b", pending[1].Text)

	_, err = f.svc.ListPending(ctx, alice, "10.03.2024")
	assert.ErrorIs(t, err, model.ErrValidation)

	groups, err := f.svc.ListGroups(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Work"}, groups)
}
