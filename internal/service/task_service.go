package service

import (
	"context"
	"strings"

	"recuring/internal/model"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Date      string
	Text      string
	Group     string
	Completed bool
}

// TaskStore is the persistence the task use cases need.
type TaskStore interface {
	CreateBatch(ctx context.Context, tasks []*model.Task) error
	Update(ctx context.Context, userID, taskID uint, upd model.TaskUpdate) (int64, error)
	Delete(ctx context.Context, userID, taskID uint) (int64, error)
	ListByOwner(ctx context.Context, userID uint) (map[string][]model.Task, error)
	ListIncompleteByOwnerAndDate(ctx context.Context, userID uint, date string) ([]model.Task, error)
	ListGroups(ctx context.Context, userID uint) ([]string, error)
}

// TaskService wraps task-related business logic.
type TaskService struct {
	store TaskStore
}

func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// AddTask stores the task together with its recurrence one month later.
// Both rows are written in one transaction and are independent afterwards.
func (s *TaskService) AddTask(ctx context.Context, userID uint, input TaskInput) (*model.Task, *model.Task, error) {
	task := model.Task{
		UserID:    userID,
		Date:      strings.TrimSpace(input.Date),
		Text:      strings.TrimSpace(input.Text),
		Completed: input.Completed,
	}
	if group := strings.TrimSpace(input.Group); group != "" {
		task.GroupName = &group
	}
	if task.Date == "" {
		return nil, nil, model.NewValidationError("date", "is required")
	}
	if task.Text == "" {
		return nil, nil, model.NewValidationError("text", "is required")
	}

	next, err := Recur(task, RecurrenceOffset)
	if err != nil {
		return nil, nil, err
	}

	if err := s.store.CreateBatch(ctx, []*model.Task{&task, &next}); err != nil {
		return nil, nil, err
	}
	return &task, &next, nil
}

// UpdateTask applies a partial update; zero affected rows means the id is
// missing or belongs to someone else.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uint, upd model.TaskUpdate) (int64, error) {
	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			return 0, model.NewValidationError("text", "must not be empty")
		}
		upd.Text = &text
	}
	return s.store.Update(ctx, userID, taskID, upd)
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uint) (int64, error) {
	return s.store.Delete(ctx, userID, taskID)
}

func (s *TaskService) ListTasks(ctx context.Context, userID uint) (map[string][]model.Task, error) {
	return s.store.ListByOwner(ctx, userID)
}

func (s *TaskService) ListPending(ctx context.Context, userID uint, date string) ([]model.Task, error) {
	if _, err := ProjectDate(date, 0); err != nil {
		return nil, err
	}
	return s.store.ListIncompleteByOwnerAndDate(ctx, userID, date)
}

func (s *TaskService) ListGroups(ctx context.Context, userID uint) ([]string, error) {
	return s.store.ListGroups(ctx, userID)
}
