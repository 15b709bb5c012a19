package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"recuring/internal/model"
)

// taskOrder keeps tasks of one date grouped; NULL groups sort first in SQLite.
const taskOrder = "group_name ASC, id ASC"

// TaskRepository handles CRUD for tasks. Every query is scoped by owner.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create persists one task after validating its date and text.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := validateTask(task); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// CreateBatch validates all tasks and inserts them in a single transaction.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*model.Task) error {
	for _, task := range tasks {
		if err := validateTask(task); err != nil {
			return err
		}
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, task := range tasks {
			if err := tx.Create(task).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create tasks: %w", err)
	}
	return nil
}

// Update writes the non-nil fields of upd to the owner's task and returns
// the number of rows affected. A foreign or missing id affects zero rows.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID uint, upd model.TaskUpdate) (int64, error) {
	if upd.Empty() {
		return 0, nil
	}
	fields := make(map[string]interface{}, 2)
	if upd.Text != nil {
		fields["text"] = *upd.Text
	}
	if upd.Completed != nil {
		fields["completed"] = *upd.Completed
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", taskID, userID).
		Updates(fields)
	if res.Error != nil {
		return 0, fmt.Errorf("update task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the owner's task and returns the number of rows affected.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete task: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// FindByID returns the owner's task or gorm.ErrRecordNotFound.
func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByOwner returns every task of the user bucketed by date. Within a date
// tasks keep the (group, id) order; dates themselves are left unordered.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID uint) (map[string][]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order(taskOrder).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	byDate := make(map[string][]model.Task)
	for _, task := range tasks {
		byDate[task.Date] = append(byDate[task.Date], task)
	}
	return byDate, nil
}

// ListIncompleteByOwnerAndDate returns the user's open tasks for one date.
func (r *TaskRepository) ListIncompleteByOwnerAndDate(ctx context.Context, userID uint, date string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ? AND completed = ?", userID, date, false).
		Order(taskOrder).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list pending tasks: %w", err)
	}
	return tasks, nil
}

// ListGroups returns the distinct non-empty group names used by the user.
func (r *TaskRepository) ListGroups(ctx context.Context, userID uint) ([]string, error) {
	var groups []string
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND group_name IS NOT NULL AND group_name <> ''", userID).
		Distinct("group_name").
		Order("group_name ASC").
		Pluck("group_name", &groups).Error; err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func validateTask(task *model.Task) error {
	if strings.TrimSpace(task.Date) == "" {
		return model.NewValidationError("date", "is required")
	}
	if _, err := time.Parse(model.DateLayout, task.Date); err != nil {
		return model.NewValidationError("date", "must be YYYY-MM-DD")
	}
	if strings.TrimSpace(task.Text) == "" {
		return model.NewValidationError("text", "is required")
	}
	return nil
}
