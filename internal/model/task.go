package model

import "time"

// DateLayout is the calendar date format used for task dates.
const DateLayout = "2006-01-02"

// Task is a single to-do entry pinned to a calendar date.
type Task struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index:idx_tasks_user_date" json:"user_id"`
	Date      string    `gorm:"index:idx_tasks_user_date;not null" json:"date"`
	Text      string    `gorm:"not null" json:"text"`
	Completed bool      `gorm:"default:false" json:"completed"`
	GroupName *string   `json:"group_name"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Group returns the group label or "" when the task is ungrouped.
func (t Task) Group() string {
	if t.GroupName == nil {
		return ""
	}
	return *t.GroupName
}

// TaskUpdate carries a partial update; nil fields are left untouched.
type TaskUpdate struct {
	Text      *string
	Completed *bool
}

// Empty reports whether the update has nothing to write.
func (u TaskUpdate) Empty() bool {
	return u.Text == nil && u.Completed == nil
}
