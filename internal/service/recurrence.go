package service

import (
	"fmt"
	"time"

	"recuring/internal/model"
)

// RecurrenceOffset is how many months ahead a new task is repeated.
const RecurrenceOffset = 1

// ProjectForward moves date by the given number of calendar months. When the
// day does not exist in the target month it is clamped to the month's last
// day, so Jan 31 becomes Feb 28 or 29.
func ProjectForward(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, date.Location()).AddDate(0, months, 0)
	if last := daysInMonth(first.Month(), first.Year()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, date.Location())
}

// ProjectDate is ProjectForward over YYYY-MM-DD strings.
func ProjectDate(date string, months int) (string, error) {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return "", model.NewValidationError("date", "must be YYYY-MM-DD")
	}
	return ProjectForward(d, months).Format(model.DateLayout), nil
}

// Recur returns an unsaved copy of task dated months later.
func Recur(task model.Task, months int) (model.Task, error) {
	date, err := ProjectDate(task.Date, months)
	if err != nil {
		return model.Task{}, fmt.Errorf("project %q: %w", task.Date, err)
	}
	next := model.Task{
		UserID:    task.UserID,
		Date:      date,
		Text:      task.Text,
		Completed: task.Completed,
	}
	if task.GroupName != nil {
		group := *task.GroupName
		next.GroupName = &group
	}
	return next, nil
}

// daysInMonth relies on day 0 of the next month normalizing to the last day
// of this one.
func daysInMonth(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
