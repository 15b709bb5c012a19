package service

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"recuring/internal/model"
)

// DefaultAppName signs digests and their subjects.
const DefaultAppName = "RecuRing"

// DigestBuilder renders a user's pending tasks for one day as plain text.
type DigestBuilder struct {
	appName string
}

func NewDigestBuilder(appName string) *DigestBuilder {
	if strings.TrimSpace(appName) == "" {
		appName = DefaultAppName
	}
	return &DigestBuilder{appName: appName}
}

// Subject is the notification subject line for date.
func (b *DigestBuilder) Subject(date string) string {
	return fmt.Sprintf("%s: Your Daily Tasks for %s", b.appName, date)
}

// Build returns "" for an empty task list. Tasks must already be sorted by
// (group, id); a header is written each time a non-empty group differs from
// the last one written, and ungrouped tasks stay under the current header.
func (b *DigestBuilder) Build(username, date string, tasks []model.Task) string {
	if len(tasks) == 0 {
		return ""
	}

	// A Caser is stateful and must not be shared between goroutines.
	upper := cases.Upper(language.Und)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Hello %s,\n\nHere are your pending tasks for today (%s):\n\n", username, date))

	current := ""
	for _, task := range tasks {
		if group := task.Group(); group != "" && group != current {
			current = group
			sb.WriteString(fmt.Sprintf("\n--- %s ---\n", upper.String(group)))
		}
		sb.WriteString(fmt.Sprintf("- %s\n", task.Text))
	}

	sb.WriteString(fmt.Sprintf("\nKeep up the great work!\n\nYour %s App", b.appName))
	return sb.String()
}
