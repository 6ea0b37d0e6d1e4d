package service

import (
	"fmt"
	"strings"

	"github.com/fieldops/dispatch-backend-go/internal/models"
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

var statusLabels = map[string]string{
	models.TaskStatusSent:      "📨 Sent",
	models.TaskStatusSeen:      "👀 Seen",
	models.TaskStatusStarted:   "🚀 In progress",
	models.TaskStatusProblem:   "⚠️ Problem",
	models.TaskStatusCompleted: "✅ Completed",
}

// RenderStatusCard builds the chat-visible status card for a task
func RenderStatusCard(task *models.WorkerTask) string {
	var b strings.Builder

	b.WriteString("📋 " + task.Title)
	if task.Description != "" {
		b.WriteString("\n\n" + task.Description)
	}

	label, ok := statusLabels[task.Status]
	if !ok {
		label = task.Status
	}
	b.WriteString("\n\nStatus: " + label)

	if task.Status == models.TaskStatusProblem && task.ProblemDescription != "" {
		b.WriteString("\nProblem: " + task.ProblemDescription)
	}

	if task.Status == models.TaskStatusCompleted {
		if task.CompletedAt != nil {
			b.WriteString("\nCompleted at " + task.CompletedAt.Format("2006-01-02 15:04"))
		}
		if n := len(task.Photos); n > 0 {
			b.WriteString(fmt.Sprintf("\n%d photo(s) attached", n))
		}
		if tr := task.Tracking; tr != nil && tr.TotalDistanceMeters > 0 {
			b.WriteString("\nTrip: " + FormatDistance(tr.TotalDistanceMeters))
		}
	}

	return b.String()
}

// CardKeyboard returns the action keyboard for a task's status card;
// nil once the task is terminal so the buttons disappear
func CardKeyboard(task *models.WorkerTask) *telegram.InlineKeyboardMarkup {
	if task.IsTerminal() {
		return nil
	}
	return telegram.TaskActionKeyboard(task.ID)
}

// FormatDistance renders a distance in meters as "87 m" or "1.23 km"
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.2f km", meters/1000)
}
