package service

import (
	"strings"
	"time"

	"github.com/fieldops/dispatch-backend-go/internal/models"
)

// Intent is a recognized worker intention toward the active task
type Intent int

// Intent constants
const (
	IntentStart Intent = iota
	IntentDone
	IntentProblem
)

// transitions is the explicit lifecycle table: (current status, intent) -> next status.
// Entries absent from the table are illegal transitions and leave the task untouched;
// completed has no entries at all, making it terminal by construction.
var transitions = map[string]map[Intent]string{
	models.TaskStatusSent: {
		IntentStart:   models.TaskStatusStarted,
		IntentDone:    models.TaskStatusCompleted,
		IntentProblem: models.TaskStatusProblem,
	},
	models.TaskStatusSeen: {
		IntentStart:   models.TaskStatusStarted,
		IntentDone:    models.TaskStatusCompleted,
		IntentProblem: models.TaskStatusProblem,
	},
	models.TaskStatusStarted: {
		IntentStart:   models.TaskStatusStarted,
		IntentDone:    models.TaskStatusCompleted,
		IntentProblem: models.TaskStatusProblem,
	},
	models.TaskStatusProblem: {
		IntentStart:   models.TaskStatusStarted,
		IntentDone:    models.TaskStatusCompleted,
		IntentProblem: models.TaskStatusProblem,
	},
}

// Transition applies an intent to the task's status, returning false when no
// legal transition exists. Timestamps and tracking shutdown happen here;
// chat replies, stats and webhooks are the caller's concern.
func Transition(task *models.WorkerTask, intent Intent, now time.Time) bool {
	next, ok := transitions[task.Status][intent]
	if !ok {
		return false
	}

	switch next {
	case models.TaskStatusStarted:
		if task.StartedAt == nil {
			at := now
			task.StartedAt = &at
		}
	case models.TaskStatusCompleted:
		at := now
		task.CompletedAt = &at
		if tr := task.Tracking; tr != nil && tr.Enabled {
			tr.Enabled = false
			tr.StoppedAt = &at
		}
	}

	task.Status = next
	return true
}

// MarkSeen promotes a freshly dispatched task to seen on first contact
func MarkSeen(task *models.WorkerTask) bool {
	if task.Status != models.TaskStatusSent {
		return false
	}
	task.Status = models.TaskStatusSeen
	return true
}

// Fixed command vocabulary. Matching happens on trimmed, lowercased text.
var (
	startWords   = map[string]bool{"start": true, "ok": true, "yes": true, "👍": true}
	doneWords    = map[string]bool{"done": true, "complete": true, "finished": true, "✅": true}
	problemWords = map[string]bool{"problem": true, "issue": true, "help": true}
)

// ParseIntent maps normalized free text to an intent
func ParseIntent(text string) (Intent, bool) {
	switch {
	case startWords[text]:
		return IntentStart, true
	case doneWords[text]:
		return IntentDone, true
	case problemWords[text]:
		return IntentProblem, true
	}
	return 0, false
}

// isCommandWord reports whether stray text with no active task still
// deserves a "no active task" reply
func isCommandWord(text string) bool {
	_, ok := ParseIntent(text)
	return ok || text == "skip location"
}

// NormalizeText prepares raw message text for vocabulary matching
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
