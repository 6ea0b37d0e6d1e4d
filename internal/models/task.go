package models

import "time"

// Task status constants
const (
	TaskStatusSent      = "sent"
	TaskStatusSeen      = "seen"
	TaskStatusStarted   = "started"
	TaskStatusProblem   = "problem"
	TaskStatusCompleted = "completed"
)

// WorkerTask represents one unit of field work dispatched to a worker chat
type WorkerTask struct {
	ID            int64  `json:"id" db:"id"`
	IntegrationID int64  `json:"integration_id" db:"integration_id"`
	WorkerChatID  int64  `json:"worker_chat_id" db:"worker_chat_id"`
	ExternalRef   string `json:"external_ref,omitempty" db:"external_ref"` // task id in the PM tool, if any

	Title              string `json:"title" db:"title"`
	Description        string `json:"description,omitempty" db:"description"`
	ProblemDescription string `json:"problem_description,omitempty" db:"problem_description"`

	Status string `json:"status" db:"status"` // sent, seen, started, problem, completed

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`

	// Attachments collected from the worker, append-only
	Photos   []string `json:"photos,omitempty" db:"photos"`
	Comments []Comment `json:"comments,omitempty" db:"comments"`

	// Message id of the status card in the worker chat
	ChatMessageID int64 `json:"chat_message_id,omitempty" db:"chat_message_id"`

	// Lazily initialized on the first location event
	Tracking *LocationTracking `json:"tracking,omitempty" db:"tracking"`
}

// Comment is a free-text note the worker attached to a task
type Comment struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// LocationPoint is a single recorded GPS fix; immutable once appended
type LocationPoint struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Speed     float64   `json:"speed"`
	Heading   float64   `json:"heading"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationTracking holds the live-tracking state of a task
type LocationTracking struct {
	Enabled             bool            `json:"enabled"`
	Current             *LocationPoint  `json:"current,omitempty"`
	History             []LocationPoint `json:"history,omitempty"`
	TotalDistanceMeters float64         `json:"total_distance_meters"`
	StartedAt           *time.Time      `json:"started_at,omitempty"`
	StoppedAt           *time.Time      `json:"stopped_at,omitempty"`
	LastWebhookAt       *time.Time      `json:"last_webhook_at,omitempty"`
}

// IsTerminal reports whether the task accepts no further transitions
func (t *WorkerTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted
}

// EnsureTracking initializes the tracking sub-record on first use
func (t *WorkerTask) EnsureTracking() *LocationTracking {
	if t.Tracking == nil {
		t.Tracking = &LocationTracking{}
	}
	return t.Tracking
}

// AddComment appends a worker comment; comments never change status
func (t *WorkerTask) AddComment(text string, at time.Time) {
	t.Comments = append(t.Comments, Comment{Text: text, At: at})
}

// TaskFilter represents filter parameters for querying tasks
type TaskFilter struct {
	IntegrationID int64  `form:"integration_id"`
	Status        string `form:"status"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}
