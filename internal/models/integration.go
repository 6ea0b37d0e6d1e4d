package models

import "time"

// Integration is a configured connection to an external PM tool,
// owned by the manager who dispatches tasks through it
type Integration struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	OwnerChatID  int64  `json:"owner_chat_id" db:"owner_chat_id"` // receives problem escalations
	WebhookToken string `json:"webhook_token,omitempty" db:"webhook_token"`

	// Settings
	NotifyOnProblem        bool   `json:"notify_on_problem" db:"notify_on_problem"`
	LocationWebhookURL     string `json:"location_webhook_url,omitempty" db:"location_webhook_url"`
	EnableLocationTracking bool   `json:"enable_location_tracking" db:"enable_location_tracking"`

	// Rolling stats, updated on task completion
	TasksCompleted     int64   `json:"tasks_completed" db:"tasks_completed"`
	AvgResponseMinutes float64 `json:"avg_response_minutes" db:"avg_response_minutes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IntegrationSettings is the mutable settings subset exposed to the management API
type IntegrationSettings struct {
	NotifyOnProblem        *bool   `json:"notify_on_problem,omitempty"`
	LocationWebhookURL     *string `json:"location_webhook_url,omitempty"`
	EnableLocationTracking *bool   `json:"enable_location_tracking,omitempty"`
}
