package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fieldops/dispatch-backend-go/internal/models"
)

// IntegrationRepository handles database operations for integrations
type IntegrationRepository struct {
	db *sql.DB
}

// NewIntegrationRepository creates a new integration repository
func NewIntegrationRepository(db *sql.DB) *IntegrationRepository {
	return &IntegrationRepository{db: db}
}

const integrationColumns = `id, name, owner_chat_id, webhook_token, notify_on_problem,
	location_webhook_url, enable_location_tracking, tasks_completed, avg_response_minutes,
	created_at, updated_at`

// Create inserts a new integration and sets its generated id
func (r *IntegrationRepository) Create(ig *models.Integration) error {
	now := time.Now().UTC()
	ig.CreatedAt = now
	ig.UpdatedAt = now

	res, err := r.db.Exec(`INSERT INTO integrations
		(name, owner_chat_id, webhook_token, notify_on_problem, location_webhook_url,
		 enable_location_tracking, tasks_completed, avg_response_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ig.Name, ig.OwnerChatID, ig.WebhookToken, ig.NotifyOnProblem, ig.LocationWebhookURL,
		ig.EnableLocationTracking, ig.TasksCompleted, ig.AvgResponseMinutes, ig.CreatedAt, ig.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create integration: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get integration id: %w", err)
	}
	ig.ID = id
	return nil
}

// Save persists the mutable fields of an existing integration
func (r *IntegrationRepository) Save(ig *models.Integration) error {
	ig.UpdatedAt = time.Now().UTC()
	_, err := r.db.Exec(`UPDATE integrations
		SET name = ?, notify_on_problem = ?, location_webhook_url = ?,
		    enable_location_tracking = ?, tasks_completed = ?, avg_response_minutes = ?,
		    updated_at = ?
		WHERE id = ?`,
		ig.Name, ig.NotifyOnProblem, ig.LocationWebhookURL,
		ig.EnableLocationTracking, ig.TasksCompleted, ig.AvgResponseMinutes,
		ig.UpdatedAt, ig.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save integration %d: %w", ig.ID, err)
	}
	return nil
}

// FindByID retrieves a single integration by id; returns (nil, nil) when absent
func (r *IntegrationRepository) FindByID(id int64) (*models.Integration, error) {
	row := r.db.QueryRow(`SELECT `+integrationColumns+` FROM integrations WHERE id = ?`, id)
	ig, err := scanIntegration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration %d: %w", id, err)
	}
	return ig, nil
}

// List retrieves all integrations ordered by creation time
func (r *IntegrationRepository) List() ([]*models.Integration, error) {
	rows, err := r.db.Query(`SELECT ` + integrationColumns + ` FROM integrations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query integrations: %w", err)
	}
	defer rows.Close()

	var items []*models.Integration
	for rows.Next() {
		ig, err := scanIntegration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan integration: %w", err)
		}
		items = append(items, ig)
	}
	return items, nil
}

func scanIntegration(row rowScanner) (*models.Integration, error) {
	var ig models.Integration
	err := row.Scan(
		&ig.ID, &ig.Name, &ig.OwnerChatID, &ig.WebhookToken, &ig.NotifyOnProblem,
		&ig.LocationWebhookURL, &ig.EnableLocationTracking, &ig.TasksCompleted,
		&ig.AvgResponseMinutes, &ig.CreatedAt, &ig.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ig, nil
}
