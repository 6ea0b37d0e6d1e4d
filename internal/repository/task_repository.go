package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fieldops/dispatch-backend-go/internal/models"
)

// TaskRepository handles database operations for worker tasks
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, integration_id, worker_chat_id, external_ref, title, description,
	problem_description, status, created_at, started_at, completed_at, photos, comments,
	chat_message_id, tracking`

// Create inserts a new task and sets its generated id
func (r *TaskRepository) Create(task *models.WorkerTask) error {
	photos, comments, tracking, err := marshalAttachments(task)
	if err != nil {
		return err
	}

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	if task.Status == "" {
		task.Status = models.TaskStatusSent
	}

	res, err := r.db.Exec(`INSERT INTO worker_tasks
		(integration_id, worker_chat_id, external_ref, title, description, problem_description,
		 status, created_at, started_at, completed_at, photos, comments, chat_message_id, tracking)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.IntegrationID, task.WorkerChatID, task.ExternalRef, task.Title, task.Description,
		task.ProblemDescription, task.Status, task.CreatedAt, task.StartedAt, task.CompletedAt,
		photos, comments, task.ChatMessageID, tracking,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get task id: %w", err)
	}
	task.ID = id
	return nil
}

// Save persists the mutable fields of an existing task
func (r *TaskRepository) Save(task *models.WorkerTask) error {
	photos, comments, tracking, err := marshalAttachments(task)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`UPDATE worker_tasks
		SET title = ?, description = ?, problem_description = ?, status = ?,
		    started_at = ?, completed_at = ?, photos = ?, comments = ?,
		    chat_message_id = ?, tracking = ?
		WHERE id = ?`,
		task.Title, task.Description, task.ProblemDescription, task.Status,
		task.StartedAt, task.CompletedAt, photos, comments,
		task.ChatMessageID, tracking, task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save task %d: %w", task.ID, err)
	}
	return nil
}

// FindByID retrieves a single task by id; returns (nil, nil) when absent
func (r *TaskRepository) FindByID(id int64) (*models.WorkerTask, error) {
	row := r.db.QueryRow(`SELECT `+taskColumns+` FROM worker_tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// FindActiveByChat retrieves the most recently created non-terminal task
// addressed to the given worker chat; returns (nil, nil) when none exists.
// Duplicate actives from external races resolve to the newest row.
func (r *TaskRepository) FindActiveByChat(chatID int64) (*models.WorkerTask, error) {
	row := r.db.QueryRow(`SELECT `+taskColumns+` FROM worker_tasks
		WHERE worker_chat_id = ? AND status != ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, chatID, models.TaskStatusCompleted)
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active task for chat %d: %w", chatID, err)
	}
	return task, nil
}

// List retrieves tasks with filtering and pagination
func (r *TaskRepository) List(filter models.TaskFilter) ([]*models.WorkerTask, error) {
	query := `SELECT ` + taskColumns + ` FROM worker_tasks`

	var conditions []string
	var args []interface{}

	if filter.IntegrationID > 0 {
		conditions = append(conditions, "integration_id = ?")
		args = append(args, filter.IntegrationID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.WorkerTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// FindStaleSent retrieves tasks still in "sent" created before the cutoff
func (r *TaskRepository) FindStaleSent(before time.Time) ([]*models.WorkerTask, error) {
	rows, err := r.db.Query(`SELECT `+taskColumns+` FROM worker_tasks
		WHERE status = ? AND created_at < ?
		ORDER BY created_at ASC`, models.TaskStatusSent, before)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.WorkerTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.WorkerTask, error) {
	var t models.WorkerTask
	var photos, comments string
	var tracking sql.NullString

	err := row.Scan(
		&t.ID, &t.IntegrationID, &t.WorkerChatID, &t.ExternalRef, &t.Title, &t.Description,
		&t.ProblemDescription, &t.Status, &t.CreatedAt, &t.StartedAt, &t.CompletedAt,
		&photos, &comments, &t.ChatMessageID, &tracking,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(photos), &t.Photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos for task %d: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(comments), &t.Comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments for task %d: %w", t.ID, err)
	}
	if tracking.Valid && tracking.String != "" {
		var lt models.LocationTracking
		if err := json.Unmarshal([]byte(tracking.String), &lt); err != nil {
			return nil, fmt.Errorf("failed to decode tracking for task %d: %w", t.ID, err)
		}
		t.Tracking = &lt
	}
	return &t, nil
}

func marshalAttachments(task *models.WorkerTask) (photos, comments string, tracking interface{}, err error) {
	p, err := json.Marshal(task.Photos)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode photos: %w", err)
	}
	c, err := json.Marshal(task.Comments)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode comments: %w", err)
	}
	if task.Photos == nil {
		p = []byte("[]")
	}
	if task.Comments == nil {
		c = []byte("[]")
	}
	var tr interface{}
	if task.Tracking != nil {
		b, err := json.Marshal(task.Tracking)
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to encode tracking: %w", err)
		}
		tr = string(b)
	}
	return string(p), string(c), tr, nil
}
