package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fieldops/dispatch-backend-go/internal/models"
)

// StaleTaskSource lists tasks still waiting for a first reaction
type StaleTaskSource interface {
	FindStaleSent(before time.Time) ([]*models.WorkerTask, error)
}

// Sender sends a chat message; markup is unused here and always nil
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) (int64, error)
}

// Reminder periodically nudges workers whose tasks sit in "sent" too long
type Reminder struct {
	cron  *cron.Cron
	tasks StaleTaskSource
	chat  Sender
	after time.Duration
}

// NewReminder creates a new reminder scheduler
func NewReminder(tasks StaleTaskSource, chat Sender, after time.Duration) *Reminder {
	return &Reminder{
		cron:  cron.New(),
		tasks: tasks,
		chat:  chat,
		after: after,
	}
}

// Start registers the sweep on the given cron spec and starts the scheduler
func (r *Reminder) Start(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.sweep); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop stops the scheduler
func (r *Reminder) Stop() {
	r.cron.Stop()
}

func (r *Reminder) sweep() {
	cutoff := time.Now().UTC().Add(-r.after)
	tasks, err := r.tasks.FindStaleSent(cutoff)
	if err != nil {
		log.Printf("reminder sweep failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, task := range tasks {
		text := fmt.Sprintf("Reminder: the task \"%s\" is still waiting for you.", task.Title)
		if _, err := r.chat.SendMessage(ctx, task.WorkerChatID, text, nil); err != nil {
			log.Printf("failed to send reminder for task %d: %v", task.ID, err)
		}
	}
	if len(tasks) > 0 {
		log.Printf("Reminder sweep nudged %d task(s)", len(tasks))
	}
}
