package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fieldops/dispatch-backend-go/internal/models"
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

// TaskRepository is the task persistence capability the dispatch core consumes
type TaskRepository interface {
	Create(task *models.WorkerTask) error
	Save(task *models.WorkerTask) error
	FindByID(id int64) (*models.WorkerTask, error)
	FindActiveByChat(chatID int64) (*models.WorkerTask, error)
}

// IntegrationRepository is the integration persistence capability
type IntegrationRepository interface {
	FindByID(id int64) (*models.Integration, error)
	Save(ig *models.Integration) error
}

// ChatClient is the message-send/edit/answer and file-retrieval capability
// of the chat platform
type ChatClient interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) (int64, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, markup *telegram.InlineKeyboardMarkup) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
	GetFileURL(ctx context.Context, fileID string) (string, error)
}

// LocationPoster pushes location updates to the external PM tool
type LocationPoster interface {
	PostLocationUpdate(ctx context.Context, url string, payload LocationUpdatePayload) error
}

// DispatchService drives the task lifecycle from inbound chat events
type DispatchService struct {
	tasks        TaskRepository
	integrations IntegrationRepository
	chat         ChatClient
	poster       LocationPoster
	now          func() time.Time
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(tasks TaskRepository, integrations IntegrationRepository, chat ChatClient, poster LocationPoster) *DispatchService {
	return &DispatchService{
		tasks:        tasks,
		integrations: integrations,
		chat:         chat,
		poster:       poster,
		now:          time.Now,
	}
}

// HandleUpdate processes one inbound update end to end. It never returns
// an error: workers always get a reply or a silent ignore, and the webhook
// endpoint acknowledges regardless of outcome.
func (s *DispatchService) HandleUpdate(ctx context.Context, upd telegram.Update) {
	switch ev := Classify(upd).(type) {
	case *CallbackEvent:
		s.handleCallback(ctx, ev)
	case *TextEvent:
		s.handleText(ctx, ev)
	case *LocationEvent:
		s.handleLocation(ctx, ev)
	case *PhotoEvent:
		s.handlePhoto(ctx, ev)
	case nil:
		// unrecognized update shape, acknowledged as a no-op
	}
}

// Dispatch creates a task for a worker chat, sends the status card with
// action buttons and records the card's message id
func (s *DispatchService) Dispatch(ctx context.Context, integrationID, workerChatID int64, title, description, externalRef string) (*models.WorkerTask, error) {
	ig, err := s.integrations.FindByID(integrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load integration %d: %w", integrationID, err)
	}
	if ig == nil {
		return nil, fmt.Errorf("integration %d not found", integrationID)
	}

	if externalRef == "" {
		externalRef = uuid.NewString()
	}
	task := &models.WorkerTask{
		IntegrationID: integrationID,
		WorkerChatID:  workerChatID,
		ExternalRef:   externalRef,
		Title:         title,
		Description:   description,
		Status:        models.TaskStatusSent,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.tasks.Create(task); err != nil {
		return nil, err
	}

	// Best-effort: the task exists even if the chat send fails
	msgID, err := s.chat.SendMessage(ctx, workerChatID, RenderStatusCard(task), CardKeyboard(task))
	if err != nil {
		log.Printf("failed to send task card for task %d: %v", task.ID, err)
		return task, nil
	}
	task.ChatMessageID = msgID
	if err := s.tasks.Save(task); err != nil {
		log.Printf("failed to record card message id for task %d: %v", task.ID, err)
	}
	return task, nil
}

func (s *DispatchService) handleCallback(ctx context.Context, ev *CallbackEvent) {
	action, taskID, ok := parseCallbackData(ev.Data)
	if !ok {
		s.answer(ctx, ev.CallbackID, "")
		return
	}

	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		log.Printf("failed to load task %d for callback: %v", taskID, err)
		s.answer(ctx, ev.CallbackID, "")
		return
	}
	if task == nil {
		s.answer(ctx, ev.CallbackID, "Task not found")
		return
	}

	var intent Intent
	switch action {
	case "start":
		intent = IntentStart
	case "done":
		intent = IntentDone
	case "problem":
		intent = IntentProblem
	default:
		s.answer(ctx, ev.CallbackID, "")
		return
	}

	if !s.applyIntent(ctx, task, intent) {
		s.answer(ctx, ev.CallbackID, "Task is already completed")
		return
	}
	s.answer(ctx, ev.CallbackID, "")
}

func (s *DispatchService) handleText(ctx context.Context, ev *TextEvent) {
	raw := strings.TrimSpace(ev.Text)
	norm := NormalizeText(ev.Text)

	if norm == "/start" {
		s.greet(ctx, ev.ChatID)
		return
	}

	task, err := s.tasks.FindActiveByChat(ev.ChatID)
	if err != nil {
		log.Printf("failed to resolve active task for chat %d: %v", ev.ChatID, err)
		return
	}
	if task == nil {
		if isCommandWord(norm) {
			s.send(ctx, ev.ChatID, "You have no active task right now.", nil)
		}
		// other stray text from unknown chats is silently ignored
		return
	}

	// While a problem report is pending, the next message is the problem
	// description verbatim, never re-interpreted as a command
	if task.Status == models.TaskStatusProblem && task.ProblemDescription == "" {
		s.captureProblemDescription(ctx, task, raw)
		return
	}

	if intent, ok := ParseIntent(norm); ok {
		s.applyIntent(ctx, task, intent)
		return
	}

	if norm == "skip location" {
		s.send(ctx, ev.ChatID, "No problem, continuing without location tracking.", telegram.RemoveKeyboard())
		return
	}

	// Default: keep the note, don't touch the status
	task.AddComment(raw, s.now().UTC())
	if err := s.tasks.Save(task); err != nil {
		log.Printf("failed to save comment on task %d: %v", task.ID, err)
		return
	}
	s.send(ctx, ev.ChatID, fmt.Sprintf("Noted 📝 (%d comment(s) on this task)", len(task.Comments)), nil)
}

func (s *DispatchService) handlePhoto(ctx context.Context, ev *PhotoEvent) {
	task, err := s.tasks.FindActiveByChat(ev.ChatID)
	if err != nil {
		log.Printf("failed to resolve active task for chat %d: %v", ev.ChatID, err)
		return
	}
	if task == nil {
		s.send(ctx, ev.ChatID, "You have no active task right now.", nil)
		return
	}

	// Telegram orders variants smallest first; take the best resolution
	best := ev.Photos[len(ev.Photos)-1]
	url, err := s.chat.GetFileURL(ctx, best.FileID)
	if err != nil {
		log.Printf("failed to resolve photo %s for task %d: %v", best.FileID, task.ID, err)
		return
	}

	task.Photos = append(task.Photos, url)
	if ev.Caption != "" {
		task.AddComment("[Photo] "+ev.Caption, s.now().UTC())
	}
	if err := s.tasks.Save(task); err != nil {
		log.Printf("failed to save photo on task %d: %v", task.ID, err)
		return
	}
	s.send(ctx, ev.ChatID, fmt.Sprintf("Photo saved 📷 (%d attached)", len(task.Photos)), nil)
}

// greet handles the /start onboarding command, independent of any task;
// first contact promotes a freshly dispatched task to seen
func (s *DispatchService) greet(ctx context.Context, chatID int64) {
	task, err := s.tasks.FindActiveByChat(chatID)
	if err != nil {
		log.Printf("failed to resolve active task for chat %d: %v", chatID, err)
	}
	if task != nil && MarkSeen(task) {
		if err := s.tasks.Save(task); err != nil {
			log.Printf("failed to mark task %d seen: %v", task.ID, err)
		}
		s.refreshCard(ctx, task)
		s.send(ctx, chatID, "Hi! You have a task waiting: "+task.Title, nil)
		return
	}
	s.send(ctx, chatID, "Hi! I'll send you field tasks here. Reply \"start\", \"done\" or \"problem\" to update them.", nil)
}

// applyIntent runs one state-machine step with its side effects; returns
// false when the transition is illegal (e.g. the task is already terminal)
func (s *DispatchService) applyIntent(ctx context.Context, task *models.WorkerTask, intent Intent) bool {
	ig, err := s.integrations.FindByID(task.IntegrationID)
	if err != nil {
		log.Printf("failed to load integration %d: %v", task.IntegrationID, err)
	}

	if !Transition(task, intent, s.now().UTC()) {
		return false
	}

	if err := s.tasks.Save(task); err != nil {
		log.Printf("failed to save task %d after transition: %v", task.ID, err)
	}

	switch intent {
	case IntentStart:
		if ig != nil && ig.EnableLocationTracking && (task.Tracking == nil || !task.Tracking.Enabled) {
			s.send(ctx, task.WorkerChatID,
				"On it! Share your live location so I can track the trip, or tap \"Skip location\".",
				telegram.LocationRequestKeyboard())
		} else {
			s.send(ctx, task.WorkerChatID, "On it! Reply \"done\" when finished.", nil)
		}
	case IntentDone:
		s.updateStats(ig, task)
		s.send(ctx, task.WorkerChatID, completionSummary(task), telegram.RemoveKeyboard())
	case IntentProblem:
		s.send(ctx, task.WorkerChatID, "What went wrong? Describe the problem in your next message.", nil)
	}

	s.refreshCard(ctx, task)
	return true
}

func (s *DispatchService) captureProblemDescription(ctx context.Context, task *models.WorkerTask, text string) {
	task.ProblemDescription = text
	if err := s.tasks.Save(task); err != nil {
		log.Printf("failed to save problem description on task %d: %v", task.ID, err)
		return
	}

	ig, err := s.integrations.FindByID(task.IntegrationID)
	if err != nil {
		log.Printf("failed to load integration %d: %v", task.IntegrationID, err)
	}
	if ig != nil && ig.NotifyOnProblem {
		s.send(ctx, ig.OwnerChatID,
			fmt.Sprintf("⚠️ Problem on task \"%s\": %s", task.Title, task.ProblemDescription), nil)
	}

	s.refreshCard(ctx, task)
	s.send(ctx, task.WorkerChatID, "Thanks, your manager has been notified.", nil)
}

// updateStats bumps the completed counter and the rolling average response
// time. The average keeps the historical (old+new)/2 recurrence.
func (s *DispatchService) updateStats(ig *models.Integration, task *models.WorkerTask) {
	if ig == nil {
		return
	}
	ig.TasksCompleted++
	if task.StartedAt != nil && task.CompletedAt != nil {
		minutes := task.CompletedAt.Sub(*task.StartedAt).Minutes()
		ig.AvgResponseMinutes = (ig.AvgResponseMinutes + minutes) / 2
	}
	if err := s.integrations.Save(ig); err != nil {
		log.Printf("failed to save stats for integration %d: %v", ig.ID, err)
	}
}

func completionSummary(task *models.WorkerTask) string {
	text := "All done, great job! ✅"
	if tr := task.Tracking; tr != nil && tr.TotalDistanceMeters > 0 {
		text += " Trip total: " + FormatDistance(tr.TotalDistanceMeters) + "."
	}
	if n := len(task.Photos); n > 0 {
		text += fmt.Sprintf(" %d photo(s) attached.", n)
	}
	return text
}

// refreshCard re-renders the task's status card in place, best-effort
func (s *DispatchService) refreshCard(ctx context.Context, task *models.WorkerTask) {
	if task.ChatMessageID == 0 {
		return
	}
	err := s.chat.EditMessageText(ctx, task.WorkerChatID, task.ChatMessageID, RenderStatusCard(task), CardKeyboard(task))
	if err != nil {
		log.Printf("failed to refresh status card for task %d: %v", task.ID, err)
	}
}

func (s *DispatchService) send(ctx context.Context, chatID int64, text string, markup any) {
	if _, err := s.chat.SendMessage(ctx, chatID, text, markup); err != nil {
		log.Printf("failed to send message to chat %d: %v", chatID, err)
	}
}

func (s *DispatchService) answer(ctx context.Context, callbackID, text string) {
	if err := s.chat.AnswerCallbackQuery(ctx, callbackID, text); err != nil {
		log.Printf("failed to answer callback %s: %v", callbackID, err)
	}
}

// parseCallbackData splits an action token of the form "task_<action>_<id>"
func parseCallbackData(data string) (action string, taskID int64, ok bool) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 || parts[0] != "task" {
		return "", 0, false
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return parts[1], id, true
}
