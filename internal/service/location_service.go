package service

import (
	"context"
	"log"
	"time"

	"github.com/fieldops/dispatch-backend-go/internal/models"
	"github.com/fieldops/dispatch-backend-go/internal/spatial"
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

const (
	// Movements below this threshold are GPS jitter, not travel
	minMovementMeters = 10.0
	// History is a ring of the most recent points
	maxHistoryPoints = 500
	// Minimum gap between webhook pushes for one task
	webhookMinInterval = 30 * time.Second
)

// handleLocation turns one location event into tracking state: denoised
// distance accumulation, bounded history, throttled webhook push
func (s *DispatchService) handleLocation(ctx context.Context, ev *LocationEvent) {
	task, err := s.tasks.FindActiveByChat(ev.ChatID)
	if err != nil {
		log.Printf("failed to resolve active task for chat %d: %v", ev.ChatID, err)
		return
	}
	if task == nil {
		s.send(ctx, ev.ChatID, "Location received, but you have no active task — ignoring it.", nil)
		return
	}

	now := s.now().UTC()
	point := models.LocationPoint{
		Latitude:  ev.Location.Latitude,
		Longitude: ev.Location.Longitude,
		Accuracy:  ev.Location.HorizontalAccuracy,
		Speed:     ev.Location.Speed,
		Heading:   ev.Location.Heading,
		Timestamp: now,
	}

	tr := task.EnsureTracking()

	// The first point of a session has nothing to measure against
	if tr.Current != nil {
		d := spatial.HaversineDistance(tr.Current.Latitude, tr.Current.Longitude, point.Latitude, point.Longitude)
		if d > minMovementMeters {
			tr.TotalDistanceMeters += d
		}
	}

	tr.Current = &point
	tr.History = append(tr.History, point)
	if len(tr.History) > maxHistoryPoints {
		tr.History = tr.History[len(tr.History)-maxHistoryPoints:]
	}

	if ev.Live && !tr.Enabled {
		tr.Enabled = true
		tr.StartedAt = &now
		s.send(ctx, ev.ChatID, "Live tracking is on 📍 I'll record your route until the task is done.",
			telegram.RemoveKeyboard())
	} else if !ev.Live && !tr.Enabled {
		s.send(ctx, ev.ChatID, "Got your location. Share a *live* location instead and I'll track the whole trip.", nil)
	}

	s.pushLocationWebhook(ctx, task, tr, point, now)

	if err := s.tasks.Save(task); err != nil {
		log.Printf("failed to save tracking state for task %d: %v", task.ID, err)
	}
}

// pushLocationWebhook posts the current point to the integration's webhook,
// throttled per task; the timestamp is recorded on send, not on skip
func (s *DispatchService) pushLocationWebhook(ctx context.Context, task *models.WorkerTask, tr *models.LocationTracking, point models.LocationPoint, now time.Time) {
	ig, err := s.integrations.FindByID(task.IntegrationID)
	if err != nil {
		log.Printf("failed to load integration %d: %v", task.IntegrationID, err)
		return
	}
	if ig == nil || ig.LocationWebhookURL == "" {
		return
	}

	if tr.LastWebhookAt != nil && now.Sub(*tr.LastWebhookAt) < webhookMinInterval {
		return
	}

	payload := LocationUpdatePayload{
		Event:        "location_update",
		TaskID:       task.ID,
		WorkerChatID: task.WorkerChatID,
		Location: LocationUpdateBody{
			Lat:       point.Latitude,
			Lng:       point.Longitude,
			Accuracy:  point.Accuracy,
			Speed:     point.Speed,
			Heading:   point.Heading,
			Timestamp: point.Timestamp,
		},
		TotalDistanceMeters: tr.TotalDistanceMeters,
		TrackingStartedAt:   tr.StartedAt,
	}
	if err := s.poster.PostLocationUpdate(ctx, ig.LocationWebhookURL, payload); err != nil {
		log.Printf("failed to push location webhook for task %d: %v", task.ID, err)
	}
	sent := now
	tr.LastWebhookAt = &sent
}
