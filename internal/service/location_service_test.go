package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/fieldops/dispatch-backend-go/internal/models"
	"github.com/fieldops/dispatch-backend-go/internal/spatial"
	"github.com/fieldops/dispatch-backend-go/internal/telegram"
)

func locationUpdate(chatID int64, lat, lng float64, live bool) telegram.Update {
	msg := &telegram.Message{
		Chat:     telegram.Chat{ID: chatID},
		Location: &telegram.Location{Latitude: lat, Longitude: lng, HorizontalAccuracy: 5},
	}
	if live {
		return telegram.Update{EditedMessage: msg}
	}
	return telegram.Update{Message: msg}
}

func TestLocationNoiseFilterAndAccumulation(t *testing.T) {
	f := newFixture(t)
	f.addIntegration(&models.Integration{ID: 1})
	task := f.addTask(&models.WorkerTask{IntegrationID: 1, WorkerChatID: 100, Title: "T", Status: models.TaskStatusStarted})

	base := 48.8566
	lng := 2.3522

	// ~5 m of latitude is below the 10 m movement gate
	step5m := 5.0 / 111195
	// ~50 m of latitude
	step50m := 50.0 / 111195

	f.svc.HandleUpdate(context.Background(), locationUpdate(100, base, lng, true))
	f.svc.HandleUpdate(context.Background(), locationUpdate(100, base+step5m, lng, true))

	tr := task.Tracking
	if tr == nil {
		t.Fatal("tracking must be initialized")
	}
	if tr.TotalDistanceMeters != 0 {
		t.Fatalf("jitter below 10 m must not accumulate, got %f", tr.TotalDistanceMeters)
	}

	f.svc.HandleUpdate(context.Background(), locationUpdate(100, base+step5m+step50m, lng, true))

	want := spatial.HaversineDistance(base+step5m, lng, base+step5m+step50m, lng)
	if math.Abs(tr.TotalDistanceMeters-want) > 0.5 || math.Abs(tr.TotalDistanceMeters-50) > 2 {
		t.Fatalf("expected ~50 m accumulated, got %f (want %f)", tr.TotalDistanceMeters, want)
	}

	// the 5 m hop is measured from the last recorded current point, which
	// did move even though no distance was credited
	if tr.Current.Latitude != base+step5m+step50m {
		t.Fatalf("current point must follow every event, got %f", tr.Current.Latitude)
	}
}

func TestLocationHistoryBound(t *testing.T) {
	f := newFixture(t)
	f.addIntegration(&models.Integration{ID: 1})
	task := f.addTask(&models.WorkerTask{IntegrationID: 1, WorkerChatID: 100, Title: "T", Status: models.TaskStatusStarted})

	const total = 520
	for i := 0; i < total; i++ {
		lat := 10.0 + float64(i)*0.001
		f.svc.HandleUpdate(context.Background(), locationUpdate(100, lat, 20.0, true))
	}

	tr := task.Tracking
	if len(tr.History) != 500 {
		t.Fatalf("expected history capped at 500, got %d", len(tr.History))
	}
	// the oldest retained point is event #20 (0-based), the newest is the last
	if got := tr.History[0].Latitude; math.Abs(got-(10.0+20*0.001)) > 1e-9 {
		t.Fatalf("expected oldest retained point at lat %f, got %f", 10.0+20*0.001, got)
	}
	if got := tr.History[499].Latitude; math.Abs(got-(10.0+519*0.001)) > 1e-9 {
		t.Fatalf("expected newest point at lat %f, got %f", 10.0+519*0.001, got)
	}
}

func TestLocationWebhookThrottle(t *testing.T) {
	f := newFixture(t)
	f.addIntegration(&models.Integration{ID: 1, LocationWebhookURL: "https://pm.example/hooks/loc"})
	f.addTask(&models.WorkerTask{IntegrationID: 1, WorkerChatID: 100, Title: "T", Status: models.TaskStatusStarted})

	start := f.now
	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.0, 20.0, true))
	if len(f.poster.payloads) != 1 {
		t.Fatalf("expected first event to push, got %d", len(f.poster.payloads))
	}

	f.now = start.Add(10 * time.Second)
	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.001, 20.0, true))
	f.now = start.Add(29 * time.Second)
	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.002, 20.0, true))
	if len(f.poster.payloads) != 1 {
		t.Fatalf("pushes under 30s apart must be skipped, got %d", len(f.poster.payloads))
	}

	// skips must not move the throttle timestamp
	f.now = start.Add(31 * time.Second)
	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.003, 20.0, true))
	if len(f.poster.payloads) != 2 {
		t.Fatalf("expected push after the interval elapsed, got %d", len(f.poster.payloads))
	}

	p := f.poster.payloads[1]
	if p.Event != "location_update" || p.TaskID != 1 || p.WorkerChatID != 100 {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if p.Location.Lat != 10.003 || p.TotalDistanceMeters <= 0 {
		t.Fatalf("payload must carry the current point and running total: %+v", p)
	}
	if f.poster.urls[1] != "https://pm.example/hooks/loc" {
		t.Fatalf("unexpected webhook url: %s", f.poster.urls[1])
	}
}

func TestLiveLocationEnablesTracking(t *testing.T) {
	f := newFixture(t)
	f.addIntegration(&models.Integration{ID: 1})
	task := f.addTask(&models.WorkerTask{IntegrationID: 1, WorkerChatID: 100, Title: "T", Status: models.TaskStatusStarted})

	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.0, 20.0, true))

	tr := task.Tracking
	if tr == nil || !tr.Enabled {
		t.Fatal("live ping must enable tracking")
	}
	if tr.StartedAt == nil {
		t.Fatal("expected tracking started_at")
	}
	replies := f.chat.sentTo(100)
	if len(replies) != 1 {
		t.Fatalf("expected one acknowledgement, got %d", len(replies))
	}
	if _, ok := replies[0].markup.(*telegram.ReplyKeyboardRemove); !ok {
		t.Fatalf("ack must remove the location-request keyboard, got %#v", replies[0].markup)
	}

	// further live pings are silent
	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.001, 20.0, true))
	if got := len(f.chat.sentTo(100)); got != 1 {
		t.Fatalf("expected no more chat noise, got %d messages", got)
	}
}

func TestOneShotLocationSuggestsLiveSharing(t *testing.T) {
	f := newFixture(t)
	f.addIntegration(&models.Integration{ID: 1})
	task := f.addTask(&models.WorkerTask{IntegrationID: 1, WorkerChatID: 100, Title: "T", Status: models.TaskStatusStarted})

	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.0, 20.0, false))

	if task.Tracking.Enabled {
		t.Fatal("one-shot share must not enable tracking")
	}
	replies := f.chat.sentTo(100)
	if len(replies) != 1 || !strings.Contains(replies[0].text, "live") {
		t.Fatalf("expected a live-sharing suggestion, got %+v", replies)
	}
}

func TestLocationWithoutActiveTask(t *testing.T) {
	f := newFixture(t)

	f.svc.HandleUpdate(context.Background(), locationUpdate(100, 10.0, 20.0, false))

	replies := f.chat.sentTo(100)
	if len(replies) != 1 || !strings.Contains(replies[0].text, "no active task") {
		t.Fatalf("expected a received-but-ignored reply, got %+v", replies)
	}
	if len(f.poster.payloads) != 0 {
		t.Fatal("no webhook without a task")
	}
}
