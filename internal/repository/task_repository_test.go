package repository

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fieldops/dispatch-backend-go/internal/database"
	"github.com/fieldops/dispatch-backend-go/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return db
}

func createIntegration(t *testing.T, db *sql.DB) *models.Integration {
	t.Helper()
	repo := NewIntegrationRepository(db)
	ig := &models.Integration{
		Name:         "acme",
		OwnerChatID:  900,
		WebhookToken: "token-1",
	}
	if err := repo.Create(ig); err != nil {
		t.Fatalf("create integration: %v", err)
	}
	return ig
}

func TestTaskRepositoryRoundTrip(t *testing.T) {
	db := testDB(t)
	ig := createIntegration(t, db)
	repo := NewTaskRepository(db)

	started := time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC)
	task := &models.WorkerTask{
		IntegrationID: ig.ID,
		WorkerChatID:  100,
		ExternalRef:   "ext-1",
		Title:         "Fix the pump",
		Description:   "Basement, unit 4B",
		Status:        models.TaskStatusStarted,
		CreatedAt:     started.Add(-time.Hour),
		StartedAt:     &started,
		Photos:        []string{"https://files.example/a.jpg"},
		Comments:      []models.Comment{{Text: "on my way", At: started}},
		ChatMessageID: 42,
		Tracking: &models.LocationTracking{
			Enabled:             true,
			TotalDistanceMeters: 1234.5,
			Current:             &models.LocationPoint{Latitude: 1, Longitude: 2, Timestamp: started},
			History:             []models.LocationPoint{{Latitude: 1, Longitude: 2, Timestamp: started}},
			StartedAt:           &started,
		},
	}
	if err := repo.Create(task); err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := repo.FindByID(task.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("expected task")
	}
	if got.Title != task.Title || got.Status != models.TaskStatusStarted || got.ChatMessageID != 42 {
		t.Fatalf("unexpected task: %+v", got)
	}
	if len(got.Photos) != 1 || len(got.Comments) != 1 {
		t.Fatalf("attachments lost: %+v", got)
	}
	if got.Tracking == nil || !got.Tracking.Enabled || got.Tracking.TotalDistanceMeters != 1234.5 {
		t.Fatalf("tracking lost: %+v", got.Tracking)
	}

	got.Status = models.TaskStatusCompleted
	got.Tracking.Enabled = false
	if err := repo.Save(got); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := repo.FindByID(task.ID)
	if err != nil {
		t.Fatalf("re-find: %v", err)
	}
	if saved.Status != models.TaskStatusCompleted || saved.Tracking.Enabled {
		t.Fatalf("save not persisted: %+v", saved)
	}
}

func TestFindByIDMissing(t *testing.T) {
	db := testDB(t)
	repo := NewTaskRepository(db)

	got, err := repo.FindByID(12345)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing task, got %+v", got)
	}
}

func TestFindActiveByChatPicksNewestNonTerminal(t *testing.T) {
	db := testDB(t)
	ig := createIntegration(t, db)
	repo := NewTaskRepository(db)

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	mk := func(title, status string, createdAt time.Time) *models.WorkerTask {
		task := &models.WorkerTask{
			IntegrationID: ig.ID,
			WorkerChatID:  100,
			Title:         title,
			Status:        status,
			CreatedAt:     createdAt,
		}
		if err := repo.Create(task); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		return task
	}

	mk("oldest", models.TaskStatusSent, base)
	mk("completed", models.TaskStatusCompleted, base.Add(2*time.Hour))
	want := mk("newest active", models.TaskStatusSeen, base.Add(time.Hour))

	got, err := repo.FindActiveByChat(100)
	if err != nil {
		t.Fatalf("find active: %v", err)
	}
	if got == nil || got.ID != want.ID {
		t.Fatalf("expected %q, got %+v", "newest active", got)
	}

	other, err := repo.FindActiveByChat(999)
	if err != nil {
		t.Fatalf("find active other chat: %v", err)
	}
	if other != nil {
		t.Fatalf("expected nil for an unknown chat, got %+v", other)
	}
}

func TestFindStaleSent(t *testing.T) {
	db := testDB(t)
	ig := createIntegration(t, db)
	repo := NewTaskRepository(db)

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	stale := &models.WorkerTask{IntegrationID: ig.ID, WorkerChatID: 100, Title: "stale", CreatedAt: now.Add(-2 * time.Hour)}
	fresh := &models.WorkerTask{IntegrationID: ig.ID, WorkerChatID: 101, Title: "fresh", CreatedAt: now.Add(-time.Minute)}
	for _, task := range []*models.WorkerTask{stale, fresh} {
		if err := repo.Create(task); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := repo.FindStaleSent(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("find stale: %v", err)
	}
	if len(got) != 1 || got[0].ID != stale.ID {
		t.Fatalf("expected only the stale task, got %+v", got)
	}
}
