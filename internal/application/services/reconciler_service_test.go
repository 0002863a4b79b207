package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arakoo/atm/internal/domain/entities"
	"github.com/arakoo/atm/internal/infrastructure/logger"
	"github.com/arakoo/atm/internal/infrastructure/metrics"
)

// fakeStore serves a settable task list and can be switched to fail.
type fakeStore struct {
	mu    sync.Mutex
	tasks []entities.Task
	err   error
}

func (f *fakeStore) FetchTasks(ctx context.Context, identifier string) ([]entities.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entities.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeStore) SaveTasks(ctx context.Context, identifier string, tasks []entities.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
	return nil
}

func (f *fakeStore) set(tasks []entities.Task, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
	f.err = err
}

// fakeSink records alert batches.
type fakeSink struct {
	mu      sync.Mutex
	batches [][]entities.Notification
}

func (f *fakeSink) Alert(identifier string, batch []entities.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func newTestReconciler(store *fakeStore, sink *fakeSink) *ReconcilerService {
	return NewReconcilerService(store, sink, time.Minute, logger.NewNop(), metrics.NewNopEngine())
}

// tick runs one reconciliation pass synchronously for tests.
func (s *ReconcilerService) tick(t *testing.T, identifier string) {
	t.Helper()
	s.mu.Lock()
	l, ok := s.loops[identifier]
	s.mu.Unlock()
	if !ok {
		t.Fatalf("no loop for %q", identifier)
	}
	s.runTick(l)
}

func dueTask(due time.Time) entities.Task {
	return entities.Task{
		ID:        uuid.New(),
		Title:     "prepare demo",
		Category:  entities.CategoryCompany,
		Status:    entities.TaskStatusInProgress,
		Priority:  entities.PriorityHigh,
		DueDate:   due,
		CreatedAt: time.Now().Add(-time.Hour),
	}
}

func TestReconcilerSubscribePublishesSnapshot(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	store.set([]entities.Task{
		dueTask(time.Now().Add(48 * time.Hour)),
		{
			ID:       uuid.New(),
			Title:    "water plants",
			Category: entities.CategoryPersonal,
			Status:   entities.TaskStatusPending,
			DueDate:  time.Now().Add(49 * time.Hour),
		},
	}, nil)

	rec := newTestReconciler(store, sink)
	defer rec.Stop()

	if err := rec.Subscribe("alice@example.com"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	snap, ok := rec.Snapshot("alice@example.com")
	if !ok {
		t.Fatal("no snapshot after subscribe")
	}
	if len(snap.CompanyTasks) != 1 || len(snap.PersonalTasks) != 1 {
		t.Fatalf("partition = %d company / %d personal, want 1/1", len(snap.CompanyTasks), len(snap.PersonalTasks))
	}
	// Far-future pending task is promoted by derivation.
	if snap.PersonalTasks[0].Status != entities.TaskStatusInProgress {
		t.Errorf("personal task status = %q, want in-progress", snap.PersonalTasks[0].Status)
	}
	if len(snap.Notifications) != 0 {
		t.Errorf("notifications = %+v, want none for far-future tasks", snap.Notifications)
	}
	if sink.count() != 0 {
		t.Errorf("alert fired with no new notifications")
	}
}

func TestReconcilerAlertsOncePerBatch(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	// Two tasks inside the 1h band: one batch, one alert.
	store.set([]entities.Task{
		dueTask(time.Now().Add(20 * time.Minute)),
		dueTask(time.Now().Add(40 * time.Minute)),
	}, nil)

	rec := newTestReconciler(store, sink)
	defer rec.Stop()

	if err := rec.Subscribe("bob@example.com"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if sink.count() != 1 {
		t.Fatalf("alert count = %d, want exactly 1 for the batch", sink.count())
	}
	sink.mu.Lock()
	batchLen := len(sink.batches[0])
	sink.mu.Unlock()
	if batchLen != 2 {
		t.Errorf("batch size = %d, want 2", batchLen)
	}

	if !rec.ConsumeAlert("bob@example.com") {
		t.Error("ConsumeAlert should report the pending alert")
	}
	if rec.ConsumeAlert("bob@example.com") {
		t.Error("ConsumeAlert should clear the flag on read")
	}

	// Same state again: nothing new, no further alert.
	rec.tick(t, "bob@example.com")
	if sink.count() != 1 {
		t.Errorf("alert count after idempotent tick = %d, want 1", sink.count())
	}
	if rec.ConsumeAlert("bob@example.com") {
		t.Error("no alert should be pending after a tick with nothing new")
	}
}

func TestReconcilerFetchFailureRetainsState(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	task := dueTask(time.Now().Add(30 * time.Minute))
	store.set([]entities.Task{task}, nil)

	rec := newTestReconciler(store, sink)
	defer rec.Stop()

	if err := rec.Subscribe("carol@example.com"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	before, _ := rec.Snapshot("carol@example.com")
	if len(before.Notifications) != 1 {
		t.Fatalf("setup: notifications = %d, want 1", len(before.Notifications))
	}

	store.set(nil, errors.New("connection refused"))
	rec.tick(t, "carol@example.com")

	after, _ := rec.Snapshot("carol@example.com")
	if after.LastError == "" {
		t.Error("failed tick should surface a transient error message")
	}
	if len(after.Notifications) != 1 || after.Notifications[0].Key != before.Notifications[0].Key {
		t.Errorf("failed tick changed the live set: %+v", after.Notifications)
	}
	if len(after.CompanyTasks) != 1 {
		t.Errorf("failed tick changed the task snapshot: %+v", after)
	}

	// Recovery on the next tick clears the error.
	store.set([]entities.Task{task}, nil)
	rec.tick(t, "carol@example.com")
	recovered, _ := rec.Snapshot("carol@example.com")
	if recovered.LastError != "" {
		t.Errorf("recovered tick kept error %q", recovered.LastError)
	}
}

func TestReconcilerExpiryAcrossTicks(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	task := dueTask(time.Now().Add(2 * time.Second))
	store.set([]entities.Task{task}, nil)

	rec := newTestReconciler(store, sink)
	defer rec.Stop()

	if err := rec.Subscribe("dave@example.com"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	snap, _ := rec.Snapshot("dave@example.com")
	if len(snap.Notifications) != 1 {
		t.Fatalf("setup: notifications = %d, want 1", len(snap.Notifications))
	}

	// Deleting the task expires its notification on the next pass.
	store.set(nil, nil)
	rec.tick(t, "dave@example.com")
	snap, _ = rec.Snapshot("dave@example.com")
	if len(snap.Notifications) != 0 {
		t.Errorf("notification for deleted task survived: %+v", snap.Notifications)
	}
}

func TestReconcilerUnsubscribe(t *testing.T) {
	store := &fakeStore{}
	sink := &fakeSink{}
	rec := newTestReconciler(store, sink)
	defer rec.Stop()

	if err := rec.Subscribe("erin@example.com"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	rec.Unsubscribe("erin@example.com")

	if _, ok := rec.Snapshot("erin@example.com"); ok {
		t.Error("snapshot still available after unsubscribe")
	}

	// Unsubscribing twice is a no-op.
	rec.Unsubscribe("erin@example.com")
}
