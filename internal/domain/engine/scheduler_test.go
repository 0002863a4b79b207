package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/arakoo/atm/internal/domain/entities"
)

func key(t entities.Task, w entities.Window) entities.NotificationKey {
	return entities.NotificationKey{TaskID: t.ID, Window: w}
}

func TestReconcileEmitsOneHourAlert(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	task := newTask(entities.TaskStatusInProgress, now.Add(30*time.Minute))

	result := Reconcile([]entities.Task{task}, now, nil)
	if len(result.New) != 1 {
		t.Fatalf("got %d new notifications, want 1", len(result.New))
	}

	n := result.New[0]
	if n.Key != key(task, entities.Window1h) {
		t.Errorf("key = %v, want %v", n.Key, key(task, entities.Window1h))
	}
	if !strings.Contains(n.Message, task.Title) || !strings.Contains(n.Message, "1 hour") {
		t.Errorf("message = %q, want it to name the task and the 1 hour window", n.Message)
	}
	if !n.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want %v", n.Timestamp, now)
	}
}

func TestReconcileNoDuplicates(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	task := newTask(entities.TaskStatusInProgress, now.Add(30*time.Minute))
	tasks := []entities.Task{task}

	first := Reconcile(tasks, now, nil)
	if len(first.Live) != 1 {
		t.Fatalf("first pass live = %d, want 1", len(first.Live))
	}

	second := Reconcile(tasks, now, first.Live)
	if len(second.New) != 0 {
		t.Errorf("second pass emitted %d new notifications, want 0", len(second.New))
	}
	if len(second.Live) != 1 || second.Live[0].Key != first.Live[0].Key {
		t.Errorf("second pass live = %+v, want the same single notification", second.Live)
	}
}

func TestReconcileTwentyFourHourBand(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		remaining time.Duration
		windows   []entities.Window
	}{
		{"just inside 24h band", 23*time.Hour + 59*time.Minute, []entities.Window{entities.Window24h}},
		{"exactly 24h out", 24 * time.Hour, []entities.Window{entities.Window24h}},
		{"past the band, before the 1h band", 22 * time.Hour, nil},
		{"exactly 23h out is no longer in band", 23 * time.Hour, nil},
		{"25h out is too early", 25 * time.Hour, nil},
		{"both bands never overlap, 1h only", 45 * time.Minute, []entities.Window{entities.Window1h}},
		{"due date passed", -time.Minute, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task := newTask(entities.TaskStatusInProgress, now.Add(tt.remaining))
			result := Reconcile([]entities.Task{task}, now, nil)
			if len(result.New) != len(tt.windows) {
				t.Fatalf("got %d notifications, want %d", len(result.New), len(tt.windows))
			}
			for i, w := range tt.windows {
				if result.New[i].Key.Window != w {
					t.Errorf("notification %d window = %q, want %q", i, result.New[i].Key.Window, w)
				}
			}
		})
	}
}

func TestReconcileExpiresWhenTaskDeleted(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	task := newTask(entities.TaskStatusInProgress, now.Add(30*time.Minute))

	live := Reconcile([]entities.Task{task}, now, nil).Live
	if len(live) != 1 {
		t.Fatalf("setup: live = %d, want 1", len(live))
	}

	next := Reconcile(nil, now, live)
	if len(next.Surviving) != 0 || len(next.Live) != 0 {
		t.Errorf("notification for deleted task survived: %+v", next.Live)
	}
}

func TestReconcileTwentyFourHourAlertSuperseded(t *testing.T) {
	t.Parallel()

	issued := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	task := newTask(entities.TaskStatusInProgress, issued.Add(23*time.Hour+30*time.Minute))

	live := Reconcile([]entities.Task{task}, issued, nil).Live
	if len(live) != 1 || live[0].Key.Window != entities.Window24h {
		t.Fatalf("setup: expected a single 24h notification, got %+v", live)
	}

	// An hour later less than 23h remain: the 24h alert expires.
	later := issued.Add(time.Hour)
	next := Reconcile([]entities.Task{task}, later, live)
	if len(next.Surviving) != 0 {
		t.Errorf("24h notification should have expired, surviving = %+v", next.Surviving)
	}
	if len(next.New) != 0 {
		t.Errorf("nothing should fire at 22h30m remaining, new = %+v", next.New)
	}
}

func TestReconcileEndToEnd(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	task := newTask(entities.TaskStatusInProgress, now.Add(30*time.Minute))

	// First tick: status holds, the 1h alert fires.
	derived := DeriveStatus(task, now)
	if derived.Status != entities.TaskStatusInProgress {
		t.Fatalf("first tick status = %q, want in-progress", derived.Status)
	}
	result := Reconcile([]entities.Task{derived}, now, nil)
	if len(result.New) != 1 || result.New[0].Key.Window != entities.Window1h {
		t.Fatalf("first tick notifications = %+v, want a single 1h alert", result.New)
	}

	// Second tick, 31 minutes later: the due date has passed. The task is
	// flagged pending and the 1h alert expires with nothing new.
	later := now.Add(31 * time.Minute)
	derived = DeriveStatus(derived, later)
	if derived.Status != entities.TaskStatusPending {
		t.Fatalf("second tick status = %q, want pending", derived.Status)
	}
	next := Reconcile([]entities.Task{derived}, later, result.Live)
	if len(next.New) != 0 {
		t.Errorf("second tick emitted %+v, want nothing", next.New)
	}
	if len(next.Live) != 0 {
		t.Errorf("second tick live = %+v, want empty", next.Live)
	}
}

func TestReconcileInsertionOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	early := newTask(entities.TaskStatusInProgress, now.Add(30*time.Minute))
	nearDay := newTask(entities.TaskStatusInProgress, now.Add(23*time.Hour+45*time.Minute))

	first := Reconcile([]entities.Task{early}, now, nil)

	// A later pass picks up the second task; the earlier notification keeps
	// its place at the head of the live set.
	second := Reconcile([]entities.Task{early, nearDay}, now.Add(time.Minute), first.Live)
	if len(second.Live) != 2 {
		t.Fatalf("live = %d, want 2", len(second.Live))
	}
	if second.Live[0].Key.TaskID != early.ID {
		t.Errorf("surviving notification should precede the new one")
	}
	if second.Live[1].Key != key(nearDay, entities.Window24h) {
		t.Errorf("second live entry = %v, want the 24h alert for the later task", second.Live[1].Key)
	}
}

func TestReconcileSkipsTasksWithoutDueDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	task := newTask(entities.TaskStatusInProgress, time.Time{})

	result := Reconcile([]entities.Task{task}, now, nil)
	if len(result.New) != 0 {
		t.Errorf("task without a due date alerted: %+v", result.New)
	}
}
