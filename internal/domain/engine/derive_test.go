package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/arakoo/atm/internal/domain/entities"
)

func newTask(status entities.TaskStatus, due time.Time) entities.Task {
	return entities.Task{
		ID:        uuid.New(),
		Title:     "write quarterly report",
		Category:  entities.CategoryPersonal,
		Status:    status,
		Priority:  entities.PriorityMedium,
		DueDate:   due,
		CreatedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestDeriveStatus(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status entities.TaskStatus
		due    time.Time
		want   entities.TaskStatus
	}{
		{"completed stays completed", entities.TaskStatusCompleted, now.Add(time.Hour), entities.TaskStatusCompleted},
		{"completed stays completed when overdue", entities.TaskStatusCompleted, now.Add(-48 * time.Hour), entities.TaskStatusCompleted},
		{"overdue in-progress becomes pending", entities.TaskStatusInProgress, now.Add(-time.Hour), entities.TaskStatusPending},
		{"overdue pending stays pending", entities.TaskStatusPending, now.Add(-time.Minute), entities.TaskStatusPending},
		{"future in-progress unchanged", entities.TaskStatusInProgress, now.Add(2 * time.Hour), entities.TaskStatusInProgress},
		{"future pending promoted to in-progress", entities.TaskStatusPending, now.Add(2 * time.Hour), entities.TaskStatusInProgress},
		{"no due date promoted to in-progress", entities.TaskStatusPending, time.Time{}, entities.TaskStatusInProgress},
		{"no due date in-progress unchanged", entities.TaskStatusInProgress, time.Time{}, entities.TaskStatusInProgress},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DeriveStatus(newTask(tt.status, tt.due), now)
			if got.Status != tt.want {
				t.Errorf("DeriveStatus status = %q, want %q", got.Status, tt.want)
			}
		})
	}
}

func TestDeriveStatusIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	dues := []time.Time{
		now.Add(-26 * time.Hour),
		now.Add(-time.Second),
		now.Add(time.Second),
		now.Add(30 * time.Hour),
		{},
	}
	statuses := []entities.TaskStatus{
		entities.TaskStatusPending,
		entities.TaskStatusInProgress,
		entities.TaskStatusCompleted,
	}

	for _, due := range dues {
		for _, status := range statuses {
			once := DeriveStatus(newTask(status, due), now)
			twice := DeriveStatus(once, now)
			if once != twice {
				t.Errorf("derive not idempotent for status=%q due=%v: %+v vs %+v", status, due, once, twice)
			}
		}
	}
}

func TestDeriveStatusDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	in := newTask(entities.TaskStatusInProgress, now.Add(-time.Hour))
	before := in

	out := DeriveStatus(in, now)
	if in != before {
		t.Fatalf("input task mutated: %+v", in)
	}
	if out.Status != entities.TaskStatusPending {
		t.Fatalf("derived status = %q, want %q", out.Status, entities.TaskStatusPending)
	}
	if out.ID != in.ID || out.Title != in.Title || !out.DueDate.Equal(in.DueDate) {
		t.Errorf("derivation changed fields other than status: %+v", out)
	}
}

func TestDeriveAll(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tasks := []entities.Task{
		newTask(entities.TaskStatusPending, now.Add(time.Hour)),
		newTask(entities.TaskStatusInProgress, now.Add(-time.Hour)),
		newTask(entities.TaskStatusCompleted, now.Add(-time.Hour)),
	}

	derived := DeriveAll(tasks, now)
	if len(derived) != len(tasks) {
		t.Fatalf("DeriveAll returned %d tasks, want %d", len(derived), len(tasks))
	}

	want := []entities.TaskStatus{
		entities.TaskStatusInProgress,
		entities.TaskStatusPending,
		entities.TaskStatusCompleted,
	}
	for i, task := range derived {
		if task.Status != want[i] {
			t.Errorf("task %d status = %q, want %q", i, task.Status, want[i])
		}
	}

	if tasks[0].Status != entities.TaskStatusPending {
		t.Error("DeriveAll mutated its input slice")
	}

	if DeriveAll(nil, now) != nil {
		t.Error("DeriveAll(nil) should return nil")
	}
}
