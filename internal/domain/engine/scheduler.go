package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arakoo/atm/internal/domain/entities"
)

// Result is the outcome of one reconcile pass. Live is Surviving followed by
// New, de-duplicated by key, in insertion order.
type Result struct {
	New       []entities.Notification
	Surviving []entities.Notification
	Live      []entities.Notification
}

// Reconcile computes the next live-notification set from the current task
// collection, the reference instant, and the previous live set.
//
// A previously issued notification survives only while its task still exists
// and its window still holds: the 24h alert while more than 23 hours remain,
// the 1h alert while the due date has not passed. Everything else expires.
//
// A new notification is emitted when a task sits inside an alert band and no
// notification with the same (task, window) key is already live. The 24h
// band is one polling period wide (between 23 and 24 hours out) so it is
// caught exactly once; the 1h band stays open until the due date passes and
// relies on de-duplication instead, since missing the final hour is worse
// than re-detecting it. Tasks without a due date never alert.
func Reconcile(tasks []entities.Task, now time.Time, live []entities.Notification) Result {
	byID := make(map[entities.NotificationKey]struct{}, len(live)+len(tasks))

	var result Result

	for _, n := range live {
		task, ok := findTask(tasks, n.Key.TaskID)
		if !ok {
			continue
		}
		if !windowHolds(n.Key.Window, task, now) {
			continue
		}
		result.Surviving = append(result.Surviving, n)
		byID[n.Key] = struct{}{}
	}

	for _, task := range tasks {
		if task.DueDate.IsZero() {
			continue
		}
		for _, window := range []entities.Window{entities.Window24h, entities.Window1h} {
			if !inBand(window, task.DueDate.Sub(now)) {
				continue
			}
			key := entities.NotificationKey{TaskID: task.ID, Window: window}
			if _, exists := byID[key]; exists {
				continue
			}
			byID[key] = struct{}{}
			result.New = append(result.New, entities.Notification{
				Key:       key,
				Message:   alertMessage(task, window),
				Timestamp: now,
			})
		}
	}

	result.Live = make([]entities.Notification, 0, len(result.Surviving)+len(result.New))
	result.Live = append(result.Live, result.Surviving...)
	result.Live = append(result.Live, result.New...)
	return result
}

// inBand reports whether the remaining time sits inside the window's
// detection band.
func inBand(window entities.Window, remaining time.Duration) bool {
	switch window {
	case entities.Window24h:
		return remaining > 23*time.Hour && remaining <= 24*time.Hour
	case entities.Window1h:
		return remaining > 0 && remaining <= time.Hour
	default:
		return false
	}
}

// windowHolds reports whether an already issued notification is still
// current for its task.
func windowHolds(window entities.Window, task entities.Task, now time.Time) bool {
	if task.DueDate.IsZero() {
		return false
	}
	remaining := task.DueDate.Sub(now)
	switch window {
	case entities.Window24h:
		return remaining > 23*time.Hour
	case entities.Window1h:
		return remaining > 0
	default:
		return false
	}
}

func alertMessage(task entities.Task, window entities.Window) string {
	switch window {
	case entities.Window24h:
		return fmt.Sprintf("Task %q will end in 24 hours", task.Title)
	case entities.Window1h:
		return fmt.Sprintf("Task %q will end in 1 hour", task.Title)
	default:
		return fmt.Sprintf("Task %q is due soon", task.Title)
	}
}

func findTask(tasks []entities.Task, id uuid.UUID) (entities.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return entities.Task{}, false
}
