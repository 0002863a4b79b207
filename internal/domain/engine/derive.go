// Package engine holds the task status derivation and notification
// scheduling rules. Everything in this package is a pure function over its
// inputs: no clocks, no stores, no retained references. The reconciliation
// loop in the services layer is the only holder of mutable state.
package engine

import (
	"time"

	"github.com/arakoo/atm/internal/domain/entities"
)

// DeriveStatus returns a copy of the task with its status recomputed against
// the reference instant. Rules apply in strict order, first match wins:
//
//  1. A completed task is terminal and is returned unchanged.
//  2. An overdue task is flagged pending, whatever its prior status. Here
//     "pending" means "past due, needs attention".
//  3. An in-progress task stays in-progress.
//  4. Anything else is promoted to in-progress.
//
// Applying DeriveStatus twice with the same now yields the same result as
// applying it once.
func DeriveStatus(task entities.Task, now time.Time) entities.Task {
	if task.Status == entities.TaskStatusCompleted {
		return task
	}

	if task.IsOverdue(now) {
		task.Status = entities.TaskStatusPending
		return task
	}

	if task.Status == entities.TaskStatusInProgress {
		return task
	}

	task.Status = entities.TaskStatusInProgress
	return task
}

// DeriveAll applies DeriveStatus to every task, returning a fresh slice.
func DeriveAll(tasks []entities.Task, now time.Time) []entities.Task {
	if tasks == nil {
		return nil
	}
	derived := make([]entities.Task, len(tasks))
	for i, task := range tasks {
		derived[i] = DeriveStatus(task, now)
	}
	return derived
}
