package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrEmailTaken        = errors.New("email already registered")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrBadNotificationID = errors.New("malformed notification id")
)

// Enums and types
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryCompany  Category = "company"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Window identifies a due-date proximity band used for alerting.
type Window string

const (
	Window24h Window = "24h"
	Window1h  Window = "1h"
)

// User represents an account. The identifier under which a user's task lists
// are stored is the wallet address when present, otherwise the email.
type User struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Email         string     `json:"email" db:"email"`
	Username      string     `json:"username" db:"username"`
	PasswordHash  string     `json:"-" db:"password_hash"`
	WalletAddress *string    `json:"wallet_address" db:"wallet_address"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt     *time.Time `json:"-" db:"deleted_at"`
}

// Identifier returns the task-list key for the user.
func (u *User) Identifier() string {
	if u.WalletAddress != nil && *u.WalletAddress != "" {
		return *u.WalletAddress
	}
	return u.Email
}

// Task represents one unit of work. Tasks move between engine components by
// value; derivation returns a modified copy and never mutates its input.
type Task struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Category    Category   `json:"category" db:"category"`
	Status      TaskStatus `json:"status" db:"status"`
	Priority    Priority   `json:"priority" db:"priority"`
	DueDate     time.Time  `json:"due_date" db:"due_date"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	// Company-only attributes, informational.
	ProjectName *string `json:"project_name,omitempty" db:"project_name"`
	AssignedBy  *string `json:"assigned_by,omitempty" db:"assigned_by"`
	Department  *string `json:"department,omitempty" db:"department"`
}

// IsCompleted reports whether the task is in its terminal state.
func (t Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// IsOverdue reports whether the due date has passed. A task without a due
// date is never overdue.
func (t Task) IsOverdue(now time.Time) bool {
	if t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Before(now)
}

// NotificationKey identifies one (task, window) alert. It is the internal
// form of the composite id; the string form exists only at the JSON boundary.
type NotificationKey struct {
	TaskID uuid.UUID
	Window Window
}

// String serializes the key as "{taskID}-{windowTag}".
func (k NotificationKey) String() string {
	return fmt.Sprintf("%s-%s", k.TaskID, k.Window)
}

// ParseNotificationID parses a serialized composite id back into its key.
// Task ids contain hyphens, so the window tag is split off the last one.
func ParseNotificationID(id string) (NotificationKey, error) {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return NotificationKey{}, ErrBadNotificationID
	}
	taskID, err := uuid.Parse(id[:i])
	if err != nil {
		return NotificationKey{}, ErrBadNotificationID
	}
	window := Window(id[i+1:])
	if !window.IsValid() {
		return NotificationKey{}, ErrBadNotificationID
	}
	return NotificationKey{TaskID: taskID, Window: window}, nil
}

// Notification represents one issued alert. Notifications live only in the
// reconciliation loop's in-memory set for the duration of a session.
type Notification struct {
	Key       NotificationKey
	Message   string
	Timestamp time.Time
}

// MarshalJSON emits the presentation shape {id, message, timestamp} with the
// serialized composite id.
func (n Notification) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}{
		ID:        n.Key.String(),
		Message:   n.Message,
		Timestamp: n.Timestamp,
	})
}

// Utility methods
func (ts TaskStatus) IsValid() bool {
	switch ts {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryPersonal, CategoryCompany:
		return true
	default:
		return false
	}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func (w Window) IsValid() bool {
	switch w {
	case Window24h, Window1h:
		return true
	default:
		return false
	}
}

// Duration returns the remaining time the window tag names.
func (w Window) Duration() time.Duration {
	switch w {
	case Window24h:
		return 24 * time.Hour
	case Window1h:
		return time.Hour
	default:
		return 0
	}
}
