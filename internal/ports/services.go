package ports

import (
	"time"

	"github.com/google/uuid"

	"github.com/arakoo/atm/internal/domain/entities"
)

// AlertSink receives the fire-and-forget alert signal the reconciliation
// loop produces: invoked exactly once per tick in which new notifications
// appeared, with the whole batch. Implementations must not block.
type AlertSink interface {
	Alert(identifier string, batch []entities.Notification)
}

// Snapshot is what the loop surfaces to the presentation layer after each
// tick: the derived task collections, the live notification set in detection
// order, and the last fetch error if the most recent tick failed.
type Snapshot struct {
	PersonalTasks []entities.Task        `json:"personal_tasks"`
	CompanyTasks  []entities.Task        `json:"company_tasks"`
	Notifications []entities.Notification `json:"notifications"`
	LastError     string                 `json:"last_error,omitempty"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// Auth DTOs

type RegisterRequest struct {
	Email         string  `json:"email" validate:"required,email"`
	Username      string  `json:"username" validate:"required,min=3,max=50"`
	Password      string  `json:"password" validate:"required,min=8"`
	WalletAddress *string `json:"wallet_address" validate:"omitempty,max=255"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	User         *entities.User `json:"user"`
}

// Claims represents the JWT claims carried by an access token
type Claims struct {
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email"`
	Identifier string    `json:"identifier"`
}

// Task DTOs

type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Category    string    `json:"category" validate:"required,oneof=personal company"`
	Priority    string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     time.Time `json:"due_date"`
	ProjectName *string   `json:"project_name" validate:"omitempty,max=200"`
	AssignedBy  *string   `json:"assigned_by" validate:"omitempty,max=200"`
	Department  *string   `json:"department" validate:"omitempty,max=200"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	ProjectName *string    `json:"project_name" validate:"omitempty,max=200"`
	AssignedBy  *string    `json:"assigned_by" validate:"omitempty,max=200"`
	Department  *string    `json:"department" validate:"omitempty,max=200"`
}

// TaskPayload is one task inside a whole-list replace.
type TaskPayload struct {
	ID          *uuid.UUID `json:"id"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Category    string     `json:"category" validate:"required,oneof=personal company"`
	Status      string     `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     time.Time  `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	ProjectName *string    `json:"project_name" validate:"omitempty,max=200"`
	AssignedBy  *string    `json:"assigned_by" validate:"omitempty,max=200"`
	Department  *string    `json:"department" validate:"omitempty,max=200"`
}

// ReplaceTasksRequest swaps the caller's entire task list in one write,
// the way offline-first clients sync.
type ReplaceTasksRequest struct {
	Tasks []TaskPayload `json:"tasks" validate:"dive"`
}

// TaskListResponse partitions a user's tasks by category
type TaskListResponse struct {
	PersonalTasks []entities.Task `json:"personal_tasks"`
	CompanyTasks  []entities.Task `json:"company_tasks"`
}
