package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arakoo/atm/internal/domain/entities"
)

// TaskStore is the collaborator the reconciliation loop consumes: the task
// collections for one identifier, fetched and replaced wholesale.
type TaskStore interface {
	FetchTasks(ctx context.Context, identifier string) ([]entities.Task, error)
	SaveTasks(ctx context.Context, identifier string, tasks []entities.Task) error
}

// TaskRepository defines the interface for task data operations. All
// operations are scoped to the identifier owning the task lists.
type TaskRepository interface {
	TaskStore
	Create(ctx context.Context, identifier string, task *entities.Task) error
	GetByID(ctx context.Context, identifier string, id uuid.UUID) (*entities.Task, error)
	Update(ctx context.Context, identifier string, task *entities.Task) error
	Delete(ctx context.Context, identifier string, id uuid.UUID) error
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Update(ctx context.Context, user *entities.User) error
}

// AuthRepository defines the interface for refresh token storage
type AuthRepository interface {
	CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken represents a stored refresh token
type RefreshToken struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	Revoked   bool      `db:"revoked"`
	CreatedAt time.Time `db:"created_at"`
}
