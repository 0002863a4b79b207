package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arakoo/atm/internal/domain/entities"
	"github.com/arakoo/atm/internal/infrastructure/database"
	"github.com/arakoo/atm/internal/ports"
)

// TaskRepositoryImpl implements the TaskRepository interface. It doubles as
// the TaskStore collaborator the reconciliation loop consumes.
type TaskRepositoryImpl struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) ports.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

// taskRow maps the tasks table; due_date and the company attributes are
// nullable.
type taskRow struct {
	ID          uuid.UUID      `db:"id"`
	Identifier  string         `db:"identifier"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Category    string         `db:"category"`
	Status      string         `db:"status"`
	Priority    string         `db:"priority"`
	DueDate     sql.NullTime   `db:"due_date"`
	CreatedAt   time.Time      `db:"created_at"`
	ProjectName sql.NullString `db:"project_name"`
	AssignedBy  sql.NullString `db:"assigned_by"`
	Department  sql.NullString `db:"department"`
}

func (r taskRow) toEntity() entities.Task {
	task := entities.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    entities.Category(r.Category),
		Status:      entities.TaskStatus(r.Status),
		Priority:    entities.Priority(r.Priority),
		CreatedAt:   r.CreatedAt,
	}
	if r.DueDate.Valid {
		task.DueDate = r.DueDate.Time
	}
	if r.ProjectName.Valid {
		task.ProjectName = &r.ProjectName.String
	}
	if r.AssignedBy.Valid {
		task.AssignedBy = &r.AssignedBy.String
	}
	if r.Department.Valid {
		task.Department = &r.Department.String
	}
	return task
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

const taskColumns = `id, identifier, title, description, category, status, priority, due_date, created_at, project_name, assigned_by, department`

func (r *TaskRepositoryImpl) FetchTasks(ctx context.Context, identifier string) ([]entities.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE identifier = $1
		ORDER BY created_at, id`

	var rows []taskRow
	if err := r.db.DB.SelectContext(ctx, &rows, query, identifier); err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}

	tasks := make([]entities.Task, len(rows))
	for i, row := range rows {
		tasks[i] = row.toEntity()
	}
	return tasks, nil
}

// SaveTasks replaces the identifier's task lists wholesale, matching the
// whole-list save the clients perform.
func (r *TaskRepositoryImpl) SaveTasks(ctx context.Context, identifier string, tasks []entities.Task) error {
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE identifier = $1`, identifier); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}
		for i := range tasks {
			if err := insertTask(ctx, tx, identifier, &tasks[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, identifier string, task *entities.Task) error {
	err := r.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		return insertTask(ctx, tx, identifier, task)
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func insertTask(ctx context.Context, tx *sqlx.Tx, identifier string, task *entities.Task) error {
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}

	_, err := tx.ExecContext(ctx, query,
		task.ID, identifier, task.Title, task.Description,
		task.Category, task.Status, task.Priority,
		nullTime(task.DueDate), task.CreatedAt,
		nullString(task.ProjectName), nullString(task.AssignedBy), nullString(task.Department),
	)
	if err != nil {
		return fmt.Errorf("insert task %s: %w", task.ID, err)
	}
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, identifier string, id uuid.UUID) (*entities.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE identifier = $1 AND id = $2`

	var row taskRow
	if err := r.db.DB.GetContext(ctx, &row, query, identifier, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, entities.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task by id: %w", err)
	}

	task := row.toEntity()
	return &task, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, identifier string, task *entities.Task) error {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, priority = $6,
			due_date = $7, project_name = $8, assigned_by = $9, department = $10
		WHERE identifier = $1 AND id = $2`

	result, err := r.db.DB.ExecContext(ctx, query,
		identifier, task.ID, task.Title, task.Description,
		task.Status, task.Priority, nullTime(task.DueDate),
		nullString(task.ProjectName), nullString(task.AssignedBy), nullString(task.Department),
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, identifier string, id uuid.UUID) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM tasks WHERE identifier = $1 AND id = $2`, identifier, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return entities.ErrTaskNotFound
	}
	return nil
}
