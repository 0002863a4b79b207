package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arakoo/atm/internal/domain/engine"
	"github.com/arakoo/atm/internal/domain/entities"
	"github.com/arakoo/atm/internal/infrastructure/logger"
	"github.com/arakoo/atm/internal/ports"
)

// TaskService handles task CRUD. Every successful write pokes the
// identifier's reconciliation loop so notifications reflect the change
// without waiting for the next scheduled tick.
type TaskService struct {
	taskRepo   ports.TaskRepository
	reconciler *ReconcilerService
	logger     *logger.Logger
}

// NewTaskService creates a new task service
func NewTaskService(taskRepo ports.TaskRepository, reconciler *ReconcilerService, logger *logger.Logger) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		reconciler: reconciler,
		logger:     logger,
	}
}

// ListTasks returns the identifier's tasks partitioned by category, with
// statuses freshly derived against the current time.
func (s *TaskService) ListTasks(ctx context.Context, identifier string) (*ports.TaskListResponse, error) {
	tasks, err := s.taskRepo.FetchTasks(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	derived := engine.DeriveAll(tasks, time.Now())

	response := &ports.TaskListResponse{
		PersonalTasks: []entities.Task{},
		CompanyTasks:  []entities.Task{},
	}
	for _, task := range derived {
		if task.Category == entities.CategoryCompany {
			response.CompanyTasks = append(response.CompanyTasks, task)
		} else {
			response.PersonalTasks = append(response.PersonalTasks, task)
		}
	}

	return response, nil
}

// CreateTask creates a new task for the identifier
func (s *TaskService) CreateTask(ctx context.Context, identifier string, req ports.CreateTaskRequest) (*entities.Task, error) {
	category := entities.Category(req.Category)
	if !category.IsValid() {
		return nil, entities.ErrInvalidCategory
	}

	priority := entities.Priority(req.Priority)
	if req.Priority == "" {
		priority = entities.PriorityMedium
	}

	task := entities.Task{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Status:      entities.TaskStatusPending,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedAt:   time.Now(),
	}
	if category == entities.CategoryCompany {
		task.ProjectName = req.ProjectName
		task.AssignedBy = req.AssignedBy
		task.Department = req.Department
	}

	// A fresh task never rests in "pending"; derivation promotes it.
	task = engine.DeriveStatus(task, time.Now())

	if err := s.taskRepo.Create(ctx, identifier, &task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.logger.Infow("Task created", "task_id", task.ID, "title", task.Title, "category", task.Category)
	s.reconciler.Poke(identifier)

	return &task, nil
}

// ReplaceTasks swaps the identifier's entire task list in a single write,
// then returns the derived partitioned result. Missing ids and created-at
// stamps are assigned server-side.
func (s *TaskService) ReplaceTasks(ctx context.Context, identifier string, req ports.ReplaceTasksRequest) (*ports.TaskListResponse, error) {
	now := time.Now()

	tasks := make([]entities.Task, 0, len(req.Tasks))
	for _, p := range req.Tasks {
		category := entities.Category(p.Category)
		if !category.IsValid() {
			return nil, entities.ErrInvalidCategory
		}

		status := entities.TaskStatus(p.Status)
		if p.Status == "" {
			status = entities.TaskStatusPending
		} else if !status.IsValid() {
			return nil, entities.ErrInvalidStatus
		}

		priority := entities.Priority(p.Priority)
		if p.Priority == "" {
			priority = entities.PriorityMedium
		}

		task := entities.Task{
			Title:       p.Title,
			Description: p.Description,
			Category:    category,
			Status:      status,
			Priority:    priority,
			DueDate:     p.DueDate,
			CreatedAt:   p.CreatedAt,
		}
		if p.ID != nil {
			task.ID = *p.ID
		} else {
			task.ID = uuid.New()
		}
		if task.CreatedAt.IsZero() {
			task.CreatedAt = now
		}
		if category == entities.CategoryCompany {
			task.ProjectName = p.ProjectName
			task.AssignedBy = p.AssignedBy
			task.Department = p.Department
		}

		tasks = append(tasks, engine.DeriveStatus(task, now))
	}

	if err := s.taskRepo.SaveTasks(ctx, identifier, tasks); err != nil {
		return nil, fmt.Errorf("failed to replace tasks: %w", err)
	}

	s.logger.Infow("Task list replaced", "identifier", identifier, "count", len(tasks))
	s.reconciler.Poke(identifier)

	response := &ports.TaskListResponse{
		PersonalTasks: []entities.Task{},
		CompanyTasks:  []entities.Task{},
	}
	for _, task := range tasks {
		if task.Category == entities.CategoryCompany {
			response.CompanyTasks = append(response.CompanyTasks, task)
		} else {
			response.PersonalTasks = append(response.PersonalTasks, task)
		}
	}
	return response, nil
}

// UpdateTask applies a partial update to a task
func (s *TaskService) UpdateTask(ctx context.Context, identifier string, id uuid.UUID, req ports.UpdateTaskRequest) (*entities.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, identifier, id)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		status := entities.TaskStatus(*req.Status)
		if !status.IsValid() {
			return nil, entities.ErrInvalidStatus
		}
		task.Status = status
	}
	if req.Priority != nil {
		task.Priority = entities.Priority(*req.Priority)
	}
	if req.DueDate != nil {
		task.DueDate = *req.DueDate
	}
	if task.Category == entities.CategoryCompany {
		if req.ProjectName != nil {
			task.ProjectName = req.ProjectName
		}
		if req.AssignedBy != nil {
			task.AssignedBy = req.AssignedBy
		}
		if req.Department != nil {
			task.Department = req.Department
		}
	}

	updated := engine.DeriveStatus(*task, time.Now())

	if err := s.taskRepo.Update(ctx, identifier, &updated); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.logger.Infow("Task updated", "task_id", updated.ID, "title", updated.Title)
	s.reconciler.Poke(identifier)

	return &updated, nil
}

// DeleteTask removes a task
func (s *TaskService) DeleteTask(ctx context.Context, identifier string, id uuid.UUID) error {
	if err := s.taskRepo.Delete(ctx, identifier, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.logger.Infow("Task deleted", "task_id", id)
	s.reconciler.Poke(identifier)

	return nil
}
