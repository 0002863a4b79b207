package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/arakoo/atm/internal/application/services"
	"github.com/arakoo/atm/internal/domain/entities"
	"github.com/arakoo/atm/internal/infrastructure/logger"
	"github.com/arakoo/atm/internal/ports"
)

// MessageResponse is a simple message payload
type MessageResponse struct {
	Message string `json:"message"`
}

// RefreshTokenRequest carries a refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService *services.AuthService
	reconciler  *services.ReconcilerService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, reconciler *services.ReconcilerService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		reconciler:  reconciler,
		logger:      logger,
	}
}

// Register handles user registration
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrEmailTaken) || errors.Is(err, entities.ErrUsernameTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		h.logger.Errorw("Registration failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusBadRequest, "Registration failed")
	}

	return c.JSON(http.StatusCreated, response)
}

// Login handles user login
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Login failed", "error", err, "email", req.Email)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
	}

	return c.JSON(http.StatusOK, response)
}

// RefreshToken handles token refresh
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	response, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		h.logger.Warnw("Token refresh failed", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	return c.JSON(http.StatusOK, response)
}

// Logout handles user logout and tears down the session's notification loop
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := getUserIDFromContext(c)
	identifier := getIdentifierFromContext(c)

	if err := h.authService.Logout(c.Request().Context(), userID); err != nil {
		h.logger.Errorw("Logout failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed")
	}

	h.reconciler.Unsubscribe(identifier)

	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out successfully"})
}

// TaskHandler handles task-related requests
type TaskHandler struct {
	taskService *services.TaskService
	reconciler  *services.ReconcilerService
	logger      *logger.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskService *services.TaskService, reconciler *services.ReconcilerService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		reconciler:  reconciler,
		logger:      logger,
	}
}

// ListTasks returns the caller's tasks partitioned by category
func (h *TaskHandler) ListTasks(c echo.Context) error {
	identifier := getIdentifierFromContext(c)

	if err := h.reconciler.Subscribe(identifier); err != nil {
		h.logger.Errorw("Failed to start notification loop", "error", err, "identifier", identifier)
	}

	response, err := h.taskService.ListTasks(c.Request().Context(), identifier)
	if err != nil {
		h.logger.Errorw("List tasks failed", "error", err, "identifier", identifier)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load tasks")
	}

	return c.JSON(http.StatusOK, response)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c echo.Context) error {
	identifier := getIdentifierFromContext(c)

	var req ports.CreateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.CreateTask(c.Request().Context(), identifier, req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCategory) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Errorw("Create task failed", "error", err, "identifier", identifier)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create task")
	}

	return c.JSON(http.StatusCreated, task)
}

// ReplaceTasks swaps the caller's entire task list in one request
func (h *TaskHandler) ReplaceTasks(c echo.Context) error {
	identifier := getIdentifierFromContext(c)

	var req ports.ReplaceTasksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	response, err := h.taskService.ReplaceTasks(c.Request().Context(), identifier, req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCategory) || errors.Is(err, entities.ErrInvalidStatus) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Errorw("Replace tasks failed", "error", err, "identifier", identifier)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save tasks")
	}

	return c.JSON(http.StatusOK, response)
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(c echo.Context) error {
	identifier := getIdentifierFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}

	var req ports.UpdateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.taskService.UpdateTask(c.Request().Context(), identifier, id, req)
	if err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		if errors.Is(err, entities.ErrInvalidStatus) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.logger.Errorw("Update task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update task")
	}

	return c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(c echo.Context) error {
	identifier := getIdentifierFromContext(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), identifier, id); err != nil {
		if errors.Is(err, entities.ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Task not found")
		}
		h.logger.Errorw("Delete task failed", "error", err, "task_id", id)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete task")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Task deleted successfully"})
}

// NotificationsResponse is the notification poll payload. Alert is true
// exactly once per batch of new notifications, the cue to play the
// notification sound client-side.
type NotificationsResponse struct {
	Notifications []entities.Notification `json:"notifications"`
	Alert         bool                    `json:"alert"`
	LastError     string                  `json:"last_error,omitempty"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NotificationHandler surfaces the reconciliation loop's output
type NotificationHandler struct {
	reconciler *services.ReconcilerService
	logger     *logger.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(reconciler *services.ReconcilerService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// ListNotifications returns the caller's live notifications in detection
// order, subscribing the reconciliation loop on first use
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	identifier := getIdentifierFromContext(c)

	if err := h.reconciler.Subscribe(identifier); err != nil {
		h.logger.Errorw("Failed to start notification loop", "error", err, "identifier", identifier)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load notifications")
	}

	snapshot, ok := h.reconciler.Snapshot(identifier)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load notifications")
	}

	notifications := snapshot.Notifications
	if notifications == nil {
		notifications = []entities.Notification{}
	}

	return c.JSON(http.StatusOK, NotificationsResponse{
		Notifications: notifications,
		Alert:         h.reconciler.ConsumeAlert(identifier),
		LastError:     snapshot.LastError,
		UpdatedAt:     snapshot.UpdatedAt,
	})
}

// UserHandler handles user-related requests
type UserHandler struct {
	userRepo ports.UserRepository
	logger   *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userRepo ports.UserRepository, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// GetCurrentUser returns the authenticated user
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	userID := getUserIDFromContext(c)

	user, err := h.userRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Errorw("Get current user failed", "error", err, "user_id", userID)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load user")
	}

	user.PasswordHash = ""
	return c.JSON(http.StatusOK, user)
}

func getUserIDFromContext(c echo.Context) uuid.UUID {
	if id, ok := c.Get("user").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

func getIdentifierFromContext(c echo.Context) string {
	if identifier, ok := c.Get("identifier").(string); ok {
		return identifier
	}
	return ""
}
