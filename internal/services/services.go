package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")

	ErrTaskNotFound     = errors.New("task not found")
	ErrTaskAccessDenied = errors.New("task access denied")

	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrAssigneesRequired   = errors.New("at least one assignee is required")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrUnknownAssignee     = errors.New("unknown assignee")
	ErrUnknownCategory     = errors.New("unknown category")
)

type AuthService interface {
	// Login authenticates the user by email and password.
	//
	// It deletes all sessions with the same user ID and creates
	// a new session and generates a new JWT token pair.
	//
	// It returns ErrUserNotFound if the user with the given
	// email doesn't exist or ErrUserPasswordMismatch if the
	// given password doesn't match the user's password.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh updates the session with the given refresh token.
	//
	// It returns ErrSessionNotFound if the session with the
	// given refresh token doesn't exist or ErrSessionExpired
	// if the session is expired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register a user with the given username, email and password.
	// New users are never administrators; the flag is granted out of band.
	//
	// It returns ErrUserAlreadyExists if a user with the given
	// email or username already exists.
	Register(ctx context.Context, params RegisterParams) (*LoginResult, error)

	// Logout invalidates all sessions with the given user ID.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses the given JWT token and returns the registered
	// claims or jwt.ErrTokenExpired if the token is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	// GetSessionViewer resolves a session ID into the session row and
	// the identity of its owner.
	GetSessionViewer(ctx context.Context, sessionID string) (*SessionViewer, error)
}

type TaskService interface {
	// ListTasks returns one page of tasks matching the filters, scoped
	// to the viewer: admins see every task, everyone else only tasks
	// they are assigned to. Ordering is by priority rank, then status
	// rank, then due date ascending with dateless tasks last.
	ListTasks(ctx context.Context, params ListTasksParams) (*models.TaskPage, error)

	// GetTask returns a single task with its category, creator,
	// assignees and comment history (newest first).
	//
	// It returns ErrTaskNotFound if no task matches the ID and
	// ErrTaskAccessDenied if the viewer is neither an admin nor
	// an assignee.
	GetTask(ctx context.Context, taskID string, viewer models.Viewer) (*models.TaskDetail, error)

	// CreateTask validates and inserts a task together with its
	// assignment set in one transaction. A missing due date is derived
	// from the priority lead time, counted in working days from the
	// creation date.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask replaces the task's scalar fields and its entire
	// assignment set in one transaction. Readers never observe the
	// intermediate state between the delete and the reinsert.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// SetTaskStatus moves the task to a new status, optionally
	// appending a comment, in one transaction. The viewer must be an
	// admin or an assignee.
	SetTaskStatus(ctx context.Context, params SetTaskStatusParams) error
}

type CategoryService interface {
	// GetCategories returns all task categories ordered by name.
	GetCategories(ctx context.Context) ([]models.Category, error)
}

type UserService interface {
	// GetUsers returns all users (ID and username only) ordered by
	// username, for the assignee picker.
	GetUsers(ctx context.Context) ([]models.User, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type RegisterParams struct {
	Username    string
	Email       string
	Password    string
	Fingerprint string
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type SessionViewer struct {
	Session models.Session
	Viewer  models.Viewer
}

type ListTasksParams struct {
	Viewer models.Viewer
	// Empty filter values mean "no constraint".
	Status     models.TaskStatus
	Priority   models.TaskPriority
	CategoryID string
	Page       int
}

type TaskFields struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Status      models.TaskStatus
	CategoryID  *string
	DueDate     *time.Time
	AssigneeIDs []string
}

type CreateTaskParams struct {
	Viewer models.Viewer
	TaskFields
}

type UpdateTaskParams struct {
	Viewer models.Viewer
	TaskID string
	TaskFields
}

type SetTaskStatusParams struct {
	Viewer  models.Viewer
	TaskID  string
	Status  models.TaskStatus
	Comment string
}
