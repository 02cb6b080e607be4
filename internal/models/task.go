package models

import "time"

type TaskPriority string

const (
	PriorityUrgent TaskPriority = "urgent"
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// TaskPriorities returns every priority in rank order, most urgent first.
func TaskPriorities() []TaskPriority {
	return []TaskPriority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
}

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities for listing, most urgent first.
// Unrecognized values sort after every valid one.
func (p TaskPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	}
	return 5
}

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
	StatusCancelled  TaskStatus = "cancelled"
)

// TaskStatuses returns every status in rank order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Rank orders statuses for listing. Unrecognized values sort last.
func (s TaskStatus) Rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 3
	case StatusCancelled:
		return 4
	}
	return 5
}

// Finished reports whether the task left the active workflow.
// Finished tasks are never flagged as delayed.
func (s TaskStatus) Finished() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Task struct {
	ID          string
	CategoryID  *string
	CreatorID   string
	Title       string
	Description string
	Priority    TaskPriority
	Status      TaskStatus
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskListItem is one row of the task listing: the task joined with
// its category, creator and the distinct set of assignee usernames.
type TaskListItem struct {
	ID            string
	Title         string
	Priority      TaskPriority
	Status        TaskStatus
	CategoryName  *string
	CategoryColor *string
	CreatorName   string
	Assignees     []string
	DueDate       *time.Time
	IsDelayed     bool
	DaysDelayed   int
}

type TaskPage struct {
	TotalCount int64
	TotalPages int
	Page       int
	PageSize   int
	Items      []TaskListItem
}

type TaskAssignee struct {
	ID       string
	Username string
}

type TaskDetail struct {
	Task
	CategoryName  *string
	CategoryColor *string
	CreatorName   string
	Assignees     []TaskAssignee
	Comments      []Comment
	IsDelayed     bool
	DaysDelayed   int
}
