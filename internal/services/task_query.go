package services

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/duedate"
	"github.com/adanyl0v/go-task-tracker/internal/models"
)

// taskFilters composes the WHERE clause shared by the listing count
// and page queries. Every field is optional; empty means unconstrained.
type taskFilters struct {
	// assigneeID restricts the listing to tasks assigned to this user.
	// It is empty for admin viewers, who see every task.
	assigneeID string
	status     models.TaskStatus
	priority   models.TaskPriority
	categoryID string
}

func newTaskFilters(params ListTasksParams) taskFilters {
	f := taskFilters{
		status:     params.Status,
		priority:   params.Priority,
		categoryID: params.CategoryID,
	}
	if !params.Viewer.IsAdmin {
		f.assigneeID = params.Viewer.ID
	}
	return f
}

// whereClause returns a WHERE clause with positional placeholders
// starting at $1 and the matching argument list. An unconstrained
// filter set yields an empty clause.
func (f taskFilters) whereClause() (string, []any) {
	var conditions []string
	var args []any
	add := func(condition string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if f.assigneeID != "" {
		add("ta.user_id = $%d", f.assigneeID)
	}
	if f.status != "" {
		add("t.status = $%d", f.status)
	}
	if f.priority != "" {
		add("t.priority = $%d", f.priority)
	}
	if f.categoryID != "" {
		add("t.category_id = $%d", f.categoryID)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// priorityRankCase and statusRankCase translate the enum ranks into
// SQL CASE expressions. The interpolated values come from the closed
// enums, never from request input.
func priorityRankCase() string {
	var b strings.Builder
	b.WriteString("CASE t.priority")
	for _, p := range models.TaskPriorities() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, p.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", models.TaskPriority("").Rank())
	return b.String()
}

func statusRankCase() string {
	var b strings.Builder
	b.WriteString("CASE t.status")
	for _, s := range models.TaskStatuses() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, s.Rank())
	}
	fmt.Fprintf(&b, " ELSE %d END", models.TaskStatus("").Rank())
	return b.String()
}

// taskOrderByClause orders by priority rank, then status rank, then
// due date ascending. Tasks without a due date sort last.
func taskOrderByClause() string {
	return fmt.Sprintf("ORDER BY %s, %s, t.due_date ASC NULLS LAST",
		priorityRankCase(), statusRankCase())
}

// Pages are 1-based.
func pageOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

func totalPages(total int64, pageSize int) int {
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// canViewTask reports whether the viewer may open the task: admins
// always, everyone else only when present in the assignee set. An
// empty assignee set never matches a non-admin viewer.
func canViewTask(viewer models.Viewer, assigneeIDs []string) bool {
	if viewer.IsAdmin {
		return true
	}
	return slices.Contains(assigneeIDs, viewer.ID)
}

// delayInfo annotates a task with its delay state as of now. Finished
// tasks and tasks without a due date are never flagged.
func delayInfo(status models.TaskStatus, due *time.Time, now time.Time) (bool, int) {
	if due == nil || status.Finished() {
		return false, 0
	}
	if !duedate.IsDelayed(*due, now) {
		return false, 0
	}
	return true, duedate.DaysDelayed(*due, now)
}

func validateTaskFields(f TaskFields) error {
	if strings.TrimSpace(f.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(f.Description) == "" {
		return ErrDescriptionRequired
	}
	if !f.Priority.Valid() {
		return ErrInvalidTaskPriority
	}
	if !f.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if len(f.AssigneeIDs) == 0 {
		return ErrAssigneesRequired
	}
	return nil
}
