package services

import (
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

func adminViewer() models.Viewer {
	return models.Viewer{ID: "admin-1", Username: "admin", IsAdmin: true}
}

func memberViewer() models.Viewer {
	return models.Viewer{ID: "user-1", Username: "alice", IsAdmin: false}
}

func TestTaskFiltersWhereClause(t *testing.T) {
	tests := []struct {
		name      string
		params    ListTasksParams
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "admin without filters",
			params:    ListTasksParams{Viewer: adminViewer()},
			wantWhere: "",
			wantArgs:  nil,
		},
		{
			name:      "member without filters is scoped to own assignments",
			params:    ListTasksParams{Viewer: memberViewer()},
			wantWhere: "WHERE ta.user_id = $1",
			wantArgs:  []any{"user-1"},
		},
		{
			name: "admin with status filter",
			params: ListTasksParams{
				Viewer: adminViewer(),
				Status: models.StatusPending,
			},
			wantWhere: "WHERE t.status = $1",
			wantArgs:  []any{models.StatusPending},
		},
		{
			name: "member with every filter",
			params: ListTasksParams{
				Viewer:     memberViewer(),
				Status:     models.StatusInProgress,
				Priority:   models.PriorityUrgent,
				CategoryID: "cat-9",
			},
			wantWhere: "WHERE ta.user_id = $1 AND t.status = $2 AND t.priority = $3 AND t.category_id = $4",
			wantArgs:  []any{"user-1", models.StatusInProgress, models.PriorityUrgent, "cat-9"},
		},
		{
			name: "admin with priority and category",
			params: ListTasksParams{
				Viewer:     adminViewer(),
				Priority:   models.PriorityLow,
				CategoryID: "cat-2",
			},
			wantWhere: "WHERE t.priority = $1 AND t.category_id = $2",
			wantArgs:  []any{models.PriorityLow, "cat-2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := newTaskFilters(tt.params).whereClause()
			if where != tt.wantWhere {
				t.Errorf("whereClause() = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestTaskOrderByClause(t *testing.T) {
	clause := taskOrderByClause()

	wantPriority := "CASE t.priority WHEN 'urgent' THEN 1 WHEN 'high' THEN 2 WHEN 'medium' THEN 3 WHEN 'low' THEN 4 ELSE 5 END"
	if !strings.Contains(clause, wantPriority) {
		t.Errorf("order clause missing priority ranking:\n%s", clause)
	}

	wantStatus := "CASE t.status WHEN 'pending' THEN 1 WHEN 'in_progress' THEN 2 WHEN 'completed' THEN 3 WHEN 'cancelled' THEN 4 ELSE 5 END"
	if !strings.Contains(clause, wantStatus) {
		t.Errorf("order clause missing status ranking:\n%s", clause)
	}

	if !strings.HasSuffix(clause, "t.due_date ASC NULLS LAST") {
		t.Errorf("order clause must end with due date ascending, nulls last:\n%s", clause)
	}

	if strings.Index(clause, "t.priority") > strings.Index(clause, "t.status") {
		t.Error("priority must be ranked before status")
	}
}

// Sorting a mixed set by (priority rank, status rank) must place every
// urgent task before every high one and, within a priority, pending
// before in_progress before completed before cancelled.
func TestRankOrderingOfMixedTasks(t *testing.T) {
	type ranked struct {
		priority models.TaskPriority
		status   models.TaskStatus
	}

	var mixed []ranked
	for _, s := range []models.TaskStatus{models.StatusCancelled, models.StatusPending, models.StatusCompleted, models.StatusInProgress} {
		for _, p := range []models.TaskPriority{models.PriorityLow, models.PriorityUrgent, models.PriorityMedium, models.PriorityHigh} {
			mixed = append(mixed, ranked{priority: p, status: s})
		}
	}

	sort.SliceStable(mixed, func(i, j int) bool {
		if mixed[i].priority.Rank() != mixed[j].priority.Rank() {
			return mixed[i].priority.Rank() < mixed[j].priority.Rank()
		}
		return mixed[i].status.Rank() < mixed[j].status.Rank()
	})

	wantPriorities := models.TaskPriorities()
	wantStatuses := models.TaskStatuses()
	for i, item := range mixed {
		if want := wantPriorities[i/4]; item.priority != want {
			t.Fatalf("position %d: priority = %s, want %s", i, item.priority, want)
		}
		if want := wantStatuses[i%4]; item.status != want {
			t.Fatalf("position %d: status = %s, want %s", i, item.status, want)
		}
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		pageSize   int
		wantPages  int
		page       int
		wantOffset int
	}{
		{"25 over 10 is 3 pages", 25, 10, 3, 1, 0},
		{"page 3 of 25", 25, 10, 3, 3, 20},
		{"exact multiple", 30, 10, 3, 2, 10},
		{"empty", 0, 10, 0, 1, 0},
		{"single item", 1, 10, 1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := totalPages(tt.total, tt.pageSize); got != tt.wantPages {
				t.Errorf("totalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.wantPages)
			}
			if got := pageOffset(tt.page, tt.pageSize); got != tt.wantOffset {
				t.Errorf("pageOffset(%d, %d) = %d, want %d", tt.page, tt.pageSize, got, tt.wantOffset)
			}
		})
	}
}

func TestCanViewTask(t *testing.T) {
	tests := []struct {
		name        string
		viewer      models.Viewer
		assigneeIDs []string
		want        bool
	}{
		{"admin always", adminViewer(), nil, true},
		{"assignee", memberViewer(), []string{"user-2", "user-1"}, true},
		{"stranger", memberViewer(), []string{"user-2", "user-3"}, false},
		{"empty assignee set never matches", memberViewer(), nil, false},
		{"empty string id does not match empty set", models.Viewer{ID: ""}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canViewTask(tt.viewer, tt.assigneeIDs); got != tt.want {
				t.Errorf("canViewTask(%+v, %v) = %v, want %v", tt.viewer, tt.assigneeIDs, got, tt.want)
			}
		})
	}
}

func TestDelayInfo(t *testing.T) {
	now := time.Date(2025, time.March, 20, 12, 0, 0, 0, time.UTC)
	overdue := time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC)
	future := time.Date(2025, time.March, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		status   models.TaskStatus
		due      *time.Time
		wantLate bool
		wantDays int
	}{
		{"pending overdue", models.StatusPending, &overdue, true, 3},
		{"in progress overdue", models.StatusInProgress, &overdue, true, 3},
		{"completed overdue is suppressed", models.StatusCompleted, &overdue, false, 0},
		{"cancelled overdue is suppressed", models.StatusCancelled, &overdue, false, 0},
		{"pending with future due date", models.StatusPending, &future, false, 0},
		{"no due date", models.StatusPending, nil, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			late, days := delayInfo(tt.status, tt.due, now)
			if late != tt.wantLate || days != tt.wantDays {
				t.Errorf("delayInfo(%s) = (%v, %d), want (%v, %d)",
					tt.name, late, days, tt.wantLate, tt.wantDays)
			}
		})
	}
}

func TestValidateTaskFields(t *testing.T) {
	valid := TaskFields{
		Title:       "Fix the build",
		Description: "CI is red since Friday",
		Priority:    models.PriorityHigh,
		Status:      models.StatusPending,
		AssigneeIDs: []string{"user-1"},
	}

	if err := validateTaskFields(valid); err != nil {
		t.Fatalf("valid fields rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*TaskFields)
		wantErr error
	}{
		{"empty title", func(f *TaskFields) { f.Title = "" }, ErrTitleRequired},
		{"whitespace title", func(f *TaskFields) { f.Title = "   " }, ErrTitleRequired},
		{"empty description", func(f *TaskFields) { f.Description = "" }, ErrDescriptionRequired},
		{"empty assignees", func(f *TaskFields) { f.AssigneeIDs = nil }, ErrAssigneesRequired},
		{"bad priority", func(f *TaskFields) { f.Priority = "critical" }, ErrInvalidTaskPriority},
		{"bad status", func(f *TaskFields) { f.Status = "done" }, ErrInvalidTaskStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			f.AssigneeIDs = append([]string(nil), valid.AssigneeIDs...)
			tt.mutate(&f)
			if err := validateTaskFields(f); err != tt.wantErr {
				t.Errorf("validateTaskFields() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
