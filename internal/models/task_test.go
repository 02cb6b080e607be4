package models

import "testing"

func TestTaskPriorityRanks(t *testing.T) {
	priorities := TaskPriorities()
	for i, p := range priorities {
		if !p.Valid() {
			t.Errorf("%s should be valid", p)
		}
		if got := p.Rank(); got != i+1 {
			t.Errorf("%s.Rank() = %d, want %d", p, got, i+1)
		}
	}

	unknown := TaskPriority("severe")
	if unknown.Valid() {
		t.Error("unknown priority must not be valid")
	}
	if unknown.Rank() <= PriorityLow.Rank() {
		t.Error("unknown priority must rank after every valid one")
	}
}

func TestTaskStatusRanks(t *testing.T) {
	statuses := TaskStatuses()
	for i, s := range statuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
		if got := s.Rank(); got != i+1 {
			t.Errorf("%s.Rank() = %d, want %d", s, got, i+1)
		}
	}

	unknown := TaskStatus("archived")
	if unknown.Valid() {
		t.Error("unknown status must not be valid")
	}
	if unknown.Rank() <= StatusCancelled.Rank() {
		t.Error("unknown status must rank after every valid one")
	}
}

func TestTaskStatusFinished(t *testing.T) {
	tests := []struct {
		status TaskStatus
		want   bool
	}{
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.status.Finished(); got != tt.want {
			t.Errorf("%s.Finished() = %v, want %v", tt.status, got, tt.want)
		}
	}
}
