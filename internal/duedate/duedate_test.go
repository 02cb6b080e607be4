package duedate

import (
	"testing"
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsDelayed(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		ref  time.Time
		want bool
	}{
		{"due before ref", date(2025, time.March, 10), date(2025, time.March, 11), true},
		{"due equals ref", date(2025, time.March, 10), date(2025, time.March, 10), false},
		{"due after ref", date(2025, time.March, 12), date(2025, time.March, 10), false},
		{"long overdue", date(2024, time.December, 31), date(2025, time.March, 10), true},
		{
			// Time of day must not matter: 23:59 on the due date is not late.
			"same day different times",
			time.Date(2025, time.March, 10, 1, 0, 0, 0, time.UTC),
			time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDelayed(tt.due, tt.ref); got != tt.want {
				t.Errorf("IsDelayed(%v, %v) = %v, want %v", tt.due, tt.ref, got, tt.want)
			}
		})
	}
}

func TestDaysDelayed(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		ref  time.Time
		want int
	}{
		{"same day", date(2025, time.March, 10), date(2025, time.March, 10), 0},
		{"one day", date(2025, time.March, 10), date(2025, time.March, 11), 1},
		{"across month boundary", date(2025, time.February, 27), date(2025, time.March, 2), 3},
		{"across year boundary", date(2024, time.December, 30), date(2025, time.January, 2), 3},
		{"not delayed clamps to zero", date(2025, time.March, 12), date(2025, time.March, 10), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysDelayed(tt.due, tt.ref); got != tt.want {
				t.Errorf("DaysDelayed(%v, %v) = %d, want %d", tt.due, tt.ref, got, tt.want)
			}
		})
	}
}

func TestAddWorkingDaysZeroIsIdentity(t *testing.T) {
	// Includes a Saturday and a Sunday: n = 0 must not snap to Monday.
	starts := []time.Time{
		date(2025, time.March, 10), // Monday
		date(2025, time.March, 14), // Friday
		date(2025, time.March, 15), // Saturday
		date(2025, time.March, 16), // Sunday
	}
	for _, start := range starts {
		if got := AddWorkingDays(start, 0); !got.Equal(Date(start)) {
			t.Errorf("AddWorkingDays(%v, 0) = %v, want %v", start, got, start)
		}
	}
}

func TestAddWorkingDays(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"monday plus one", date(2025, time.March, 10), 1, date(2025, time.March, 11)},
		{"friday plus one skips weekend", date(2025, time.March, 14), 1, date(2025, time.March, 17)},
		{"friday plus three", date(2025, time.March, 14), 3, date(2025, time.March, 19)},
		{"saturday plus one lands on monday", date(2025, time.March, 15), 1, date(2025, time.March, 17)},
		{"full week is seven calendar days", date(2025, time.March, 10), 5, date(2025, time.March, 17)},
		{"two weeks", date(2025, time.March, 10), 10, date(2025, time.March, 24)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AddWorkingDays(tt.start, tt.n); !got.Equal(tt.want) {
				t.Errorf("AddWorkingDays(%v, %d) = %v, want %v", tt.start, tt.n, got, tt.want)
			}
		})
	}
}

func TestAddWorkingDaysNeverLandsOnWeekend(t *testing.T) {
	// Sweep every weekday start over a range of offsets.
	start := date(2025, time.January, 1)
	for day := 0; day < 14; day++ {
		for n := 1; n <= 30; n++ {
			got := AddWorkingDays(start.AddDate(0, 0, day), n)
			if wd := got.Weekday(); wd == time.Saturday || wd == time.Sunday {
				t.Fatalf("AddWorkingDays(%v, %d) landed on %s", start.AddDate(0, 0, day), n, wd)
			}
		}
	}
}

func TestLeadTimesMonotonic(t *testing.T) {
	lt := DefaultLeadTimes
	priorities := models.TaskPriorities()
	for i := 1; i < len(priorities); i++ {
		prev, cur := lt.ForPriority(priorities[i-1]), lt.ForPriority(priorities[i])
		if prev >= cur {
			t.Errorf("lead time for %s (%d) should be less than for %s (%d)",
				priorities[i-1], prev, priorities[i], cur)
		}
	}
	if lt.ForPriority(models.PriorityUrgent) <= 0 {
		t.Error("urgent lead time must be positive")
	}
}

func TestLeadTimesUnknownPriorityFallsBack(t *testing.T) {
	lt := DefaultLeadTimes
	if got := lt.ForPriority(models.TaskPriority("bogus")); got != lt.Low {
		t.Errorf("ForPriority(bogus) = %d, want %d", got, lt.Low)
	}
}
