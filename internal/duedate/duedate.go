// Package duedate holds the pure date math behind due dates: deciding
// whether a task is late and deriving a due date from its priority.
// All functions work at calendar-day granularity; time-of-day and
// timezone components of the inputs are discarded.
package duedate

import (
	"time"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

// Date truncates t to its calendar date in UTC.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsDelayed reports whether due falls strictly before ref,
// compared as calendar dates.
func IsDelayed(due, ref time.Time) bool {
	return Date(due).Before(Date(ref))
}

// DaysDelayed returns the number of whole calendar days between due
// and ref, or 0 when due is not before ref.
func DaysDelayed(due, ref time.Time) int {
	days := int(Date(ref).Sub(Date(due)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// AddWorkingDays advances start by n business days, skipping Saturdays
// and Sundays. With n = 0 the start date is returned unchanged, even
// when it falls on a weekend.
func AddWorkingDays(start time.Time, n int) time.Time {
	d := Date(start)
	for i := 0; i < n; i++ {
		d = d.AddDate(0, 0, 1)
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, 1)
		}
	}
	return d
}

// LeadTimes maps each priority to the number of working days a task
// gets by default before it is due.
type LeadTimes struct {
	Urgent int
	High   int
	Medium int
	Low    int
}

// DefaultLeadTimes match the shipped configuration defaults.
var DefaultLeadTimes = LeadTimes{Urgent: 1, High: 3, Medium: 5, Low: 7}

// ForPriority resolves the lead time for p. Invalid priorities are
// rejected before due dates are computed, so the fallback to the
// longest lead time is never hit in practice.
func (lt LeadTimes) ForPriority(p models.TaskPriority) int {
	switch p {
	case models.PriorityUrgent:
		return lt.Urgent
	case models.PriorityHigh:
		return lt.High
	case models.PriorityMedium:
		return lt.Medium
	case models.PriorityLow:
		return lt.Low
	}
	return lt.Low
}
