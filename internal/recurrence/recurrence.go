// Package recurrence computes the next due date for repeating tasks.
package recurrence

import (
	"time"

	"github.com/patchworkhq/hearth/internal/model"
)

// Next returns the due date following dueAt for the given recurrence rule,
// or nil when the task does not repeat. Intervals below one are treated as
// one. Monthly recurrence uses calendar month arithmetic, so Jan 31 plus
// one month normalizes to Mar 2 or Mar 3 per time.AddDate.
func Next(dueAt time.Time, recurrenceType string, interval int) *time.Time {
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch recurrenceType {
	case model.RecurDaily:
		next = dueAt.AddDate(0, 0, interval)
	case model.RecurWeekly:
		next = dueAt.AddDate(0, 0, 7*interval)
	case model.RecurMonthly:
		next = dueAt.AddDate(0, interval, 0)
	default:
		return nil
	}
	return &next
}
