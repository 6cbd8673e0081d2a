package recurrence

import (
	"testing"
	"time"

	"github.com/patchworkhq/hearth/internal/model"
)

func TestNextDaily(t *testing.T) {
	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	next := Next(due, model.RecurDaily, 1)
	if next == nil {
		t.Fatal("expected a next due date")
	}
	want := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextWeeklyInterval(t *testing.T) {
	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	next := Next(due, model.RecurWeekly, 2)
	want := time.Date(2025, 3, 24, 9, 0, 0, 0, time.UTC)
	if next == nil || !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextMonthlyEndOfMonth(t *testing.T) {
	// Jan 31 + 1 month normalizes past February.
	due := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)
	next := Next(due, model.RecurMonthly, 1)
	want := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	if next == nil || !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}

func TestNextNone(t *testing.T) {
	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	if next := Next(due, model.RecurNone, 1); next != nil {
		t.Errorf("expected nil for non-repeating task, got %v", next)
	}
}

func TestNextZeroIntervalTreatedAsOne(t *testing.T) {
	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	next := Next(due, model.RecurDaily, 0)
	want := due.AddDate(0, 0, 1)
	if next == nil || !next.Equal(want) {
		t.Errorf("got %v, want %v", next, want)
	}
}
