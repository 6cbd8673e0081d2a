package store

import (
	"testing"
	"time"

	"github.com/patchworkhq/hearth/internal/model"
)

func TestTaskCreateDefaults(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Tasks")
	tasks := NewTaskStore(db)

	task, err := tasks.Create(hh, TaskParams{Title: "Sweep porch"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Status != model.StatusTodo {
		t.Errorf("status = %q, want %q", task.Status, model.StatusTodo)
	}
	if task.RecurrenceType != model.RecurNone {
		t.Errorf("recurrence = %q, want %q", task.RecurrenceType, model.RecurNone)
	}
	if task.RecurrenceInterval != 1 {
		t.Errorf("interval = %d, want 1", task.RecurrenceInterval)
	}
	if task.DueAt != nil || task.CompletedAt != nil {
		t.Error("new task should have no due or completion time")
	}
}

func TestTaskHouseholdIsolation(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Mine")
	other := createTestHousehold(t, db, "Theirs")
	tasks := NewTaskStore(db)

	task, err := tasks.Create(other, TaskParams{Title: "Their task"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := tasks.GetByID(task.ID, hh)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got != nil {
		t.Error("task from another household should not be visible")
	}

	mine, err := tasks.List(hh)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(mine) != 0 {
		t.Errorf("list = %d tasks, want 0", len(mine))
	}
}

func TestTaskListOrdersByPriorityThenDue(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Order")
	tasks := NewTaskStore(db)

	early := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	late := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	if _, err := tasks.Create(hh, TaskParams{Title: "urgent late", Priority: model.PriorityUrgent, DueAt: &late}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(hh, TaskParams{Title: "normal early", Priority: model.PriorityNormal, DueAt: &early}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(hh, TaskParams{Title: "normal late", Priority: model.PriorityNormal, DueAt: &late}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := tasks.List(hh)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"normal early", "normal late", "urgent late"}
	if len(got) != len(want) {
		t.Fatalf("list = %d tasks, want %d", len(got), len(want))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("list[%d] = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestTaskCompleteAndReschedule(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Recurring")
	tasks := NewTaskStore(db)

	due := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	task, err := tasks.Create(hh, TaskParams{
		Title:          "Water plants",
		DueAt:          &due,
		RecurrenceType: model.RecurWeekly,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	done, err := tasks.Complete(task.ID, hh, now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != model.StatusDone {
		t.Errorf("status = %q, want done", done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatal("completed_at should be set")
	}

	next := due.AddDate(0, 0, 7)
	rescheduled, err := tasks.Reschedule(task.ID, hh, next)
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if rescheduled.Status != model.StatusTodo {
		t.Errorf("status = %q, want todo after reschedule", rescheduled.Status)
	}
	if rescheduled.DueAt == nil || !rescheduled.DueAt.Equal(next) {
		t.Errorf("due_at = %v, want %v", rescheduled.DueAt, next)
	}
	if rescheduled.CompletedAt == nil {
		t.Error("completed_at should survive reschedule as last-completed marker")
	}
}

func TestTaskDueWindowQueries(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Windows")
	tasks := NewTaskStore(db)

	dayStart := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	inWindow := dayStart.Add(9 * time.Hour)
	before := dayStart.AddDate(0, 0, -2)
	after := dayStart.AddDate(0, 0, 2)

	if _, err := tasks.Create(hh, TaskParams{Title: "today", DueAt: &inWindow}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(hh, TaskParams{Title: "overdue", DueAt: &before}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Create(hh, TaskParams{Title: "future", DueAt: &after}); err != nil {
		t.Fatalf("create: %v", err)
	}

	due, err := tasks.ListDueBetween(hh, dayStart, dayEnd)
	if err != nil {
		t.Fatalf("list due: %v", err)
	}
	if len(due) != 1 || due[0].Title != "today" {
		t.Errorf("due = %v, want only 'today'", titles(due))
	}

	overdue, err := tasks.ListOverdue(hh, dayStart)
	if err != nil {
		t.Fatalf("list overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].Title != "overdue" {
		t.Errorf("overdue = %v, want only 'overdue'", titles(overdue))
	}
}

func TestWeeklyStatsCounts(t *testing.T) {
	db := openTestDB(t)
	hh := createTestHousehold(t, db, "Stats")
	tasks := NewTaskStore(db)

	start := time.Now().UTC().AddDate(0, 0, -7)
	end := time.Now().UTC()

	t1, err := tasks.Create(hh, TaskParams{Title: "done this week"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := tasks.Complete(t1.ID, hh, end.Add(-time.Hour)); err != nil {
		t.Fatalf("complete: %v", err)
	}

	past := start.AddDate(0, 0, -3)
	if _, err := tasks.Create(hh, TaskParams{Title: "still overdue", DueAt: &past}); err != nil {
		t.Fatalf("create: %v", err)
	}

	stats, err := tasks.WeeklyStats(hh, start, end)
	if err != nil {
		t.Fatalf("weekly stats: %v", err)
	}
	if stats.Completed != 1 {
		t.Errorf("completed = %d, want 1", stats.Completed)
	}
	if stats.Created != 2 {
		t.Errorf("created = %d, want 2", stats.Created)
	}
	if stats.Pending != 1 {
		t.Errorf("pending = %d, want 1", stats.Pending)
	}
	if stats.Overdue != 1 {
		t.Errorf("overdue = %d, want 1", stats.Overdue)
	}
}

func titles(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
