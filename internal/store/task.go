package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/patchworkhq/hearth/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, household_id, title, notes, status, theme_id, project_id, assignee_id,
	due_at, priority, recurrence_type, recurrence_interval, completed_at, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var themeID, projectID, assigneeID sql.NullInt64
	var dueAt, completedAt sql.NullTime

	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Notes, &t.Status,
		&themeID, &projectID, &assigneeID,
		&dueAt, &t.Priority, &t.RecurrenceType, &t.RecurrenceInterval,
		&completedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if themeID.Valid {
		t.ThemeID = &themeID.Int64
	}
	if projectID.Valid {
		t.ProjectID = &projectID.Int64
	}
	if assigneeID.Valid {
		t.AssigneeID = &assigneeID.Int64
	}
	if dueAt.Valid {
		t.DueAt = &dueAt.Time
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// TaskParams carries the writable fields of a task.
type TaskParams struct {
	Title              string
	Notes              string
	Status             string
	ThemeID            *int64
	ProjectID          *int64
	AssigneeID         *int64
	DueAt              *time.Time
	Priority           int
	RecurrenceType     string
	RecurrenceInterval int
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: v.UTC(), Valid: true}
}

func (s *TaskStore) Create(householdID int64, p TaskParams) (*model.Task, error) {
	if p.Status == "" {
		p.Status = model.StatusTodo
	}
	if p.RecurrenceType == "" {
		p.RecurrenceType = model.RecurNone
	}
	if p.RecurrenceInterval < 1 {
		p.RecurrenceInterval = 1
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, notes, status, theme_id, project_id, assignee_id,
			due_at, priority, recurrence_type, recurrence_interval)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		householdID, p.Title, p.Notes, p.Status,
		nullInt(p.ThemeID), nullInt(p.ProjectID), nullInt(p.AssigneeID),
		nullTime(p.DueAt), p.Priority, p.RecurrenceType, p.RecurrenceInterval,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *TaskStore) GetByID(id, householdID int64) (*model.Task, error) {
	row := s.db.QueryRow(
		`SELECT `+taskCols+` FROM tasks WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) List(householdID int64) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? ORDER BY priority ASC, due_at ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collectTasks(rows)
}

// Update overwrites all writable fields; there is no field-level merge.
func (s *TaskStore) Update(id, householdID int64, p TaskParams) (*model.Task, error) {
	if p.RecurrenceInterval < 1 {
		p.RecurrenceInterval = 1
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, notes = ?, status = ?, theme_id = ?, project_id = ?,
			assignee_id = ?, due_at = ?, priority = ?, recurrence_type = ?, recurrence_interval = ?,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ?`,
		p.Title, p.Notes, p.Status,
		nullInt(p.ThemeID), nullInt(p.ProjectID), nullInt(p.AssigneeID),
		nullTime(p.DueAt), p.Priority, p.RecurrenceType, p.RecurrenceInterval,
		id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *TaskStore) Delete(id, householdID int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ? AND household_id = ?`, id, householdID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Complete marks a task done with the given completion time.
func (s *TaskStore) Complete(id, householdID int64, completedAt time.Time) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ?`,
		model.StatusDone, completedAt.UTC(), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}
	return s.GetByID(id, householdID)
}

// Reschedule reopens a recurring task at its next due date, keeping
// completed_at as the last-completed marker.
func (s *TaskStore) Reschedule(id, householdID int64, nextDue time.Time) (*model.Task, error) {
	_, err := s.db.Exec(
		`UPDATE tasks SET status = ?, due_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND household_id = ?`,
		model.StatusTodo, nextDue.UTC(), id, householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("reschedule task: %w", err)
	}
	return s.GetByID(id, householdID)
}

// --- Digest queries ---

// ListDueBetween returns todo tasks due within [start, end], ordered by
// priority then due date, both ascending. Priority sorts by raw stored
// value (0 first), which is the established product behavior.
func (s *TaskStore) ListDueBetween(householdID int64, start, end time.Time) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND status = ? AND due_at >= ? AND due_at <= ?
		 ORDER BY priority ASC, due_at ASC, id ASC`,
		householdID, model.StatusTodo, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks due between: %w", err)
	}
	return collectTasks(rows)
}

// ListOverdue returns todo tasks with a due date at or before the cutoff.
func (s *TaskStore) ListOverdue(householdID int64, before time.Time) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND status = ? AND due_at IS NOT NULL AND due_at <= ?
		 ORDER BY due_at ASC, id ASC`,
		householdID, model.StatusTodo, before.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}
	return collectTasks(rows)
}

// ListCompletedBetween returns done tasks completed within [start, end].
func (s *TaskStore) ListCompletedBetween(householdID int64, start, end time.Time) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks
		 WHERE household_id = ? AND status = ? AND completed_at >= ? AND completed_at <= ?
		 ORDER BY completed_at ASC, id ASC`,
		householdID, model.StatusDone, start.UTC(), end.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list completed tasks: %w", err)
	}
	return collectTasks(rows)
}

// WeeklyStats computes four independent counts for the range.
func (s *TaskStore) WeeklyStats(householdID int64, start, end time.Time) (*model.WeeklyStats, error) {
	var stats model.WeeklyStats

	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks
		 WHERE household_id = ? AND status = ? AND completed_at >= ? AND completed_at <= ?`,
		householdID, model.StatusDone, start.UTC(), end.UTC(),
	).Scan(&stats.Completed)
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks
		 WHERE household_id = ? AND created_at >= ? AND created_at <= ?`,
		householdID, start.UTC(), end.UTC(),
	).Scan(&stats.Created)
	if err != nil {
		return nil, fmt.Errorf("count created: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE household_id = ? AND status IN (?, ?)`,
		householdID, model.StatusTodo, model.StatusInProgress,
	).Scan(&stats.Pending)
	if err != nil {
		return nil, fmt.Errorf("count pending: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM tasks
		 WHERE household_id = ? AND status = ? AND due_at IS NOT NULL AND due_at <= ?`,
		householdID, model.StatusTodo, start.UTC(),
	).Scan(&stats.Overdue)
	if err != nil {
		return nil, fmt.Errorf("count overdue: %w", err)
	}

	return &stats, nil
}
