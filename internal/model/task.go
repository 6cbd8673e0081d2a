package model

import "time"

// Task status values. Any status may be set directly to any other; there is
// no transition state machine.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusArchived   = "archived"
)

// Task priority values, stored and sorted as plain integers.
const (
	PriorityNormal = 0
	PriorityHigh   = 1
	PriorityUrgent = 2
)

// Recurrence type values.
const (
	RecurNone    = "none"
	RecurDaily   = "daily"
	RecurWeekly  = "weekly"
	RecurMonthly = "monthly"
)

type Theme struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Project struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	ThemeID     *int64    `json:"theme_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Task struct {
	ID                 int64      `json:"id"`
	HouseholdID        int64      `json:"household_id"`
	Title              string     `json:"title"`
	Notes              string     `json:"notes"`
	Status             string     `json:"status"`
	ThemeID            *int64     `json:"theme_id"`
	ProjectID          *int64     `json:"project_id"`
	AssigneeID         *int64     `json:"assignee_id"`
	DueAt              *time.Time `json:"due_at"`
	Priority           int        `json:"priority"`
	RecurrenceType     string     `json:"recurrence_type"`
	RecurrenceInterval int        `json:"recurrence_interval"`
	CompletedAt        *time.Time `json:"completed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// WeeklyStats holds the four independent counters of a weekly summary.
type WeeklyStats struct {
	Completed int `json:"completed"`
	Created   int `json:"created"`
	Pending   int `json:"pending"`
	Overdue   int `json:"overdue"`
}
