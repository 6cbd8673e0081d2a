package model

import "time"

type List struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	OwnerID     *int64    `json:"owner_id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListItem completion is a nullable timestamp: non-nil MarkedOffAt means done.
type ListItem struct {
	ID          int64      `json:"id"`
	ListID      int64      `json:"list_id"`
	Name        string     `json:"name"`
	Quantity    string     `json:"quantity"`
	MarkedOffAt *time.Time `json:"marked_off_at"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
}

type ListShare struct {
	ID        int64     `json:"id"`
	ListID    int64     `json:"list_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ListPin struct {
	ID        int64     `json:"id"`
	ListID    int64     `json:"list_id"`
	UserID    int64     `json:"user_id"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
