package model

import "time"

// Conversation link entity types. Links carry no foreign key; existence of
// the target is validated in application code when the link is written.
const (
	EntityTheme        = "theme"
	EntityProject      = "project"
	EntityTask         = "task"
	EntityFamilyMember = "family_member"
)

type Conversation struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Title       string    `json:"title"`
	StartedBy   *int64    `json:"started_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type ConversationMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Seq            int       `json:"seq"`
	Role           string    `json:"role"`
	Body           string    `json:"body"`
	CreatedAt      time.Time `json:"created_at"`
}

type ToolCall struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message_id"`
	Name      string    `json:"name"`
	Arguments string    `json:"arguments"`
	CreatedAt time.Time `json:"created_at"`
}

type ToolResult struct {
	ID         int64     `json:"id"`
	ToolCallID int64     `json:"tool_call_id"`
	Body       string    `json:"body"`
	IsError    bool      `json:"is_error"`
	CreatedAt  time.Time `json:"created_at"`
}

type ConversationLink struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	EntityType     string    `json:"entity_type"`
	EntityID       int64     `json:"entity_id"`
	CreatedAt      time.Time `json:"created_at"`
}
