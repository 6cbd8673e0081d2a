package store

import (
	"database/sql"
	"fmt"

	"github.com/patchworkhq/hearth/internal/model"
)

type ConversationStore struct {
	db *sql.DB
}

func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

func scanConversation(scanner interface{ Scan(...any) error }) (*model.Conversation, error) {
	var c model.Conversation
	var startedBy sql.NullInt64

	err := scanner.Scan(&c.ID, &c.HouseholdID, &c.Title, &startedBy, &c.CreatedAt)
	if err != nil {
		return nil, err
	}

	if startedBy.Valid {
		c.StartedBy = &startedBy.Int64
	}
	return &c, nil
}

func (s *ConversationStore) Create(householdID int64, title string, startedBy *int64) (*model.Conversation, error) {
	result, err := s.db.Exec(
		`INSERT INTO conversations (household_id, title, started_by) VALUES (?, ?, ?)`,
		householdID, title, nullInt(startedBy),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id, householdID)
}

func (s *ConversationStore) GetByID(id, householdID int64) (*model.Conversation, error) {
	row := s.db.QueryRow(
		`SELECT id, household_id, title, started_by, created_at
		 FROM conversations WHERE id = ? AND household_id = ?`,
		id, householdID,
	)
	c, err := scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (s *ConversationStore) List(householdID int64) ([]model.Conversation, error) {
	rows, err := s.db.Query(
		`SELECT id, household_id, title, started_by, created_at
		 FROM conversations WHERE household_id = ? ORDER BY created_at DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []model.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

// AppendMessage assigns the next sequence number inside a transaction, so
// two concurrent appends cannot claim the same slot.
func (s *ConversationStore) AppendMessage(conversationID int64, role, body string) (*model.ConversationMessage, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM conversation_messages WHERE conversation_id = ?`,
		conversationID,
	).Scan(&seq)
	if err != nil {
		return nil, fmt.Errorf("next message seq: %w", err)
	}

	result, err := tx.Exec(
		`INSERT INTO conversation_messages (conversation_id, seq, role, body) VALUES (?, ?, ?, ?)`,
		conversationID, seq, role, body,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit message: %w", err)
	}

	var m model.ConversationMessage
	err = s.db.QueryRow(
		`SELECT id, conversation_id, seq, role, body, created_at
		 FROM conversation_messages WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Role, &m.Body, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

func (s *ConversationStore) ListMessages(conversationID int64) ([]model.ConversationMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, seq, role, body, created_at
		 FROM conversation_messages WHERE conversation_id = ? ORDER BY seq ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.ConversationMessage
	for rows.Next() {
		var m model.ConversationMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Seq, &m.Role, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *ConversationStore) RecordToolCall(messageID int64, name, arguments string) (*model.ToolCall, error) {
	if arguments == "" {
		arguments = "{}"
	}
	result, err := s.db.Exec(
		`INSERT INTO tool_calls (message_id, name, arguments) VALUES (?, ?, ?)`,
		messageID, name, arguments,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tool call: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var tc model.ToolCall
	err = s.db.QueryRow(
		`SELECT id, message_id, name, arguments, created_at FROM tool_calls WHERE id = ?`,
		id,
	).Scan(&tc.ID, &tc.MessageID, &tc.Name, &tc.Arguments, &tc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tool call: %w", err)
	}
	return &tc, nil
}

func (s *ConversationStore) RecordToolResult(toolCallID int64, body string, isError bool) (*model.ToolResult, error) {
	result, err := s.db.Exec(
		`INSERT INTO tool_results (tool_call_id, body, is_error) VALUES (?, ?, ?)`,
		toolCallID, body, isError,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tool result: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var tr model.ToolResult
	err = s.db.QueryRow(
		`SELECT id, tool_call_id, body, is_error, created_at FROM tool_results WHERE id = ?`,
		id,
	).Scan(&tr.ID, &tr.ToolCallID, &tr.Body, &tr.IsError, &tr.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get tool result: %w", err)
	}
	return &tr, nil
}

// Link records a reference from a conversation to a domain entity. The
// link table has no foreign key on the target, so existence is checked
// here before the write.
func (s *ConversationStore) Link(conversationID, householdID int64, entityType string, entityID int64) (*model.ConversationLink, error) {
	var table string
	switch entityType {
	case model.EntityTheme:
		table = "themes"
	case model.EntityProject:
		table = "projects"
	case model.EntityTask:
		table = "tasks"
	case model.EntityFamilyMember:
		table = "family_members"
	default:
		return nil, fmt.Errorf("unknown entity type %q", entityType)
	}

	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM `+table+` WHERE id = ? AND household_id = ?`,
		entityID, householdID,
	).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("check link target: %w", err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%s %d not found", entityType, entityID)
	}

	_, err = s.db.Exec(
		`INSERT INTO conversation_links (conversation_id, entity_type, entity_id) VALUES (?, ?, ?)
		 ON CONFLICT(conversation_id, entity_type, entity_id) DO NOTHING`,
		conversationID, entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert link: %w", err)
	}

	var l model.ConversationLink
	err = s.db.QueryRow(
		`SELECT id, conversation_id, entity_type, entity_id, created_at
		 FROM conversation_links
		 WHERE conversation_id = ? AND entity_type = ? AND entity_id = ?`,
		conversationID, entityType, entityID,
	).Scan(&l.ID, &l.ConversationID, &l.EntityType, &l.EntityID, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return &l, nil
}

func (s *ConversationStore) ListLinks(conversationID int64) ([]model.ConversationLink, error) {
	rows, err := s.db.Query(
		`SELECT id, conversation_id, entity_type, entity_id, created_at
		 FROM conversation_links WHERE conversation_id = ? ORDER BY id ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []model.ConversationLink
	for rows.Next() {
		var l model.ConversationLink
		if err := rows.Scan(&l.ID, &l.ConversationID, &l.EntityType, &l.EntityID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}
