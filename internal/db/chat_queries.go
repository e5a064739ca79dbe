package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Chat message roles accepted by the write path.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

const maxChatMessageListLimit = 500

// ValidChatRole reports whether role names a known message role.
func ValidChatRole(role string) bool {
	switch role {
	case ChatRoleUser, ChatRoleAssistant, ChatRoleSystem:
		return true
	}
	return false
}

// ChatThreadRecord is the read model returned on thread creation.
type ChatThreadRecord struct {
	ThreadID    int64     `json:"-"`
	ThreadUUID  string    `json:"thread_id"`
	ItemID      int64     `json:"-"`
	ItemUUID    string    `json:"item_id"`
	Title       string    `json:"title"`
	ActiveModel *string   `json:"active_model,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatMessageRecord is one stored conversation message.
type ChatMessageRecord struct {
	MessageUUID string    `json:"message_id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	TokenUsage  int       `json:"token_usage"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateChatThread creates the backing chat item and its thread in one
// transaction and returns both ids.
func (p *Pool) CreateChatThread(ctx context.Context, workspaceID int64, title string, activeModel *string) (*ChatThreadRecord, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return nil, fmt.Errorf("thread title is required")
	}

	var record ChatThreadRecord
	err := p.WithTx(ctx, func(tx Tx) error {
		const insertItem = `
INSERT INTO burrow.items (workspace_id, type, title, content, metadata, last_activity_at, created_at, updated_at)
VALUES ($1, 'chat', $2, '', '{}'::jsonb, now(), now(), now())
RETURNING item_id, item_uuid::text
`

		if err := tx.QueryRow(ctx, insertItem, workspaceID, trimmedTitle).Scan(&record.ItemID, &record.ItemUUID); err != nil {
			return fmt.Errorf("insert chat item: %w", err)
		}

		const insertThread = `
INSERT INTO burrow.chat_threads (workspace_id, item_id, active_model, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING thread_id, thread_uuid::text, created_at
`

		if err := tx.QueryRow(ctx, insertThread, workspaceID, record.ItemID, activeModel).Scan(
			&record.ThreadID,
			&record.ThreadUUID,
			&record.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert chat thread: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	record.Title = trimmedTitle
	record.ActiveModel = activeModel
	return &record, nil
}

// GetChatThreadByUUID resolves an active thread and its backing item.
func (p *Pool) GetChatThreadByUUID(ctx context.Context, workspaceID int64, threadUUID string) (*ChatThreadRecord, error) {
	const q = `
SELECT
	ct.thread_id,
	ct.thread_uuid::text,
	ct.item_id,
	i.item_uuid::text,
	i.title,
	ct.active_model,
	ct.created_at
FROM burrow.chat_threads ct
JOIN burrow.items i ON i.item_id = ct.item_id
WHERE ct.workspace_id = $1
  AND ct.thread_uuid = $2::uuid
  AND ct.deleted_at IS NULL
  AND i.deleted_at IS NULL
`

	var record ChatThreadRecord
	if err := p.QueryRow(ctx, q, workspaceID, strings.TrimSpace(threadUUID)).Scan(
		&record.ThreadID,
		&record.ThreadUUID,
		&record.ItemID,
		&record.ItemUUID,
		&record.Title,
		&record.ActiveModel,
		&record.CreatedAt,
	); err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query chat thread: %w", err)
	}
	return &record, nil
}

// AppendChatMessage stores one message and bumps the thread item's activity
// in the same transaction.
func (p *Pool) AppendChatMessage(ctx context.Context, workspaceID, threadID, itemID int64, role, content string, tokenUsage int) (*ChatMessageRecord, error) {
	if !ValidChatRole(role) {
		return nil, fmt.Errorf("invalid chat role %q", role)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is required")
	}
	if tokenUsage < 0 {
		tokenUsage = 0
	}

	var record ChatMessageRecord
	err := p.WithTx(ctx, func(tx Tx) error {
		const insertMessage = `
INSERT INTO burrow.chat_messages (workspace_id, thread_id, role, content, token_usage, created_at)
VALUES ($1, $2, $3, $4, $5, now())
RETURNING message_uuid::text, role, content, token_usage, created_at
`

		if err := tx.QueryRow(ctx, insertMessage, workspaceID, threadID, role, content, tokenUsage).Scan(
			&record.MessageUUID,
			&record.Role,
			&record.Content,
			&record.TokenUsage,
			&record.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert chat message: %w", err)
		}

		const touchItem = `
UPDATE burrow.items
SET last_activity_at = now(), updated_at = now()
WHERE item_id = $1
`

		if _, err := tx.Exec(ctx, touchItem, itemID); err != nil {
			return fmt.Errorf("touch chat item: %w", err)
		}

		const touchThread = `
UPDATE burrow.chat_threads
SET updated_at = now()
WHERE thread_id = $1
`

		if _, err := tx.Exec(ctx, touchThread, threadID); err != nil {
			return fmt.Errorf("touch chat thread: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListChatMessages returns a thread's messages oldest first.
func (p *Pool) ListChatMessages(ctx context.Context, workspaceID, threadID int64, limit int) ([]ChatMessageRecord, error) {
	if limit <= 0 || limit > maxChatMessageListLimit {
		limit = maxChatMessageListLimit
	}

	const q = `
SELECT
	m.message_uuid::text,
	m.role,
	m.content,
	m.token_usage,
	m.created_at
FROM burrow.chat_messages m
WHERE m.workspace_id = $1
  AND m.thread_id = $2
ORDER BY m.created_at ASC, m.message_id ASC
LIMIT $3
`

	rows, err := p.Query(ctx, q, workspaceID, threadID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]ChatMessageRecord, 0, 32)
	for rows.Next() {
		var record ChatMessageRecord
		if err := rows.Scan(
			&record.MessageUUID,
			&record.Role,
			&record.Content,
			&record.TokenUsage,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	return messages, nil
}

// ChatTranscript joins a thread's messages into plain text for
// classification and indexing.
func ChatTranscript(title string, messages []ChatMessageRecord) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimSpace(title))
	for _, message := range messages {
		builder.WriteString("\n")
		builder.WriteString(message.Role)
		builder.WriteString(": ")
		builder.WriteString(message.Content)
	}
	return strings.TrimSpace(builder.String())
}

// marshalMetadata is a small helper for query callers that build jsonb
// payloads from maps.
func marshalMetadata(metadata map[string]any) (json.RawMessage, error) {
	if len(metadata) == 0 {
		return json.RawMessage(`{}`), nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return raw, nil
}
