package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Audit event types written by the content-producing operations.
const (
	AuditItemCreated   = "item.created"
	AuditItemDeleted   = "item.deleted"
	AuditItemImported  = "item.imported"
	AuditChatStarted   = "chat.started"
	AuditTopicAssigned = "topic.assigned"
	AuditTopicsMerged  = "topics.merged"
)

// AuditEventRecord is the read model for recent audit rows.
type AuditEventRecord struct {
	AuditEventUUID string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Metadata       string    `json:"metadata"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsertAuditEvent writes one audit row. Callers treat failures as
// non-fatal; they log and continue.
func (p *Pool) InsertAuditEvent(ctx context.Context, workspaceID int64, eventType string, metadata map[string]any) error {
	trimmedType := strings.TrimSpace(eventType)
	if trimmedType == "" {
		return fmt.Errorf("audit event type is required")
	}

	raw, err := marshalMetadata(metadata)
	if err != nil {
		return err
	}

	const q = `
INSERT INTO burrow.audit_events (workspace_id, event_type, metadata, created_at)
VALUES ($1, $2, $3::jsonb, now())
`

	if _, err := p.Exec(ctx, q, workspaceID, trimmedType, string(raw)); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecentAuditEvents returns the newest audit rows for a workspace.
func (p *Pool) ListRecentAuditEvents(ctx context.Context, workspaceID int64, limit int) ([]AuditEventRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const q = `
SELECT
	e.audit_event_uuid::text,
	e.event_type,
	e.metadata::text,
	e.created_at
FROM burrow.audit_events e
WHERE e.workspace_id = $1
ORDER BY e.created_at DESC, e.audit_event_id DESC
LIMIT $2
`

	rows, err := p.Query(ctx, q, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]AuditEventRecord, 0, limit)
	for rows.Next() {
		var record AuditEventRecord
		if err := rows.Scan(
			&record.AuditEventUUID,
			&record.EventType,
			&record.Metadata,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
