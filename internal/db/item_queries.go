package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Item types accepted by the write paths.
const (
	ItemTypeChat        = "chat"
	ItemTypeFile        = "file"
	ItemTypeInstruction = "instruction"
	ItemTypeAgent       = "agent"
)

const (
	defaultItemListLimit = 50
	maxItemListLimit     = 200
)

// ValidItemType reports whether t names a known item type.
func ValidItemType(t string) bool {
	switch t {
	case ItemTypeChat, ItemTypeFile, ItemTypeInstruction, ItemTypeAgent:
		return true
	}
	return false
}

// ItemRecord is the read model for a stored item.
type ItemRecord struct {
	ItemID         int64           `json:"-"`
	ItemUUID       string          `json:"item_id"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Content        string          `json:"content,omitempty"`
	Metadata       json.RawMessage `json:"metadata"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ItemListEntry is the listing read model; content is omitted and linked
// topics are attached as summaries.
type ItemListEntry struct {
	ItemUUID       string          `json:"item_id"`
	Type           string          `json:"type"`
	Title          string          `json:"title"`
	Metadata       json.RawMessage `json:"metadata"`
	TopicNames     []string        `json:"topics"`
	LastActivityAt time.Time       `json:"last_activity_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ItemListOptions filters the listing query.
type ItemListOptions struct {
	Type      string
	TopicUUID string
	Limit     int
}

// InsertItem stores one item and returns the created row.
func (p *Pool) InsertItem(ctx context.Context, workspaceID int64, itemType, title, content string, metadata json.RawMessage) (*ItemRecord, error) {
	if !ValidItemType(itemType) {
		return nil, fmt.Errorf("invalid item type %q", itemType)
	}
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return nil, fmt.Errorf("item title is required")
	}
	if len(metadata) == 0 {
		metadata = json.RawMessage(`{}`)
	}

	const q = `
INSERT INTO burrow.items (
	workspace_id,
	type,
	title,
	content,
	metadata,
	last_activity_at,
	created_at,
	updated_at
)
VALUES ($1, $2, $3, $4, $5::jsonb, now(), now(), now())
RETURNING
	item_id,
	item_uuid::text,
	type,
	title,
	content,
	metadata,
	last_activity_at,
	created_at
`

	var row ItemRecord
	if err := p.QueryRow(ctx, q, workspaceID, itemType, trimmedTitle, content, string(metadata)).Scan(
		&row.ItemID,
		&row.ItemUUID,
		&row.Type,
		&row.Title,
		&row.Content,
		&row.Metadata,
		&row.LastActivityAt,
		&row.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return &row, nil
}

// GetItemByUUID returns one active item with its content.
func (p *Pool) GetItemByUUID(ctx context.Context, workspaceID int64, itemUUID string) (*ItemRecord, error) {
	const q = `
SELECT
	i.item_id,
	i.item_uuid::text,
	i.type,
	i.title,
	i.content,
	i.metadata,
	i.last_activity_at,
	i.created_at
FROM burrow.items i
WHERE i.workspace_id = $1
  AND i.item_uuid = $2::uuid
  AND i.deleted_at IS NULL
`

	var row ItemRecord
	if err := p.QueryRow(ctx, q, workspaceID, strings.TrimSpace(itemUUID)).Scan(
		&row.ItemID,
		&row.ItemUUID,
		&row.Type,
		&row.Title,
		&row.Content,
		&row.Metadata,
		&row.LastActivityAt,
		&row.CreatedAt,
	); err != nil {
		if errors.Is(err, ErrNoRows) {
			return nil, ErrNoRows
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &row, nil
}

// ListItems returns active items newest-activity first, optionally filtered
// by type and linked topic.
func (p *Pool) ListItems(ctx context.Context, workspaceID int64, opts ItemListOptions) ([]ItemListEntry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultItemListLimit
	}
	if limit > maxItemListLimit {
		limit = maxItemListLimit
	}

	itemType := strings.TrimSpace(opts.Type)
	if itemType != "" && !ValidItemType(itemType) {
		return nil, fmt.Errorf("invalid item type %q", itemType)
	}

	const q = `
SELECT
	i.item_uuid::text,
	i.type,
	i.title,
	i.metadata,
	COALESCE(
		(
			SELECT string_agg(t.name, chr(31) ORDER BY l.confidence DESC)
			FROM burrow.item_topic_links l
			JOIN burrow.topics t ON t.topic_id = l.topic_id
			WHERE l.item_id = i.item_id
			  AND t.deleted_at IS NULL
		),
		''
	),
	i.last_activity_at,
	i.created_at
FROM burrow.items i
WHERE i.workspace_id = $1
  AND i.deleted_at IS NULL
  AND ($2 = '' OR i.type = $2)
  AND (
	$3 = ''
	OR EXISTS (
		SELECT 1
		FROM burrow.item_topic_links l
		JOIN burrow.topics t ON t.topic_id = l.topic_id
		WHERE l.item_id = i.item_id
		  AND t.topic_uuid = $3::uuid
		  AND t.deleted_at IS NULL
	)
  )
ORDER BY i.last_activity_at DESC, i.item_id DESC
LIMIT $4
`

	rows, err := p.Query(ctx, q, workspaceID, itemType, strings.TrimSpace(opts.TopicUUID), limit)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	entries := make([]ItemListEntry, 0, limit)
	for rows.Next() {
		var entry ItemListEntry
		var joinedTopics string
		if err := rows.Scan(
			&entry.ItemUUID,
			&entry.Type,
			&entry.Title,
			&entry.Metadata,
			&joinedTopics,
			&entry.LastActivityAt,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item row: %w", err)
		}
		entry.TopicNames = splitJoinedNames(joinedTopics)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item rows: %w", err)
	}
	return entries, nil
}

// splitJoinedNames splits a chr(31)-joined string_agg result.
func splitJoinedNames(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, "\x1f")
}

// SoftDeleteItem marks an item deleted and removes its topic links and
// search chunks.
func (p *Pool) SoftDeleteItem(ctx context.Context, workspaceID int64, itemUUID string) error {
	return p.WithTx(ctx, func(tx Tx) error {
		const deleteItem = `
UPDATE burrow.items
SET deleted_at = now(), updated_at = now()
WHERE workspace_id = $1
  AND item_uuid = $2::uuid
  AND deleted_at IS NULL
RETURNING item_id
`

		var itemID int64
		if err := tx.QueryRow(ctx, deleteItem, workspaceID, strings.TrimSpace(itemUUID)).Scan(&itemID); err != nil {
			if errors.Is(err, ErrNoRows) {
				return ErrNoRows
			}
			return fmt.Errorf("soft-delete item: %w", err)
		}

		const deleteLinks = `DELETE FROM burrow.item_topic_links WHERE item_id = $1`
		if _, err := tx.Exec(ctx, deleteLinks, itemID); err != nil {
			return fmt.Errorf("delete item links: %w", err)
		}

		const deleteChunks = `DELETE FROM burrow.search_chunks WHERE item_id = $1`
		if _, err := tx.Exec(ctx, deleteChunks, itemID); err != nil {
			return fmt.Errorf("delete item chunks: %w", err)
		}
		return nil
	})
}

// TouchItemActivity bumps last_activity_at for ordering in listings.
func (p *Pool) TouchItemActivity(ctx context.Context, itemID int64) error {
	const q = `
UPDATE burrow.items
SET last_activity_at = now(), updated_at = now()
WHERE item_id = $1
`

	if _, err := p.Exec(ctx, q, itemID); err != nil {
		return fmt.Errorf("touch item activity: %w", err)
	}
	return nil
}

// InsertImportRecord stores a completed import row.
func (p *Pool) InsertImportRecord(ctx context.Context, workspaceID, itemID int64, source, fileName string, chunkCount int) (string, error) {
	const q = `
INSERT INTO burrow.imports (workspace_id, item_id, source, file_name, status, chunk_count, created_at)
VALUES ($1, $2, $3, $4, 'completed', $5, now())
RETURNING import_uuid::text
`

	var importUUID string
	if err := p.QueryRow(ctx, q, workspaceID, itemID, strings.TrimSpace(source), strings.TrimSpace(fileName), chunkCount).Scan(&importUUID); err != nil {
		return "", fmt.Errorf("insert import record: %w", err)
	}
	return importUUID, nil
}
