package db

import (
	"context"
	"fmt"
	"time"
)

// TypeCount stores per-item-type counts.
type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// WorkspaceStats is the read model returned by the stats command and the
// stats endpoint.
type WorkspaceStats struct {
	WorkspaceUUID  string      `json:"workspace_id"`
	Items          int64       `json:"items"`
	ItemsByType    []TypeCount `json:"items_by_type"`
	Topics         int64       `json:"topics"`
	AutoTopics     int64       `json:"auto_topics"`
	Links          int64       `json:"links"`
	Chunks         int64       `json:"chunks"`
	EmbeddedChunks int64       `json:"embedded_chunks"`
	LastActivityAt *time.Time  `json:"last_activity_at,omitempty"`
}

// QueryWorkspaceStats returns operational counts for one workspace.
func (p *Pool) QueryWorkspaceStats(ctx context.Context, workspaceID int64) (*WorkspaceStats, error) {
	stats := &WorkspaceStats{
		ItemsByType: make([]TypeCount, 0, 4),
	}

	const totalsQuery = `
SELECT
	w.workspace_uuid::text,
	(SELECT COUNT(*) FROM burrow.items i
		WHERE i.workspace_id = w.workspace_id AND i.deleted_at IS NULL),
	(SELECT COUNT(*) FROM burrow.topics t
		WHERE t.workspace_id = w.workspace_id AND t.deleted_at IS NULL),
	(SELECT COUNT(*) FROM burrow.topics t
		WHERE t.workspace_id = w.workspace_id AND t.deleted_at IS NULL AND t.source = 'auto'),
	(SELECT COUNT(*) FROM burrow.item_topic_links l
		JOIN burrow.items i ON i.item_id = l.item_id
		WHERE l.workspace_id = w.workspace_id AND i.deleted_at IS NULL),
	(SELECT COUNT(*) FROM burrow.search_chunks c
		WHERE c.workspace_id = w.workspace_id),
	(SELECT COUNT(*) FROM burrow.search_chunks c
		WHERE c.workspace_id = w.workspace_id AND c.embedding IS NOT NULL),
	(SELECT MAX(i.last_activity_at) FROM burrow.items i
		WHERE i.workspace_id = w.workspace_id AND i.deleted_at IS NULL)
FROM burrow.workspaces w
WHERE w.workspace_id = $1
`

	if err := p.QueryRow(ctx, totalsQuery, workspaceID).Scan(
		&stats.WorkspaceUUID,
		&stats.Items,
		&stats.Topics,
		&stats.AutoTopics,
		&stats.Links,
		&stats.Chunks,
		&stats.EmbeddedChunks,
		&stats.LastActivityAt,
	); err != nil {
		return nil, fmt.Errorf("query workspace totals: %w", err)
	}

	const byTypeQuery = `
SELECT i.type, COUNT(*)::BIGINT
FROM burrow.items i
WHERE i.workspace_id = $1
  AND i.deleted_at IS NULL
GROUP BY i.type
ORDER BY i.type ASC
`

	rows, err := p.Query(ctx, byTypeQuery, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query item type counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var count TypeCount
		if err := rows.Scan(&count.Type, &count.Count); err != nil {
			return nil, fmt.Errorf("scan item type count: %w", err)
		}
		stats.ItemsByType = append(stats.ItemsByType, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate item type counts: %w", err)
	}

	return stats, nil
}
