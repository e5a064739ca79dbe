package db

import (
	"context"
	"fmt"
	"time"
)

// TopicNode is one row of the topic tree read model.
type TopicNode struct {
	TopicID         int64      `json:"-"`
	TopicUUID       string     `json:"topic_id"`
	Name            string     `json:"name"`
	Summary         *string    `json:"summary,omitempty"`
	ParentTopicUUID *string    `json:"parent_topic_id,omitempty"`
	Source          string     `json:"source"`
	ItemCount       int64      `json:"item_count"`
	LastLinkedAt    *time.Time `json:"last_linked_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ListTopicTree returns active topics with item counts, ordered for a stable
// tree render: roots first by item count, then name.
func (p *Pool) ListTopicTree(ctx context.Context, workspaceID int64) ([]TopicNode, error) {
	const q = `
SELECT
	t.topic_id,
	t.topic_uuid::text,
	t.name,
	t.summary,
	parent.topic_uuid::text,
	t.source,
	COALESCE(links.item_count, 0),
	links.last_linked_at,
	t.created_at
FROM burrow.topics t
LEFT JOIN burrow.topics parent
	ON parent.topic_id = t.parent_topic_id
	AND parent.deleted_at IS NULL
LEFT JOIN (
	SELECT
		l.topic_id,
		COUNT(*)::BIGINT AS item_count,
		MAX(l.linked_at) AS last_linked_at
	FROM burrow.item_topic_links l
	JOIN burrow.items i ON i.item_id = l.item_id
	WHERE i.deleted_at IS NULL
	GROUP BY l.topic_id
) links ON links.topic_id = t.topic_id
WHERE t.workspace_id = $1
  AND t.deleted_at IS NULL
ORDER BY COALESCE(links.item_count, 0) DESC, t.name ASC, t.topic_id ASC
`

	rows, err := p.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query topic tree: %w", err)
	}
	defer rows.Close()

	var nodes []TopicNode
	for rows.Next() {
		var node TopicNode
		if err := rows.Scan(
			&node.TopicID,
			&node.TopicUUID,
			&node.Name,
			&node.Summary,
			&node.ParentTopicUUID,
			&node.Source,
			&node.ItemCount,
			&node.LastLinkedAt,
			&node.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan topic row: %w", err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic rows: %w", err)
	}
	return nodes, nil
}
