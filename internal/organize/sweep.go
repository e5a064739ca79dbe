package organize

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/globaltime"
)

// Sweeper merges duplicate topics across workspaces. Duplicates are topics
// whose trimmed, lower-cased names collide; no embedding comparison is used.
type Sweeper struct {
	pool   *db.Pool
	logger zerolog.Logger
}

type SweepResult struct {
	Workspaces int `json:"workspaces"`
	Merged     int `json:"merged"`
	Failed     int `json:"failed"`
}

type sweepTopic struct {
	TopicID   int64
	Name      string
	CreatedAt time.Time
}

func NewSweeper(pool *db.Pool, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		pool:   pool,
		logger: logger,
	}
}

// RunSweep merges duplicate topics in every non-deleted workspace. A failure in
// one workspace is logged and the sweep moves on. Running the sweep twice is a
// no-op the second time: after a pass no duplicate names coexist.
func (s *Sweeper) RunSweep(ctx context.Context) (SweepResult, error) {
	if s == nil || s.pool == nil {
		return SweepResult{}, fmt.Errorf("sweeper is not initialized")
	}

	workspaceIDs, err := s.listActiveWorkspaceIDs(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	for _, workspaceID := range workspaceIDs {
		result.Workspaces++

		merged, err := s.sweepWorkspace(ctx, workspaceID)
		if err != nil {
			result.Failed++
			s.logger.Error().
				Err(err).
				Int64("workspace_id", workspaceID).
				Msg("topic sweep failed for workspace; continuing")
			continue
		}

		result.Merged += merged
		if merged > 0 {
			s.logger.Info().
				Int64("workspace_id", workspaceID).
				Int("merged", merged).
				Msg("merged duplicate topics")
		}
	}

	return result, nil
}

func (s *Sweeper) sweepWorkspace(ctx context.Context, workspaceID int64) (int, error) {
	topics, err := s.listActiveTopics(ctx, workspaceID)
	if err != nil {
		return 0, err
	}

	merged := 0
	for _, group := range groupDuplicates(topics) {
		canonical := group[0]
		for _, duplicate := range group[1:] {
			if err := s.mergeTopic(ctx, workspaceID, duplicate.TopicID, canonical.TopicID); err != nil {
				return merged, err
			}
			merged++
		}
	}
	return merged, nil
}

// groupDuplicates buckets topics by normalized name and returns only the
// buckets with more than one member. Within a bucket the canonical topic comes
// first: earliest created_at, topic id as the final tie-break, so the choice is
// deterministic regardless of read order.
func groupDuplicates(topics []sweepTopic) [][]sweepTopic {
	buckets := make(map[string][]sweepTopic)
	var order []string
	for _, topic := range topics {
		key := strings.ToLower(strings.TrimSpace(topic.Name))
		if key == "" {
			continue
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], topic)
	}

	var groups [][]sweepTopic
	for _, key := range order {
		group := buckets[key]
		if len(group) < 2 {
			continue
		}

		canonical := 0
		for i := 1; i < len(group); i++ {
			current := group[i]
			best := group[canonical]
			if current.CreatedAt.Before(best.CreatedAt) ||
				(current.CreatedAt.Equal(best.CreatedAt) && current.TopicID < best.TopicID) {
				canonical = i
			}
		}
		group[0], group[canonical] = group[canonical], group[0]
		groups = append(groups, group)
	}
	return groups
}

// mergeTopic re-points the duplicate's links to the canonical topic and
// soft-deletes the duplicate. A link that would collide with an existing link
// to the canonical topic is dropped rather than duplicated.
func (s *Sweeper) mergeTopic(ctx context.Context, workspaceID, duplicateID, canonicalID int64) error {
	now := globaltime.UTC()

	const repoint = `
UPDATE burrow.item_topic_links l
SET topic_id = $1,
	source = 'auto',
	updated_at = $2
WHERE l.workspace_id = $3
  AND l.topic_id = $4
  AND NOT EXISTS (
	SELECT 1
	FROM burrow.item_topic_links existing
	WHERE existing.item_id = l.item_id
	  AND existing.topic_id = $1
)
`
	if _, err := s.pool.Exec(ctx, repoint, canonicalID, now, workspaceID, duplicateID); err != nil {
		return fmt.Errorf("re-point links topic_id=%d -> %d: %w", duplicateID, canonicalID, err)
	}

	const dropCollisions = `
DELETE FROM burrow.item_topic_links
WHERE workspace_id = $1
  AND topic_id = $2
`
	if _, err := s.pool.Exec(ctx, dropCollisions, workspaceID, duplicateID); err != nil {
		return fmt.Errorf("drop colliding links topic_id=%d: %w", duplicateID, err)
	}

	const softDelete = `
UPDATE burrow.topics
SET deleted_at = $1,
	updated_at = $1
WHERE topic_id = $2
  AND workspace_id = $3
  AND deleted_at IS NULL
`
	if _, err := s.pool.Exec(ctx, softDelete, now, duplicateID, workspaceID); err != nil {
		return fmt.Errorf("soft-delete duplicate topic_id=%d: %w", duplicateID, err)
	}

	return nil
}

func (s *Sweeper) listActiveWorkspaceIDs(ctx context.Context) ([]int64, error) {
	const q = `
SELECT workspace_id
FROM burrow.workspaces
WHERE deleted_at IS NULL
ORDER BY workspace_id
`

	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select active workspaces: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan workspace id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return ids, nil
}

func (s *Sweeper) listActiveTopics(ctx context.Context, workspaceID int64) ([]sweepTopic, error) {
	const q = `
SELECT topic_id, name, created_at
FROM burrow.topics
WHERE workspace_id = $1
  AND deleted_at IS NULL
ORDER BY created_at, topic_id
`

	rows, err := s.pool.Query(ctx, q, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("select topics for sweep: %w", err)
	}
	defer rows.Close()

	var topics []sweepTopic
	for rows.Next() {
		var topic sweepTopic
		if err := rows.Scan(&topic.TopicID, &topic.Name, &topic.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sweep topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sweep topics: %w", err)
	}
	return topics, nil
}
