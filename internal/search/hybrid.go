package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/embedding"
)

const (
	minQueryLength = 2

	titleMatchScore   = 0.92
	contentMatchScore = 0.75

	titleMatchLimit    = 15
	contentMatchLimit  = 20
	semanticMatchLimit = 10

	semanticSimilarityFloor = 0.72

	snippetLength  = 220
	maxMergedCount = 25
)

// ErrQueryTooShort is returned for queries under the minimum length so callers
// can present a user-correctable message instead of a system error.
var ErrQueryTooShort = errors.New("search query is too short")

// Result is one ranked search hit. Strategy records which retrieval branch
// produced the winning evidence for the item.
type Result struct {
	ItemUUID string  `json:"item_id"`
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Snippet  string  `json:"snippet"`
	Strategy string  `json:"strategy"`
	Score    float64 `json:"score"`
}

// Service merges lexical and semantic retrieval into one ranked list.
type Service struct {
	pool     *db.Pool
	embedder *embedding.Client
	logger   zerolog.Logger
}

func NewService(pool *db.Pool, embedder *embedding.Client, logger zerolog.Logger) *Service {
	return &Service{
		pool:     pool,
		embedder: embedder,
		logger:   logger,
	}
}

// Search runs the title, content, and semantic strategies concurrently, waits
// for all of them, and merges by item keeping the single best-scoring entry.
// The semantic branch is skipped entirely when the query embedding is
// unavailable; an embedding failure degrades to the lexical-only path.
func (s *Service) Search(ctx context.Context, workspaceID int64, query string) ([]Result, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("search service is not initialized")
	}

	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < minQueryLength {
		return nil, ErrQueryTooShort
	}

	var (
		mu       sync.Mutex
		title    []Result
		content  []Result
		semantic []Result
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		results, err := s.searchTitles(groupCtx, workspaceID, trimmed)
		if err != nil {
			return err
		}
		mu.Lock()
		title = results
		mu.Unlock()
		return nil
	})

	group.Go(func() error {
		results, err := s.searchChunkContent(groupCtx, workspaceID, trimmed)
		if err != nil {
			return err
		}
		mu.Lock()
		content = results
		mu.Unlock()
		return nil
	})

	group.Go(func() error {
		vector, err := s.embedder.Embed(groupCtx, trimmed)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Int64("workspace_id", workspaceID).
				Msg("query embedding failed; semantic search skipped")
			return nil
		}

		literal, ok := s.queryLiteral(workspaceID, vector)
		if !ok {
			return nil
		}

		results, err := s.searchSemantic(groupCtx, workspaceID, literal)
		if err != nil {
			return err
		}
		mu.Lock()
		semantic = results
		mu.Unlock()
		return nil
	})

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return mergeResults(title, content, semantic), nil
}

// queryLiteral serializes the query embedding, reporting false when the
// vector is absent or unusable so search falls back to lexical matches only.
func (s *Service) queryLiteral(workspaceID int64, vector []float64) (string, bool) {
	if len(vector) == 0 {
		return "", false
	}
	literal, err := embedding.VectorLiteral(vector)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Int64("workspace_id", workspaceID).
			Msg("query embedding unusable; semantic search skipped")
		return "", false
	}
	return literal, true
}

// mergeResults deduplicates by item keeping the highest-scoring entry (best
// evidence, not score fusion), sorts by score descending with a stable order
// on ties, and caps the list.
func mergeResults(groups ...[]Result) []Result {
	bestByItem := make(map[string]int)
	var merged []Result

	for _, group := range groups {
		for _, result := range group {
			index, seen := bestByItem[result.ItemUUID]
			if !seen {
				bestByItem[result.ItemUUID] = len(merged)
				merged = append(merged, result)
				continue
			}
			if result.Score > merged[index].Score {
				merged[index] = result
			}
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > maxMergedCount {
		merged = merged[:maxMergedCount]
	}
	return merged
}

func (s *Service) searchTitles(ctx context.Context, workspaceID int64, query string) ([]Result, error) {
	const q = `
SELECT
	i.item_uuid::text,
	i.type,
	i.title
FROM burrow.items i
WHERE i.workspace_id = $1
  AND i.deleted_at IS NULL
  AND i.title ILIKE '%' || $2 || '%'
ORDER BY i.last_activity_at DESC
LIMIT $3
`

	rows, err := s.pool.Query(ctx, q, workspaceID, query, titleMatchLimit)
	if err != nil {
		return nil, fmt.Errorf("title search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var result Result
		if err := rows.Scan(&result.ItemUUID, &result.Type, &result.Title); err != nil {
			return nil, fmt.Errorf("scan title match: %w", err)
		}
		result.Snippet = result.Title
		result.Strategy = "title"
		result.Score = titleMatchScore
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate title matches: %w", err)
	}
	return results, nil
}

func (s *Service) searchChunkContent(ctx context.Context, workspaceID int64, query string) ([]Result, error) {
	const q = `
SELECT
	i.item_uuid::text,
	i.type,
	i.title,
	c.content
FROM burrow.search_chunks c
JOIN burrow.items i ON i.item_id = c.item_id
WHERE c.workspace_id = $1
  AND i.deleted_at IS NULL
  AND c.content ILIKE '%' || $2 || '%'
ORDER BY c.chunk_id DESC
LIMIT $3
`

	rows, err := s.pool.Query(ctx, q, workspaceID, query, contentMatchLimit)
	if err != nil {
		return nil, fmt.Errorf("content search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var result Result
		var chunkText string
		if err := rows.Scan(&result.ItemUUID, &result.Type, &result.Title, &chunkText); err != nil {
			return nil, fmt.Errorf("scan content match: %w", err)
		}
		result.Snippet = snippet(chunkText)
		result.Strategy = "content"
		result.Score = contentMatchScore
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content matches: %w", err)
	}
	return results, nil
}

func (s *Service) searchSemantic(ctx context.Context, workspaceID int64, vectorLiteral string) ([]Result, error) {
	const q = `
SELECT
	i.item_uuid::text,
	i.type,
	i.title,
	c.content,
	(1 - (c.embedding <=> $1::vector))::DOUBLE PRECISION AS similarity
FROM burrow.search_chunks c
JOIN burrow.items i ON i.item_id = c.item_id
WHERE c.workspace_id = $2
  AND i.deleted_at IS NULL
  AND c.embedding IS NOT NULL
  AND (1 - (c.embedding <=> $1::vector)) >= $3
ORDER BY c.embedding <=> $1::vector ASC
LIMIT $4
`

	rows, err := s.pool.Query(ctx, q, vectorLiteral, workspaceID, semanticSimilarityFloor, semanticMatchLimit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var result Result
		var chunkText string
		if err := rows.Scan(&result.ItemUUID, &result.Type, &result.Title, &chunkText, &result.Score); err != nil {
			return nil, fmt.Errorf("scan semantic match: %w", err)
		}
		result.Snippet = snippet(chunkText)
		result.Strategy = "semantic"
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate semantic matches: %w", err)
	}
	return results, nil
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLength {
		return text
	}
	return string(runes[:snippetLength])
}
