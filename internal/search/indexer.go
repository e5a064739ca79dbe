package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/embedding"
	"github.com/burrowhq/burrow/internal/globaltime"
	"github.com/burrowhq/burrow/internal/langdetect"
)

// Indexer turns item content into searchable chunks. Chunks are append-only:
// re-indexing inserts a fresh generation stamped with indexed_at and leaves
// prior rows in place.
type Indexer struct {
	pool     *db.Pool
	embedder *embedding.Client
	logger   zerolog.Logger
}

type IndexResult struct {
	ChunkCount int    `json:"chunk_count"`
	Embedded   int    `json:"embedded"`
	Language   string `json:"language,omitempty"`
}

func NewIndexer(pool *db.Pool, embedder *embedding.Client, logger zerolog.Logger) *Indexer {
	return &Indexer{
		pool:     pool,
		embedder: embedder,
		logger:   logger,
	}
}

// IndexItem chunks content, embeds each chunk best-effort, and persists the
// whole set as one batch. Blank content produces zero rows and is not an
// error. Embedding unavailability or failure leaves the affected chunk with a
// null vector; persistence failures propagate.
func (ix *Indexer) IndexItem(ctx context.Context, workspaceID, itemID int64, content string) (IndexResult, error) {
	if ix == nil || ix.pool == nil {
		return IndexResult{}, fmt.Errorf("indexer is not initialized")
	}

	chunks := ChunkText(content, ChunkSize)
	if len(chunks) > MaxChunksPerItem {
		chunks = chunks[:MaxChunksPerItem]
	}
	if len(chunks) == 0 {
		return IndexResult{}, nil
	}

	result := IndexResult{ChunkCount: len(chunks)}

	literals := make([]*string, len(chunks))
	for i, chunk := range chunks {
		vector, err := ix.embedder.Embed(ctx, chunk)
		if err != nil {
			ix.logger.Warn().
				Err(err).
				Int64("item_id", itemID).
				Int("position", i).
				Msg("chunk embedding failed; storing without vector")
			continue
		}
		if vector == nil {
			continue
		}

		literal, err := embedding.VectorLiteral(vector)
		if err != nil {
			ix.logger.Warn().
				Err(err).
				Int64("item_id", itemID).
				Int("position", i).
				Msg("chunk embedding unusable; storing without vector")
			continue
		}
		literals[i] = &literal
		result.Embedded++
	}

	now := globaltime.UTC()
	if err := ix.insertChunks(ctx, workspaceID, itemID, chunks, literals, now); err != nil {
		return IndexResult{}, err
	}

	if language := langdetect.DetectISO6391(content); language != "" {
		result.Language = language
		if err := ix.tagItemLanguage(ctx, workspaceID, itemID, language, now); err != nil {
			ix.logger.Warn().
				Err(err).
				Int64("item_id", itemID).
				Str("language", language).
				Msg("failed to record item language")
		}
	}

	ix.logger.Debug().
		Int64("workspace_id", workspaceID).
		Int64("item_id", itemID).
		Int("chunks", result.ChunkCount).
		Int("embedded", result.Embedded).
		Msg("item indexed")

	return result, nil
}

func (ix *Indexer) insertChunks(
	ctx context.Context,
	workspaceID int64,
	itemID int64,
	chunks []string,
	literals []*string,
	now time.Time,
) error {
	var builder strings.Builder
	builder.WriteString(`
INSERT INTO burrow.search_chunks (
	workspace_id,
	item_id,
	position,
	content,
	embedding,
	indexed_at,
	created_at
)
VALUES `)

	args := make([]any, 0, len(chunks)*5)
	placeholder := 1
	for i, chunk := range chunks {
		if i > 0 {
			builder.WriteString(",\n")
		}
		builder.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d, $%d::vector, $%d, $%d)",
			placeholder, placeholder+1, placeholder+2, placeholder+3, placeholder+4, placeholder+5, placeholder+5))
		placeholder += 6
		args = append(args, workspaceID, itemID, i, truncate(chunk, maxStoredChunkLength), literals[i], now)
	}

	if _, err := ix.pool.Exec(ctx, builder.String(), args...); err != nil {
		return fmt.Errorf("insert search chunks item_id=%d: %w", itemID, err)
	}
	return nil
}

func (ix *Indexer) tagItemLanguage(ctx context.Context, workspaceID, itemID int64, language string, now time.Time) error {
	const q = `
UPDATE burrow.items
SET metadata = jsonb_set(COALESCE(metadata, '{}'::jsonb), '{language}', to_jsonb($1::text)),
	updated_at = $2
WHERE item_id = $3
  AND workspace_id = $4
  AND deleted_at IS NULL
`
	if _, err := ix.pool.Exec(ctx, q, language, now, itemID, workspaceID); err != nil {
		return fmt.Errorf("tag item language item_id=%d: %w", itemID, err)
	}
	return nil
}
