package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/jobs"
	"github.com/burrowhq/burrow/internal/search"
)

const (
	// Imported content stored on the item is capped; search chunks still
	// cover the full text.
	maxStoredContentChars = 12000

	// Classification reads the opening of the document.
	classifyContentChars = 8000
)

// Enqueuer accepts background events. Satisfied by *jobs.Dispatcher.
type Enqueuer interface {
	Enqueue(event jobs.Event) bool
}

// ImportedItem describes one item created by an import.
type ImportedItem struct {
	ItemUUID   string `json:"item_id"`
	ImportUUID string `json:"import_id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	ChunkCount int    `json:"chunk_count"`
}

// Result summarizes a completed import.
type Result struct {
	FileName string         `json:"file_name"`
	Format   string         `json:"format"`
	Items    []ImportedItem `json:"items"`
}

// Service turns uploaded files into stored items and fans out the
// classification and indexing work.
type Service struct {
	pool     *db.Pool
	enqueuer Enqueuer
	logger   zerolog.Logger
}

func NewService(pool *db.Pool, enqueuer Enqueuer, logger zerolog.Logger) *Service {
	return &Service{
		pool:     pool,
		enqueuer: enqueuer,
		logger:   logger,
	}
}

// ImportFile ingests one uploaded file. The format follows the file
// extension: .json is a validated bundle of items, .html/.htm runs through
// readability, .md and .txt are stored as cleaned text.
func (s *Service) ImportFile(ctx context.Context, workspaceID int64, fileName string, data []byte) (*Result, error) {
	trimmedName := strings.TrimSpace(fileName)
	if trimmedName == "" {
		return nil, fmt.Errorf("file name is required")
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(trimmedName), "."))
	switch format {
	case "json":
		return s.importBundle(ctx, workspaceID, trimmedName, data)
	case "html", "htm":
		text, err := ExtractHTML(data, nil)
		if err != nil {
			return nil, fmt.Errorf("extract html: %w", err)
		}
		return s.importSingle(ctx, workspaceID, trimmedName, "html", text)
	case "md", "txt":
		text := CleanText(string(data))
		if text == "" {
			return nil, fmt.Errorf("file %q has no text content", trimmedName)
		}
		return s.importSingle(ctx, workspaceID, trimmedName, format, text)
	default:
		return nil, fmt.Errorf("unsupported import format %q", format)
	}
}

func (s *Service) importSingle(ctx context.Context, workspaceID int64, fileName, format, text string) (*Result, error) {
	title := titleFromFileName(fileName)

	metadata, err := json.Marshal(map[string]any{
		"source":    "import",
		"file_name": fileName,
		"format":    format,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal import metadata: %w", err)
	}

	imported, err := s.storeItem(ctx, workspaceID, db.ItemTypeFile, title, text, metadata, fileName, format)
	if err != nil {
		return nil, err
	}

	return &Result{
		FileName: fileName,
		Format:   format,
		Items:    []ImportedItem{*imported},
	}, nil
}

func (s *Service) importBundle(ctx context.Context, workspaceID int64, fileName string, data []byte) (*Result, error) {
	bundle, err := ValidateBundle(data)
	if err != nil {
		return nil, err
	}

	result := &Result{
		FileName: fileName,
		Format:   "json",
		Items:    make([]ImportedItem, 0, len(bundle.Items)),
	}

	for i, bundleItem := range bundle.Items {
		metadata := bundleItem.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["source"] = "import"
		metadata["file_name"] = fileName

		rawMetadata, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal items[%d] metadata: %w", i, err)
		}

		content := CleanText(bundleItem.Content)
		imported, err := s.storeItem(ctx, workspaceID, bundleItem.Type, bundleItem.Title, content, rawMetadata, fileName, "json")
		if err != nil {
			return nil, fmt.Errorf("import items[%d]: %w", i, err)
		}
		result.Items = append(result.Items, *imported)
	}

	return result, nil
}

func (s *Service) storeItem(ctx context.Context, workspaceID int64, itemType, title, text string, metadata json.RawMessage, fileName, format string) (*ImportedItem, error) {
	stored, _ := TruncateText(text, maxStoredContentChars)

	item, err := s.pool.InsertItem(ctx, workspaceID, itemType, title, stored, metadata)
	if err != nil {
		return nil, fmt.Errorf("insert imported item: %w", err)
	}

	chunkCount := len(search.ChunkText(text, search.ChunkSize))
	if chunkCount > search.MaxChunksPerItem {
		chunkCount = search.MaxChunksPerItem
	}

	importUUID, err := s.pool.InsertImportRecord(ctx, workspaceID, item.ItemID, format, fileName, chunkCount)
	if err != nil {
		return nil, fmt.Errorf("record import: %w", err)
	}

	if err := s.pool.InsertAuditEvent(ctx, workspaceID, db.AuditItemImported, map[string]any{
		"item_id":   item.ItemUUID,
		"import_id": importUUID,
		"file_name": fileName,
		"format":    format,
	}); err != nil {
		s.logger.Warn().
			Err(err).
			Int64("workspace_id", workspaceID).
			Str("item_uuid", item.ItemUUID).
			Msg("audit write failed")
	}

	classifyText, _ := TruncateText(text, classifyContentChars)
	s.enqueuer.Enqueue(jobs.Event{
		Name:        jobs.EventClassifyRequested,
		WorkspaceID: workspaceID,
		ItemID:      item.ItemID,
		Content:     classifyText,
	})
	s.enqueuer.Enqueue(jobs.Event{
		Name:        jobs.EventIndexRequested,
		WorkspaceID: workspaceID,
		ItemID:      item.ItemID,
		Content:     text,
	})

	return &ImportedItem{
		ItemUUID:   item.ItemUUID,
		ImportUUID: importUUID,
		Type:       item.Type,
		Title:      item.Title,
		ChunkCount: chunkCount,
	}, nil
}

func titleFromFileName(fileName string) string {
	base := filepath.Base(fileName)
	ext := filepath.Ext(base)
	title := strings.TrimSpace(strings.TrimSuffix(base, ext))
	if title == "" {
		return base
	}
	return title
}
