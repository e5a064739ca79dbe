package httpapi

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/jobs"
)

const classifyContentChars = 8000

type createItemRequest struct {
	Type     string          `json:"type"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Metadata json.RawMessage `json:"metadata"`
}

func (s *Server) handleListItems(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	opts := db.ItemListOptions{
		Type:      strings.TrimSpace(c.QueryParam("type")),
		TopicUUID: strings.TrimSpace(c.QueryParam("topic_id")),
	}
	if rawLimit := strings.TrimSpace(c.QueryParam("limit")); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			return failValidation(c, map[string]string{"limit": "must be a positive integer"})
		}
		opts.Limit = limit
	}
	if opts.Type != "" && !db.ValidItemType(opts.Type) {
		return failValidation(c, map[string]string{"type": "must be one of chat, file, instruction, agent"})
	}

	entries, err := s.pool.ListItems(c.Request().Context(), principal.WorkspaceID, opts)
	if err != nil {
		s.logger.Error().Err(err).Int64("workspace_id", principal.WorkspaceID).Msg("list items failed")
		return internalError(c, "Failed to list items")
	}

	return success(c, map[string]any{
		"count": len(entries),
		"items": entries,
	})
}

func (s *Server) handleCreateItem(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req createItemRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	fieldErrors := map[string]string{}
	if !db.ValidItemType(strings.TrimSpace(req.Type)) {
		fieldErrors["type"] = "must be one of chat, file, instruction, agent"
	}
	if strings.TrimSpace(req.Title) == "" {
		fieldErrors["title"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	ctx := c.Request().Context()
	item, err := s.pool.InsertItem(ctx, principal.WorkspaceID, strings.TrimSpace(req.Type), req.Title, req.Content, req.Metadata)
	if err != nil {
		s.logger.Error().Err(err).Int64("workspace_id", principal.WorkspaceID).Msg("create item failed")
		return internalError(c, "Failed to create item")
	}

	if err := s.pool.InsertAuditEvent(ctx, principal.WorkspaceID, db.AuditItemCreated, map[string]any{
		"item_id": item.ItemUUID,
		"type":    item.Type,
	}); err != nil {
		s.logger.Warn().Err(err).Str("item_uuid", item.ItemUUID).Msg("audit write failed")
	}

	classifyText := classifiableText(item.Title, item.Content)
	s.enqueuer.Enqueue(jobs.Event{
		Name:        jobs.EventClassifyRequested,
		WorkspaceID: principal.WorkspaceID,
		ItemID:      item.ItemID,
		Content:     classifyText,
	})
	if strings.TrimSpace(item.Content) != "" {
		s.enqueuer.Enqueue(jobs.Event{
			Name:        jobs.EventIndexRequested,
			WorkspaceID: principal.WorkspaceID,
			ItemID:      item.ItemID,
			Content:     item.Content,
		})
	}

	return successWithStatus(c, 201, item)
}

func (s *Server) handleGetItem(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	itemUUID := strings.TrimSpace(c.Param("item_uuid"))
	if itemUUID == "" {
		return failValidation(c, map[string]string{"item_uuid": "is required"})
	}

	item, err := s.pool.GetItemByUUID(c.Request().Context(), principal.WorkspaceID, itemUUID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Item not found")
		}
		s.logger.Error().Err(err).Str("item_uuid", itemUUID).Msg("get item failed")
		return internalError(c, "Failed to load item")
	}
	return success(c, item)
}

func (s *Server) handleDeleteItem(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	itemUUID := strings.TrimSpace(c.Param("item_uuid"))
	if itemUUID == "" {
		return failValidation(c, map[string]string{"item_uuid": "is required"})
	}

	ctx := c.Request().Context()
	if err := s.pool.SoftDeleteItem(ctx, principal.WorkspaceID, itemUUID); err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return failNotFound(c, "Item not found")
		}
		s.logger.Error().Err(err).Str("item_uuid", itemUUID).Msg("delete item failed")
		return internalError(c, "Failed to delete item")
	}

	if err := s.pool.InsertAuditEvent(ctx, principal.WorkspaceID, db.AuditItemDeleted, map[string]any{
		"item_id": itemUUID,
	}); err != nil {
		s.logger.Warn().Err(err).Str("item_uuid", itemUUID).Msg("audit write failed")
	}

	return success(c, map[string]any{
		"item_id": itemUUID,
		"deleted": true,
	})
}

// classifiableText joins title and the opening of the content for topic
// classification.
func classifiableText(title, content string) string {
	joined := strings.TrimSpace(title + "\n" + content)
	runes := []rune(joined)
	if len(runes) > classifyContentChars {
		return string(runes[:classifyContentChars])
	}
	return joined
}
