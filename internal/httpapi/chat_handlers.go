package httpapi

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burrowhq/burrow/internal/db"
	"github.com/burrowhq/burrow/internal/jobs"
)

// Conversations re-classify after this many stored messages so a thread's
// topic follows its drift.
const reclassifyEveryMessages = 6

type createChatRequest struct {
	Title       string  `json:"title"`
	ActiveModel *string `json:"active_model,omitempty"`
}

type appendMessageRequest struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	TokenUsage int    `json:"token_usage"`
}

func (s *Server) handleCreateChat(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	var req createChatRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}
	if strings.TrimSpace(req.Title) == "" {
		return failValidation(c, map[string]string{"title": "is required"})
	}

	ctx := c.Request().Context()
	thread, err := s.pool.CreateChatThread(ctx, principal.WorkspaceID, req.Title, req.ActiveModel)
	if err != nil {
		s.logger.Error().Err(err).Int64("workspace_id", principal.WorkspaceID).Msg("create chat failed")
		return internalError(c, "Failed to create chat")
	}

	if err := s.pool.InsertAuditEvent(ctx, principal.WorkspaceID, db.AuditChatStarted, map[string]any{
		"thread_id": thread.ThreadUUID,
		"item_id":   thread.ItemUUID,
	}); err != nil {
		s.logger.Warn().Err(err).Str("thread_uuid", thread.ThreadUUID).Msg("audit write failed")
	}

	s.enqueuer.Enqueue(jobs.Event{
		Name:        jobs.EventClassifyRequested,
		WorkspaceID: principal.WorkspaceID,
		ItemID:      thread.ItemID,
		Content:     thread.Title,
	})

	return successWithStatus(c, 201, thread)
}

func (s *Server) handleListChatMessages(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	thread, err := s.resolveThread(c, principal.WorkspaceID)
	if err != nil {
		return err
	}

	messages, err := s.pool.ListChatMessages(c.Request().Context(), principal.WorkspaceID, thread.ThreadID, 0)
	if err != nil {
		s.logger.Error().Err(err).Str("thread_uuid", thread.ThreadUUID).Msg("list chat messages failed")
		return internalError(c, "Failed to list messages")
	}

	return success(c, map[string]any{
		"thread_id": thread.ThreadUUID,
		"item_id":   thread.ItemUUID,
		"count":     len(messages),
		"messages":  messages,
	})
}

func (s *Server) handleAppendChatMessage(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	thread, err := s.resolveThread(c, principal.WorkspaceID)
	if err != nil {
		return err
	}

	var req appendMessageRequest
	if err := decodeJSONBody(c, &req); err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	fieldErrors := map[string]string{}
	if !db.ValidChatRole(strings.TrimSpace(req.Role)) {
		fieldErrors["role"] = "must be one of user, assistant, system"
	}
	if strings.TrimSpace(req.Content) == "" {
		fieldErrors["content"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	ctx := c.Request().Context()
	message, err := s.pool.AppendChatMessage(ctx, principal.WorkspaceID, thread.ThreadID, thread.ItemID, strings.TrimSpace(req.Role), req.Content, req.TokenUsage)
	if err != nil {
		s.logger.Error().Err(err).Str("thread_uuid", thread.ThreadUUID).Msg("append chat message failed")
		return internalError(c, "Failed to store message")
	}

	messages, err := s.pool.ListChatMessages(ctx, principal.WorkspaceID, thread.ThreadID, 0)
	if err != nil {
		s.logger.Warn().Err(err).Str("thread_uuid", thread.ThreadUUID).Msg("transcript load failed; background work skipped")
		return successWithStatus(c, 201, message)
	}

	transcript := db.ChatTranscript(thread.Title, messages)
	s.enqueuer.Enqueue(jobs.Event{
		Name:        jobs.EventIndexRequested,
		WorkspaceID: principal.WorkspaceID,
		ItemID:      thread.ItemID,
		Content:     transcript,
	})
	if len(messages)%reclassifyEveryMessages == 0 {
		s.enqueuer.Enqueue(jobs.Event{
			Name:        jobs.EventClassifyRequested,
			WorkspaceID: principal.WorkspaceID,
			ItemID:      thread.ItemID,
			Content:     classifiableText(thread.Title, transcript),
		})
	}

	return successWithStatus(c, 201, message)
}

func (s *Server) resolveThread(c echo.Context, workspaceID int64) (*db.ChatThreadRecord, error) {
	threadUUID := strings.TrimSpace(c.Param("thread_uuid"))
	if threadUUID == "" {
		return nil, failValidation(c, map[string]string{"thread_uuid": "is required"})
	}

	thread, err := s.pool.GetChatThreadByUUID(c.Request().Context(), workspaceID, threadUUID)
	if err != nil {
		if errors.Is(err, db.ErrNoRows) {
			return nil, failNotFound(c, "Chat thread not found")
		}
		s.logger.Error().Err(err).Str("thread_uuid", threadUUID).Msg("chat thread lookup failed")
		return nil, internalError(c, "Failed to load chat thread")
	}
	return thread, nil
}
