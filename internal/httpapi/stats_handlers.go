package httpapi

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) handleStats(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	stats, err := s.pool.QueryWorkspaceStats(c.Request().Context(), principal.WorkspaceID)
	if err != nil {
		s.logger.Error().Err(err).Int64("workspace_id", principal.WorkspaceID).Msg("query stats failed")
		return internalError(c, "Failed to load stats")
	}
	return success(c, stats)
}
