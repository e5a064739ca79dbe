package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burrowhq/burrow/internal/search"
)

func (s *Server) handleSearch(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	query := strings.TrimSpace(c.QueryParam("q"))
	results, err := s.searchSvc.Search(c.Request().Context(), principal.WorkspaceID, query)
	if err != nil {
		if errors.Is(err, search.ErrQueryTooShort) {
			return fail(c, http.StatusBadRequest, "Query must be at least 2 characters", nil)
		}
		s.logger.Error().Err(err).Int64("workspace_id", principal.WorkspaceID).Msg("search failed")
		return internalError(c, "Search failed")
	}

	if results == nil {
		results = []search.Result{}
	}
	return success(c, map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	})
}
