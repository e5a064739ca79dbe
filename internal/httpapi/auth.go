package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burrowhq/burrow/internal/auth"
	"github.com/burrowhq/burrow/internal/db"
)

type workspacePrincipal struct {
	WorkspaceID int64
	KeyID       int64
	KeyLabel    string
}

func unauthorizedResponse(c echo.Context) error {
	return fail(c, http.StatusUnauthorized, "Missing or invalid API key", nil)
}

// requireWorkspace resolves the Authorization bearer token to a workspace.
// Keys are looked up by prefix and verified against the stored bcrypt hash.
func (s *Server) requireWorkspace() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return unauthorizedResponse(c)
			}

			key, err := s.pool.GetWorkspaceKeyByPrefix(c.Request().Context(), auth.KeyPrefix(token))
			if err != nil {
				if errors.Is(err, db.ErrNoRows) {
					return unauthorizedResponse(c)
				}
				s.logger.Error().Err(err).Msg("workspace key lookup failed")
				return internalError(c, "Failed to authorize request")
			}

			if !auth.VerifyAPIKey(token, key.KeyHash) {
				return unauthorizedResponse(c)
			}

			// Best effort; a missed touch never blocks the request.
			if err := s.pool.TouchWorkspaceKey(c.Request().Context(), key.KeyID); err != nil {
				s.logger.Warn().Err(err).Int64("key_id", key.KeyID).Msg("key touch failed")
			}

			c.Set("workspace.principal", workspacePrincipal{
				WorkspaceID: key.WorkspaceID,
				KeyID:       key.KeyID,
				KeyLabel:    key.Label,
			})

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := strings.TrimSpace(c.Request().Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func principalFrom(c echo.Context) (workspacePrincipal, bool) {
	principal, ok := c.Get("workspace.principal").(workspacePrincipal)
	return principal, ok
}
