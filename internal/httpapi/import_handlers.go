package httpapi

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxImportBytes = 8 << 20

func (s *Server) handleImport(c echo.Context) error {
	principal, ok := principalFrom(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return failValidation(c, map[string]string{"file": "multipart file field is required"})
	}
	if fileHeader.Size > maxImportBytes {
		return fail(c, http.StatusRequestEntityTooLarge, "File exceeds the import size limit", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.logger.Error().Err(err).Str("file_name", fileHeader.Filename).Msg("open upload failed")
		return internalError(c, "Failed to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes+1))
	if err != nil {
		s.logger.Error().Err(err).Str("file_name", fileHeader.Filename).Msg("read upload failed")
		return internalError(c, "Failed to read upload")
	}
	if int64(len(data)) > maxImportBytes {
		return fail(c, http.StatusRequestEntityTooLarge, "File exceeds the import size limit", nil)
	}

	result, err := s.importSvc.ImportFile(c.Request().Context(), principal.WorkspaceID, fileHeader.Filename, data)
	if err != nil {
		if isUserImportError(err) {
			return fail(c, http.StatusBadRequest, err.Error(), nil)
		}
		s.logger.Error().Err(err).Str("file_name", fileHeader.Filename).Msg("import failed")
		return internalError(c, "Import failed")
	}

	return successWithStatus(c, 201, result)
}

// isUserImportError separates input problems (format, schema, empty files)
// from system failures. Input problems carry these markers from the importer.
func isUserImportError(err error) bool {
	message := err.Error()
	for _, marker := range []string{
		"unsupported import format",
		"validation failed",
		"decode bundle JSON",
		"has no text content",
		"must be",
		"must not be",
		"extract html",
	} {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
