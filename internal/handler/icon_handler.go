package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kassa-app/kassa-backend/internal/middleware"
	"github.com/kassa-app/kassa-backend/internal/service"
)

// IconHandler handles icon upload HTTP requests
type IconHandler struct {
	iconService *service.IconService
}

// NewIconHandler creates a new IconHandler
func NewIconHandler(iconService *service.IconService) *IconHandler {
	return &IconHandler{iconService: iconService}
}

// UploadIconResponse represents the upload response
type UploadIconResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// DeleteIconRequest represents the delete request body
type DeleteIconRequest struct {
	Path string `json:"path"`
}

// UploadIcon handles POST /api/v1/icons
func (h *IconHandler) UploadIcon(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if h.iconService == nil || !h.iconService.IsEnabled() {
		return NewUnavailableError(c, "Icon uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	metadata, err := h.iconService.ProcessAndUpload(c.Request().Context(), userID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIconTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 1MB"},
			})
		case errors.Is(err, service.ErrInvalidIconFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG, WebP"},
			})
		case errors.Is(err, service.ErrIconTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 32x32 pixels"},
			})
		case errors.Is(err, service.ErrInvalidIconData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		default:
			log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to upload icon")
			return NewInternalError(c, "Failed to upload icon")
		}
	}

	log.Info().Stringer("user_id", userID).Str("path", metadata.Path).Msg("Icon uploaded")

	return c.JSON(http.StatusCreated, UploadIconResponse{
		Path: metadata.Path,
		URL:  metadata.URL,
	})
}

// DeleteIcon handles DELETE /api/v1/icons
func (h *IconHandler) DeleteIcon(c echo.Context) error {
	userID := middleware.GetUserID(c)

	if h.iconService == nil || !h.iconService.IsEnabled() {
		return NewUnavailableError(c, "Icon uploads are disabled (storage not configured)")
	}

	var req DeleteIconRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Path == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "path", Message: "Path is required"},
		})
	}

	if err := h.iconService.Delete(c.Request().Context(), userID, req.Path); err != nil {
		if errors.Is(err, service.ErrInvalidIconData) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "path", Message: "Path does not belong to this user"},
			})
		}
		log.Error().Err(err).Stringer("user_id", userID).Str("path", req.Path).Msg("Failed to delete icon")
		return NewInternalError(c, "Failed to delete icon")
	}

	log.Info().Stringer("user_id", userID).Str("path", req.Path).Msg("Icon deleted")

	return c.NoContent(http.StatusNoContent)
}
