package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/kassa-app/kassa-backend/internal/middleware"
)

// setupAuthContext injects an authenticated user id into the request context,
// the way the auth middleware does after token validation
func setupAuthContext(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}
