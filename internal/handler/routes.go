package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/kassa-app/kassa-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, userHandler *UserHandler, accountHandler *AccountHandler, categoryHandler *CategoryHandler, operationHandler *OperationHandler, iconHandler *IconHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// User routes (protected)
	users := api.Group("/users")
	users.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	users.GET("/me", userHandler.GetMe)
	users.PUT("/me", userHandler.UpdateMe)
	users.DELETE("/me", userHandler.DeleteMe)

	// Account routes (protected)
	accounts := api.Group("/accounts")
	accounts.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/total-balance", accountHandler.GetTotalBalance)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)

	// Category routes (protected)
	categories := api.Group("/categories")
	categories.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/balances", categoryHandler.GetCategoryBalances)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Operation routes (protected)
	operations := api.Group("/operations")
	operations.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	operations.POST("", operationHandler.CreateOperation)
	operations.GET("", operationHandler.GetOperations)
	operations.GET("/details", operationHandler.GetOperationDetails)
	operations.GET("/:id", operationHandler.GetOperation)
	operations.PUT("/:id", operationHandler.UpdateOperation)
	operations.DELETE("/:id", operationHandler.DeleteOperation)

	// Icon routes (protected)
	icons := api.Group("/icons")
	icons.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	icons.POST("", iconHandler.UploadIcon)
	icons.DELETE("", iconHandler.DeleteIcon)

	// WebSocket change feed (token authenticated via query param)
	e.GET("/ws", wsHandler.HandleWS)
}
