package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "tradeacademy/internal/middleware"
)

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	AuthHandler  *AuthHandler
	OrderHandler *OrderHandler
	UserHandler  *UserHandler
	AdminHandler *AdminHandler
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for health polling to reduce noise
			path := c.Request().URL.Path
			return path == "/health" || path == "/api/admin/system/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return SuccessResponse(c, map[string]interface{}{
			"status":  "healthy",
			"service": "tradeacademy-api",
		})
	})

	// API group
	api := e.Group("/api")

	// Auth routes (public)
	auth := api.Group("/auth")
	{
		auth.POST("/login", config.AuthHandler.Login)
		auth.POST("/logout", config.AuthHandler.Logout)
		auth.POST("/register", config.AuthHandler.Register)
	}

	// Order routes (protected with AuthMiddleware)
	orders := api.Group("/orders", custommiddleware.AuthMiddleware)
	{
		orders.POST("", config.OrderHandler.SubmitOrder)
		orders.GET("", config.OrderHandler.GetOrders)
		orders.GET("/open", config.OrderHandler.GetOpenOrders)
		orders.POST("/evaluate", config.OrderHandler.EvaluateTriggers)
		orders.POST("/close-all", config.OrderHandler.CloseAllOrders)
		orders.POST("/:id/close", config.OrderHandler.CloseOrder)
		orders.POST("/:id/cancel", config.OrderHandler.CancelOrder)
	}

	// User routes (protected with AuthMiddleware)
	user := api.Group("/user", custommiddleware.AuthMiddleware)
	{
		user.GET("/me", config.UserHandler.GetMe)
		user.GET("/achievements", config.UserHandler.GetAchievements)
	}

	// Analytics routes (protected with AuthMiddleware)
	analytics := api.Group("/analytics", custommiddleware.AuthMiddleware)
	{
		analytics.GET("/pnl", config.UserHandler.GetAnalyticsPnL)
	}

	// Admin routes (protected with Auth + Admin middleware)
	admin := api.Group("/admin", custommiddleware.AuthMiddleware, custommiddleware.AdminMiddleware)
	{
		admin.GET("/system/health", config.AdminHandler.GetSystemHealth)
		admin.GET("/statistics", config.AdminHandler.GetStatistics)
	}
}
