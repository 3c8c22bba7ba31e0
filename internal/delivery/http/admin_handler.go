package http

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"tradeacademy/internal/usecase"
)

// AdminHandler handles admin-only requests
type AdminHandler struct {
	db             *pgxpool.Pool
	tradingService *usecase.TradingService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *pgxpool.Pool, tradingService *usecase.TradingService) *AdminHandler {
	return &AdminHandler{
		db:             db,
		tradingService: tradingService,
	}
}

// GetSystemHealth returns system health check
// GET /api/admin/system/health
func (h *AdminHandler) GetSystemHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	dbStatus := "online"
	status := "healthy"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "degraded"
		status = "degraded"
	}

	return SuccessResponse(c, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().Format(time.RFC3339),
		"db_status":  dbStatus,
		"api_status": "online",
	})
}

// GetStatistics returns admin dashboard statistics
// GET /api/admin/statistics
func (h *AdminHandler) GetStatistics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	orderStats, err := h.tradingService.GetStatistics(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to read order statistics", err)
	}

	stats := map[string]interface{}{
		"orders": map[string]interface{}{
			"total":   orderStats.TotalOrders,
			"pending": orderStats.PendingOrders,
			"open":    orderStats.OpenOrders,
			"closed":  orderStats.ClosedOrders,
		},
		"realized_profit": orderStats.RealizedProfit,
	}

	var totalUsers int
	if err := h.db.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&totalUsers); err == nil {
		stats["total_users"] = totalUsers
	}

	var activeMembers int
	if err := h.db.QueryRow(ctx, "SELECT COUNT(*) FROM users WHERE membership_status = 'ACTIVE'").Scan(&activeMembers); err == nil {
		stats["active_members"] = activeMembers
	}

	return SuccessResponse(c, stats)
}
