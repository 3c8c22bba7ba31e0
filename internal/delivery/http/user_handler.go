package http

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"tradeacademy/internal/delivery/http/dto"
	"tradeacademy/internal/domain"
	"tradeacademy/internal/middleware"
	"tradeacademy/internal/usecase"
)

// UserHandler handles user-facing account requests
type UserHandler struct {
	userRepo        domain.UserRepository
	achievementRepo domain.AchievementRepository
	tradingService  *usecase.TradingService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo domain.UserRepository,
	achievementRepo domain.AchievementRepository,
	tradingService *usecase.TradingService,
) *UserHandler {
	return &UserHandler{
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
		tradingService:  tradingService,
	}
}

// GetMe returns current user details
// GET /api/user/me
func (h *UserHandler) GetMe(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	user, err := h.userRepo.GetByID(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to get user details", err)
	}

	return SuccessResponse(c, userOutput(user))
}

// GetAchievements returns every achievement with the user's progress
// GET /api/user/achievements
func (h *UserHandler) GetAchievements(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	defs, err := h.achievementRepo.GetAll(ctx)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to get achievements", err)
	}

	progress, err := h.achievementRepo.GetProgress(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to get achievement progress", err)
	}

	output := make([]dto.AchievementOutput, 0, len(defs))
	unlocked := 0
	for _, def := range defs {
		out := dto.AchievementOutput{
			Code:        def.Code,
			Name:        def.Name,
			Description: def.Description,
			XPReward:    def.XPReward,
		}
		if ua, ok := progress[def.ID]; ok {
			out.Progress = ua.Progress
			if ua.UnlockedAt != nil {
				unlockedAt := ua.UnlockedAt.Format(time.RFC3339)
				out.UnlockedAt = &unlockedAt
				unlocked++
			}
		}
		output = append(output, out)
	}

	return SuccessResponse(c, map[string]interface{}{
		"achievements": output,
		"count":        len(output),
		"unlocked":     unlocked,
	})
}

// GetAnalyticsPnL returns realized profit history for charting
// GET /api/analytics/pnl?period=24h|7d
func (h *UserHandler) GetAnalyticsPnL(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	period := c.QueryParam("period")
	var since time.Time
	switch period {
	case "7d":
		since = time.Now().AddDate(0, 0, -7)
	case "24h":
		fallthrough
	default:
		period = "24h"
		since = time.Now().Add(-24 * time.Hour)
	}

	history, err := h.tradingService.GetPnLHistory(ctx, userID, since, 100)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to fetch PnL history", err)
	}

	// History is ordered ASC, so a running total is enough for the chart.
	var labels []string
	var data []float64
	var individualPnls []float64
	cumulative := 0.0
	for _, entry := range history {
		labels = append(labels, entry.ClosedAt.Format("Jan 02 15:04"))
		individualPnls = append(individualPnls, entry.Profit)
		cumulative += entry.Profit
		data = append(data, cumulative)
	}

	return SuccessResponse(c, map[string]interface{}{
		"labels":          labels,
		"data":            data,
		"individual_pnls": individualPnls,
		"period":          period,
	})
}
