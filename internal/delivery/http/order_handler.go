package http

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"tradeacademy/internal/delivery/http/dto"
	"tradeacademy/internal/domain"
	"tradeacademy/internal/middleware"
	"tradeacademy/internal/service"
	"tradeacademy/internal/usecase"
)

// OrderHandler handles order lifecycle requests
type OrderHandler struct {
	tradingService  *usecase.TradingService
	dailyTradeLimit int
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(tradingService *usecase.TradingService, dailyTradeLimit int) *OrderHandler {
	if dailyTradeLimit <= 0 {
		dailyTradeLimit = service.DefaultDailyTradeLimit
	}
	return &OrderHandler{
		tradingService:  tradingService,
		dailyTradeLimit: dailyTradeLimit,
	}
}

// SubmitOrder admits a new order
// POST /api/orders
func (h *OrderHandler) SubmitOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.SubmitOrderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	if !domain.OrderSide(req.Side).IsValid() {
		return BadRequestResponse(c, "Side must be 'BUY' or 'SELL'")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.tradingService.SubmitOrder(ctx, userID, service.OrderRequest{
		Symbol:          req.Symbol,
		Side:            domain.OrderSide(req.Side),
		Type:            domain.OrderType(req.Type),
		Quantity:        req.Quantity,
		EntryPrice:      req.EntryPrice,
		TriggerPrice:    req.TriggerPrice,
		StopLossPrice:   req.StopLossPrice,
		TakeProfitPrice: req.TakeProfitPrice,
		TrailingPercent: req.TrailingPercent,
		Leverage:        req.Leverage,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDailyLimitExceeded) {
			return ForbiddenResponse(c, fmt.Sprintf(
				"Daily trade limit of %d reached. Upgrade your membership for unlimited trades", h.dailyTradeLimit))
		}
		return DomainErrorResponse(c, err)
	}

	return CreatedResponse(c, orderOutput(order))
}

// GetOrders returns the user's orders, optionally filtered by status
// GET /api/orders?status=OPEN
func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var orders []*domain.Order
	if status := c.QueryParam("status"); status != "" {
		orders, err = h.tradingService.GetOrdersByStatus(ctx, userID, domain.OrderStatus(status))
	} else {
		orders, err = h.tradingService.GetOrders(ctx, userID)
	}
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to get orders", err)
	}

	output := make([]dto.OrderOutput, 0, len(orders))
	for _, order := range orders {
		output = append(output, orderOutput(order))
	}

	return SuccessResponse(c, map[string]interface{}{
		"orders": output,
		"count":  len(output),
	})
}

// GetOpenOrders returns the user's open orders
// GET /api/orders/open
func (h *OrderHandler) GetOpenOrders(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.tradingService.GetOrdersByStatus(ctx, userID, domain.StatusOpen)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to get open orders", err)
	}

	output := make([]dto.OrderOutput, 0, len(orders))
	for _, order := range orders {
		output = append(output, orderOutput(order))
	}

	return SuccessResponse(c, map[string]interface{}{
		"orders": output,
		"count":  len(output),
	})
}

// EvaluateTriggers runs one evaluation pass over the user's active
// orders against a caller-supplied price snapshot
// POST /api/orders/evaluate
func (h *OrderHandler) EvaluateTriggers(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	var req dto.EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}
	if len(req.Prices) == 0 {
		return BadRequestResponse(c, "A non-empty price snapshot is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	result, err := h.tradingService.EvaluateTriggers(ctx, userID, req.Prices)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, evaluationOutput(result))
}

// CloseOrder closes one open order
// POST /api/orders/:id/close
func (h *OrderHandler) CloseOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid order ID")
	}

	// Exit price is optional; absent means close at market.
	var req dto.CloseOrderRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "Invalid request payload")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.tradingService.CloseOrder(ctx, orderID, userID, middleware.IsAdmin(c), req.ExitPrice)
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, orderOutput(order))
}

// CancelOrder cancels one pending order
// POST /api/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return BadRequestResponse(c, "Invalid order ID")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.tradingService.CancelOrder(ctx, orderID, userID, middleware.IsAdmin(c))
	if err != nil {
		return DomainErrorResponse(c, err)
	}

	return SuccessResponse(c, orderOutput(order))
}

// CloseAllOrders closes every open order of the user at market prices
// POST /api/orders/close-all
func (h *OrderHandler) CloseAllOrders(c echo.Context) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return UnauthorizedResponse(c, "User not authenticated")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	closed, err := h.tradingService.CloseAllOrders(ctx, userID)
	if err != nil {
		return InternalServerErrorResponse(c, "Failed to close all orders", err)
	}

	return SuccessMessageResponse(c, "All open orders closed", map[string]interface{}{
		"closed": closed,
	})
}

func orderOutput(order *domain.Order) dto.OrderOutput {
	out := dto.OrderOutput{
		ID:                order.ID.String(),
		Symbol:            order.Symbol,
		Side:              string(order.Side),
		Type:              string(order.Type),
		Status:            string(order.Status),
		Quantity:          order.Quantity,
		EntryPrice:        order.EntryPrice,
		ExitPrice:         order.ExitPrice,
		TriggerPrice:      order.TriggerPrice,
		StopLossPrice:     order.StopLossPrice,
		TakeProfitPrice:   order.TakeProfitPrice,
		TrailingPercent:   order.TrailingPercent,
		TrailingHighPrice: order.TrailingHighPrice,
		Leverage:          order.Leverage,
		Profit:            order.Profit,
		ClosedBy:          order.ClosedBy,
		CreatedAt:         order.CreatedAt.Format(time.RFC3339),
	}
	if order.ClosedAt != nil {
		closedAt := order.ClosedAt.Format(time.RFC3339)
		out.ClosedAt = &closedAt
	}
	return out
}

func evaluationOutput(result *service.EvaluationResult) dto.EvaluationOutput {
	out := dto.EvaluationOutput{
		Executed:      make([]dto.OrderOutput, 0, len(result.Executed)),
		Closed:        make([]dto.OrderOutput, 0, len(result.Closed)),
		ExecutedCount: len(result.Executed),
		ClosedCount:   len(result.Closed),
	}
	for _, order := range result.Executed {
		out.Executed = append(out.Executed, orderOutput(order))
	}
	for _, order := range result.Closed {
		out.Closed = append(out.Closed, orderOutput(order))
	}
	return out
}
