package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tradeacademy/internal/domain"
)

// DefaultDailyTradeLimit caps orders per calendar day for trial accounts.
const DefaultDailyTradeLimit = 5

// OrderRequest is a raw order submission before admission.
type OrderRequest struct {
	Symbol          string
	Side            domain.OrderSide
	Type            domain.OrderType
	Quantity        float64
	EntryPrice      float64
	TriggerPrice    *float64
	StopLossPrice   *float64
	TakeProfitPrice *float64
	TrailingPercent *float64
	Leverage        float64
}

// AdmissionService validates and classifies new order requests: market
// orders open immediately, everything else is persisted as pending.
// Checks run cheapest first and nothing is written until all pass.
type AdmissionService struct {
	orderRepo       domain.OrderRepository
	userRepo        domain.UserRepository
	dailyTradeLimit int
}

// NewAdmissionService creates a new AdmissionService
func NewAdmissionService(orderRepo domain.OrderRepository, userRepo domain.UserRepository, dailyTradeLimit int) *AdmissionService {
	if dailyTradeLimit <= 0 {
		dailyTradeLimit = DefaultDailyTradeLimit
	}
	return &AdmissionService{
		orderRepo:       orderRepo,
		userRepo:        userRepo,
		dailyTradeLimit: dailyTradeLimit,
	}
}

// Submit admits one order for the given user. On success the order is
// persisted with its classified status and the user's daily trade
// counter has been advanced.
func (s *AdmissionService) Submit(ctx context.Context, userID uuid.UUID, req OrderRequest) (*domain.Order, error) {
	now := time.Now()

	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Symbol:          req.Symbol,
		Side:            req.Side,
		Type:            req.Type,
		Quantity:        req.Quantity,
		EntryPrice:      req.EntryPrice,
		TriggerPrice:    req.TriggerPrice,
		StopLossPrice:   req.StopLossPrice,
		TakeProfitPrice: req.TakeProfitPrice,
		TrailingPercent: req.TrailingPercent,
		Leverage:        req.Leverage,
		CreatedAt:       now,
	}
	if order.Leverage < 1 {
		order.Leverage = 1
	}
	if order.Type.IsMarket() {
		order.Status = domain.StatusOpen
	} else {
		order.Status = domain.StatusPending
	}

	if err := order.ValidateParams(); err != nil {
		return nil, err
	}
	if order.Type.IsMarket() && order.EntryPrice <= 0 {
		return nil, &domain.MissingFieldError{Field: "entry_price"}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user for admission: %w", err)
	}

	trial := user.IsTrial()
	if trial && user.TradesUsedToday(now) >= s.dailyTradeLimit {
		return nil, domain.ErrDailyLimitExceeded
	}

	// Buying power applies to market orders only; pending orders are
	// checked against nothing until they execute.
	if order.Type.IsMarket() {
		cost := order.Quantity * order.EntryPrice
		if cost > user.SimulatorBalance {
			log.Printf("[WARN] Admission rejected for %s: cost %.2f exceeds balance %.2f",
				user.Username, cost, user.SimulatorBalance)
			return nil, fmt.Errorf("%w: order costs %.2f but balance is %.2f",
				domain.ErrInsufficientBalance, cost, user.SimulatorBalance)
		}
	}

	// All checks passed; writes start here. The counter update is a
	// conditional storage-level increment, so a concurrent submission
	// racing for the last trial slot still gets rejected.
	quota := 0
	if trial {
		quota = s.dailyTradeLimit
	}
	if err := s.userRepo.RegisterTrade(ctx, userID, now, quota); err != nil {
		return nil, err
	}

	if order.Type == domain.OrderTypeTrailingStop {
		high := order.EntryPrice
		order.TrailingHighPrice = &high
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	log.Printf("[OK] Order admitted: %s %s %s qty=%.4f status=%s",
		order.Symbol, order.Side, order.Type, order.Quantity, order.Status)

	return order, nil
}

// DailyTradeLimit returns the configured trial quota.
func (s *AdmissionService) DailyTradeLimit() int {
	return s.dailyTradeLimit
}
