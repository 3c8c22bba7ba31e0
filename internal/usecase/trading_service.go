package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tradeacademy/internal/domain"
	"tradeacademy/internal/service"
)

// TradingService orchestrates the order lifecycle: admission, trigger
// evaluation, settlement, and the opportunistic achievement recompute
// that follows each lifecycle event.
type TradingService struct {
	orderRepo    domain.OrderRepository
	userRepo     domain.UserRepository
	admission    *service.AdmissionService
	trigger      *service.TriggerService
	settlement   *service.SettlementService
	achievements *service.AchievementService
	priceSource  domain.PriceSource
}

// NewTradingService creates a new TradingService
func NewTradingService(
	orderRepo domain.OrderRepository,
	userRepo domain.UserRepository,
	admission *service.AdmissionService,
	trigger *service.TriggerService,
	settlement *service.SettlementService,
	achievements *service.AchievementService,
	priceSource domain.PriceSource,
) *TradingService {
	return &TradingService{
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		admission:    admission,
		trigger:      trigger,
		settlement:   settlement,
		achievements: achievements,
		priceSource:  priceSource,
	}
}

// SubmitOrder admits a new order for the user.
func (ts *TradingService) SubmitOrder(ctx context.Context, userID uuid.UUID, req service.OrderRequest) (*domain.Order, error) {
	order, err := ts.admission.Submit(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	ts.recompute(ctx, userID)
	return order, nil
}

// EvaluateTriggers evaluates the user's pending and open orders against
// a caller-supplied price snapshot.
func (ts *TradingService) EvaluateTriggers(ctx context.Context, userID uuid.UUID, prices map[string]float64) (*service.EvaluationResult, error) {
	result, err := ts.trigger.EvaluateUser(ctx, userID, prices)
	if err != nil {
		return nil, err
	}

	if len(result.Closed) > 0 {
		ts.recompute(ctx, userID)
	}
	return result, nil
}

// EvaluateAllUsers runs one evaluation pass over every active order on
// the platform, fetching a fresh snapshot from the price source. Used
// by the scheduler; the evaluator itself stays cadence-agnostic.
func (ts *TradingService) EvaluateAllUsers(ctx context.Context) error {
	active, err := ts.orderRepo.GetActiveOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to get active orders: %w", err)
	}
	if len(active) == 0 {
		return nil
	}

	symbolSet := make(map[string]bool)
	for _, order := range active {
		symbolSet[order.Symbol] = true
	}
	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}

	prices, err := ts.priceSource.FetchRealTimePrices(ctx, symbols)
	if err != nil {
		if len(prices) == 0 {
			return fmt.Errorf("failed to fetch prices: %w", err)
		}
		// Orders without a quote this round are simply skipped.
		log.Printf("[WARN] Partial price fetch: %v", err)
	}

	pendingByUser := make(map[uuid.UUID][]*domain.Order)
	openByUser := make(map[uuid.UUID][]*domain.Order)
	for _, order := range active {
		switch order.Status {
		case domain.StatusPending:
			pendingByUser[order.UserID] = append(pendingByUser[order.UserID], order)
		case domain.StatusOpen:
			openByUser[order.UserID] = append(openByUser[order.UserID], order)
		}
	}

	userSet := make(map[uuid.UUID]bool)
	for userID := range pendingByUser {
		userSet[userID] = true
	}
	for userID := range openByUser {
		userSet[userID] = true
	}

	executed, closed := 0, 0
	for userID := range userSet {
		result, err := ts.trigger.Evaluate(ctx, pendingByUser[userID], openByUser[userID], prices)
		if err != nil {
			log.Printf("ERROR: Evaluation failed for user %s: %v", userID, err)
			continue
		}
		executed += len(result.Executed)
		closed += len(result.Closed)
		if len(result.Closed) > 0 {
			ts.recompute(ctx, userID)
		}
	}

	if executed > 0 || closed > 0 {
		log.Printf("[OK] Evaluation pass: %d executed, %d closed across %d user(s)", executed, closed, len(userSet))
	}

	return nil
}

// CloseOrder closes one OPEN order at the given exit price. When no
// exit price is supplied the current market price is used.
func (ts *TradingService) CloseOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool, exitPrice float64) (*domain.Order, error) {
	order, err := ts.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, domain.ErrNotOrderOwner
	}
	if order.Status != domain.StatusOpen {
		return nil, domain.ErrInvalidStateTransition
	}

	if exitPrice <= 0 {
		exitPrice, err = ts.priceSource.FetchSinglePrice(ctx, order.Symbol)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch exit price: %w", err)
		}
	}

	if err := ts.settlement.Close(ctx, order, exitPrice, domain.ClosedByManual); err != nil {
		return nil, err
	}

	ts.recompute(ctx, userID)
	return order, nil
}

// CancelOrder cancels one PENDING order. Cancellation never settles:
// no profit is computed and no balance changes.
func (ts *TradingService) CancelOrder(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*domain.Order, error) {
	order, err := ts.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !isAdmin {
		return nil, domain.ErrNotOrderOwner
	}

	if err := order.Cancel(time.Now()); err != nil {
		return nil, err
	}
	if err := ts.orderRepo.MarkCancelled(ctx, order); err != nil {
		return nil, err
	}

	log.Printf("[OK] Order CANCELLED: %s %s %s", order.Symbol, order.Side, order.Type)

	ts.recompute(ctx, userID)
	return order, nil
}

// CloseAllOrders closes every OPEN order of the user at current market
// prices. Orders without a quote are left open.
func (ts *TradingService) CloseAllOrders(ctx context.Context, userID uuid.UUID) (int, error) {
	open, err := ts.orderRepo.GetByUserAndStatus(ctx, userID, domain.StatusOpen)
	if err != nil {
		return 0, err
	}
	if len(open) == 0 {
		return 0, nil
	}

	symbolSet := make(map[string]bool)
	for _, order := range open {
		symbolSet[order.Symbol] = true
	}
	symbols := make([]string, 0, len(symbolSet))
	for symbol := range symbolSet {
		symbols = append(symbols, symbol)
	}

	prices, err := ts.priceSource.FetchRealTimePrices(ctx, symbols)
	if err != nil && len(prices) == 0 {
		return 0, fmt.Errorf("failed to fetch prices: %w", err)
	}

	closed := 0
	for _, order := range open {
		price, ok := prices[order.Symbol]
		if !ok {
			log.Printf("[WARN] No price for %s, leaving order %s open", order.Symbol, order.ID)
			continue
		}
		if err := ts.settlement.Close(ctx, order, price, domain.ClosedByManual); err != nil {
			log.Printf("ERROR: Failed to close order %s: %v", order.ID, err)
			continue
		}
		closed++
	}

	if closed > 0 {
		ts.recompute(ctx, userID)
	}
	return closed, nil
}

// GetOrders retrieves all of the user's orders, newest first.
func (ts *TradingService) GetOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return ts.orderRepo.GetByUserID(ctx, userID)
}

// GetOrdersByStatus retrieves the user's orders in one lifecycle state.
func (ts *TradingService) GetOrdersByStatus(ctx context.Context, userID uuid.UUID, status domain.OrderStatus) ([]*domain.Order, error) {
	return ts.orderRepo.GetByUserAndStatus(ctx, userID, status)
}

// GetPnLHistory retrieves closed-order history since a point in time.
func (ts *TradingService) GetPnLHistory(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.PnLHistoryEntry, error) {
	return ts.orderRepo.GetClosedHistorySince(ctx, userID, since, limit)
}

// GetStatistics reads platform-wide aggregates for the admin surface.
func (ts *TradingService) GetStatistics(ctx context.Context) (*domain.TradingStats, error) {
	return ts.orderRepo.GetStatistics(ctx)
}

// recompute runs the achievement pass best-effort; a failure never
// fails the triggering operation.
func (ts *TradingService) recompute(ctx context.Context, userID uuid.UUID) {
	if ts.achievements == nil {
		return
	}
	if err := ts.achievements.Recompute(ctx, userID); err != nil {
		log.Printf("[WARN] Achievement recompute failed for user %s: %v", userID, err)
	}
}
