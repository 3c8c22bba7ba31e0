package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"tradeacademy/internal/domain"
)

// EvaluationResult lists the transitions one evaluator invocation made.
type EvaluationResult struct {
	Executed []*domain.Order `json:"executed"`
	Closed   []*domain.Order `json:"closed"`
}

// TriggerService evaluates pending and open orders against a price
// snapshot. It owns no clock and no market-data subscription: callers
// invoke it with whatever snapshot they have, at whatever cadence they
// choose.
type TriggerService struct {
	orderRepo  domain.OrderRepository
	settlement *SettlementService
}

// NewTriggerService creates a new TriggerService
func NewTriggerService(orderRepo domain.OrderRepository, settlement *SettlementService) *TriggerService {
	return &TriggerService{
		orderRepo:  orderRepo,
		settlement: settlement,
	}
}

// EvaluateUser loads one user's pending and open orders and evaluates
// them against the snapshot.
func (s *TriggerService) EvaluateUser(ctx context.Context, userID uuid.UUID, prices map[string]float64) (*EvaluationResult, error) {
	pending, err := s.orderRepo.GetByUserAndStatus(ctx, userID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	open, err := s.orderRepo.GetByUserAndStatus(ctx, userID, domain.StatusOpen)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, pending, open, prices)
}

// Evaluate runs both evaluator passes. All pending checks happen before
// any open check, so an order executed this round is exit-eligible in
// the same round. Orders whose symbol is absent from the snapshot are
// skipped entirely.
func (s *TriggerService) Evaluate(ctx context.Context, pending, open []*domain.Order, prices map[string]float64) (*EvaluationResult, error) {
	result := &EvaluationResult{
		Executed: []*domain.Order{},
		Closed:   []*domain.Order{},
	}

	for _, order := range pending {
		price, ok := prices[order.Symbol]
		if !ok {
			continue
		}
		if !order.ShouldExecute(price) {
			continue
		}

		order.Execute(price)
		if err := s.orderRepo.MarkExecuted(ctx, order); err != nil {
			log.Printf("ERROR: Failed to execute order %s: %v", order.ID, err)
			continue
		}

		log.Printf("[OK] Order EXECUTED: %s %s %s @ %.4f", order.Symbol, order.Side, order.Type, order.EntryPrice)
		open = append(open, order)
		result.Executed = append(result.Executed, order)
	}

	for _, order := range open {
		price, ok := prices[order.Symbol]
		if !ok {
			continue
		}

		shouldClose, closedBy, trailingMoved := order.CheckExit(price)
		if trailingMoved {
			if err := s.orderRepo.UpdateTrailingHigh(ctx, order.ID, *order.TrailingHighPrice); err != nil {
				log.Printf("ERROR: Failed to update trailing high for order %s: %v", order.ID, err)
			}
			continue
		}
		if !shouldClose {
			continue
		}

		if err := s.settlement.Close(ctx, order, price, closedBy); err != nil {
			log.Printf("ERROR: Failed to close order %s: %v", order.ID, err)
			continue
		}
		result.Closed = append(result.Closed, order)
	}

	return result, nil
}
