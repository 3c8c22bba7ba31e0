package service

import (
	"context"
	"log"
	"time"

	"tradeacademy/internal/domain"
)

// SettlementService realizes profit at the moment an order closes and
// applies it to the owner's balance aggregate. Settlement never rejects:
// profit can be negative and the balance is allowed to go negative.
type SettlementService struct {
	orderRepo domain.OrderRepository
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(orderRepo domain.OrderRepository) *SettlementService {
	return &SettlementService{orderRepo: orderRepo}
}

// Close transitions an OPEN order to CLOSED at the given exit price and
// settles the realized profit. The order update and the balance update
// are one atomic unit at the storage layer.
func (s *SettlementService) Close(ctx context.Context, order *domain.Order, exitPrice float64, closedBy string) error {
	if err := order.Close(exitPrice, closedBy, time.Now()); err != nil {
		return err
	}

	if err := s.orderRepo.CloseAndSettle(ctx, order); err != nil {
		return err
	}

	log.Printf("[OK] Order CLOSED: %s %s | Entry=%.4f Exit=%.4f | Profit=%.4f | By=%s",
		order.Symbol, order.Side, order.EntryPrice, exitPrice, *order.Profit, closedBy)

	return nil
}
