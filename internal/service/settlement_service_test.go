package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeacademy/internal/domain"
)

func TestSettlementAppliesProfitToBalance(t *testing.T) {
	ctx := context.Background()
	user := trialUser(10000)
	userRepo := newFakeUserRepo(user)
	orderRepo := newFakeOrderRepo(userRepo)
	settlement := NewSettlementService(orderRepo)

	order := &domain.Order{
		ID:         uuid.New(),
		UserID:     user.ID,
		Symbol:     "BTCUSDT",
		Side:       domain.SideBuy,
		Type:       domain.OrderTypeMarket,
		Status:     domain.StatusOpen,
		Quantity:   10,
		EntryPrice: 100,
		Leverage:   1,
	}
	require.NoError(t, orderRepo.Save(ctx, order))

	require.NoError(t, settlement.Close(ctx, order, 94, domain.ClosedBySL))

	assert.Equal(t, domain.StatusClosed, order.Status)
	require.NotNil(t, order.Profit)
	assert.InDelta(t, -60, *order.Profit, 1e-9)
	assert.InDelta(t, 9940, user.SimulatorBalance, 1e-9)
	assert.InDelta(t, -60, user.TotalProfit, 1e-9)
	assert.Equal(t, 1, orderRepo.settleCalls)
}

func TestSettlementRejectsNonOpenOrders(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	orderRepo := newFakeOrderRepo(userRepo)
	settlement := NewSettlementService(orderRepo)

	order := &domain.Order{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Symbol:   "BTCUSDT",
		Side:     domain.SideBuy,
		Type:     domain.OrderTypeLimit,
		Status:   domain.StatusPending,
		Quantity: 1,
	}

	err := settlement.Close(ctx, order, 100, domain.ClosedByManual)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assert.Zero(t, orderRepo.settleCalls)
}

func TestSettlementAllowsNegativeBalance(t *testing.T) {
	ctx := context.Background()
	user := trialUser(50)
	userRepo := newFakeUserRepo(user)
	orderRepo := newFakeOrderRepo(userRepo)
	settlement := NewSettlementService(orderRepo)

	order := &domain.Order{
		ID:         uuid.New(),
		UserID:     user.ID,
		Symbol:     "BTCUSDT",
		Side:       domain.SideBuy,
		Type:       domain.OrderTypeMarket,
		Status:     domain.StatusOpen,
		Quantity:   10,
		EntryPrice: 100,
		Leverage:   1,
	}
	require.NoError(t, orderRepo.Save(ctx, order))

	require.NoError(t, settlement.Close(ctx, order, 80, domain.ClosedByManual))
	assert.InDelta(t, -150, user.SimulatorBalance, 1e-9)
}
