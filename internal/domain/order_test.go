package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestOrderTypeIsValid(t *testing.T) {
	valid := []OrderType{
		OrderTypeMarket, OrderTypeLimit, OrderTypeStop,
		OrderTypeStopLoss, OrderTypeTakeProfit, OrderTypeTrailingStop, OrderTypeOCO,
	}
	for _, typ := range valid {
		assert.True(t, typ.IsValid(), "expected %s to be valid", typ)
	}

	assert.False(t, OrderType("BRACKET").IsValid())
	assert.False(t, OrderType("").IsValid())
	assert.False(t, OrderType("market").IsValid())
}

func TestValidateParams(t *testing.T) {
	base := func(typ OrderType) *Order {
		return &Order{
			Symbol:   "BTCUSDT",
			Side:     SideBuy,
			Type:     typ,
			Quantity: 1,
		}
	}

	t.Run("unknown type", func(t *testing.T) {
		order := base("ICEBERG")
		assert.ErrorIs(t, order.ValidateParams(), ErrInvalidOrderType)
	})

	t.Run("invalid side", func(t *testing.T) {
		order := base(OrderTypeMarket)
		order.Side = "HOLD"
		var missing *MissingFieldError
		require.ErrorAs(t, order.ValidateParams(), &missing)
		assert.Equal(t, "side", missing.Field)
	})

	t.Run("missing symbol", func(t *testing.T) {
		order := base(OrderTypeMarket)
		order.Symbol = ""
		var missing *MissingFieldError
		require.ErrorAs(t, order.ValidateParams(), &missing)
		assert.Equal(t, "symbol", missing.Field)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		order := base(OrderTypeMarket)
		order.Quantity = 0
		var missing *MissingFieldError
		require.ErrorAs(t, order.ValidateParams(), &missing)
		assert.Equal(t, "quantity", missing.Field)
	})

	tests := []struct {
		name    string
		mutate  func(*Order)
		typ     OrderType
		missing string
	}{
		{"limit without trigger", func(o *Order) {}, OrderTypeLimit, "trigger_price"},
		{"stop without trigger", func(o *Order) {}, OrderTypeStop, "trigger_price"},
		{"stop loss without level", func(o *Order) {}, OrderTypeStopLoss, "stop_loss_price"},
		{"take profit without level", func(o *Order) {}, OrderTypeTakeProfit, "take_profit_price"},
		{"trailing without percent", func(o *Order) {}, OrderTypeTrailingStop, "trailing_percent"},
		{"trailing percent above cap", func(o *Order) {
			o.TrailingPercent = floatPtr(MaxTrailingPercent + 1)
		}, OrderTypeTrailingStop, "trailing_percent"},
		{"oco without stop loss", func(o *Order) {
			o.TakeProfitPrice = floatPtr(110)
		}, OrderTypeOCO, "stop_loss_price"},
		{"oco without take profit", func(o *Order) {
			o.StopLossPrice = floatPtr(95)
		}, OrderTypeOCO, "take_profit_price"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := base(tt.typ)
			tt.mutate(order)
			var missing *MissingFieldError
			require.ErrorAs(t, order.ValidateParams(), &missing)
			assert.Equal(t, tt.missing, missing.Field)
		})
	}

	t.Run("fully specified orders pass", func(t *testing.T) {
		limit := base(OrderTypeLimit)
		limit.TriggerPrice = floatPtr(95)
		assert.NoError(t, limit.ValidateParams())

		oco := base(OrderTypeOCO)
		oco.StopLossPrice = floatPtr(95)
		oco.TakeProfitPrice = floatPtr(110)
		assert.NoError(t, oco.ValidateParams())

		trailing := base(OrderTypeTrailingStop)
		trailing.TrailingPercent = floatPtr(5)
		assert.NoError(t, trailing.ValidateParams())
	})
}

func TestShouldExecute(t *testing.T) {
	tests := []struct {
		name    string
		typ     OrderType
		side    OrderSide
		trigger float64
		price   float64
		want    bool
	}{
		{"limit buy waits above trigger", OrderTypeLimit, SideBuy, 95, 100, false},
		{"limit buy fires at trigger", OrderTypeLimit, SideBuy, 95, 95, true},
		{"limit buy fires below trigger", OrderTypeLimit, SideBuy, 95, 94, true},
		{"limit sell waits below trigger", OrderTypeLimit, SideSell, 105, 100, false},
		{"limit sell fires above trigger", OrderTypeLimit, SideSell, 105, 106, true},
		{"stop buy waits below trigger", OrderTypeStop, SideBuy, 105, 100, false},
		{"stop buy fires on breakout", OrderTypeStop, SideBuy, 105, 105, true},
		{"stop sell waits above trigger", OrderTypeStop, SideSell, 95, 100, false},
		{"stop sell fires on breakdown", OrderTypeStop, SideSell, 95, 94, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{
				Side:         tt.side,
				Type:         tt.typ,
				TriggerPrice: floatPtr(tt.trigger),
			}
			assert.Equal(t, tt.want, order.ShouldExecute(tt.price))
		})
	}

	t.Run("monitor-exit types execute immediately", func(t *testing.T) {
		for _, typ := range []OrderType{OrderTypeStopLoss, OrderTypeTakeProfit, OrderTypeTrailingStop, OrderTypeOCO} {
			order := &Order{Side: SideBuy, Type: typ}
			assert.True(t, order.ShouldExecute(1), "type %s", typ)
		}
	})
}

func TestExecute(t *testing.T) {
	t.Run("entry price falls back to execution price", func(t *testing.T) {
		order := &Order{Side: SideBuy, Type: OrderTypeLimit, Status: StatusPending, TriggerPrice: floatPtr(95)}
		order.Execute(94)
		assert.Equal(t, StatusOpen, order.Status)
		assert.Equal(t, 94.0, order.EntryPrice)
	})

	t.Run("stored entry price is kept", func(t *testing.T) {
		order := &Order{Side: SideBuy, Type: OrderTypeLimit, Status: StatusPending, EntryPrice: 95, TriggerPrice: floatPtr(95)}
		order.Execute(94)
		assert.Equal(t, 95.0, order.EntryPrice)
	})

	t.Run("trailing stop starts tracking from execution price", func(t *testing.T) {
		order := &Order{Side: SideBuy, Type: OrderTypeTrailingStop, Status: StatusPending, TrailingPercent: floatPtr(5)}
		order.Execute(102)
		require.NotNil(t, order.TrailingHighPrice)
		assert.Equal(t, 102.0, *order.TrailingHighPrice)
	})
}

func TestCheckExitStopLossAndTakeProfit(t *testing.T) {
	t.Run("buy stop loss fires at or below level", func(t *testing.T) {
		order := &Order{Side: SideBuy, Status: StatusOpen, EntryPrice: 100, StopLossPrice: floatPtr(95)}
		shouldClose, closedBy, moved := order.CheckExit(94)
		assert.True(t, shouldClose)
		assert.Equal(t, ClosedBySL, closedBy)
		assert.False(t, moved)
	})

	t.Run("buy take profit fires at or above level", func(t *testing.T) {
		order := &Order{Side: SideBuy, Status: StatusOpen, EntryPrice: 100, TakeProfitPrice: floatPtr(110)}
		shouldClose, closedBy, _ := order.CheckExit(110)
		assert.True(t, shouldClose)
		assert.Equal(t, ClosedByTP, closedBy)
	})

	t.Run("sell levels mirror buy levels", func(t *testing.T) {
		order := &Order{Side: SideSell, Status: StatusOpen, EntryPrice: 100, StopLossPrice: floatPtr(105), TakeProfitPrice: floatPtr(90)}

		shouldClose, closedBy, _ := order.CheckExit(106)
		assert.True(t, shouldClose)
		assert.Equal(t, ClosedBySL, closedBy)

		shouldClose, closedBy, _ = order.CheckExit(89)
		assert.True(t, shouldClose)
		assert.Equal(t, ClosedByTP, closedBy)
	})

	t.Run("stop loss wins when both levels are breached", func(t *testing.T) {
		// Degenerate levels where one price satisfies both exits.
		order := &Order{Side: SideBuy, Status: StatusOpen, EntryPrice: 100, StopLossPrice: floatPtr(95), TakeProfitPrice: floatPtr(90)}
		shouldClose, closedBy, _ := order.CheckExit(92)
		assert.True(t, shouldClose)
		assert.Equal(t, ClosedBySL, closedBy)
	})

	t.Run("no exit inside the band", func(t *testing.T) {
		order := &Order{Side: SideBuy, Status: StatusOpen, EntryPrice: 100, StopLossPrice: floatPtr(95), TakeProfitPrice: floatPtr(110)}
		shouldClose, _, moved := order.CheckExit(100)
		assert.False(t, shouldClose)
		assert.False(t, moved)
	})
}

func TestCheckExitTrailing(t *testing.T) {
	t.Run("buy tracks highs then closes on drawdown", func(t *testing.T) {
		order := &Order{
			Side:              SideBuy,
			Status:            StatusOpen,
			EntryPrice:        100,
			TrailingPercent:   floatPtr(5),
			TrailingHighPrice: floatPtr(100),
		}

		// New high: no close, high moves to 105.
		shouldClose, _, moved := order.CheckExit(105)
		assert.False(t, shouldClose)
		assert.True(t, moved)
		assert.Equal(t, 105.0, *order.TrailingHighPrice)

		// 103 is above the 99.75 stop level: nothing happens.
		shouldClose, _, moved = order.CheckExit(103)
		assert.False(t, shouldClose)
		assert.False(t, moved)
		assert.Equal(t, 105.0, *order.TrailingHighPrice)

		// 99.7 is at or below 105 * 0.95 = 99.75: trailing stop fires.
		shouldClose, closedBy, moved := order.CheckExit(99.7)
		assert.True(t, shouldClose)
		assert.Equal(t, ClosedByTrailing, closedBy)
		assert.False(t, moved)
	})

	t.Run("buy high never decreases", func(t *testing.T) {
		order := &Order{
			Side:              SideBuy,
			Status:            StatusOpen,
			EntryPrice:        100,
			TrailingPercent:   floatPtr(10),
			TrailingHighPrice: floatPtr(100),
		}
		for _, price := range []float64{104, 102, 108, 101, 108} {
			before := *order.TrailingHighPrice
			order.CheckExit(price)
			assert.GreaterOrEqual(t, *order.TrailingHighPrice, before)
		}
		assert.Equal(t, 108.0, *order.TrailingHighPrice)
	})

	t.Run("sell tracks lows and closes on rally", func(t *testing.T) {
		order := &Order{
			Side:              SideSell,
			Status:            StatusOpen,
			EntryPrice:        100,
			TrailingPercent:   floatPtr(5),
			TrailingHighPrice: floatPtr(100),
		}

		shouldClose, _, moved := order.CheckExit(95)
		assert.False(t, shouldClose)
		assert.True(t, moved)
		assert.Equal(t, 95.0, *order.TrailingHighPrice)

		// Stop level is 95 * 1.05 = 99.75.
		shouldClose, closedBy, _ := order.CheckExit(99.8)
		assert.True(t, shouldClose)
		assert.Equal(t, ClosedByTrailing, closedBy)
	})
}

func TestComputeProfit(t *testing.T) {
	tests := []struct {
		name     string
		side     OrderSide
		entry    float64
		exit     float64
		quantity float64
		leverage float64
		want     float64
	}{
		{"losing buy", SideBuy, 100, 94, 10, 1, -60},
		{"winning buy", SideBuy, 100, 110, 10, 1, 100},
		{"winning sell", SideSell, 100, 94, 10, 1, 60},
		{"losing sell", SideSell, 100, 110, 10, 1, -100},
		{"leverage multiplies", SideBuy, 100, 105, 2, 10, 100},
		{"zero leverage treated as one", SideBuy, 100, 105, 2, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Side: tt.side, EntryPrice: tt.entry, Quantity: tt.quantity, Leverage: tt.leverage}
			assert.InDelta(t, tt.want, order.ComputeProfit(tt.exit), 1e-9)
		})
	}
}

func TestCloseTransitions(t *testing.T) {
	now := time.Now()

	t.Run("open order closes with fixed exit and profit", func(t *testing.T) {
		order := &Order{Side: SideBuy, Status: StatusOpen, EntryPrice: 100, Quantity: 10, Leverage: 1}
		require.NoError(t, order.Close(94, ClosedBySL, now))
		assert.Equal(t, StatusClosed, order.Status)
		require.NotNil(t, order.Profit)
		assert.InDelta(t, -60, *order.Profit, 1e-9)
		assert.Equal(t, ClosedBySL, *order.ClosedBy)
		assert.Equal(t, now, *order.ClosedAt)
	})

	t.Run("closing anything but open is rejected", func(t *testing.T) {
		for _, status := range []OrderStatus{StatusPending, StatusClosed, StatusCancelled} {
			order := &Order{Status: status}
			assert.True(t, errors.Is(order.Close(100, ClosedByManual, now), ErrInvalidStateTransition), "status %s", status)
		}
	})
}

func TestCancelTransitions(t *testing.T) {
	now := time.Now()

	t.Run("pending order cancels cleanly", func(t *testing.T) {
		order := &Order{Status: StatusPending}
		require.NoError(t, order.Cancel(now))
		assert.Equal(t, StatusCancelled, order.Status)
		assert.Nil(t, order.Profit)
	})

	t.Run("cancelling an open order is rejected and leaves it unchanged", func(t *testing.T) {
		order := &Order{Status: StatusOpen, EntryPrice: 100}
		err := order.Cancel(now)
		assert.ErrorIs(t, err, ErrInvalidStateTransition)
		assert.Equal(t, StatusOpen, order.Status)
		assert.Nil(t, order.ClosedAt)
	})

	t.Run("terminal states stay terminal", func(t *testing.T) {
		for _, status := range []OrderStatus{StatusClosed, StatusCancelled} {
			order := &Order{Status: status}
			assert.ErrorIs(t, order.Cancel(now), ErrInvalidStateTransition, "status %s", status)
		}
	})
}
