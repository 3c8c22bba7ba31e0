package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order represents one simulated position or pending instruction.
type Order struct {
	ID                uuid.UUID   `json:"id"`
	UserID            uuid.UUID   `json:"user_id"`
	Symbol            string      `json:"symbol"`
	Side              OrderSide   `json:"side"`
	Type              OrderType   `json:"type"`
	Status            OrderStatus `json:"status"`
	Quantity          float64     `json:"quantity"`
	EntryPrice        float64     `json:"entry_price"` // 0 until a pending order executes
	ExitPrice         *float64    `json:"exit_price,omitempty"`
	TriggerPrice      *float64    `json:"trigger_price,omitempty"`
	StopLossPrice     *float64    `json:"stop_loss_price,omitempty"`
	TakeProfitPrice   *float64    `json:"take_profit_price,omitempty"`
	TrailingPercent   *float64    `json:"trailing_percent,omitempty"`
	TrailingHighPrice *float64    `json:"trailing_high_price,omitempty"` // best price since open: highest for BUY, lowest for SELL
	Leverage          float64     `json:"leverage"`
	Profit            *float64    `json:"profit,omitempty"`
	ClosedBy          *string     `json:"closed_by,omitempty"` // SL, TP, TRAILING, MANUAL
	CreatedAt         time.Time   `json:"created_at"`
	ClosedAt          *time.Time  `json:"closed_at,omitempty"`
}

// OrderSide is the directional intent of an order.
type OrderSide string

// OrderSide constants
const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderType classifies how an order enters and exits the market.
type OrderType string

// OrderType constants
const (
	OrderTypeMarket       OrderType = "MARKET"
	OrderTypeLimit        OrderType = "LIMIT"
	OrderTypeStop         OrderType = "STOP"
	OrderTypeStopLoss     OrderType = "STOP_LOSS"
	OrderTypeTakeProfit   OrderType = "TAKE_PROFIT"
	OrderTypeTrailingStop OrderType = "TRAILING_STOP"
	OrderTypeOCO          OrderType = "OCO"
)

// OrderStatus is the lifecycle state of an order. Transitions only
// follow PENDING -> {OPEN, CANCELLED} and OPEN -> CLOSED; CLOSED and
// CANCELLED are terminal.
type OrderStatus string

// OrderStatus constants
const (
	StatusPending   OrderStatus = "PENDING"
	StatusOpen      OrderStatus = "OPEN"
	StatusClosed    OrderStatus = "CLOSED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// ClosedBy constants (how the position was closed)
const (
	ClosedBySL       = "SL"       // Stop Loss hit
	ClosedByTP       = "TP"       // Take Profit hit
	ClosedByTrailing = "TRAILING" // Trailing Stop hit
	ClosedByManual   = "MANUAL"   // Manually closed by user
)

// MaxTrailingPercent caps how far a trailing stop may sit below the high.
const MaxTrailingPercent = 50.0

// IsValid reports whether the order type is one of the seven recognized values.
func (t OrderType) IsValid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop,
		OrderTypeStopLoss, OrderTypeTakeProfit, OrderTypeTrailingStop, OrderTypeOCO:
		return true
	}
	return false
}

// IsValid reports whether the side is BUY or SELL.
func (s OrderSide) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// IsMarket reports whether the order executes immediately at admission.
func (t OrderType) IsMarket() bool {
	return t == OrderTypeMarket
}

// IsBuy checks if the order is a long position
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// ValidateParams checks field shape and the per-type required fields.
// It does not touch balances or quotas.
func (o *Order) ValidateParams() error {
	if !o.Type.IsValid() {
		return ErrInvalidOrderType
	}
	if !o.Side.IsValid() {
		return &MissingFieldError{Field: "side"}
	}
	if o.Symbol == "" {
		return &MissingFieldError{Field: "symbol"}
	}
	if o.Quantity <= 0 {
		return &MissingFieldError{Field: "quantity"}
	}

	switch o.Type {
	case OrderTypeLimit, OrderTypeStop:
		if o.TriggerPrice == nil || *o.TriggerPrice <= 0 {
			return &MissingFieldError{Field: "trigger_price"}
		}
	case OrderTypeStopLoss:
		if o.StopLossPrice == nil || *o.StopLossPrice <= 0 {
			return &MissingFieldError{Field: "stop_loss_price"}
		}
	case OrderTypeTakeProfit:
		if o.TakeProfitPrice == nil || *o.TakeProfitPrice <= 0 {
			return &MissingFieldError{Field: "take_profit_price"}
		}
	case OrderTypeTrailingStop:
		if o.TrailingPercent == nil || *o.TrailingPercent <= 0 || *o.TrailingPercent > MaxTrailingPercent {
			return &MissingFieldError{Field: "trailing_percent"}
		}
	case OrderTypeOCO:
		if o.StopLossPrice == nil || *o.StopLossPrice <= 0 {
			return &MissingFieldError{Field: "stop_loss_price"}
		}
		if o.TakeProfitPrice == nil || *o.TakeProfitPrice <= 0 {
			return &MissingFieldError{Field: "take_profit_price"}
		}
	}

	return nil
}

// ShouldExecute decides whether a PENDING order converts to OPEN at the
// given price. LIMIT waits for a favorable price, STOP for a breakout;
// the monitor-exit types (STOP_LOSS, TAKE_PROFIT, TRAILING_STOP, OCO)
// have no entry trigger and execute on the first evaluation.
func (o *Order) ShouldExecute(currentPrice float64) bool {
	switch o.Type {
	case OrderTypeLimit:
		if o.IsBuy() {
			return currentPrice <= *o.TriggerPrice
		}
		return currentPrice >= *o.TriggerPrice
	case OrderTypeStop:
		if o.IsBuy() {
			return currentPrice >= *o.TriggerPrice
		}
		return currentPrice <= *o.TriggerPrice
	default:
		return true
	}
}

// Execute transitions a PENDING order to OPEN at the given price.
// A stored positive entry price is kept; otherwise the execution price
// becomes the entry. Trailing orders start tracking from the execution
// price, not the originally requested one.
func (o *Order) Execute(currentPrice float64) {
	o.Status = StatusOpen
	if o.EntryPrice <= 0 {
		o.EntryPrice = currentPrice
	}
	if o.Type == OrderTypeTrailingStop {
		high := o.EntryPrice
		o.TrailingHighPrice = &high
	}
}

// CheckExit checks the exit levels of an OPEN order against the current
// price, in priority order: stop-loss, then take-profit, then trailing
// stop. The first one that fires wins. A favorable move updates the
// trailing high instead of closing; trailingMoved reports that mutation
// so the caller can persist it.
func (o *Order) CheckExit(currentPrice float64) (shouldClose bool, closedBy string, trailingMoved bool) {
	if o.StopLossPrice != nil && *o.StopLossPrice > 0 {
		if o.IsBuy() && currentPrice <= *o.StopLossPrice {
			return true, ClosedBySL, false
		}
		if !o.IsBuy() && currentPrice >= *o.StopLossPrice {
			return true, ClosedBySL, false
		}
	}

	if o.TakeProfitPrice != nil && *o.TakeProfitPrice > 0 {
		if o.IsBuy() && currentPrice >= *o.TakeProfitPrice {
			return true, ClosedByTP, false
		}
		if !o.IsBuy() && currentPrice <= *o.TakeProfitPrice {
			return true, ClosedByTP, false
		}
	}

	if o.TrailingPercent != nil && o.TrailingHighPrice != nil {
		if o.IsBuy() {
			if currentPrice > *o.TrailingHighPrice {
				*o.TrailingHighPrice = currentPrice
				return false, "", true
			}
			stopLevel := *o.TrailingHighPrice * (1 - *o.TrailingPercent/100)
			if currentPrice <= stopLevel {
				return true, ClosedByTrailing, false
			}
		} else {
			if currentPrice < *o.TrailingHighPrice {
				*o.TrailingHighPrice = currentPrice
				return false, "", true
			}
			stopLevel := *o.TrailingHighPrice * (1 + *o.TrailingPercent/100)
			if currentPrice >= stopLevel {
				return true, ClosedByTrailing, false
			}
		}
	}

	return false, "", false
}

// ComputeProfit calculates realized PnL at the given exit price,
// multiplied by leverage.
func (o *Order) ComputeProfit(exitPrice float64) float64 {
	leverage := o.Leverage
	if leverage < 1 {
		leverage = 1
	}

	var base float64
	if o.IsBuy() {
		base = (exitPrice - o.EntryPrice) * o.Quantity
	} else {
		base = (o.EntryPrice - exitPrice) * o.Quantity
	}
	return base * leverage
}

// Close transitions an OPEN order to CLOSED, fixing exit price and
// realized profit. Only OPEN orders may close.
func (o *Order) Close(exitPrice float64, closedBy string, now time.Time) error {
	if o.Status != StatusOpen {
		return ErrInvalidStateTransition
	}
	profit := o.ComputeProfit(exitPrice)
	o.Status = StatusClosed
	o.ExitPrice = &exitPrice
	o.Profit = &profit
	o.ClosedBy = &closedBy
	o.ClosedAt = &now
	return nil
}

// Cancel transitions a PENDING order to CANCELLED. No profit is computed
// and no balance changes; cancelling an OPEN or CLOSED order is rejected.
func (o *Order) Cancel(now time.Time) error {
	if o.Status != StatusPending {
		return ErrInvalidStateTransition
	}
	o.Status = StatusCancelled
	o.ClosedAt = &now
	return nil
}
