package dto

// SubmitOrderRequest represents a raw order submission
type SubmitOrderRequest struct {
	Symbol          string   `json:"symbol"`
	Side            string   `json:"side"`
	Type            string   `json:"type"`
	Quantity        float64  `json:"quantity"`
	EntryPrice      float64  `json:"entry_price"`
	TriggerPrice    *float64 `json:"trigger_price,omitempty"`
	StopLossPrice   *float64 `json:"stop_loss_price,omitempty"`
	TakeProfitPrice *float64 `json:"take_profit_price,omitempty"`
	TrailingPercent *float64 `json:"trailing_percent,omitempty"`
	Leverage        float64  `json:"leverage"`
}

// EvaluateRequest carries a caller-supplied price snapshot
type EvaluateRequest struct {
	Prices map[string]float64 `json:"prices"`
}

// CloseOrderRequest represents a manual close; a zero exit price means
// "close at the current market price"
type CloseOrderRequest struct {
	ExitPrice float64 `json:"exit_price"`
}

// OrderOutput represents an order in API responses
type OrderOutput struct {
	ID                string   `json:"id"`
	Symbol            string   `json:"symbol"`
	Side              string   `json:"side"`
	Type              string   `json:"type"`
	Status            string   `json:"status"`
	Quantity          float64  `json:"quantity"`
	EntryPrice        float64  `json:"entry_price"`
	ExitPrice         *float64 `json:"exit_price,omitempty"`
	TriggerPrice      *float64 `json:"trigger_price,omitempty"`
	StopLossPrice     *float64 `json:"stop_loss_price,omitempty"`
	TakeProfitPrice   *float64 `json:"take_profit_price,omitempty"`
	TrailingPercent   *float64 `json:"trailing_percent,omitempty"`
	TrailingHighPrice *float64 `json:"trailing_high_price,omitempty"`
	Leverage          float64  `json:"leverage"`
	Profit            *float64 `json:"profit,omitempty"`
	ClosedBy          *string  `json:"closed_by,omitempty"`
	CreatedAt         string   `json:"created_at"`
	ClosedAt          *string  `json:"closed_at,omitempty"`
}

// EvaluationOutput summarizes one evaluator invocation
type EvaluationOutput struct {
	Executed      []OrderOutput `json:"executed"`
	Closed        []OrderOutput `json:"closed"`
	ExecutedCount int           `json:"executed_count"`
	ClosedCount   int           `json:"closed_count"`
}
