package domain

import "context"

// PriceSource supplies current market prices for the evaluator's
// snapshots. The core is agnostic to whether the quotes are live-market
// or simulated.
type PriceSource interface {
	FetchRealTimePrices(ctx context.Context, symbols []string) (map[string]float64, error)
	FetchSinglePrice(ctx context.Context, symbol string) (float64, error)
}
