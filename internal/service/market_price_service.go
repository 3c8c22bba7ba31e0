package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tradeacademy/internal/domain"
)

// MarketPriceService fetches live ticker prices for the scheduler's
// evaluation snapshots and as the fallback for manual closes. It is the
// platform's default price source; the evaluator itself accepts any
// snapshot a caller supplies.
type MarketPriceService struct {
	httpClient *http.Client
	baseURL    string
}

// NewMarketPriceService creates a new MarketPriceService against the
// given quote API base URL.
func NewMarketPriceService(baseURL string) domain.PriceSource {
	return &MarketPriceService{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

// FetchRealTimePrices fetches current prices for multiple symbols.
// When some symbols are missing from the feed, the partial map is
// returned alongside the error so callers can evaluate what they have.
func (s *MarketPriceService) FetchRealTimePrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	prices := make(map[string]float64)
	if len(symbols) == 0 {
		return prices, nil
	}

	url := fmt.Sprintf("%s/api/v3/ticker/price", s.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ticker prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("quote API error: status=%d, body=%s", resp.StatusCode, string(body))
	}

	var tickers []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tickers); err != nil {
		return nil, fmt.Errorf("failed to decode ticker response: %w", err)
	}

	wanted := make(map[string]bool, len(symbols))
	for _, symbol := range symbols {
		wanted[strings.ToUpper(symbol)] = true
	}

	for _, ticker := range tickers {
		if !wanted[ticker.Symbol] {
			continue
		}
		price, err := strconv.ParseFloat(ticker.Price, 64)
		if err != nil {
			continue
		}
		prices[ticker.Symbol] = price
	}

	if len(prices) != len(wanted) {
		var missing []string
		for _, symbol := range symbols {
			if _, ok := prices[strings.ToUpper(symbol)]; !ok {
				missing = append(missing, symbol)
			}
		}
		return prices, fmt.Errorf("missing prices for symbols: %v", missing)
	}

	return prices, nil
}

// FetchSinglePrice fetches the current price for a single symbol
func (s *MarketPriceService) FetchSinglePrice(ctx context.Context, symbol string) (float64, error) {
	prices, err := s.FetchRealTimePrices(ctx, []string{symbol})
	if err != nil {
		return 0, err
	}

	price, ok := prices[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("price not found for symbol: %s", symbol)
	}

	return price, nil
}
