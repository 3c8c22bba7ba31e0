package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	// Save creates a new order
	Save(ctx context.Context, order *Order) error

	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByUserID retrieves all orders for a user, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// GetByUserAndStatus retrieves a user's orders in one lifecycle state
	GetByUserAndStatus(ctx context.Context, userID uuid.UUID, status OrderStatus) ([]*Order, error)

	// GetActiveOrders retrieves all PENDING and OPEN orders across all
	// users, for the scheduled evaluation pass
	GetActiveOrders(ctx context.Context) ([]*Order, error)

	// MarkExecuted persists a PENDING -> OPEN transition (status, entry
	// price, trailing high)
	MarkExecuted(ctx context.Context, order *Order) error

	// UpdateTrailingHigh persists a trailing-high move on an open order
	UpdateTrailingHigh(ctx context.Context, id uuid.UUID, high float64) error

	// CloseAndSettle persists a closed order and applies its realized
	// profit to the owner's balance aggregate in a single transaction
	CloseAndSettle(ctx context.Context, order *Order) error

	// MarkCancelled persists a PENDING -> CANCELLED transition
	MarkCancelled(ctx context.Context, order *Order) error

	// GetCounters reads the aggregate counters driving achievement
	// recompute for one user
	GetCounters(ctx context.Context, userID uuid.UUID) (AchievementCounters, error)

	// GetClosedHistorySince retrieves closed orders since a specific time
	// for PnL charting
	GetClosedHistorySince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]PnLHistoryEntry, error)

	// GetStatistics reads platform-wide order counts and realized profit
	GetStatistics(ctx context.Context) (*TradingStats, error)
}

// PnLHistoryEntry represents a data point for PnL charting
type PnLHistoryEntry struct {
	ClosedAt time.Time
	Profit   float64
}

// TradingStats holds platform-wide aggregates for the admin surface
type TradingStats struct {
	TotalOrders    int     `json:"total_orders"`
	PendingOrders  int     `json:"pending_orders"`
	OpenOrders     int     `json:"open_orders"`
	ClosedOrders   int     `json:"closed_orders"`
	RealizedProfit float64 `json:"realized_profit"`
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*User, error)

	// RegisterTrade increments the daily trade counter for the calendar
	// date of tradeDate, resetting it when the stored date differs. When
	// maxPerDay > 0 the increment is conditional and the call returns
	// ErrDailyLimitExceeded once the quota is spent. The update is a
	// single storage-level statement so concurrent submissions cannot
	// lose counts.
	RegisterTrade(ctx context.Context, userID uuid.UUID, tradeDate time.Time, maxPerDay int) error

	// AddXP atomically adds an XP reward to a user
	AddXP(ctx context.Context, userID uuid.UUID, xp int) error
}

// AchievementRepository defines the interface for achievement operations
type AchievementRepository interface {
	// GetAll retrieves all achievement definitions
	GetAll(ctx context.Context) ([]*Achievement, error)

	// GetProgress retrieves a user's stored progress keyed by achievement
	GetProgress(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*UserAchievement, error)

	// UpsertProgress stores a progress value for one user/achievement pair
	UpsertProgress(ctx context.Context, ua *UserAchievement) error
}
