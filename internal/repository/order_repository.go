package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradeacademy/internal/domain"
)

const orderColumns = `id, user_id, symbol, side, type, status, quantity, entry_price,
	       exit_price, trigger_price, stop_loss_price, take_profit_price,
	       trailing_percent, trailing_high_price, leverage, profit, closed_by, created_at, closed_at`

// OrderRepositoryImpl implements the OrderRepository interface
type OrderRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository
func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &OrderRepositoryImpl{db: db}
}

// Save creates a new order
func (r *OrderRepositoryImpl) Save(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, symbol, side, type, status, quantity, entry_price,
			trigger_price, stop_loss_price, take_profit_price,
			trailing_percent, trailing_high_price, leverage, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
	`

	_, err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.Symbol,
		order.Side,
		order.Type,
		order.Status,
		order.Quantity,
		order.EntryPrice,
		order.TriggerPrice,
		order.StopLossPrice,
		order.TakeProfitPrice,
		order.TrailingPercent,
		order.TrailingHighPrice,
		order.Leverage,
		order.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}

	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Symbol,
		&order.Side,
		&order.Type,
		&order.Status,
		&order.Quantity,
		&order.EntryPrice,
		&order.ExitPrice,
		&order.TriggerPrice,
		&order.StopLossPrice,
		&order.TakeProfitPrice,
		&order.TrailingPercent,
		&order.TrailingHighPrice,
		&order.Leverage,
		&order.Profit,
		&order.ClosedBy,
		&order.CreatedAt,
		&order.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepositoryImpl) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// GetByID retrieves an order by ID
func (r *OrderRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	return order, nil
}

// GetByUserID retrieves all orders for a user, newest first
func (r *OrderRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

// GetByUserAndStatus retrieves a user's orders in one lifecycle state
func (r *OrderRepositoryImpl) GetByUserAndStatus(ctx context.Context, userID uuid.UUID, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND status = $2 ORDER BY created_at ASC`
	return r.queryOrders(ctx, query, userID, status)
}

// GetActiveOrders retrieves all PENDING and OPEN orders across all users
func (r *OrderRepositoryImpl) GetActiveOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status IN ('PENDING', 'OPEN') ORDER BY created_at ASC`
	return r.queryOrders(ctx, query)
}

// MarkExecuted persists a PENDING -> OPEN transition. The status guard
// keeps a concurrent evaluation from executing the same order twice.
func (r *OrderRepositoryImpl) MarkExecuted(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, entry_price = $2, trailing_high_price = $3
		WHERE id = $4 AND status = 'PENDING'
	`

	tag, err := r.db.Exec(ctx, query, order.Status, order.EntryPrice, order.TrailingHighPrice, order.ID)
	if err != nil {
		return fmt.Errorf("failed to mark order executed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}

	return nil
}

// UpdateTrailingHigh persists a trailing-high move on an open order
func (r *OrderRepositoryImpl) UpdateTrailingHigh(ctx context.Context, id uuid.UUID, high float64) error {
	query := `
		UPDATE orders
		SET trailing_high_price = $1
		WHERE id = $2 AND status = 'OPEN'
	`

	_, err := r.db.Exec(ctx, query, high, id)
	if err != nil {
		return fmt.Errorf("failed to update trailing high: %w", err)
	}

	return nil
}

// CloseAndSettle persists a closed order and applies its realized profit
// to the owner's balance aggregate. Both writes run in one transaction
// and the balance update is an SQL increment, so a crash cannot leave a
// closed order unsettled and concurrent settlements cannot lose updates.
func (r *OrderRepositoryImpl) CloseAndSettle(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1, exit_price = $2, profit = $3, closed_by = $4, closed_at = $5
		WHERE id = $6 AND status = 'OPEN'
	`, order.Status, order.ExitPrice, order.Profit, order.ClosedBy, order.ClosedAt, order.ID)
	if err != nil {
		return fmt.Errorf("failed to close order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET simulator_balance = simulator_balance + $1,
		    total_profit = total_profit + $1,
		    updated_at = NOW()
		WHERE id = $2
	`, *order.Profit, order.UserID)
	if err != nil {
		return fmt.Errorf("failed to settle balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}

	return nil
}

// MarkCancelled persists a PENDING -> CANCELLED transition. No balance
// change occurs on cancellation.
func (r *OrderRepositoryImpl) MarkCancelled(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET status = $1, closed_at = $2
		WHERE id = $3 AND status = 'PENDING'
	`

	tag, err := r.db.Exec(ctx, query, order.Status, order.ClosedAt, order.ID)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidStateTransition
	}

	return nil
}

// GetCounters reads the aggregate counters driving achievement recompute
func (r *OrderRepositoryImpl) GetCounters(ctx context.Context, userID uuid.UUID) (domain.AchievementCounters, error) {
	var counters domain.AchievementCounters

	query := `
		SELECT COUNT(*) FILTER (WHERE status = 'CLOSED'),
		       COUNT(*) FILTER (WHERE status = 'CLOSED' AND profit > 0)
		FROM orders
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&counters.TradeCount, &counters.ProfitableTrades)
	if err != nil {
		return counters, fmt.Errorf("failed to count closed orders: %w", err)
	}

	err = r.db.QueryRow(ctx, `
		SELECT total_profit, simulator_balance, lessons_completed
		FROM users
		WHERE id = $1
	`, userID).Scan(&counters.TotalProfit, &counters.Balance, &counters.LessonsCompleted)
	if err != nil {
		return counters, fmt.Errorf("failed to read user counters: %w", err)
	}

	return counters, nil
}

// GetClosedHistorySince retrieves closed orders since a specific time
func (r *OrderRepositoryImpl) GetClosedHistorySince(ctx context.Context, userID uuid.UUID, since time.Time, limit int) ([]domain.PnLHistoryEntry, error) {
	query := `
		SELECT closed_at, profit
		FROM orders
		WHERE user_id = $1 AND status = 'CLOSED' AND closed_at >= $2
		ORDER BY closed_at ASC
		LIMIT $3
	`

	rows, err := r.db.Query(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query closed history: %w", err)
	}
	defer rows.Close()

	var history []domain.PnLHistoryEntry
	for rows.Next() {
		var entry domain.PnLHistoryEntry
		if err := rows.Scan(&entry.ClosedAt, &entry.Profit); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return history, nil
}

// GetStatistics reads platform-wide order counts and realized profit
func (r *OrderRepositoryImpl) GetStatistics(ctx context.Context) (*domain.TradingStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COUNT(*) FILTER (WHERE status = 'OPEN'),
		       COUNT(*) FILTER (WHERE status = 'CLOSED'),
		       COALESCE(SUM(profit) FILTER (WHERE status = 'CLOSED'), 0)
		FROM orders
	`

	stats := &domain.TradingStats{}
	err := r.db.QueryRow(ctx, query).Scan(
		&stats.TotalOrders,
		&stats.PendingOrders,
		&stats.OpenOrders,
		&stats.ClosedOrders,
		&stats.RealizedProfit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read statistics: %w", err)
	}

	return stats, nil
}
