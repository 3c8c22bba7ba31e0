package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradeacademy/internal/domain"
)

// UserRepositoryImpl implements the UserRepository interface
type UserRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// Create creates a new user
func (r *UserRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, username, password_hash, role, subscription_id, membership_status,
			simulator_balance, total_profit, xp, lessons_completed,
			daily_trades_count, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.SubscriptionID,
		user.MembershipStatus,
		user.SimulatorBalance,
		user.TotalProfit,
		user.XP,
		user.LessonsCompleted,
		user.DailyTradesCount,
		user.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, username, password_hash, role, subscription_id, membership_status,
	       simulator_balance, total_profit, xp, lessons_completed,
	       daily_trades_count, last_trade_date, created_at, updated_at`

func (r *UserRepositoryImpl) getOne(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.SubscriptionID,
		&user.MembershipStatus,
		&user.SimulatorBalance,
		&user.TotalProfit,
		&user.XP,
		&user.LessonsCompleted,
		&user.DailyTradesCount,
		&user.LastTradeDate,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepositoryImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// RegisterTrade increments the daily trade counter as one conditional
// statement. The counter resets whenever the stored last_trade_date
// differs from today; when maxPerDay > 0 the row only updates while the
// quota has headroom, so two concurrent submissions cannot both take the
// last slot.
func (r *UserRepositoryImpl) RegisterTrade(ctx context.Context, userID uuid.UUID, tradeDate time.Time, maxPerDay int) error {
	query := `
		UPDATE users
		SET daily_trades_count = CASE
		        WHEN last_trade_date = $2::date THEN daily_trades_count + 1
		        ELSE 1
		    END,
		    last_trade_date = $2::date,
		    updated_at = NOW()
		WHERE id = $1
		  AND ($3 <= 0
		       OR last_trade_date IS DISTINCT FROM $2::date
		       OR daily_trades_count < $3)
	`

	tag, err := r.db.Exec(ctx, query, userID, domain.TradeDate(tradeDate), maxPerDay)
	if err != nil {
		return fmt.Errorf("failed to register trade: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDailyLimitExceeded
	}

	return nil
}

// AddXP atomically adds an XP reward to a user
func (r *UserRepositoryImpl) AddXP(ctx context.Context, userID uuid.UUID, xp int) error {
	query := `
		UPDATE users
		SET xp = xp + $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.db.Exec(ctx, query, xp, userID)
	if err != nil {
		return fmt.Errorf("failed to add XP: %w", err)
	}

	return nil
}
