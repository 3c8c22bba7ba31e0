package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a student account and its balance aggregate. The
// simulator balance and total profit are mutated only by settlement;
// the daily trade counter only by admission.
type User struct {
	ID               uuid.UUID  `json:"id"`
	Username         string     `json:"username"`
	PasswordHash     string     `json:"-"` // Never expose password hash in JSON
	Role             string     `json:"role"`
	SubscriptionID   *string    `json:"subscription_id,omitempty"`
	MembershipStatus string     `json:"membership_status"`
	SimulatorBalance float64    `json:"simulator_balance"`
	TotalProfit      float64    `json:"total_profit"`
	XP               int        `json:"xp"`
	LessonsCompleted int        `json:"lessons_completed"`
	DailyTradesCount int        `json:"daily_trades_count"`
	LastTradeDate    *time.Time `json:"last_trade_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UserRole constants
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// MembershipStatus constants
const (
	MembershipActive   = "ACTIVE"
	MembershipInactive = "INACTIVE"
)

// tradeDateLayout is the calendar-date granularity used for the daily
// trade quota.
const tradeDateLayout = "2006-01-02"

// IsTrial reports whether the account is rate-limited: no subscription,
// no active membership, and not an admin.
func (u *User) IsTrial() bool {
	if u.SubscriptionID != nil && *u.SubscriptionID != "" {
		return false
	}
	if u.MembershipStatus == MembershipActive {
		return false
	}
	if u.Role == RoleAdmin {
		return false
	}
	return true
}

// TradesUsedToday returns the daily counter, treating a stale
// last_trade_date as a reset to zero.
func (u *User) TradesUsedToday(now time.Time) int {
	if u.LastTradeDate == nil {
		return 0
	}
	if u.LastTradeDate.Format(tradeDateLayout) != now.Format(tradeDateLayout) {
		return 0
	}
	return u.DailyTradesCount
}

// TradeDate formats a time at the quota's calendar-date granularity.
func TradeDate(t time.Time) string {
	return t.Format(tradeDateLayout)
}
