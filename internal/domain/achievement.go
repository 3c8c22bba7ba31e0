package domain

import (
	"time"

	"github.com/google/uuid"
)

// Achievement is a fixed definition: reach Requirement on Metric to
// unlock XPReward.
type Achievement struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Metric      string    `json:"metric"`
	Requirement float64   `json:"requirement"`
	XPReward    int       `json:"xp_reward"`
}

// Achievement metric constants
const (
	MetricTradeCount       = "TRADE_COUNT"
	MetricProfitableTrades = "PROFITABLE_TRADES"
	MetricTotalProfit      = "TOTAL_PROFIT"
	MetricBalance          = "BALANCE"
	MetricLessonsCompleted = "LESSONS_COMPLETED"
)

// UserAchievement tracks a user's progress (0-100) toward one
// achievement. Progress never regresses and the XP reward is granted at
// most once.
type UserAchievement struct {
	UserID        uuid.UUID  `json:"user_id"`
	AchievementID uuid.UUID  `json:"achievement_id"`
	Progress      float64    `json:"progress"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ProgressFor computes the 0-100 progress value for a metric reading.
// Negative readings (a losing total profit) clamp to zero.
func (a *Achievement) ProgressFor(value float64) float64 {
	if a.Requirement <= 0 {
		return 100
	}
	progress := value / a.Requirement * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// AchievementCounters are the aggregate readings the recompute pass
// evaluates definitions against.
type AchievementCounters struct {
	TradeCount       int
	ProfitableTrades int
	TotalProfit      float64
	Balance          float64
	LessonsCompleted int
}

// MetricValue returns the counter reading for a metric name.
func (c AchievementCounters) MetricValue(metric string) float64 {
	switch metric {
	case MetricTradeCount:
		return float64(c.TradeCount)
	case MetricProfitableTrades:
		return float64(c.ProfitableTrades)
	case MetricTotalProfit:
		return c.TotalProfit
	case MetricBalance:
		return c.Balance
	case MetricLessonsCompleted:
		return float64(c.LessonsCompleted)
	}
	return 0
}
