package dto

// UserOutput represents user details in API responses
type UserOutput struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Role             string  `json:"role"`
	MembershipStatus string  `json:"membership_status"`
	SimulatorBalance float64 `json:"simulator_balance"`
	TotalProfit      float64 `json:"total_profit"`
	XP               int     `json:"xp"`
	DailyTradesCount int     `json:"daily_trades_count"`
}

// AchievementOutput represents one achievement with the user's progress
type AchievementOutput struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	XPReward    int     `json:"xp_reward"`
	Progress    float64 `json:"progress"`
	UnlockedAt  *string `json:"unlocked_at,omitempty"`
}
