package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradeacademy/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

// fakeOrderRepo is an in-memory OrderRepository. CloseAndSettle applies
// realized profit to the balances map the way the SQL transaction does.
type fakeOrderRepo struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*domain.Order
	users    *fakeUserRepo
	counters map[uuid.UUID]domain.AchievementCounters

	saveCalls     int
	executedCalls int
	trailingCalls int
	settleCalls   int
}

func newFakeOrderRepo(users *fakeUserRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders:   make(map[uuid.UUID]*domain.Order),
		users:    users,
		counters: make(map[uuid.UUID]domain.AchievementCounters),
	}
}

func (r *fakeOrderRepo) Save(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	r.saveCalls++
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetByUserAndStatus(_ context.Context, userID uuid.UUID, status domain.OrderStatus) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID && order.Status == status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetActiveOrders(_ context.Context) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, order := range r.orders {
		if order.Status == domain.StatusPending || order.Status == domain.StatusOpen {
			out = append(out, order)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) MarkExecuted(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	r.executedCalls++
	return nil
}

func (r *fakeOrderRepo) UpdateTrailingHigh(_ context.Context, id uuid.UUID, high float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		order.TrailingHighPrice = &high
	}
	r.trailingCalls++
	return nil
}

func (r *fakeOrderRepo) CloseAndSettle(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	r.settleCalls++
	if r.users != nil && order.Profit != nil {
		if user, ok := r.users.users[order.UserID]; ok {
			user.SimulatorBalance += *order.Profit
			user.TotalProfit += *order.Profit
		}
	}
	return nil
}

func (r *fakeOrderRepo) MarkCancelled(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetCounters(_ context.Context, userID uuid.UUID) (domain.AchievementCounters, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[userID], nil
}

func (r *fakeOrderRepo) GetClosedHistorySince(_ context.Context, _ uuid.UUID, _ time.Time, _ int) ([]domain.PnLHistoryEntry, error) {
	return nil, nil
}

func (r *fakeOrderRepo) GetStatistics(_ context.Context) (*domain.TradingStats, error) {
	return &domain.TradingStats{}, nil
}

// fakeUserRepo mirrors the conditional-update semantics of RegisterTrade.
type fakeUserRepo struct {
	mu            sync.Mutex
	users         map[uuid.UUID]*domain.User
	registerCalls int
	xpAwards      map[uuid.UUID][]int
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		users:    make(map[uuid.UUID]*domain.User),
		xpAwards: make(map[uuid.UUID][]int),
	}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *fakeUserRepo) RegisterTrade(_ context.Context, userID uuid.UUID, tradeDate time.Time, maxPerDay int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return domain.ErrOrderNotFound
	}

	sameDay := user.LastTradeDate != nil && domain.TradeDate(*user.LastTradeDate) == domain.TradeDate(tradeDate)
	if maxPerDay > 0 && sameDay && user.DailyTradesCount >= maxPerDay {
		return domain.ErrDailyLimitExceeded
	}

	if sameDay {
		user.DailyTradesCount++
	} else {
		user.DailyTradesCount = 1
	}
	user.LastTradeDate = &tradeDate
	r.registerCalls++
	return nil
}

func (r *fakeUserRepo) AddXP(_ context.Context, userID uuid.UUID, xp int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[userID]; ok {
		user.XP += xp
	}
	r.xpAwards[userID] = append(r.xpAwards[userID], xp)
	return nil
}

// fakeAchievementRepo stores progress per user/achievement pair.
type fakeAchievementRepo struct {
	mu       sync.Mutex
	defs     []*domain.Achievement
	progress map[uuid.UUID]map[uuid.UUID]*domain.UserAchievement
	upserts  int
}

func newFakeAchievementRepo(defs ...*domain.Achievement) *fakeAchievementRepo {
	return &fakeAchievementRepo{
		defs:     defs,
		progress: make(map[uuid.UUID]map[uuid.UUID]*domain.UserAchievement),
	}
}

func (r *fakeAchievementRepo) GetAll(_ context.Context) ([]*domain.Achievement, error) {
	return r.defs, nil
}

func (r *fakeAchievementRepo) GetProgress(_ context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.UserAchievement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[uuid.UUID]*domain.UserAchievement)
	for id, ua := range r.progress[userID] {
		copied := *ua
		out[id] = &copied
	}
	return out, nil
}

func (r *fakeAchievementRepo) UpsertProgress(_ context.Context, ua *domain.UserAchievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress[ua.UserID] == nil {
		r.progress[ua.UserID] = make(map[uuid.UUID]*domain.UserAchievement)
	}
	copied := *ua
	r.progress[ua.UserID][ua.AchievementID] = &copied
	r.upserts++
	return nil
}
