package infra

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"tradeacademy/internal/usecase"
)

// Scheduler owns the evaluation cadence. The trigger evaluator itself
// has no clock; this cron job feeds it a fresh snapshot on a fixed
// server-side interval.
type Scheduler struct {
	cron           *cron.Cron
	tradingService *usecase.TradingService
	intervalSecs   int
}

// NewScheduler creates a new scheduler running the evaluation pass
// every intervalSecs seconds.
func NewScheduler(tradingService *usecase.TradingService, intervalSecs int) *Scheduler {
	if intervalSecs <= 0 {
		intervalSecs = 30
	}
	return &Scheduler{
		cron:           cron.New(cron.WithSeconds()),
		tradingService: tradingService,
		intervalSecs:   intervalSecs,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	spec := fmt.Sprintf("*/%d * * * * *", s.intervalSecs)

	_, err := s.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if err := s.tradingService.EvaluateAllUsers(ctx); err != nil {
			log.Printf("ERROR: Scheduled evaluation failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[OK] Evaluation scheduler started (every %ds)", s.intervalSecs)

	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	s.cron.Stop()
	log.Println("[OK] Scheduler stopped")
}

// RunNow runs one evaluation pass immediately, outside the schedule.
func (s *Scheduler) RunNow() error {
	return s.tradingService.EvaluateAllUsers(context.Background())
}
