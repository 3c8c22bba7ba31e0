package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"tradeacademy/internal/domain"
)

// AchievementService recomputes achievement progress from the user's
// current aggregate counters. The pass is idempotent: progress never
// regresses and each XP reward is granted once, so re-running it after
// any admission, close, or cancel event is safe.
type AchievementService struct {
	orderRepo       domain.OrderRepository
	userRepo        domain.UserRepository
	achievementRepo domain.AchievementRepository
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(
	orderRepo domain.OrderRepository,
	userRepo domain.UserRepository,
	achievementRepo domain.AchievementRepository,
) *AchievementService {
	return &AchievementService{
		orderRepo:       orderRepo,
		userRepo:        userRepo,
		achievementRepo: achievementRepo,
	}
}

// Recompute refreshes progress for every achievement definition against
// the user's counters.
func (s *AchievementService) Recompute(ctx context.Context, userID uuid.UUID) error {
	counters, err := s.orderRepo.GetCounters(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read counters: %w", err)
	}

	definitions, err := s.achievementRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load achievement definitions: %w", err)
	}

	stored, err := s.achievementRepo.GetProgress(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load achievement progress: %w", err)
	}

	now := time.Now()
	for _, def := range definitions {
		progress := def.ProgressFor(counters.MetricValue(def.Metric))

		prev := stored[def.ID]
		unlockedBefore := prev != nil && prev.UnlockedAt != nil
		if prev != nil && progress < prev.Progress {
			// Stored progress never regresses.
			progress = prev.Progress
		}
		crossed := !unlockedBefore && progress >= 100

		// Nothing changed and nothing to unlock; skip the write.
		if prev != nil && progress == prev.Progress && !crossed {
			continue
		}

		ua := &domain.UserAchievement{
			UserID:        userID,
			AchievementID: def.ID,
			Progress:      progress,
			UpdatedAt:     now,
		}
		if unlockedBefore {
			ua.UnlockedAt = prev.UnlockedAt
		} else if crossed {
			ua.UnlockedAt = &now
		}

		if err := s.achievementRepo.UpsertProgress(ctx, ua); err != nil {
			log.Printf("ERROR: Failed to store progress for achievement %s: %v", def.Code, err)
			continue
		}

		if crossed {
			if err := s.userRepo.AddXP(ctx, userID, def.XPReward); err != nil {
				log.Printf("ERROR: Failed to award XP for achievement %s: %v", def.Code, err)
				continue
			}
			log.Printf("[OK] Achievement unlocked: %s (+%d XP) for user %s", def.Code, def.XPReward, userID)
		}
	}

	return nil
}
