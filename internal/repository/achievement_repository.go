package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradeacademy/internal/domain"
)

// AchievementRepositoryImpl implements the AchievementRepository interface
type AchievementRepositoryImpl struct {
	db *pgxpool.Pool
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(db *pgxpool.Pool) domain.AchievementRepository {
	return &AchievementRepositoryImpl{db: db}
}

// GetAll retrieves all achievement definitions
func (r *AchievementRepositoryImpl) GetAll(ctx context.Context) ([]*domain.Achievement, error) {
	query := `
		SELECT id, code, name, description, metric, requirement, xp_reward
		FROM achievements
		ORDER BY code ASC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query achievements: %w", err)
	}
	defer rows.Close()

	var achievements []*domain.Achievement
	for rows.Next() {
		a := &domain.Achievement{}
		err := rows.Scan(
			&a.ID,
			&a.Code,
			&a.Name,
			&a.Description,
			&a.Metric,
			&a.Requirement,
			&a.XPReward,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return achievements, nil
}

// GetProgress retrieves a user's stored progress keyed by achievement
func (r *AchievementRepositoryImpl) GetProgress(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]*domain.UserAchievement, error) {
	query := `
		SELECT user_id, achievement_id, progress, unlocked_at, updated_at
		FROM user_achievements
		WHERE user_id = $1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user achievements: %w", err)
	}
	defer rows.Close()

	progress := make(map[uuid.UUID]*domain.UserAchievement)
	for rows.Next() {
		ua := &domain.UserAchievement{}
		err := rows.Scan(
			&ua.UserID,
			&ua.AchievementID,
			&ua.Progress,
			&ua.UnlockedAt,
			&ua.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user achievement: %w", err)
		}
		progress[ua.AchievementID] = ua
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user achievements: %w", err)
	}

	return progress, nil
}

// UpsertProgress stores a progress value for one user/achievement pair.
// GREATEST keeps stored progress monotonic even under concurrent
// recompute passes.
func (r *AchievementRepositoryImpl) UpsertProgress(ctx context.Context, ua *domain.UserAchievement) error {
	query := `
		INSERT INTO user_achievements (user_id, achievement_id, progress, unlocked_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, achievement_id) DO UPDATE
		SET progress = GREATEST(user_achievements.progress, EXCLUDED.progress),
		    unlocked_at = COALESCE(user_achievements.unlocked_at, EXCLUDED.unlocked_at),
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		ua.UserID,
		ua.AchievementID,
		ua.Progress,
		ua.UnlockedAt,
		ua.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert achievement progress: %w", err)
	}

	return nil
}
