package repository

import (
	"context"
	"fmt"

	"github.com/summraize/summraize-backend/internal/models"
)

// ListTierUsage возвращает месячные счётчики символов по всем уровням
// качества голоса.
func (s *Storage) ListTierUsage(ctx context.Context) ([]*models.TierUsage, error) {
	const op = "storage.ListTierUsage"

	rows, err := s.DB.QueryContext(ctx, `
		SELECT tier, chars_used, reset_month
		FROM voice_tier_usage`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.TierUsage
	for rows.Next() {
		usage := &models.TierUsage{}
		if err := rows.Scan(&usage.Tier, &usage.CharsUsed, &usage.ResetMonth); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ResetTierUsage обнуляет все счётчики и проставляет месяц сброса.
func (s *Storage) ResetTierUsage(ctx context.Context, month string) error {
	const op = "storage.ResetTierUsage"

	_, err := s.DB.ExecContext(ctx, `
		UPDATE voice_tier_usage
		SET chars_used = 0, reset_month = $1`, month)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AddTierUsage атомарно добавляет синтезированные символы к счётчику уровня.
func (s *Storage) AddTierUsage(ctx context.Context, tier string, chars int64) error {
	const op = "storage.AddTierUsage"

	_, err := s.DB.ExecContext(ctx, `
		UPDATE voice_tier_usage
		SET chars_used = chars_used + $1
		WHERE tier = $2`, chars, tier)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
