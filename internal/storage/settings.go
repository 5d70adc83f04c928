package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
)

// GetSettings retrieves a user's stored settings. ErrNotFound means the
// user has never written any; callers fall back to defaults.
func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (domain.UserSettings, error) {
	var row struct {
		NewCardsPerDay   int     `db:"new_cards_per_day"`
		MaxReviewsPerDay int     `db:"max_reviews_per_day"`
		RequestRetention float64 `db:"request_retention"`
		MaximumInterval  int     `db:"maximum_interval"`
		Weights          string  `db:"weights"`
		EnableFuzz       bool    `db:"enable_fuzz"`
		EnableShortTerm  bool    `db:"enable_short_term"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT new_cards_per_day, max_reviews_per_day, request_retention,
		       maximum_interval, weights, enable_fuzz, enable_short_term
		FROM user_settings WHERE user_id = ?
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserSettings{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserSettings{}, fmt.Errorf("failed to get settings for user %s: %w", userID, err)
	}

	settings := domain.UserSettings{
		UserID:           userID,
		NewCardsPerDay:   row.NewCardsPerDay,
		MaxReviewsPerDay: row.MaxReviewsPerDay,
	}
	settings.Params.RequestRetention = row.RequestRetention
	settings.Params.MaximumInterval = row.MaximumInterval
	settings.Params.EnableFuzz = row.EnableFuzz
	settings.Params.EnableShortTerm = row.EnableShortTerm
	if err := json.Unmarshal([]byte(row.Weights), &settings.Params.Weights); err != nil {
		return domain.UserSettings{}, fmt.Errorf("failed to decode weights for user %s: %w", userID, err)
	}
	return settings, nil
}

// UpsertSettings writes a user's settings, replacing any previous row.
func (s *Store) UpsertSettings(ctx context.Context, settings domain.UserSettings) error {
	weights, err := json.Marshal(settings.Params.Weights)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_settings (
			user_id, new_cards_per_day, max_reviews_per_day, request_retention,
			maximum_interval, weights, enable_fuzz, enable_short_term, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			new_cards_per_day = excluded.new_cards_per_day,
			max_reviews_per_day = excluded.max_reviews_per_day,
			request_retention = excluded.request_retention,
			maximum_interval = excluded.maximum_interval,
			weights = excluded.weights,
			enable_fuzz = excluded.enable_fuzz,
			enable_short_term = excluded.enable_short_term,
			updated_at = excluded.updated_at
	`,
		settings.UserID, settings.NewCardsPerDay, settings.MaxReviewsPerDay,
		settings.Params.RequestRetention, settings.Params.MaximumInterval,
		string(weights), settings.Params.EnableFuzz, settings.Params.EnableShortTerm,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert settings for user %s: %w", settings.UserID, err)
	}
	return nil
}
