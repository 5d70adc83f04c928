package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
)

// ReviewCounts partitions recent reviews by the state snapshotted at
// review time: New rows consume the new-card quota, everything else the
// review quota.
type ReviewCounts struct {
	NewSeen    int `db:"new_seen"`
	ReviewSeen int `db:"review_seen"`
}

// CountReviewsSince counts a user's log rows for one deck with
// review >= since, partitioned by snapshot state. One aggregate query.
func (s *Store) CountReviewsSince(ctx context.Context, userID, deckID uuid.UUID, since time.Time) (ReviewCounts, error) {
	var counts ReviewCounts
	err := s.db.GetContext(ctx, &counts, `
		SELECT
			COALESCE(SUM(CASE WHEN l.state = 'New' THEN 1 ELSE 0 END), 0) AS new_seen,
			COALESCE(SUM(CASE WHEN l.state != 'New' THEN 1 ELSE 0 END), 0) AS review_seen
		FROM review_logs l
		JOIN cards c ON c.id = l.card_id
		WHERE l.user_id = ? AND c.deck_id = ? AND l.review >= ?
	`, userID, deckID, since)
	if err != nil {
		return ReviewCounts{}, fmt.Errorf("failed to count reviews since %v: %w", since, err)
	}
	return counts, nil
}

// ListCardLogs returns a card's review history, oldest first.
func (s *Store) ListCardLogs(ctx context.Context, cardID uuid.UUID) ([]domain.ReviewLog, error) {
	var logs []domain.ReviewLog
	err := s.db.SelectContext(ctx, &logs, `
		SELECT id, card_id, user_id, rating, state, due, stability, difficulty,
		       elapsed_days, last_elapsed_days, scheduled_days, review
		FROM review_logs
		WHERE card_id = ?
		ORDER BY review ASC, id ASC
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs for card %s: %w", cardID, err)
	}
	return logs, nil
}
