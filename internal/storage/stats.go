package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// DeckCounts is the per-deck aggregate the stats queries produce.
type DeckCounts struct {
	Total         int
	New           int
	Due           int
	NewSeen24h    int
	ReviewSeen24h int
}

// BatchDeckStats computes card counts and 24h review counts for every
// requested deck in exactly two aggregate queries, regardless of how many
// decks are asked for. The per-deck numbers are identical to what the
// single-deck queries would return.
func (s *Store) BatchDeckStats(ctx context.Context, userID uuid.UUID, deckIDs []uuid.UUID, asOf time.Time) (map[uuid.UUID]DeckCounts, error) {
	stats := make(map[uuid.UUID]DeckCounts, len(deckIDs))
	if len(deckIDs) == 0 {
		return stats, nil
	}
	for _, id := range deckIDs {
		stats[id] = DeckCounts{}
	}

	query, args, err := sqlx.In(`
		SELECT deck_id,
			COUNT(*) AS total,
			SUM(CASE WHEN state = 'New' THEN 1 ELSE 0 END) AS new_count,
			SUM(CASE WHEN state != 'New' AND due <= ? THEN 1 ELSE 0 END) AS due_count
		FROM cards
		WHERE user_id = ? AND deck_id IN (?)
		GROUP BY deck_id
	`, asOf, userID, deckIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build card stats query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query card stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var deckID uuid.UUID
		var total, newCount, dueCount int
		if err := rows.Scan(&deckID, &total, &newCount, &dueCount); err != nil {
			return nil, fmt.Errorf("failed to scan card stats row: %w", err)
		}
		c := stats[deckID]
		c.Total, c.New, c.Due = total, newCount, dueCount
		stats[deckID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card stats rows: %w", err)
	}

	since := asOf.Add(-24 * time.Hour)
	query, args, err = sqlx.In(`
		SELECT c.deck_id,
			SUM(CASE WHEN l.state = 'New' THEN 1 ELSE 0 END) AS new_seen,
			SUM(CASE WHEN l.state != 'New' THEN 1 ELSE 0 END) AS review_seen
		FROM review_logs l
		JOIN cards c ON c.id = l.card_id
		WHERE l.user_id = ? AND l.review >= ? AND c.deck_id IN (?)
		GROUP BY c.deck_id
	`, userID, since, deckIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build review stats query: %w", err)
	}

	rows, err = s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var deckID uuid.UUID
		var newSeen, reviewSeen int
		if err := rows.Scan(&deckID, &newSeen, &reviewSeen); err != nil {
			return nil, fmt.Errorf("failed to scan review stats row: %w", err)
		}
		c := stats[deckID]
		c.NewSeen24h, c.ReviewSeen24h = newSeen, reviewSeen
		stats[deckID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review stats rows: %w", err)
	}

	return stats, nil
}
