package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
)

const cardColumns = `id, user_id, deck_id, front, back, content_hash, state, due,
	stability, difficulty, elapsed_days, scheduled_days, reps, lapses,
	last_review, created_at, updated_at`

// InsertCard inserts a new card.
func (s *Store) InsertCard(ctx context.Context, card *domain.Card) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID, card.UserID, card.DeckID, card.Front, card.Back,
		card.ContentHash, card.State, card.Due,
		card.Stability, card.Difficulty, card.ElapsedDays, card.ScheduledDays,
		card.Reps, card.Lapses, card.LastReview, card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

// GetCard retrieves a card by id without an ownership filter; callers
// decide whether a mismatched owner is Forbidden or NotFound.
func (s *Store) GetCard(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	var card domain.Card
	err := s.db.GetContext(ctx, &card, `
		SELECT `+cardColumns+` FROM cards WHERE id = ?
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}
	return &card, nil
}

// UpdateCardContent edits front/back only. Memory fields are never
// touched outside a review submission.
func (s *Store) UpdateCardContent(ctx context.Context, id, userID uuid.UUID, front, back string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET front = ?, back = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, front, back, time.Now().UTC(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to update card content %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListNewCards returns up to limit New cards of a deck in creation order.
func (s *Store) ListNewCards(ctx context.Context, deckID, userID uuid.UUID, limit int) ([]domain.Card, error) {
	var cards []domain.Card
	err := s.db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+` FROM cards
		WHERE deck_id = ? AND user_id = ? AND state = 'New'
		ORDER BY created_at ASC, id ASC
		LIMIT ?
	`, deckID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list new cards: %w", err)
	}
	return cards, nil
}

// ListDueCards returns up to limit non-New cards due at or before asOf,
// most overdue first.
func (s *Store) ListDueCards(ctx context.Context, deckID, userID uuid.UUID, asOf time.Time, limit int) ([]domain.Card, error) {
	var cards []domain.Card
	err := s.db.SelectContext(ctx, &cards, `
		SELECT `+cardColumns+` FROM cards
		WHERE deck_id = ? AND user_id = ? AND state != 'New' AND due <= ?
		ORDER BY due ASC, id ASC
		LIMIT ?
	`, deckID, userID, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}
	return cards, nil
}

// CountDeckCards returns the total number of cards in a deck.
func (s *Store) CountDeckCards(ctx context.Context, deckID uuid.UUID) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM cards WHERE deck_id = ?`, deckID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards for deck %s: %w", deckID, err)
	}
	return count, nil
}

// ListDeckCardHashes returns content hash -> card id for every card in a
// deck. Used by source reconciliation.
func (s *Store) ListDeckCardHashes(ctx context.Context, deckID uuid.UUID) (map[string]uuid.UUID, error) {
	rows, err := s.db.QueryxContext(ctx, `
		SELECT id, content_hash FROM cards WHERE deck_id = ?
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card hashes for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	hashes := make(map[string]uuid.UUID)
	for rows.Next() {
		var id uuid.UUID
		var hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan card hash row: %w", err)
		}
		hashes[hash] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card hash rows: %w", err)
	}
	return hashes, nil
}

// DeleteUnreviewedCard removes a card only while it is still New, so the
// append-only review history never loses its referent.
func (s *Store) DeleteUnreviewedCard(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ? AND state = 'New'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete card %s: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// SaveReview persists the reviewed card and appends its log row in a
// single transaction: both take effect or neither does.
func (s *Store) SaveReview(ctx context.Context, card *domain.Card, log *domain.ReviewLog) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE cards
		SET state = ?, due = ?, stability = ?, difficulty = ?,
		    elapsed_days = ?, scheduled_days = ?, reps = ?, lapses = ?,
		    last_review = ?, updated_at = ?
		WHERE id = ?
	`,
		card.State, card.Due, card.Stability, card.Difficulty,
		card.ElapsedDays, card.ScheduledDays, card.Reps, card.Lapses,
		card.LastReview, card.UpdatedAt, card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %s: %w", card.ID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_logs (
			id, card_id, user_id, rating, state, due, stability, difficulty,
			elapsed_days, last_elapsed_days, scheduled_days, review
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		log.ID, log.CardID, log.UserID, log.Rating, log.State, log.Due,
		log.Stability, log.Difficulty, log.ElapsedDays, log.LastElapsedDays,
		log.ScheduledDays, log.Review,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review log for card %s: %w", card.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review transaction: %w", err)
	}
	return nil
}
