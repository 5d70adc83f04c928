package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
)

const deckColumns = `id, user_id, name, slug, description, daily_scaler, source_path, created_at, updated_at`

// InsertDeck inserts a new deck. Per-user name/slug uniqueness is enforced
// by the schema.
func (s *Store) InsertDeck(ctx context.Context, deck *domain.Deck) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decks (`+deckColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		deck.ID, deck.UserID, deck.Name, deck.Slug, deck.Description,
		deck.DailyScaler, deck.SourcePath, deck.CreatedAt, deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert deck %s: %w", deck.Slug, err)
	}
	return nil
}

// GetDeckByID retrieves a deck owned by userID. Absent and not-owned both
// come back as ErrNotFound.
func (s *Store) GetDeckByID(ctx context.Context, userID, id uuid.UUID) (*domain.Deck, error) {
	var deck domain.Deck
	err := s.db.GetContext(ctx, &deck, `
		SELECT `+deckColumns+` FROM decks WHERE id = ? AND user_id = ?
	`, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck %s: %w", id, err)
	}
	return &deck, nil
}

// GetDeckBySlug retrieves a deck by its per-user slug.
func (s *Store) GetDeckBySlug(ctx context.Context, userID uuid.UUID, slug string) (*domain.Deck, error) {
	var deck domain.Deck
	err := s.db.GetContext(ctx, &deck, `
		SELECT `+deckColumns+` FROM decks WHERE user_id = ? AND slug = ?
	`, userID, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck %q: %w", slug, err)
	}
	return &deck, nil
}

// ListDecks returns all decks owned by a user, oldest first.
func (s *Store) ListDecks(ctx context.Context, userID uuid.UUID) ([]domain.Deck, error) {
	var decks []domain.Deck
	err := s.db.SelectContext(ctx, &decks, `
		SELECT `+deckColumns+` FROM decks WHERE user_id = ? ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// ListSourcedDecks returns every deck that has a card source attached,
// across all users. Used by the background sync job.
func (s *Store) ListSourcedDecks(ctx context.Context) ([]domain.Deck, error) {
	var decks []domain.Deck
	err := s.db.SelectContext(ctx, &decks, `
		SELECT `+deckColumns+` FROM decks WHERE source_path IS NOT NULL ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sourced decks: %w", err)
	}
	return decks, nil
}
