package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
	"github.com/conorfennell/memodeck/internal/storage"
)

// Service orchestrates review scheduling: quota tracking, candidate
// selection, review submission and deck statistics. It holds no mutable
// card state; the store is the sole source of truth.
type Service struct {
	store    *storage.Store
	settings *SettingsCache
	now      func() time.Time
}

// NewService creates a review service. settingsTTL bounds how long a
// cached per-user parameter object may outlive its settings row.
func NewService(store *storage.Store, settingsTTL time.Duration) *Service {
	return &Service{
		store:    store,
		settings: NewSettingsCache(store, settingsTTL),
		now:      time.Now,
	}
}

// Settings returns the user's effective settings (stored or defaults).
func (s *Service) Settings(ctx context.Context, userID uuid.UUID) (domain.UserSettings, error) {
	return s.settings.Get(ctx, userID)
}

// UpdateSettings validates and persists a user's settings, then
// synchronously invalidates the cached copy.
func (s *Service) UpdateSettings(ctx context.Context, settings domain.UserSettings) error {
	if err := settings.Params.Validate(); err != nil {
		return err
	}
	if settings.NewCardsPerDay < 0 || settings.MaxReviewsPerDay < 0 {
		return fmt.Errorf("%w: daily limits must not be negative", domain.ErrValidation)
	}
	if err := s.store.UpsertSettings(ctx, settings); err != nil {
		return err
	}
	s.settings.Invalidate(settings.UserID)
	return nil
}

// CreateDeck creates a deck for the user. The slug derives from the name.
func (s *Service) CreateDeck(ctx context.Context, userID uuid.UUID, name, description string, dailyScaler float64, sourcePath *string) (*domain.Deck, error) {
	if dailyScaler <= 0 {
		return nil, fmt.Errorf("%w: daily scaler must be positive", domain.ErrValidation)
	}
	slug := domain.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("%w: deck name produces an empty slug", domain.ErrValidation)
	}
	now := s.now().UTC()
	deck := &domain.Deck{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Slug:        slug,
		Description: description,
		DailyScaler: dailyScaler,
		SourcePath:  sourcePath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertDeck(ctx, deck); err != nil {
		return nil, err
	}
	return deck, nil
}

// GetDeck resolves a deck by slug or id, always scoped to the owner.
func (s *Service) GetDeck(ctx context.Context, userID uuid.UUID, slugOrID string) (*domain.Deck, error) {
	if id, err := uuid.Parse(slugOrID); err == nil {
		return s.store.GetDeckByID(ctx, userID, id)
	}
	return s.store.GetDeckBySlug(ctx, userID, slugOrID)
}

// EditCard updates a card's front/back content. Memory fields are out of
// reach here by construction.
func (s *Service) EditCard(ctx context.Context, userID, cardID uuid.UUID, front, back string) (*domain.Card, error) {
	if err := s.store.UpdateCardContent(ctx, cardID, userID, front, back); err != nil {
		return nil, err
	}
	return s.store.GetCard(ctx, cardID)
}

// CardLogs returns a card's review history after an ownership check.
func (s *Service) CardLogs(ctx context.Context, userID, cardID uuid.UUID) ([]domain.ReviewLog, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return s.store.ListCardLogs(ctx, cardID)
}
