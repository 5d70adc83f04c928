package review

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/memodeck/internal/domain"
	"github.com/conorfennell/memodeck/internal/fsrs"
	"github.com/conorfennell/memodeck/internal/storage"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "review.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := NewService(store, time.Minute)
	svc.now = func() time.Time { return testTime }
	return svc, store
}

func seedDeck(t *testing.T, store *storage.Store, userID uuid.UUID, name string, scaler float64) *domain.Deck {
	t.Helper()
	deck := &domain.Deck{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Slug:        domain.Slugify(name),
		DailyScaler: scaler,
		CreatedAt:   testTime.Add(-time.Hour),
		UpdatedAt:   testTime.Add(-time.Hour),
	}
	require.NoError(t, store.InsertDeck(context.Background(), deck))
	return deck
}

func seedNewCard(t *testing.T, store *storage.Store, deck *domain.Deck, front string) *domain.Card {
	t.Helper()
	card := &domain.Card{
		ID:        uuid.New(),
		UserID:    deck.UserID,
		DeckID:    deck.ID,
		Front:     front,
		Back:      "back of " + front,
		State:     fsrs.New,
		CreatedAt: testTime.Add(-time.Hour),
		UpdatedAt: testTime.Add(-time.Hour),
	}
	require.NoError(t, store.InsertCard(context.Background(), card))
	return card
}

func seedReviewCard(t *testing.T, store *storage.Store, deck *domain.Deck, due time.Time) *domain.Card {
	t.Helper()
	lastReview := due.Add(-10 * 24 * time.Hour)
	card := &domain.Card{
		ID:            uuid.New(),
		UserID:        deck.UserID,
		DeckID:        deck.ID,
		Front:         "reviewed " + uuid.NewString(),
		Back:          "back",
		State:         fsrs.Review,
		Due:           &due,
		Stability:     10,
		Difficulty:    5,
		ElapsedDays:   10,
		ScheduledDays: 10,
		Reps:          3,
		LastReview:    &lastReview,
		CreatedAt:     testTime.Add(-30 * 24 * time.Hour),
		UpdatedAt:     lastReview,
	}
	require.NoError(t, store.InsertCard(context.Background(), card))
	return card
}

func TestSubmitReviewFirstReview(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Spanish", 1.0)
	card := seedNewCard(t, store, deck, "hola")

	result, err := svc.SubmitReview(ctx, userID, card.ID, fsrs.Good, nil)
	require.NoError(t, err)
	require.False(t, result.LimitReached)
	require.NotNil(t, result.Card)

	assert.NotEqual(t, fsrs.New, result.Card.State)
	assert.Equal(t, 1, result.Card.Reps)
	require.NotNil(t, result.Card.Due)
	assert.True(t, result.Card.Due.After(testTime))
	assert.Greater(t, result.Card.Stability, 0.0)
	assert.Equal(t, 1, result.Progress.NewCardsSeen)
	assert.Equal(t, 0, result.Progress.ReviewsSeen)

	// The log row snapshots the card as it was before the update.
	logs, err := store.ListCardLogs(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, fsrs.New, logs[0].State)
	assert.Equal(t, fsrs.Good, logs[0].Rating)
	assert.Nil(t, logs[0].Due)
}

func TestSubmitReviewLapse(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Lapses", 1.0)
	card := seedReviewCard(t, store, deck, testTime.Add(-time.Hour))

	result, err := svc.SubmitReview(ctx, userID, card.ID, fsrs.Again, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Card)

	assert.Equal(t, fsrs.Relearning, result.Card.State)
	assert.Equal(t, card.Lapses+1, result.Card.Lapses)
	assert.Equal(t, card.Reps+1, result.Card.Reps)
	assert.Equal(t, 1, result.Progress.ReviewsSeen)
	assert.Equal(t, 0, result.Progress.NewCardsSeen)
}

func TestSubmitReviewOtherUsersCard(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	deck := seedDeck(t, store, owner, "Private", 1.0)
	card := seedNewCard(t, store, deck, "secret")

	_, err := svc.SubmitReview(ctx, uuid.New(), card.ID, fsrs.Good, nil)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSubmitReviewInvalidRating(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Ratings", 1.0)
	card := seedNewCard(t, store, deck, "front")

	_, err := svc.SubmitReview(ctx, userID, card.ID, fsrs.Rating(5), nil)
	assert.ErrorIs(t, err, fsrs.ErrInvalidRating)

	_, err = svc.SubmitReview(ctx, userID, card.ID, fsrs.Rating(0), nil)
	assert.ErrorIs(t, err, fsrs.ErrInvalidRating)
}

func TestSubmitReviewNewQuotaExhausted(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	settings := domain.DefaultSettings(userID)
	settings.NewCardsPerDay = 1
	require.NoError(t, store.UpsertSettings(ctx, settings))

	deck := seedDeck(t, store, userID, "Limited", 1.0)
	first := seedNewCard(t, store, deck, "first")
	second := seedNewCard(t, store, deck, "second")

	result, err := svc.SubmitReview(ctx, userID, first.ID, fsrs.Good, nil)
	require.NoError(t, err)
	require.False(t, result.LimitReached)

	result, err = svc.SubmitReview(ctx, userID, second.ID, fsrs.Good, nil)
	require.NoError(t, err)
	assert.True(t, result.LimitReached)
	assert.Nil(t, result.Card)
	assert.Equal(t, 1, result.Progress.NewCardsSeen)
	assert.Equal(t, 1, result.Progress.NewCardsLimit)

	// Nothing was persisted for the rejected review.
	unchanged, err := store.GetCard(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, fsrs.New, unchanged.State)
	logs, err := store.ListCardLogs(ctx, second.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestSubmitReviewQuotaBucketsAreIndependent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	settings := domain.DefaultSettings(userID)
	settings.NewCardsPerDay = 0
	require.NoError(t, store.UpsertSettings(ctx, settings))

	deck := seedDeck(t, store, userID, "Buckets", 1.0)
	newCard := seedNewCard(t, store, deck, "blocked")
	dueCard := seedReviewCard(t, store, deck, testTime.Add(-time.Hour))

	result, err := svc.SubmitReview(ctx, userID, newCard.ID, fsrs.Good, nil)
	require.NoError(t, err)
	assert.True(t, result.LimitReached)

	result, err = svc.SubmitReview(ctx, userID, dueCard.ID, fsrs.Good, nil)
	require.NoError(t, err)
	assert.False(t, result.LimitReached)
	require.NotNil(t, result.Card)
}

func TestSubmitReviewQuotaWindowRolls(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	settings := domain.DefaultSettings(userID)
	settings.NewCardsPerDay = 1
	require.NoError(t, store.UpsertSettings(ctx, settings))

	deck := seedDeck(t, store, userID, "Window", 1.0)
	first := seedNewCard(t, store, deck, "yesterday")
	second := seedNewCard(t, store, deck, "today")

	// A review older than the trailing window must not count.
	yesterday := testTime.Add(-25 * time.Hour)
	result, err := svc.SubmitReview(ctx, userID, first.ID, fsrs.Good, &yesterday)
	require.NoError(t, err)
	require.False(t, result.LimitReached)

	result, err = svc.SubmitReview(ctx, userID, second.ID, fsrs.Good, nil)
	require.NoError(t, err)
	assert.False(t, result.LimitReached)
	assert.Equal(t, 1, result.Progress.NewCardsSeen)
}

func TestRemainingAppliesDeckScaler(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	settings := domain.DefaultSettings(userID)
	settings.NewCardsPerDay = 5
	settings.MaxReviewsPerDay = 3
	require.NoError(t, store.UpsertSettings(ctx, settings))

	deck := seedDeck(t, store, userID, "Scaled", 0.5)

	quota, err := svc.Remaining(ctx, userID, deck, testTime)
	require.NoError(t, err)
	assert.Equal(t, 2, quota.NewRemaining) // floor(5 * 0.5)
	assert.Equal(t, 1, quota.ReviewRemaining)
	assert.Equal(t, 2, quota.Progress.NewCardsLimit)
	assert.Equal(t, 1, quota.Progress.ReviewsLimit)
}

func TestSelectCandidatesEmptyDeck(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Empty", 1.0)

	sel, err := svc.SelectCandidates(ctx, userID, deck, 5, testTime)
	require.NoError(t, err)
	assert.Equal(t, OutcomeEmptyDeck, sel.Outcome)
	assert.Empty(t, sel.Cards)
}

func TestSelectCandidatesAllCaughtUp(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Done", 1.0)
	seedReviewCard(t, store, deck, testTime.Add(48*time.Hour))

	sel, err := svc.SelectCandidates(ctx, userID, deck, 5, testTime)
	require.NoError(t, err)
	assert.Equal(t, OutcomeAllCaughtUp, sel.Outcome)
	assert.Equal(t, 1, sel.TotalCards)
	assert.Empty(t, sel.Cards)
}

func TestSelectCandidatesInterleavesAndProjects(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Mixed", 1.0)

	for i := 0; i < 3; i++ {
		seedNewCard(t, store, deck, uuid.NewString())
	}
	seedReviewCard(t, store, deck, testTime.Add(-2*time.Hour))
	seedReviewCard(t, store, deck, testTime.Add(-time.Hour))

	sel, err := svc.SelectCandidates(ctx, userID, deck, 5, testTime)
	require.NoError(t, err)
	require.Equal(t, OutcomeReady, sel.Outcome)
	require.Len(t, sel.Cards, 5)
	assert.Equal(t, 5, sel.TotalCards)

	// Due cards lead the interleaving.
	assert.Equal(t, fsrs.Review, sel.Cards[0].Card.State)
	assert.Equal(t, fsrs.New, sel.Cards[1].Card.State)

	for _, c := range sel.Cards {
		m := c.Metrics
		assert.False(t, m.Hard.Before(m.Again), "hard before again for card %s", c.Card.ID)
		assert.False(t, m.Good.Before(m.Hard), "good before hard for card %s", c.Card.ID)
		assert.False(t, m.Easy.Before(m.Good), "easy before good for card %s", c.Card.ID)
	}
}

func TestSelectCandidatesSinglePick(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Single", 1.0)
	for i := 0; i < 4; i++ {
		seedNewCard(t, store, deck, uuid.NewString())
	}

	sel, err := svc.SelectCandidates(ctx, userID, deck, 1, testTime)
	require.NoError(t, err)
	require.Equal(t, OutcomeReady, sel.Outcome)
	assert.Len(t, sel.Cards, 1)
}

func TestSelectCandidatesHonorsQuota(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	settings := domain.DefaultSettings(userID)
	settings.NewCardsPerDay = 2
	require.NoError(t, store.UpsertSettings(ctx, settings))

	deck := seedDeck(t, store, userID, "Capped", 1.0)
	for i := 0; i < 5; i++ {
		seedNewCard(t, store, deck, uuid.NewString())
	}

	sel, err := svc.SelectCandidates(ctx, userID, deck, 10, testTime)
	require.NoError(t, err)
	require.Equal(t, OutcomeReady, sel.Outcome)
	assert.Len(t, sel.Cards, 2)
}

func TestListDecksWithStats(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	unstarted := seedDeck(t, store, userID, "Unstarted", 1.0)
	seedNewCard(t, store, unstarted, "a")
	seedNewCard(t, store, unstarted, "b")

	inProgress := seedDeck(t, store, userID, "In Progress", 1.0)
	seedReviewCard(t, store, inProgress, testTime.Add(-time.Hour))
	seedReviewCard(t, store, inProgress, testTime.Add(72*time.Hour))

	seedDeck(t, store, userID, "Empty", 1.0)

	out, err := svc.ListDecksWithStats(ctx, userID, testTime)
	require.NoError(t, err)
	require.Len(t, out, 3)

	byName := make(map[string]DeckStats, len(out))
	for _, d := range out {
		byName[d.Deck.Name] = d.Stats
	}

	assert.Equal(t, DeckStats{NewCards: 2, DueCards: 0, TotalCards: 2, RemainingReviews: 2}, byName["Unstarted"])
	assert.Equal(t, DeckStats{NewCards: 0, DueCards: 1, TotalCards: 2, RemainingReviews: 1}, byName["In Progress"])
	assert.Equal(t, DeckStats{}, byName["Empty"])
}

func TestListDecksWithStatsCountsRecentReviews(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	settings := domain.DefaultSettings(userID)
	settings.NewCardsPerDay = 1
	require.NoError(t, store.UpsertSettings(ctx, settings))

	deck := seedDeck(t, store, userID, "Counting", 1.0)
	first := seedNewCard(t, store, deck, "first")
	seedNewCard(t, store, deck, "second")

	_, err := svc.SubmitReview(ctx, userID, first.ID, fsrs.Good, nil)
	require.NoError(t, err)

	out, err := svc.ListDecksWithStats(ctx, userID, testTime)
	require.NoError(t, err)
	require.Len(t, out, 1)

	// One new card left, but today's new-card budget is spent.
	assert.Equal(t, 1, out[0].Stats.NewCards)
	assert.Equal(t, 0, out[0].Stats.RemainingReviews)
}

func TestSettingsDefaultsAndInvalidate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	settings, err := svc.Settings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, settings.NewCardsPerDay)
	assert.Equal(t, 200, settings.MaxReviewsPerDay)

	// A write that bypasses the service is invisible until invalidation.
	updated := domain.DefaultSettings(userID)
	updated.NewCardsPerDay = 5
	require.NoError(t, store.UpsertSettings(ctx, updated))

	settings, err = svc.Settings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, settings.NewCardsPerDay)

	svc.settings.Invalidate(userID)
	settings, err = svc.Settings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, settings.NewCardsPerDay)
}

func TestUpdateSettingsInvalidatesCache(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	before, err := svc.Settings(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 20, before.NewCardsPerDay)

	updated := domain.DefaultSettings(userID)
	updated.NewCardsPerDay = 7
	require.NoError(t, svc.UpdateSettings(ctx, updated))

	after, err := svc.Settings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, after.NewCardsPerDay)
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	negative := domain.DefaultSettings(userID)
	negative.NewCardsPerDay = -1
	assert.ErrorIs(t, svc.UpdateSettings(ctx, negative), domain.ErrValidation)

	badParams := domain.DefaultSettings(userID)
	badParams.Params.RequestRetention = 2.0
	assert.Error(t, svc.UpdateSettings(ctx, badParams))
}

func TestCreateAndGetDeck(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	deck, err := svc.CreateDeck(ctx, userID, "My First Deck!", "desc", 1.0, nil)
	require.NoError(t, err)
	assert.Equal(t, "my-first-deck", deck.Slug)

	bySlug, err := svc.GetDeck(ctx, userID, "my-first-deck")
	require.NoError(t, err)
	assert.Equal(t, deck.ID, bySlug.ID)

	byID, err := svc.GetDeck(ctx, userID, deck.ID.String())
	require.NoError(t, err)
	assert.Equal(t, deck.ID, byID.ID)

	_, err = svc.GetDeck(ctx, uuid.New(), "my-first-deck")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateDeckRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateDeck(ctx, userID, "Name", "", 0, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.CreateDeck(ctx, userID, "!!!", "", 1.0, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEditCardKeepsMemoryState(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "Edits", 1.0)
	card := seedReviewCard(t, store, deck, testTime.Add(24*time.Hour))

	edited, err := svc.EditCard(ctx, userID, card.ID, "new front", "new back")
	require.NoError(t, err)
	assert.Equal(t, "new front", edited.Front)
	assert.Equal(t, "new back", edited.Back)
	assert.Equal(t, card.State, edited.State)
	assert.Equal(t, card.Reps, edited.Reps)
	assert.InDelta(t, card.Stability, edited.Stability, 1e-9)

	_, err = svc.EditCard(ctx, uuid.New(), card.ID, "x", "y")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCardLogsOwnership(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	deck := seedDeck(t, store, userID, "History", 1.0)
	card := seedNewCard(t, store, deck, "front")

	_, err := svc.SubmitReview(ctx, userID, card.ID, fsrs.Good, nil)
	require.NoError(t, err)

	logs, err := svc.CardLogs(ctx, userID, card.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = svc.CardLogs(ctx, uuid.New(), card.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
