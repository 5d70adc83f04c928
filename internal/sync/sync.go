package sync

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/memodeck/internal/domain"
	"github.com/conorfennell/memodeck/internal/fsrs"
	"github.com/conorfennell/memodeck/internal/gitsource"
	"github.com/conorfennell/memodeck/internal/knol"
	"github.com/conorfennell/memodeck/internal/parser"
	"github.com/conorfennell/memodeck/internal/storage"
)

// Syncer reconciles decks against their attached markdown card sources.
type Syncer struct {
	store    *storage.Store
	reposDir string
}

// New creates a syncer that checks git sources out under reposDir.
func New(store *storage.Store, reposDir string) *Syncer {
	return &Syncer{store: store, reposDir: reposDir}
}

// RunAll syncs every deck with a source attached. Per-deck failures are
// logged and skipped; one broken source does not stop the rest.
func (s *Syncer) RunAll(ctx context.Context) {
	slog.Info("starting sync for all sourced decks")
	decks, err := s.store.ListSourcedDecks(ctx)
	if err != nil {
		slog.Error("failed to list sourced decks", "error", err)
		return
	}
	if len(decks) == 0 {
		slog.Info("no deck sources configured")
		return
	}

	if err := os.MkdirAll(s.reposDir, os.ModePerm); err != nil {
		slog.Error("failed to create repos directory", "error", err)
		return
	}

	for i := range decks {
		deck := &decks[i]
		if err := s.SyncDeck(ctx, deck); err != nil {
			slog.Error("deck sync failed", "deck", deck.Slug, "error", err)
		}
	}
	slog.Info("sync complete")
}

// SyncDeck reconciles one deck against its source: new content hashes are
// inserted as New cards, orphaned unreviewed cards are removed. Cards
// with review history are always retained, their log rows are append-only.
func (s *Syncer) SyncDeck(ctx context.Context, deck *domain.Deck) error {
	if deck.SourcePath == nil {
		return fmt.Errorf("deck %s has no source attached", deck.Slug)
	}
	source := *deck.SourcePath

	dir := source
	if gitsource.IsGitURL(source) {
		localPath, err := gitsource.LocalPath(s.reposDir, source)
		if err != nil {
			return fmt.Errorf("resolving local path for %s: %w", source, err)
		}
		if err := gitsource.Sync(source, localPath); err != nil {
			return fmt.Errorf("syncing git source %s: %w", source, err)
		}
		dir = localPath
	}

	parsed, parseErrs := parseDir(dir)

	existing, err := s.store.ListDeckCardHashes(ctx, deck.ID)
	if err != nil {
		return fmt.Errorf("listing card hashes for deck %s: %w", deck.Slug, err)
	}

	var inserted int
	found := make(map[string]bool, len(parsed))
	for _, pc := range parsed {
		hash := knol.Hash(pc.Front, pc.Back, pc.Context)
		if found[hash] {
			continue // duplicate content within the source
		}
		found[hash] = true

		if _, ok := existing[hash]; ok {
			continue
		}
		now := time.Now().UTC()
		card := &domain.Card{
			ID:          uuid.New(),
			UserID:      deck.UserID,
			DeckID:      deck.ID,
			Front:       pc.Front,
			Back:        pc.Back,
			ContentHash: hash,
			State:       fsrs.New,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.store.InsertCard(ctx, card); err != nil {
			parseErrs = append(parseErrs, fmt.Errorf("inserting card %s: %w", hash, err))
			continue
		}
		inserted++
	}

	var orphaned int
	for hash, cardID := range existing {
		if found[hash] {
			continue
		}
		deleted, err := s.store.DeleteUnreviewedCard(ctx, cardID)
		if err != nil {
			slog.Warn("failed to delete orphaned card", "card", cardID, "error", err)
			continue
		}
		if deleted {
			orphaned++
		}
	}

	slog.Info("deck reconciled",
		"deck", deck.Slug,
		"parsed", len(parsed),
		"inserted", inserted,
		"orphaned_deleted", orphaned,
		"errors", len(parseErrs),
	)
	return nil
}

// parseDir walks a directory and parses every markdown file in it.
func parseDir(dir string) ([]parser.Card, []error) {
	var cards []parser.Card
	var errs []error
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			fileCards, parseErr := parser.ParseFile(path)
			if parseErr != nil {
				errs = append(errs, fmt.Errorf("parsing %s: %w", path, parseErr))
			}
			cards = append(cards, fileCards...)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, fmt.Errorf("walking %s: %w", dir, walkErr))
	}
	return cards, errs
}
