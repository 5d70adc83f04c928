package storage

const schema = `
-- Decks group cards per user. Name and slug are unique within a user.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    daily_scaler REAL NOT NULL DEFAULT 1.0,
    source_path TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    UNIQUE(user_id, name),
    UNIQUE(user_id, slug)
);

-- Cards carry their full memory state inline. due is NULL exactly while
-- state = 'New'.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    deck_id TEXT NOT NULL,
    front TEXT NOT NULL,
    back TEXT NOT NULL,
    content_hash TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT 'New',
    due DATETIME,
    stability REAL NOT NULL DEFAULT 0,
    difficulty REAL NOT NULL DEFAULT 0,
    elapsed_days REAL NOT NULL DEFAULT 0,
    scheduled_days REAL NOT NULL DEFAULT 0,
    reps INTEGER NOT NULL DEFAULT 0,
    lapses INTEGER NOT NULL DEFAULT 0,
    last_review DATETIME,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,

    FOREIGN KEY(deck_id) REFERENCES decks(id)
);

CREATE INDEX IF NOT EXISTS idx_cards_deck_state ON cards(deck_id, state);
CREATE INDEX IF NOT EXISTS idx_cards_deck_due ON cards(deck_id, due);

-- Append-only review history. Memory columns snapshot the card as it was
-- immediately before the update that produced the row.
CREATE TABLE IF NOT EXISTS review_logs (
    id TEXT PRIMARY KEY,
    card_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    rating INTEGER NOT NULL,
    state TEXT NOT NULL,
    due DATETIME,
    stability REAL NOT NULL,
    difficulty REAL NOT NULL,
    elapsed_days REAL NOT NULL,
    last_elapsed_days REAL NOT NULL,
    scheduled_days REAL NOT NULL,
    review DATETIME NOT NULL,

    FOREIGN KEY(card_id) REFERENCES cards(id)
);

CREATE INDEX IF NOT EXISTS idx_logs_user_review ON review_logs(user_id, review);
CREATE INDEX IF NOT EXISTS idx_logs_card ON review_logs(card_id);

-- Per-user daily limits and memory model parameters. weights holds the
-- JSON-encoded weight vector.
CREATE TABLE IF NOT EXISTS user_settings (
    user_id TEXT PRIMARY KEY,
    new_cards_per_day INTEGER NOT NULL,
    max_reviews_per_day INTEGER NOT NULL,
    request_retention REAL NOT NULL,
    maximum_interval INTEGER NOT NULL,
    weights TEXT NOT NULL,
    enable_fuzz INTEGER NOT NULL,
    enable_short_term INTEGER NOT NULL,
    updated_at DATETIME NOT NULL
);
`
