package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck groups cards for one user. Name and slug are unique per user.
// DailyScaler multiplies the user's global daily limits for this deck.
type Deck struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"userId"`
	Name        string     `db:"name" json:"name"`
	Slug        string     `db:"slug" json:"slug"`
	Description string     `db:"description" json:"description"`
	DailyScaler float64    `db:"daily_scaler" json:"dailyScaler"`
	SourcePath  *string    `db:"source_path" json:"sourcePath,omitempty"` // local dir or git URL of markdown cards
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a deck name into its URL slug.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
