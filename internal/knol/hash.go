package knol

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize concatenates a card's content after cleaning each part.
// It trims whitespace, lowercases, and normalizes line endings for each
// field before joining them.
func Normalize(front, back, context string) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.TrimSpace(p)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return p
	}

	// Joined with newlines so distinct fields can never run together and
	// collide, e.g. "front" + "back" vs "frontback".
	return strings.Join([]string{
		normalizePart(front),
		normalizePart(back),
		normalizePart(context),
	}, "\n")
}

// Hash normalizes the card content and returns its SHA-256 hash as a hex
// string. The hash identifies a card across source re-syncs: unchanged
// content keeps its review history.
func Hash(front, back, context string) string {
	normalized := Normalize(front, back, context)
	hashBytes := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hashBytes)
}
