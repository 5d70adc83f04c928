package knol

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	expected := "what is fsrs?\na spaced repetition scheduler.\nmemory science"
	normalized := Normalize("  What is FSRS? \r\n", "A spaced repetition scheduler.", "Memory Science")

	if normalized != expected {
		t.Errorf("Expected normalized string to be '%s', but got '%s'", expected, normalized)
	}
}

func TestHash(t *testing.T) {
	t.Run("generates correct hash", func(t *testing.T) {
		// Hash for "q\na\nc"
		expectedHash := "eb2456c1ee4f36305069dd0f63a30e92d5443129f5e8fd9a5ec490fbc4d4d8a2"
		hash := Hash("Q", "A", "C")

		if hash != expectedHash {
			t.Errorf("Expected hash '%s', but got '%s'", expectedHash, hash)
		}
	})

	t.Run("hash is deterministic", func(t *testing.T) {
		if Hash("Test", "", "") != Hash("Test", "", "") {
			t.Error("Expected hashes for identical content to be the same")
		}
	})

	t.Run("normalization produces same hash", func(t *testing.T) {
		h1 := Hash("  what is go? ", "A programming language.", "")
		h2 := Hash("What Is Go?", "A programming language.", "")
		if h1 != h2 {
			t.Error("Expected hashes to be the same after normalization, but they were different.")
		}
	})

	t.Run("different content has different hashes", func(t *testing.T) {
		if Hash("Card 1", "", "") == Hash("Card 2", "", "") {
			t.Error("Expected hashes for different content to be different")
		}
	})

	t.Run("field boundaries are preserved", func(t *testing.T) {
		if Hash("front", "back", "") == Hash("frontback", "", "") {
			t.Error("Expected content split across fields to hash differently")
		}
	})
}
