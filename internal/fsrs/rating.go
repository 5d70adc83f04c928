package fsrs

import "fmt"

// Rating is the user's assessment of recall quality for a single review.
// It is serialized as its numeric value (1..4) on the wire.
type Rating int

const (
	Again Rating = 1 // Complete failure to recall.
	Hard  Rating = 2 // Recalled with significant difficulty.
	Good  Rating = 3 // Recalled with some effort.
	Easy  Rating = 4 // Recalled effortlessly.
)

var ratingNames = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}

// IsValid reports whether r is a valid rating (Again through Easy).
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// String returns the name of the rating ("Again", "Hard", "Good", "Easy").
// For invalid values it returns "Rating(n)".
func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// Ratings lists all valid ratings in ascending order.
func Ratings() [4]Rating {
	return [4]Rating{Again, Hard, Good, Easy}
}
