package parser

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		expectedCards   int
		expectedFront   string
		expectedBack    string
		expectedContext string
	}{
		{
			name:          "Simple front and back",
			input:         "Q: What is the capital of France?\nA: Paris",
			expectedCards: 1,
			expectedFront: "What is the capital of France?",
			expectedBack:  "Paris",
		},
		{
			name:            "Front, back, and context",
			input:           "Q: What is 1+1?\nA: 2\nC: Basic arithmetic",
			expectedCards:   1,
			expectedFront:   "What is 1+1?",
			expectedBack:    "2",
			expectedContext: "Basic arithmetic",
		},
		{
			name: "Multiline back",
			input: `
Q: What are the primary colors?
A: Red
Blue
Yellow
`,
			expectedCards: 1,
			expectedFront: "What are the primary colors?",
			expectedBack:  "Red\nBlue\nYellow",
		},
		{
			name: "Two cards without separator",
			input: `
Q: First question
A: First answer

Q: Second question
A: Second answer
`,
			expectedCards: 2,
		},
		{
			name: "Two cards with separator",
			input: `
Q: First question
A: First answer
---
Q: Second question
A: Second answer
`,
			expectedCards: 2,
		},
		{
			name: "Card with all fields and multiline",
			input: `
Q: What is Go?
A: A statically typed, compiled programming language.
It was designed at Google.
C: Programming Languages
`,
			expectedCards:   1,
			expectedFront:   "What is Go?",
			expectedBack:    "A statically typed, compiled programming language.\nIt was designed at Google.",
			expectedContext: "Programming Languages",
		},
		{
			name:          "No cards, just text",
			input:         "This is a file with no questions.",
			expectedCards: 0,
		},
		{
			name:          "Prefixes with no space",
			input:         "Q:Question\nA:Answer",
			expectedCards: 1,
			expectedFront: "Question",
			expectedBack:  "Answer",
		},
		{
			name:          "Back without front is dropped",
			input:         "A: An answer with no question",
			expectedCards: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse returned an unexpected error: %v", err)
			}

			if len(cards) != tc.expectedCards {
				t.Fatalf("Expected %d cards, but got %d", tc.expectedCards, len(cards))
			}
			if tc.expectedCards == 0 || tc.expectedFront == "" {
				return
			}

			card := cards[0]
			if card.Front != tc.expectedFront {
				t.Errorf("Expected front '%s', but got '%s'", tc.expectedFront, card.Front)
			}
			if card.Back != tc.expectedBack {
				t.Errorf("Expected back '%s', but got '%s'", tc.expectedBack, card.Back)
			}
			if card.Context != tc.expectedContext {
				t.Errorf("Expected context '%s', but got '%s'", tc.expectedContext, card.Context)
			}
		})
	}
}
