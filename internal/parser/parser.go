package parser

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Card is one parsed front/back/context block from a markdown source
// file. Blocks use "Q:"/"A:"/"C:" prefixes and are separated by "---" or
// a new "Q:" line.
type Card struct {
	Front   string
	Back    string
	Context string
}

const (
	frontPrefix   = "Q:"
	backPrefix    = "A:"
	contextPrefix = "C:"
	separator     = "---"
)

type section int

const (
	seeking section = iota
	inFront
	inBack
	inContext
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. A card without a
// front is dropped.
func Parse(r io.Reader) ([]Card, error) {
	b := &builder{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		b.line(scanner.Text())
	}
	b.finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.cards, nil
}

type builder struct {
	cards []Card
	card  Card
	block []string
	sect  section
}

func (b *builder) line(text string) {
	if text == separator {
		b.finishCard()
		return
	}

	switch {
	case strings.HasPrefix(text, frontPrefix):
		// A new front always starts a new card.
		if b.sect != seeking {
			b.finishCard()
		}
		b.startSection(inFront, text[len(frontPrefix):])
	case strings.HasPrefix(text, backPrefix):
		b.startSection(inBack, text[len(backPrefix):])
	case strings.HasPrefix(text, contextPrefix):
		b.startSection(inContext, text[len(contextPrefix):])
	default:
		if b.sect != seeking {
			b.block = append(b.block, text)
		}
	}
}

func (b *builder) startSection(sect section, rest string) {
	b.flushBlock()
	b.sect = sect
	b.block = append(b.block, strings.TrimPrefix(rest, " "))
}

// flushBlock assigns the accumulated lines to the current section.
func (b *builder) flushBlock() {
	if len(b.block) == 0 {
		return
	}
	content := strings.Join(b.block, "\n")
	switch b.sect {
	case inFront:
		b.card.Front = content
	case inBack:
		b.card.Back = content
	case inContext:
		b.card.Context = content
	}
	b.block = nil
}

func (b *builder) finishCard() {
	b.flushBlock()
	if b.card.Front != "" {
		b.cards = append(b.cards, b.card)
	}
	b.card = Card{}
	b.sect = seeking
}
