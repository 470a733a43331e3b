package game

import (
	"strings"

	"github.com/lox/unobot/internal/deck"
)

// Identity is a stable, case-normalized player handle. Use Normalize to
// construct one from user input.
type Identity string

// Normalize lowercases and trims a raw handle so lookups are
// case-insensitive, the way chat nicknames behave.
func Normalize(raw string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(raw)))
}

func (id Identity) String() string {
	return string(id)
}

// Hand is a player's cards, treated as a multiset: same-value cards are
// fully interchangeable, order only matters for display.
type Hand []deck.Card

// Contains reports whether the hand holds a card with this value. Chosen
// wild colors are ignored; hands store wilds colorless.
func (h Hand) Contains(card deck.Card) bool {
	want := card.Value()
	for _, c := range h {
		if c.Value() == want {
			return true
		}
	}
	return false
}

// Remove deletes the first card with this value and reports whether one was
// found.
func (h *Hand) Remove(card deck.Card) bool {
	want := card.Value()
	for i, c := range *h {
		if c.Value() == want {
			*h = append((*h)[:i], (*h)[i+1:]...)
			return true
		}
	}
	return false
}

// Points sums the score value of every card in the hand.
func (h Hand) Points() int {
	total := 0
	for _, c := range h {
		total += c.Points()
	}
	return total
}

// Clone returns an independent copy.
func (h Hand) Clone() Hand {
	out := make(Hand, len(h))
	copy(out, h)
	return out
}
