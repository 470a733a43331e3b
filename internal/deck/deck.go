package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrCorrupt indicates the card-conservation invariant was violated: a
// rebuild was asked to exclude a card the master multiset doesn't contain.
// This is a programmer error, never an expected game outcome, and callers
// should abort the session when they see it.
var ErrCorrupt = errors.New("deck corrupt: in-play cards exceed master multiset")

// ErrExhausted indicates every card in the master multiset is held by a
// player, leaving nothing to draw even after a rebuild.
var ErrExhausted = errors.New("deck exhausted: every card is in play")

// MasterCopies is how many complete UNO decks the pile is built from.
const MasterCopies = 2

// masterDeckSize is the card count of a single complete deck: per color one
// zero and two each of 1-9/Skip/Reverse/DrawTwo, plus four of each wild.
const masterDeckSize = 108

// Master returns the fixed multiset of cards the pile is built from:
// MasterCopies complete decks merged.
func Master() []Card {
	cards := make([]Card, 0, MasterCopies*masterDeckSize)
	for copyn := 0; copyn < MasterCopies; copyn++ {
		for _, color := range Colors {
			cards = append(cards, Card{Color: color, Rank: Zero})
			for rank := One; rank <= DrawTwo; rank++ {
				cards = append(cards, Card{Color: color, Rank: rank}, Card{Color: color, Rank: rank})
			}
		}
		for i := 0; i < 4; i++ {
			cards = append(cards, Card{Rank: Wild}, Card{Rank: WildDrawFour})
		}
	}
	return cards
}

// InPlayFunc reports the cards currently outside the pile (all hands plus
// the top card) so a rebuild can exclude them.
type InPlayFunc func() []Card

// Deck is the draw pile. It is not safe for concurrent use; the owning
// session serialises access.
type Deck struct {
	cards  []Card
	rng    *rand.Rand
	inPlay InPlayFunc
}

// New creates an empty pile. Build must be called before the first Draw.
func New(rng *rand.Rand, inPlay InPlayFunc) *Deck {
	return &Deck{rng: rng, inPlay: inPlay}
}

// Build replaces the pile with a fresh shuffle of the master multiset minus
// excluding. Two independent shuffle passes, for mixing quality. Returns
// ErrCorrupt if excluding holds a card the master multiset can't supply.
func (d *Deck) Build(excluding []Card) error {
	cards := Master()
	for _, exclude := range excluding {
		found := false
		want := exclude.Value()
		for i, c := range cards {
			if c == want {
				cards[i] = cards[len(cards)-1]
				cards = cards[:len(cards)-1]
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %s", ErrCorrupt, exclude)
		}
	}

	d.shuffle(cards)
	d.shuffle(cards)
	d.cards = cards
	return nil
}

// Draw pops the front card. If that empties the pile it is rebuilt
// immediately, excluding the in-play cards, so callers never observe an
// empty pile. Fails with ErrCorrupt from the rebuild, or ErrExhausted when
// the players hold every card between them.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		if err := d.rebuild(nil); err != nil {
			return Card{}, err
		}
		if len(d.cards) == 0 {
			return Card{}, ErrExhausted
		}
	}
	card := d.cards[0]
	d.cards = d.cards[1:]

	if len(d.cards) == 0 {
		// The popped card isn't in any hand yet, so the in-play callback
		// can't see it. Exclude it explicitly or the rebuild re-adds it.
		if err := d.rebuild([]Card{card}); err != nil {
			return Card{}, err
		}
	}
	return card, nil
}

// PushBottom puts a card under the pile. Used when the deal rejects a wild
// top card: the card stays in the pile instead of leaking out of the
// multiset.
func (d *Deck) PushBottom(card Card) {
	d.cards = append(d.cards, card)
}

// Size returns the number of cards left in the pile.
func (d *Deck) Size() int {
	return len(d.cards)
}

// Cards returns a copy of the pile, next draw first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

func (d *Deck) rebuild(extra []Card) error {
	var outside []Card
	if d.inPlay != nil {
		outside = d.inPlay()
	}
	return d.Build(append(outside, extra...))
}

func (d *Deck) shuffle(cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}
