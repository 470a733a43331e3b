package game

import "github.com/lox/unobot/internal/deck"

// Rule predicates are stateless; the session supplies all context.

// IsPlayable reports whether candidate may be played on top. Candidate must
// be color-annotated already: a wild with a chosen color is always playable,
// and a still-colorless card is never playable. Otherwise the colors or the
// ranks must match; when the top card is a played wild only its chosen color
// matters.
func IsPlayable(candidate, top deck.Card) bool {
	if candidate.Color == deck.NoColor {
		return false
	}
	if candidate.IsWild() {
		return true
	}
	if top.IsWild() {
		return candidate.Color == top.Color
	}
	return candidate.Color == top.Color || candidate.Rank == top.Rank
}

// Reneges reports whether playing candidate violates the drawn-card rule:
// after drawing, only the drawn card may be played. A different physical
// duplicate with the drawn card's value is fine; identical cards are
// interchangeable. drawn is nil when the player hasn't drawn this turn.
func Reneges(candidate deck.Card, drawn *deck.Card) bool {
	if drawn == nil {
		return false
	}
	return candidate.Value() != drawn.Value()
}

// Effect is what a played card does to the turn order.
type Effect int

const (
	EffectNone Effect = iota
	EffectSkip
	EffectDrawTwo
	EffectDrawFour
	EffectReverse
)

// PenaltyCards returns how many cards the affected player draws.
func (e Effect) PenaltyCards() int {
	switch e {
	case EffectDrawTwo:
		return 2
	case EffectDrawFour:
		return 4
	default:
		return 0
	}
}

// ResolveEffect maps a played card to its effect. With exactly two seats a
// Reverse acts as a Skip: there is nobody else to reverse onto.
func ResolveEffect(card deck.Card, seats int) Effect {
	switch card.Rank {
	case deck.DrawTwo:
		return EffectDrawTwo
	case deck.WildDrawFour:
		return EffectDrawFour
	case deck.Skip:
		return EffectSkip
	case deck.Reverse:
		if seats == 2 {
			return EffectSkip
		}
		return EffectReverse
	default:
		return EffectNone
	}
}
