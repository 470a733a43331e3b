// Package deck implements UNO cards and the shared draw pile.
package deck

import "fmt"

// Color is a card color. NoColor marks a wild that has not been played yet;
// once played a wild carries the color its player chose.
type Color int

const (
	NoColor Color = iota
	Red
	Green
	Blue
	Yellow
)

// String returns the single-letter color code used in card notation.
func (c Color) String() string {
	switch c {
	case Red:
		return "R"
	case Green:
		return "G"
	case Blue:
		return "B"
	case Yellow:
		return "Y"
	default:
		return ""
	}
}

// Name returns the full color name.
func (c Color) Name() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	case Yellow:
		return "yellow"
	default:
		return "none"
	}
}

// Colors lists the four playable colors.
var Colors = []Color{Red, Green, Blue, Yellow}

// Rank is a card face value.
type Rank int

const (
	Zero Rank = iota
	One
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Skip
	Reverse
	DrawTwo
	Wild
	WildDrawFour
)

// String returns the face code used in card notation.
func (r Rank) String() string {
	switch {
	case r >= Zero && r <= Nine:
		return fmt.Sprintf("%d", int(r))
	case r == Skip:
		return "S"
	case r == Reverse:
		return "R"
	case r == DrawTwo:
		return "D2"
	case r == Wild:
		return "W"
	case r == WildDrawFour:
		return "WD4"
	default:
		return "?"
	}
}

// IsWild reports whether the rank is one of the two wild kinds.
func (r Rank) IsWild() bool {
	return r == Wild || r == WildDrawFour
}

// Points returns the rank's score value when left in a loser's hand.
func (r Rank) Points() int {
	switch {
	case r >= Zero && r <= Nine:
		return int(r)
	case r == Skip, r == Reverse, r == DrawTwo:
		return 20
	case r == Wild, r == WildDrawFour:
		return 50
	default:
		return 0
	}
}

// Card is an immutable card value. Wilds are colorless (NoColor) until
// played; every other card always carries its printed color.
type Card struct {
	Color Color
	Rank  Rank
}

// NewCard creates a colored card.
func NewCard(color Color, rank Rank) Card {
	return Card{Color: color, Rank: rank}
}

// IsWild reports whether the card is a Wild or WildDrawFour.
func (c Card) IsWild() bool {
	return c.Rank.IsWild()
}

// WithColor returns a copy of the card annotated with the chosen color.
// Used when a wild is played; for non-wilds the printed color is kept.
func (c Card) WithColor(color Color) Card {
	if !c.IsWild() {
		return c
	}
	return Card{Color: color, Rank: c.Rank}
}

// Value returns the card's intrinsic identity: a wild's chosen color is
// stripped so that a played wild and its colorless duplicate compare equal.
func (c Card) Value() Card {
	if c.IsWild() {
		return Card{Color: NoColor, Rank: c.Rank}
	}
	return c
}

// Points returns the card's score value.
func (c Card) Points() int {
	return c.Rank.Points()
}

// String returns the card in compact notation, e.g. "R5", "GS", "BD2".
// Colorless wilds render as "W"/"WD4"; a played wild includes its chosen
// color prefix, e.g. "YW".
func (c Card) String() string {
	return c.Color.String() + c.Rank.String()
}

// Less orders cards for display: by color, then rank. NoColor sorts last so
// unplayed wilds trail the colored cards.
func (c Card) Less(other Card) bool {
	ca, cb := c.Color, other.Color
	if ca == NoColor {
		ca = Yellow + 1
	}
	if cb == NoColor {
		cb = Yellow + 1
	}
	if ca != cb {
		return ca < cb
	}
	return c.Rank < other.Rank
}
