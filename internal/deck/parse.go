package deck

import (
	"errors"
	"strings"
)

// ErrInvalidCard is returned when card input can't be parsed into a card.
var ErrInvalidCard = errors.New("invalid card syntax")

// Parse turns user card input into a canonical Card. Both argument orders
// are accepted ("r 2" and "2 r"), as is the no-space short form ("r2",
// "bd2", "wy", "wd4r"). For wilds the color argument is the chosen color,
// so the returned card is already color-annotated and ready to check
// against the top card.
func Parse(input string) (Card, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(input)))

	var color, face string
	switch len(fields) {
	case 1:
		color, face = splitShortForm(fields[0])
	case 2:
		color, face = fields[0], fields[1]
	default:
		return Card{}, ErrInvalidCard
	}

	// Accept either order: whichever token isn't a color (or isn't a face)
	// gets swapped into place before validation.
	if _, ok := parseColor(color); !ok {
		color, face = face, color
	} else if _, ok := parseRank(face); !ok {
		color, face = face, color
	}

	col, okColor := parseColor(color)
	rank, okRank := parseRank(face)
	if !okColor || !okRank {
		return Card{}, ErrInvalidCard
	}
	return Card{Color: col, Rank: rank}, nil
}

// splitShortForm breaks a joined token like "r2" or "wd4y" into its color
// and face parts. Wild tokens put the face first, so they split from the
// other end.
func splitShortForm(tok string) (color, face string) {
	if tok == "" {
		return "", ""
	}
	if tok[0] == 'W' {
		return tok[:len(tok)-1], tok[len(tok)-1:]
	}
	return tok[:1], tok[1:]
}

func parseColor(tok string) (Color, bool) {
	switch tok {
	case "R":
		return Red, true
	case "G":
		return Green, true
	case "B":
		return Blue, true
	case "Y":
		return Yellow, true
	default:
		return NoColor, false
	}
}

func parseRank(tok string) (Rank, bool) {
	switch tok {
	case "0", "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return Rank(tok[0] - '0'), true
	case "S":
		return Skip, true
	case "R":
		return Reverse, true
	case "D2":
		return DrawTwo, true
	case "W":
		return Wild, true
	case "WD4":
		return WildDrawFour, true
	default:
		return 0, false
	}
}
