package game

// TurnController tracks whose turn it is: an index into the seating list and
// a direction of travel. It knows nothing about players; the session passes
// in the current seat count.
type TurnController struct {
	current   int
	direction int
}

// NewTurnController starts at seat 0 moving forward.
func NewTurnController() *TurnController {
	return &TurnController{direction: 1}
}

// Current returns the active seat index.
func (tc *TurnController) Current() int {
	return tc.current
}

// SetCurrent jumps directly to a seat. Used when dealing picks the random
// starting player.
func (tc *TurnController) SetCurrent(i int) {
	tc.current = i
}

// Direction returns +1 or -1.
func (tc *TurnController) Direction() int {
	return tc.direction
}

// Advance moves one seat in the current direction, wrapping into
// [0, seats). Calling it twice in a row skips a player.
func (tc *TurnController) Advance(seats int) int {
	tc.current += tc.direction
	if tc.current >= seats {
		tc.current = 0
	}
	if tc.current < 0 {
		tc.current = seats - 1
	}
	return tc.current
}

// Reverse flips the direction without moving the index. Callers pair it
// with Advance to hand the turn across in the new direction.
func (tc *TurnController) Reverse() {
	tc.direction = -tc.direction
}

// SeatRemoved corrects the index after the seat at pos left the list.
// seats is the new, shorter seat count. Removing a seat at or before the
// index shifts list positions, so the index is stepped once against the
// shift and then clamped into the new range, preserving whose turn is next.
func (tc *TurnController) SeatRemoved(pos, seats int) {
	if tc.direction < 0 && pos <= tc.current {
		tc.Advance(seats)
	} else if pos < tc.current {
		tc.direction = -tc.direction
		tc.Advance(seats)
		tc.direction = -tc.direction
	}
	if tc.current >= seats {
		tc.current = 0
	}
	if tc.current < 0 {
		tc.current = seats - 1
	}
}
