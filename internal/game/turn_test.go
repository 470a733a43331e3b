package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceWrapsFullCircle(t *testing.T) {
	for _, seats := range []int{2, 3, 5, 8} {
		for _, dir := range []int{1, -1} {
			tc := NewTurnController()
			tc.SetCurrent(1 % seats)
			if dir < 0 {
				tc.Reverse()
			}
			start := tc.Current()
			for i := 0; i < seats; i++ {
				tc.Advance(seats)
			}
			assert.Equal(t, start, tc.Current(), "seats=%d dir=%d", seats, dir)
		}
	}
}

func TestReverseFlipsWithoutMoving(t *testing.T) {
	tc := NewTurnController()
	tc.SetCurrent(2)
	tc.Reverse()
	assert.Equal(t, 2, tc.Current())
	assert.Equal(t, -1, tc.Direction())

	tc.Advance(4)
	assert.Equal(t, 1, tc.Current())
	tc.Advance(4)
	tc.Advance(4)
	assert.Equal(t, 3, tc.Current(), "wraps to the top moving backwards")
}

func TestSeatRemoved(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		dir      int
		pos      int // removed seat position in the old list
		seats    int // new, shorter seat count
		expected int
	}{
		// Moving forward, a removal before the index shifts everything
		// down one; the correction steps back against the direction.
		{"forward, removed before", 2, 1, 0, 3, 1},
		{"forward, removed at current", 2, 1, 2, 3, 2},
		{"forward, removed after", 1, 1, 3, 3, 1},
		// Moving backward, a removal at or before the index advances once.
		{"backward, removed before", 2, -1, 1, 3, 1},
		{"backward, removed at current", 2, -1, 2, 3, 1},
		{"backward, removed after", 1, -1, 2, 3, 1},
		// Clamping into the shortened range.
		{"forward, current now out of range", 3, 1, 0, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := NewTurnController()
			tc.SetCurrent(tt.current)
			if tt.dir < 0 {
				tc.Reverse()
			}
			tc.SeatRemoved(tt.pos, tt.seats)
			assert.Equal(t, tt.expected, tc.Current())
		})
	}
}
