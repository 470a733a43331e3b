package game

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/unobot/internal/deck"
)

func TestIsPlayable(t *testing.T) {
	tests := []struct {
		name      string
		candidate deck.Card
		top       deck.Card
		want      bool
	}{
		{"color match", deck.NewCard(deck.Red, deck.Five), deck.NewCard(deck.Red, deck.Nine), true},
		{"rank match", deck.NewCard(deck.Blue, deck.Five), deck.NewCard(deck.Red, deck.Five), true},
		{"no match", deck.NewCard(deck.Blue, deck.Five), deck.NewCard(deck.Red, deck.Nine), false},
		{"special rank match", deck.NewCard(deck.Green, deck.DrawTwo), deck.NewCard(deck.Yellow, deck.DrawTwo), true},
		{"chosen wild always playable", deck.Card{Rank: deck.Wild}.WithColor(deck.Green), deck.NewCard(deck.Red, deck.Nine), true},
		{"colorless wild never directly playable", deck.Card{Rank: deck.Wild}, deck.NewCard(deck.Red, deck.Nine), false},
		{"on played wild only chosen color matters", deck.NewCard(deck.Green, deck.Five), deck.Card{Rank: deck.Wild}.WithColor(deck.Green), true},
		{"on played wild wrong color", deck.NewCard(deck.Red, deck.Five), deck.Card{Rank: deck.Wild}.WithColor(deck.Green), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlayable(tt.candidate, tt.top))
		})
	}
}

func TestReneges(t *testing.T) {
	drawn := deck.NewCard(deck.Red, deck.Five)

	assert.False(t, Reneges(deck.NewCard(deck.Blue, deck.Two), nil), "no draw this turn")
	assert.False(t, Reneges(drawn, &drawn), "the drawn card itself")
	assert.False(t, Reneges(deck.NewCard(deck.Red, deck.Five), &drawn), "value-equal duplicate")
	assert.True(t, Reneges(deck.NewCard(deck.Red, deck.Six), &drawn), "different card")
	assert.True(t, Reneges(deck.NewCard(deck.Blue, deck.Five), &drawn), "different color")

	wild := deck.Card{Rank: deck.Wild}
	assert.False(t, Reneges(wild.WithColor(deck.Yellow), &wild), "played wild matches its drawn colorless self")
}

func TestResolveEffect(t *testing.T) {
	assert.Equal(t, EffectDrawTwo, ResolveEffect(deck.NewCard(deck.Red, deck.DrawTwo), 4))
	assert.Equal(t, EffectDrawFour, ResolveEffect(deck.Card{Rank: deck.WildDrawFour}.WithColor(deck.Blue), 4))
	assert.Equal(t, EffectSkip, ResolveEffect(deck.NewCard(deck.Red, deck.Skip), 4))
	assert.Equal(t, EffectReverse, ResolveEffect(deck.NewCard(deck.Red, deck.Reverse), 3))
	assert.Equal(t, EffectSkip, ResolveEffect(deck.NewCard(deck.Red, deck.Reverse), 2), "reverse acts as skip heads-up")
	assert.Equal(t, EffectNone, ResolveEffect(deck.NewCard(deck.Red, deck.Seven), 4))
	assert.Equal(t, EffectNone, ResolveEffect(deck.Card{Rank: deck.Wild}.WithColor(deck.Red), 4))
}

func TestEffectPenaltyCards(t *testing.T) {
	assert.Equal(t, 2, EffectDrawTwo.PenaltyCards())
	assert.Equal(t, 4, EffectDrawFour.PenaltyCards())
	assert.Equal(t, 0, EffectSkip.PenaltyCards())
	assert.Equal(t, 0, EffectNone.PenaltyCards())
}
