package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unobot/internal/deck"
	"github.com/lox/unobot/internal/game"
)

func TestParseTheme(t *testing.T) {
	for _, name := range []string{"default", "Dark", " light "} {
		theme, err := ParseTheme(name)
		require.NoError(t, err)
		assert.Contains(t, Themes, theme)
	}
	_, err := ParseTheme("neon")
	assert.ErrorIs(t, err, ErrUnknownTheme)
}

func TestDisplayOrder(t *testing.T) {
	cards := []deck.Card{
		{Rank: deck.WildDrawFour},
		deck.NewCard(deck.Yellow, deck.Two),
		{Rank: deck.Wild},
		deck.NewCard(deck.Red, deck.Nine),
		deck.NewCard(deck.Red, deck.Zero),
	}
	before := append([]deck.Card(nil), cards...)

	ordered := DisplayOrder(cards)
	assert.Equal(t, []deck.Card{
		deck.NewCard(deck.Red, deck.Zero),
		deck.NewCard(deck.Red, deck.Nine),
		deck.NewCard(deck.Yellow, deck.Two),
		{Rank: deck.Wild},
		{Rank: deck.WildDrawFour},
	}, ordered)
	assert.Equal(t, before, cards, "input slice untouched")
}

func TestCardPlain(t *testing.T) {
	r := NewRenderer()
	prefs := Prefs{Colors: false}

	assert.Equal(t, "R5", r.Card(deck.NewCard(deck.Red, deck.Five), prefs))
	assert.Equal(t, "WD4", r.Card(deck.Card{Rank: deck.WildDrawFour}, prefs))
}

func TestCardColored(t *testing.T) {
	r := NewRenderer()
	prefs := DefaultPrefs()

	out := r.Card(deck.NewCard(deck.Red, deck.Five), prefs)
	assert.Contains(t, out, "[5]")
	assert.Contains(t, out, "\x1b[", "styling must survive a non-tty writer")

	// A wild with a chosen color displays as that color's star.
	out = r.Card(deck.Card{Rank: deck.Wild}.WithColor(deck.Yellow), prefs)
	assert.Contains(t, out, "[*]")

	// An unplayed wild keeps its face.
	out = r.Card(deck.Card{Rank: deck.Wild}, prefs)
	assert.Contains(t, out, "[W]")
}

func TestCardsJoinsInDisplayOrder(t *testing.T) {
	r := NewRenderer()
	out := r.Cards([]deck.Card{
		{Rank: deck.Wild},
		deck.NewCard(deck.Red, deck.Five),
	}, Prefs{Colors: false})
	assert.Equal(t, "R5 W", out)
}

func TestUnknownThemeFallsBack(t *testing.T) {
	r := NewRenderer()
	out := r.Card(deck.NewCard(deck.Blue, deck.Skip), Prefs{Colors: true, Theme: "bogus"})
	assert.Contains(t, out, "[S]")
}

func TestPrefStore(t *testing.T) {
	s := NewPrefStore()
	id := game.Normalize("Alice")

	assert.Equal(t, DefaultPrefs(), s.Get(id))

	s.SetColors(id, false)
	assert.False(t, s.Get(id).Colors)
	assert.Equal(t, ThemeDefault, s.Get(id).Theme)

	s.SetTheme(id, ThemeDark)
	p := s.Get(id)
	assert.False(t, p.Colors, "theme change keeps the colors setting")
	assert.Equal(t, ThemeDark, p.Theme)
}

func TestThemesRenderDistinctly(t *testing.T) {
	r := NewRenderer()
	card := deck.NewCard(deck.Green, deck.Seven)

	seen := map[string]Theme{}
	for _, theme := range Themes {
		out := r.Card(card, Prefs{Colors: true, Theme: theme})
		require.True(t, strings.Contains(out, "[7]"))
		seen[out] = theme
	}
	assert.Len(t, seen, len(Themes))
}
