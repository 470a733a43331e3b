// Package render formats cards for chat delivery: lipgloss styles per card
// color, optional dark/light themes for readability, and a plain fallback
// for viewers who turn colors off.
package render

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/unobot/internal/deck"
)

// Theme selects a card palette. Dark and light add a background so the card
// colors stay readable on the viewer's terminal.
type Theme string

const (
	ThemeDefault Theme = "default"
	ThemeDark    Theme = "dark"
	ThemeLight   Theme = "light"
)

// Themes lists the selectable themes in display order.
var Themes = []Theme{ThemeDefault, ThemeDark, ThemeLight}

// ErrUnknownTheme means the requested theme name isn't one of Themes.
var ErrUnknownTheme = errors.New("unknown theme")

// ParseTheme resolves a user-supplied theme name.
func ParseTheme(name string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(name))) {
	case ThemeDefault:
		return ThemeDefault, nil
	case ThemeDark:
		return ThemeDark, nil
	case ThemeLight:
		return ThemeLight, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTheme, name)
}

// Prefs are one viewer's rendering preferences.
type Prefs struct {
	Colors bool
	Theme  Theme
}

// DefaultPrefs returns the out-of-the-box preferences: colors on, no theme.
func DefaultPrefs() Prefs {
	return Prefs{Colors: true, Theme: ThemeDefault}
}

// palette maps card colors to styles under one theme.
type palette struct {
	colors map[deck.Color]lipgloss.Style
	wild   lipgloss.Style
}

// Renderer turns cards into styled strings. Output goes over the wire, so
// the color profile is forced rather than sniffed from a terminal.
type Renderer struct {
	palettes map[Theme]palette
}

// NewRenderer builds a renderer with all three theme palettes.
func NewRenderer() *Renderer {
	lip := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))

	base := func() (map[deck.Color]lipgloss.Style, lipgloss.Style) {
		return map[deck.Color]lipgloss.Style{
			deck.Red:    lip.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
			deck.Green:  lip.NewStyle().Foreground(lipgloss.Color("#04B575")),
			deck.Blue:   lip.NewStyle().Foreground(lipgloss.Color("#74B9FF")),
			deck.Yellow: lip.NewStyle().Foreground(lipgloss.Color("#FFD700")),
		}, lip.NewStyle().Foreground(lipgloss.Color("#626262"))
	}

	defColors, defWild := base()

	darkColors, _ := base()
	darkWild := lip.NewStyle().Foreground(lipgloss.Color("#A8A8A8"))
	for c, s := range darkColors {
		darkColors[c] = s.Background(lipgloss.Color("#000000")).Bold(true)
	}
	darkWild = darkWild.Background(lipgloss.Color("#000000")).Bold(true)

	// Light swaps in darker green and orange so the faces survive a pale
	// background.
	lightColors, _ := base()
	lightColors[deck.Green] = lip.NewStyle().Foreground(lipgloss.Color("#00875F"))
	lightColors[deck.Yellow] = lip.NewStyle().Foreground(lipgloss.Color("#FF8700"))
	lightWild := lip.NewStyle().Foreground(lipgloss.Color("#000000"))
	for c, s := range lightColors {
		lightColors[c] = s.Background(lipgloss.Color("#D0D0D0")).Bold(true)
	}
	lightWild = lightWild.Background(lipgloss.Color("#D0D0D0")).Bold(true)

	return &Renderer{
		palettes: map[Theme]palette{
			ThemeDefault: {colors: defColors, wild: defWild},
			ThemeDark:    {colors: darkColors, wild: darkWild},
			ThemeLight:   {colors: lightColors, wild: lightWild},
		},
	}
}

// Card renders a single card under the viewer's preferences. Unplayed wilds
// keep their face; a wild with a chosen color shows as that color's "*".
func (r *Renderer) Card(card deck.Card, prefs Prefs) string {
	if !prefs.Colors {
		return card.String()
	}
	p, ok := r.palettes[prefs.Theme]
	if !ok {
		p = r.palettes[ThemeDefault]
	}

	if card.IsWild() {
		if card.Color == deck.NoColor {
			return p.wild.Render("[" + card.Rank.String() + "]")
		}
		return p.colors[card.Color].Render("[*]")
	}
	return p.colors[card.Color].Render("[" + card.Rank.String() + "]")
}

// Cards renders a hand in display order, space separated.
func (r *Renderer) Cards(cards []deck.Card, prefs Prefs) string {
	ordered := DisplayOrder(cards)
	parts := make([]string, len(ordered))
	for i, c := range ordered {
		parts[i] = r.Card(c, prefs)
	}
	return strings.Join(parts, " ")
}

// DisplayOrder returns a new slice with colored cards sorted first and
// wilds sorted last. The input is never modified.
func DisplayOrder(cards []deck.Card) []deck.Card {
	colored := make([]deck.Card, 0, len(cards))
	wilds := make([]deck.Card, 0, 4)
	for _, c := range cards {
		if c.IsWild() {
			wilds = append(wilds, c)
		} else {
			colored = append(colored, c)
		}
	}
	sort.SliceStable(colored, func(i, j int) bool { return colored[i].Less(colored[j]) })
	sort.SliceStable(wilds, func(i, j int) bool { return wilds[i].Less(wilds[j]) })
	return append(colored, wilds...)
}
