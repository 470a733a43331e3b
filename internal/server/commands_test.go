package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		want Command
		ok   bool
	}{
		{".uno", Command{Verb: VerbStart}, true},
		{".unostop", Command{Verb: VerbStop}, true},
		{"join", Command{Verb: VerbJoin}, true},
		{"JOIN", Command{Verb: VerbJoin}, true},
		{"quit", Command{Verb: VerbQuit}, true},
		{".unokick bob", Command{Verb: VerbKick, Args: []string{"bob"}}, true},
		{".deal", Command{Verb: VerbDeal}, true},
		{".play r 2", Command{Verb: VerbPlay, Args: []string{"r", "2"}}, true},
		{".play w y", Command{Verb: VerbPlay, Args: []string{"w", "y"}}, true},
		{".draw", Command{Verb: VerbDraw}, true},
		{".pass", Command{Verb: VerbPass}, true},
		{".fml", Command{Verb: VerbDrawOrPass}, true},
		{"fml", Command{Verb: VerbDrawOrPass}, true},
		{".cards", Command{Verb: VerbCards}, true},
		{".counts", Command{Verb: VerbCounts}, true},
		{".unocolors off", Command{Verb: VerbColors, Args: []string{"off"}}, true},
		{".unocolour on", Command{Verb: VerbColors, Args: []string{"on"}}, true},
		{".unotheme dark", Command{Verb: VerbTheme, Args: []string{"dark"}}, true},
		{".unohelp", Command{Verb: VerbHelp}, true},
		{".unotop", Command{Verb: VerbTop}, true},
		{".unorank UnoAddict", Command{Verb: VerbRank, Args: []string{"UnoAddict"}}, true},
		{".unogames", Command{Verb: VerbGames}, true},
		{".unomove #elsewhere", Command{Verb: VerbMove, Args: []string{"#elsewhere"}}, true},

		// Bare short-form cards play directly.
		{"r5", Command{Verb: VerbPlay, Args: []string{"r5"}}, true},
		{"bd2", Command{Verb: VerbPlay, Args: []string{"bd2"}}, true},
		{"wd4y", Command{Verb: VerbPlay, Args: []string{"wd4y"}}, true},
		{"WY", Command{Verb: VerbPlay, Args: []string{"wy"}}, true},

		// Ordinary chatter is ignored, never answered.
		{"", Command{}, false},
		{".", Command{}, false},
		{".unknown", Command{}, false},
		{"hello everyone", Command{}, false},
		{"r", Command{}, false},
		{"rgbyw55", Command{}, false},
	}
	for _, tt := range tests {
		cmd, ok := ParseCommand(tt.text)
		assert.Equal(t, tt.ok, ok, "text %q", tt.text)
		if tt.ok {
			assert.Equal(t, tt.want.Verb, cmd.Verb, "text %q", tt.text)
			if len(tt.want.Args) > 0 {
				assert.Equal(t, tt.want.Args, cmd.Args, "text %q", tt.text)
			}
		}
	}
}
