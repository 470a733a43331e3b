package server

import (
	"regexp"
	"strings"
)

// Verb identifies a parsed chat action.
type Verb string

const (
	VerbStart      Verb = "start"
	VerbStop       Verb = "stop"
	VerbJoin       Verb = "join"
	VerbQuit       Verb = "quit"
	VerbKick       Verb = "kick"
	VerbDeal       Verb = "deal"
	VerbPlay       Verb = "play"
	VerbDraw       Verb = "draw"
	VerbPass       Verb = "pass"
	VerbDrawOrPass Verb = "draw_or_pass"
	VerbCards      Verb = "cards"
	VerbCounts     Verb = "counts"
	VerbColors     Verb = "colors"
	VerbTheme      Verb = "theme"
	VerbHelp       Verb = "help"
	VerbTop        Verb = "top"
	VerbRank       Verb = "rank"
	VerbGames      Verb = "games"
	VerbMove       Verb = "move"
)

// Command is one chat line resolved to an action.
type Command struct {
	Verb Verb
	Args []string
}

// shortCard matches a bare short-form card line like "r5" or "wd4y", so
// players can play without the command prefix.
var shortCard = regexp.MustCompile(`^[rgbyw][0-9rgbyds]{1,3}$`)

// commandVerbs maps the prefixed command word to its verb.
var commandVerbs = map[string]Verb{
	"uno":        VerbStart,
	"unostop":    VerbStop,
	"unokick":    VerbKick,
	"deal":       VerbDeal,
	"play":       VerbPlay,
	"draw":       VerbDraw,
	"pass":       VerbPass,
	"fml":        VerbDrawOrPass,
	"cards":      VerbCards,
	"counts":     VerbCounts,
	"unocolor":   VerbColors,
	"unocolour":  VerbColors,
	"unocolors":  VerbColors,
	"unocolours": VerbColors,
	"unotheme":   VerbTheme,
	"unohelp":    VerbHelp,
	"unotop":     VerbTop,
	"unorank":    VerbRank,
	"unogames":   VerbGames,
	"unomove":    VerbMove,
}

// ParseCommand resolves a chat line to a command. Lines that match no known
// action shape report ok=false and are ignored, never answered.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Command{}, false
	}

	if strings.HasPrefix(text, ".") {
		fields := strings.Fields(text[1:])
		if len(fields) == 0 {
			return Command{}, false
		}
		verb, ok := commandVerbs[strings.ToLower(fields[0])]
		if !ok {
			return Command{}, false
		}
		return Command{Verb: verb, Args: fields[1:]}, true
	}

	switch lower := strings.ToLower(text); lower {
	case "join":
		return Command{Verb: VerbJoin}, true
	case "quit":
		return Command{Verb: VerbQuit}, true
	case "fml":
		return Command{Verb: VerbDrawOrPass}, true
	default:
		if shortCard.MatchString(lower) {
			return Command{Verb: VerbPlay, Args: []string{lower}}, true
		}
	}
	return Command{}, false
}
