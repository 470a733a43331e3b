package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lox/unobot/internal/deck"
	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/ledger"
	"github.com/lox/unobot/internal/render"
)

// Formatter turns events and errors into chat text. Cards are rendered per
// viewer so everyone sees their own colors and theme.
type Formatter struct {
	renderer *render.Renderer
	prefs    *render.PrefStore
}

func NewFormatter(renderer *render.Renderer, prefs *render.PrefStore) *Formatter {
	return &Formatter{renderer: renderer, prefs: prefs}
}

// Event formats one event for a viewer.
func (f *Formatter) Event(e game.Event, viewer game.Identity) string {
	prefs := f.prefs.Get(viewer)

	switch e := e.(type) {
	case game.StartedEvent:
		return fmt.Sprintf("UNO started by %s - type join to join!", e.Owner)
	case game.JoinedEvent:
		if e.Rejoined {
			return fmt.Sprintf("Here, %s, I saved your cards. You're back in the game as player #%d.", e.Player, e.Position)
		}
		return fmt.Sprintf("Dealing %s into the game as player #%d!", e.Player, e.Position)
	case game.EnoughToDealEvent:
		return "There are enough players to deal now."
	case game.TopCardEvent:
		return fmt.Sprintf("%s's turn. Top card: %s", e.Player, f.renderer.Card(e.TopCard, prefs))
	case game.HandEvent:
		msg := fmt.Sprintf("Your cards (%d): %s", len(e.Cards), f.renderer.Cards(e.Cards, prefs))
		if len(e.Next) > 0 {
			msg += " Next: " + joinCounts(e.Next)
		}
		return msg
	case game.DrewCardEvent:
		return fmt.Sprintf("You drew: %s", f.renderer.Card(e.Card, prefs))
	case game.PassedEvent:
		return fmt.Sprintf("%s passed!", e.Player)
	case game.DrawPenaltyEvent:
		if e.Count == 4 {
			return fmt.Sprintf("%s draws four and is skipped!", e.Player)
		}
		return fmt.Sprintf("%s draws two and is skipped!", e.Player)
	case game.PenaltyCardsEvent:
		return fmt.Sprintf("Cards: %s", f.renderer.Cards(e.Cards, prefs))
	case game.SkippedEvent:
		return fmt.Sprintf("%s is skipped!", e.Player)
	case game.ReversedEvent:
		return "Order reversed!"
	case game.LastCardEvent:
		return fmt.Sprintf("UNO! %s has ONE card left!", e.Player)
	case game.WonEvent:
		msg := fmt.Sprintf("We have a winner: %s!!! This game took %s.", e.Result.Winner, e.Result.Elapsed.Round(time.Second))
		if secs := e.Result.Elapsed.Seconds(); secs > 0 {
			msg += fmt.Sprintf(" %s gains %d %s (%.3f pts/sec)!",
				e.Result.Winner, e.Result.Points, plural(e.Result.Points, "point", "points"),
				float64(e.Result.Points)/secs)
		}
		return msg
	case game.PlayerLeftEvent:
		if e.Kicked {
			return fmt.Sprintf("Kicking %s (player #%d) from the game at %s's request.", e.Player, e.Position, e.By)
		}
		return fmt.Sprintf("Removing %s (player #%d) from the current UNO game.", e.Player, e.Position)
	case game.OwnerChangedEvent:
		return fmt.Sprintf("Game owner left! New owner: %s", e.Owner)
	case game.StoppedEvent:
		switch e.Reason {
		case game.StopRequested:
			if e.By != "" {
				return fmt.Sprintf("Game stopped by %s.", e.By)
			}
			return "Game stopped."
		case game.StopDeckCorrupted:
			return "Something is wrong with the deck; game stopped."
		default:
			return "You need at least two people to play UNO. RIP."
		}
	case game.RenamedEvent:
		return fmt.Sprintf("Followed your nick change from %s to %s. You're still in the %s UNO game!", e.Old, e.New, e.Channel)
	case game.MovedEvent:
		return fmt.Sprintf("%s moved the UNO game from %s to %s.", e.By, e.From, e.To)
	case game.CountsEvent:
		return "Standings: " + joinCounts(e.Counts)
	case game.LedgerErrorEvent:
		return fmt.Sprintf("Error saving UNO scores: %v", e.Err)
	default:
		return ""
	}
}

// Error maps a rejection to its notice text.
func (f *Formatter) Error(err error) string {
	switch {
	case errors.Is(err, game.ErrNotPlaying):
		return "You aren't a player in this UNO game!"
	case errors.Is(err, game.ErrNotYourTurn):
		return "It's not your turn."
	case errors.Is(err, game.ErrNotStarted):
		return "Game not started."
	case errors.Is(err, game.ErrAlreadyDealt):
		return "Already dealt."
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "Not enough players to deal yet."
	case errors.Is(err, game.ErrCannotContinue):
		return "You need at least two people to play UNO. RIP."
	case errors.Is(err, game.ErrCardNotHeld):
		return "You don't have that card!"
	case errors.Is(err, game.ErrCardNotPlayable):
		return "That card can't be played now."
	case errors.Is(err, game.ErrRenege):
		return "Reneging is not allowed: you may only play the drawn card after drawing."
	case errors.Is(err, game.ErrMustDrawFirst):
		return "You have to draw first."
	case errors.Is(err, game.ErrAlreadyDrawn):
		return "You've already drawn, either play or pass."
	case errors.Is(err, game.ErrJoinRejected):
		return "Can't join you to this game. Wait for the next one."
	case errors.Is(err, game.ErrAlreadySeated):
		return "You're already in this game."
	case errors.Is(err, game.ErrUnauthorized):
		return "You aren't allowed to do that."
	case errors.Is(err, deck.ErrInvalidCard):
		return "Command syntax error. Use e.g. .play r 3 or .play w y."
	case errors.Is(err, ErrChannelOccupied):
		return "That channel already has an UNO game in progress."
	case errors.Is(err, ErrChannelUnknown):
		return "No UNO game in this channel."
	case errors.Is(err, ledger.ErrNotRanked):
		return "That player hasn't finished an UNO game, and thus has no rank yet."
	default:
		return err.Error()
	}
}

// StandingRow formats one leaderboard row with the derived stats.
func (f *Formatter) StandingRow(s ledger.Standing) string {
	wasted := time.Duration(s.Playtime) * time.Second
	return fmt.Sprintf("#%d %s (%d %s in %d %s (%d won), %s wasted, %.3f pts/sec, %.1f pts/game, %.1f pts/won)",
		s.Rank, s.Player,
		s.Points, plural(s.Points, "point", "points"),
		s.Games, plural(s.Games, "game", "games"),
		s.Wins, wasted,
		s.PointsPerSecond(), s.PointsPerGame(), s.PointsPerWin())
}

// RankLine formats a single player's rank summary.
func (f *Formatter) RankLine(s ledger.Standing) string {
	return fmt.Sprintf("%s is ranked #%d in UNO, having accumulated %d %s from %d %s.",
		s.Player, s.Rank,
		s.Points, plural(s.Points, "point", "points"),
		s.Wins, plural(s.Wins, "victory", "victories"))
}

// HelpLines is the gameplay help sent privately on request.
var HelpLines = []string{
	"UNO is played using the .play, .draw and .pass commands.",
	"To play a card, say .play c f (where c = r/g/b/y and f = the card's face value). e.g. .play r 2 for a red 2, or .play b d2 for a blue D2.",
	"Wild (W) and Wild Draw 4 (WD4) cards are played as .play w[d4] c, where c is the color you want the pile changed to.",
	"You can also just type a card like r5 or wd4y on its own line.",
	"If you can't play on your turn you must .draw; if the drawn card isn't playable either, .pass forfeits the turn. .fml does whichever applies.",
	"Use .unotheme dark|light if your cards are hard to read, .unotheme default to reset, or .unocolors off for plain text.",
}

func joinCounts(counts []game.SeatCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", c.Player, c.Cards)
	}
	return strings.Join(parts, ", ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
