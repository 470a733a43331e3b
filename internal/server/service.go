package server

import (
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lox/unobot/internal/deck"
	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/ledger"
)

// GameService is the action layer between the transport and the sessions:
// it resolves channels, normalizes identities, parses card arguments and
// folds finished matches into the score ledger.
type GameService struct {
	registry *Registry
	scores   *ledger.Ledger
	admins   map[game.Identity]bool
	logger   *log.Logger
}

// NewGameService wires the service over a registry and score ledger. admins
// may run privileged actions (deal, kick, stop, relocate) in any channel.
func NewGameService(registry *Registry, scores *ledger.Ledger, admins []string, logger *log.Logger) *GameService {
	adminSet := make(map[game.Identity]bool, len(admins))
	for _, a := range admins {
		adminSet[game.Normalize(a)] = true
	}
	return &GameService{
		registry: registry,
		scores:   scores,
		admins:   adminSet,
		logger:   logger.WithPrefix("service"),
	}
}

// IsAdmin reports whether the actor may run privileged actions.
func (g *GameService) IsAdmin(actor string) bool {
	return g.admins[game.Normalize(actor)]
}

// Start opens a new session in the channel with the actor as owner. If the
// channel already has a game the start degrades to a join.
func (g *GameService) Start(channel, actor string) ([]game.Event, error) {
	id := game.Normalize(actor)
	if _, err := g.registry.Create(channel, id); err != nil {
		if errors.Is(err, ErrChannelOccupied) {
			return g.Join(channel, actor)
		}
		return nil, err
	}
	return []game.Event{game.StartedEvent{Owner: id}}, nil
}

// Stop ends the channel's session without a winner. Owner or admin only.
func (g *GameService) Stop(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	id := game.Normalize(actor)
	if id != s.Owner() && !g.IsAdmin(actor) {
		return nil, game.ErrUnauthorized
	}
	g.registry.Remove(channel)
	return []game.Event{game.StoppedEvent{Reason: game.StopRequested, By: id}}, nil
}

// Join seats the actor in the channel's game.
func (g *GameService) Join(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	events, err := s.Join(game.Normalize(actor))
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// Quit removes the actor from the channel's game.
func (g *GameService) Quit(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	events, err := s.Quit(game.Normalize(actor))
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// Kick removes target from the channel's game at the actor's demand.
func (g *GameService) Kick(channel, actor, target string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	events, err := s.Kick(game.Normalize(actor), g.IsAdmin(actor), game.Normalize(target))
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// Deal starts play in the channel's game.
func (g *GameService) Deal(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	events, err := s.Deal(game.Normalize(actor), g.IsAdmin(actor))
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// Play parses the raw card argument and plays it for the actor.
func (g *GameService) Play(channel, actor, rawArgs string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	card, err := deck.Parse(rawArgs)
	if err != nil {
		return nil, err
	}
	events, err := s.Play(game.Normalize(actor), card)
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// Draw gives the actor their one card for the turn.
func (g *GameService) Draw(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	events, err := s.Draw(game.Normalize(actor))
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// Pass forfeits the actor's turn after a draw.
func (g *GameService) Pass(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	events, err := s.Pass(game.Normalize(actor))
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// DrawOrPass draws if the actor hasn't drawn this turn, otherwise passes.
func (g *GameService) DrawOrPass(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	events, err := s.DrawOrPass(game.Normalize(actor))
	if err != nil {
		return nil, err
	}
	return g.settle(channel, events), nil
}

// Rename follows a nick change across every session the player is seated
// in. Unknown nicks are a no-op.
func (g *GameService) Rename(oldName, newName string) []game.Event {
	old, id := game.Normalize(oldName), game.Normalize(newName)
	var events []game.Event
	for _, s := range g.registry.Sessions() {
		evs, err := s.Rename(old, id)
		if errors.Is(err, game.ErrNotPlaying) {
			continue
		}
		if err != nil {
			g.logger.Warn("rename rejected", "channel", s.Channel(), "old", old, "new", id, "error", err)
			continue
		}
		events = append(events, evs...)
	}
	return events
}

// Relocate moves the channel's session to another channel. Owner or admin
// only; the target channel must be free.
func (g *GameService) Relocate(channel, actor, newChannel string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	id := game.Normalize(actor)
	if id != s.Owner() && !g.IsAdmin(actor) {
		return nil, game.ErrUnauthorized
	}
	if _, err := g.registry.Relocate(channel, newChannel); err != nil {
		return nil, err
	}
	return []game.Event{game.MovedEvent{From: channel, To: newChannel, By: id}}, nil
}

// QueryHand privately reports the actor's cards.
func (g *GameService) QueryHand(channel, actor string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	return s.HandQuery(game.Normalize(actor))
}

// QueryCounts reports the channel's standings.
func (g *GameService) QueryCounts(channel string) ([]game.Event, error) {
	s, err := g.registry.Get(channel)
	if err != nil {
		return nil, err
	}
	return s.CountsQuery()
}

// Top returns the best standings from the ledger.
func (g *GameService) Top(n int) ([]ledger.Standing, error) {
	return g.scores.Top(n)
}

// Rank returns one player's standing.
func (g *GameService) Rank(player string) (ledger.Standing, error) {
	return g.scores.Rank(game.Normalize(player))
}

// Overview describes every active session, for the admin listing.
func (g *GameService) Overview() []string {
	sessions := g.registry.Sessions()
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Describe())
	}
	return out
}

// settle runs the post-action bookkeeping: a win is folded into the ledger
// (failures are relayed, never fatal) and terminal sessions leave the
// registry.
func (g *GameService) settle(channel string, events []game.Event) []game.Event {
	for _, e := range events {
		switch e := e.(type) {
		case game.WonEvent:
			if err := g.scores.RecordResult(e.Result); err != nil {
				g.logger.Error("score update failed", "channel", channel, "error", err)
				events = append(events, game.LedgerErrorEvent{Err: err})
			}
			g.registry.Remove(channel)
		case game.StoppedEvent:
			g.registry.Remove(channel)
		}
	}
	return events
}
