package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/unobot/internal/deck"
)

const (
	// HandSize is the number of cards dealt to each player.
	HandSize = 7

	// minHandForJoin gates late joins: once any hand has shrunk below this,
	// a never-seated player can't be dealt into the game.
	minHandForJoin = 5
)

// State is the session lifecycle phase.
type State int

const (
	Forming State = iota // accepting joins, no deck yet
	InPlay               // dealt, turns proceeding
	Won                  // terminal: a player emptied their hand
	Stopped              // terminal: stopped or dropped below two players
)

func (s State) String() string {
	switch s {
	case Forming:
		return "forming"
	case InPlay:
		return "in_play"
	case Won:
		return "won"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session is a single game: seats, hands, the draw pile and turn state.
// All mutating operations run under the session mutex, and every validation
// failure is detected before any mutation.
type Session struct {
	mu     sync.Mutex
	logger *log.Logger
	clock  quartz.Clock
	rng    *rand.Rand

	channel string
	owner   Identity
	seats   []Identity
	hands   map[Identity]Hand
	saved   map[Identity]Hand // departed mid-game, eligible to rejoin
	turn    *TurnController
	pile    *deck.Deck
	top     deck.Card
	drawn   *deck.Card // card the active player drew this turn, nil if none

	smallestHand int
	startTime    time.Time
	state        State
}

// NewSession creates a forming session with the owner in the only seat.
func NewSession(channel string, owner Identity, rng *rand.Rand, clock quartz.Clock, logger *log.Logger) *Session {
	return &Session{
		logger:       logger.WithPrefix("session").With("channel", channel),
		clock:        clock,
		rng:          rng,
		channel:      channel,
		owner:        owner,
		seats:        []Identity{owner},
		hands:        map[Identity]Hand{owner: {}},
		saved:        make(map[Identity]Hand),
		turn:         NewTurnController(),
		smallestHand: HandSize,
		state:        Forming,
	}
}

// Channel returns the external channel the session is associated with.
func (s *Session) Channel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// SetChannel re-associates the session with another channel. No game state
// is affected; the registry owns occupancy checks.
func (s *Session) SetChannel(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel = channel
	s.logger = s.logger.With("channel", channel)
}

// Owner returns the current session owner.
func (s *Session) Owner() Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// State returns the lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Seats returns the seating order.
func (s *Session) Seats() []Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Identity, len(s.seats))
	copy(out, s.seats)
	return out
}

// Join seats a player. In a forming session the hand stays empty until the
// deal. Mid-game, a previously departed player gets their saved hand back;
// a brand-new player is dealt a fresh hand only while the smallest hand seen
// is still at the late-join threshold.
func (s *Session) Join(id Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Won || s.state == Stopped {
		return nil, ErrNotStarted
	}
	if s.seatIndex(id) >= 0 {
		return nil, ErrAlreadySeated
	}
	savedHand, hasSaved := s.saved[id]
	if s.smallestHand < minHandForJoin && !hasSaved {
		return nil, ErrJoinRejected
	}

	s.seats = append(s.seats, id)
	position := len(s.seats)

	if s.state != InPlay {
		s.hands[id] = Hand{}
		events := []Event{JoinedEvent{Player: id, Position: position}}
		if len(s.seats) > 1 {
			events = append(events, EnoughToDealEvent{Owner: s.owner})
		}
		return events, nil
	}

	if hasSaved {
		s.hands[id] = savedHand
		delete(s.saved, id)
		s.logger.Debug("restored saved hand", "player", id, "cards", len(savedHand))
		return []Event{JoinedEvent{Player: id, Position: position, Rejoined: true}}, nil
	}

	// Install the hand before drawing so cards land where a mid-deal
	// rebuild can see them.
	s.hands[id] = make(Hand, 0, HandSize)
	for i := 0; i < HandSize; i++ {
		c, err := s.pile.Draw()
		if err != nil {
			return s.abortCorrupt(err)
		}
		s.hands[id] = append(s.hands[id], c)
	}
	return []Event{JoinedEvent{Player: id, Position: position, DealtIn: true}}, nil
}

// Deal builds the deck, deals every seat a hand, draws a non-wild top card
// and applies its effect as if it had just been played by the seat before
// the randomly chosen starting player. Owner or admin only.
func (s *Session) Deal(actor Identity, admin bool) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case InPlay:
		return nil, ErrAlreadyDealt
	case Won, Stopped:
		return nil, ErrNotStarted
	}
	if len(s.seats) < 2 {
		return nil, ErrNotEnoughPlayers
	}
	if actor != s.owner && !admin {
		return nil, ErrUnauthorized
	}

	s.startTime = s.clock.Now()
	s.pile = deck.New(s.rng, s.inPlay)
	if err := s.pile.Build(nil); err != nil {
		return nil, err
	}

	// Round-robin, one card at a time, like a real table.
	for i := 0; i < HandSize; i++ {
		for _, id := range s.seats {
			c, err := s.pile.Draw()
			if err != nil {
				return s.abortCorrupt(err)
			}
			s.hands[id] = append(s.hands[id], c)
		}
	}

	// The opening top card can't be a wild. Rejected wilds go under the
	// pile so the card count stays intact.
	top, err := s.pile.Draw()
	if err != nil {
		return s.abortCorrupt(err)
	}
	for top.IsWild() {
		s.pile.PushBottom(top)
		if top, err = s.pile.Draw(); err != nil {
			return s.abortCorrupt(err)
		}
	}

	s.state = InPlay
	s.turn.SetCurrent(s.rng.IntN(len(s.seats)))

	events, err := s.applyEffect(top)
	if err != nil {
		return s.abortCorrupt(err)
	}
	events = append(events, s.turnEvents()...)

	s.logger.Info("dealt", "players", len(s.seats), "top", top, "pile", s.pile.Size())
	return events, nil
}

// Play validates and plays a card for the actor. card must be canonical and
// color-annotated (wilds carry their chosen color). On any rejection no
// state changes.
func (s *Session) Play(actor Identity, card deck.Card) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InPlay {
		return nil, ErrNotStarted
	}
	if s.seatIndex(actor) < 0 {
		return nil, ErrNotPlaying
	}
	if actor != s.currentPlayer() {
		return nil, ErrNotYourTurn
	}
	hand := s.hands[actor]
	if !hand.Contains(card) {
		return nil, ErrCardNotHeld
	}
	if !IsPlayable(card, s.top) {
		return nil, ErrCardNotPlayable
	}
	if Reneges(card, s.drawn) {
		return nil, ErrRenege
	}

	s.drawn = nil
	hand.Remove(card)
	s.hands[actor] = hand
	if len(hand) < s.smallestHand {
		s.smallestHand = len(hand)
	}

	s.turn.Advance(len(s.seats))
	events, err := s.applyEffect(card)
	if err != nil {
		return s.abortCorrupt(err)
	}

	switch len(hand) {
	case 1:
		events = append(events, LastCardEvent{Player: actor})
	case 0:
		s.state = Won
		result := MatchResult{
			Winner:       actor,
			Points:       Score(actor, s.hands),
			Elapsed:      s.clock.Since(s.startTime),
			Participants: append([]Identity(nil), s.seats...),
		}
		s.logger.Info("won", "winner", actor, "points", result.Points, "elapsed", result.Elapsed)
		return append(events, WonEvent{Result: result}), nil
	}

	return append(events, s.turnEvents()...), nil
}

// Draw gives the active player one card, at most once per turn. The card is
// reported privately and recorded for renege checking.
func (s *Session) Draw(actor Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawLocked(actor)
}

// Pass forfeits the turn. Only valid after drawing; drawing is mandatory
// when unable or unwilling to play.
func (s *Session) Pass(actor Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passLocked(actor)
}

// DrawOrPass draws if the actor hasn't drawn this turn, otherwise passes.
func (s *Session) DrawOrPass(actor Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.drawn != nil {
		return s.passLocked(actor)
	}
	return s.drawLocked(actor)
}

func (s *Session) drawLocked(actor Identity) ([]Event, error) {
	if s.state != InPlay {
		return nil, ErrNotStarted
	}
	if s.seatIndex(actor) < 0 {
		return nil, ErrNotPlaying
	}
	if actor != s.currentPlayer() {
		return nil, ErrNotYourTurn
	}
	if s.drawn != nil {
		return nil, ErrAlreadyDrawn
	}

	c, err := s.pile.Draw()
	if err != nil {
		return s.abortCorrupt(err)
	}
	s.drawn = &c
	s.hands[actor] = append(s.hands[actor], c)
	return []Event{DrewCardEvent{Player: actor, Card: c}}, nil
}

func (s *Session) passLocked(actor Identity) ([]Event, error) {
	if s.state != InPlay {
		return nil, ErrNotStarted
	}
	if s.seatIndex(actor) < 0 {
		return nil, ErrNotPlaying
	}
	if actor != s.currentPlayer() {
		return nil, ErrNotYourTurn
	}
	if s.drawn == nil {
		return nil, ErrMustDrawFirst
	}

	s.drawn = nil
	events := []Event{PassedEvent{Player: actor}}
	s.turn.Advance(len(s.seats))
	return append(events, s.turnEvents()...), nil
}

// Quit removes the actor from the game.
func (s *Session) Quit(actor Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Won || s.state == Stopped {
		return nil, ErrNotStarted
	}
	pos := s.seatIndex(actor)
	if pos < 0 {
		return nil, ErrNotPlaying
	}
	events := []Event{PlayerLeftEvent{Player: actor, Position: pos + 1}}
	return s.removePlayer(actor, events)
}

// Kick removes target at requester's demand. Owner or admin only;
// self-kick degrades to a quit.
func (s *Session) Kick(requester Identity, admin bool, target Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Won || s.state == Stopped {
		return nil, ErrNotStarted
	}
	if requester != s.owner && !admin {
		return nil, ErrUnauthorized
	}
	pos := s.seatIndex(target)
	if pos < 0 {
		return nil, ErrNotPlaying
	}

	event := PlayerLeftEvent{Player: target, Position: pos + 1, Kicked: true, By: requester}
	if target == requester {
		event.Kicked = false
		event.By = ""
	}
	return s.removePlayer(target, []Event{event})
}

// Rename relabels a seated player in place: seating order, hand ownership
// and the owner pointer follow, turn state is untouched.
func (s *Session) Rename(old, new Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.seatIndex(old)
	if pos < 0 {
		return nil, ErrNotPlaying
	}
	if s.seatIndex(new) >= 0 {
		return nil, ErrAlreadySeated
	}

	s.seats[pos] = new
	s.hands[new] = s.hands[old]
	delete(s.hands, old)
	if hand, ok := s.saved[old]; ok {
		s.saved[new] = hand
		delete(s.saved, old)
	}
	if s.owner == old {
		s.owner = new
	}
	return []Event{RenamedEvent{Old: old, New: new, Channel: s.channel}}, nil
}

// HandQuery privately reports the viewer's cards and upcoming seats.
func (s *Session) HandQuery(viewer Identity) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InPlay {
		return nil, ErrNotStarted
	}
	if s.seatIndex(viewer) < 0 {
		return nil, ErrNotPlaying
	}
	return []Event{s.handEvent(viewer)}, nil
}

// CountsQuery reports the standings for the whole table in seating order.
func (s *Session) CountsQuery() ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InPlay {
		return nil, ErrNotStarted
	}
	counts := make([]SeatCount, 0, len(s.seats))
	for _, id := range s.seats {
		counts = append(counts, SeatCount{Player: id, Cards: len(s.hands[id])})
	}
	return []Event{CountsEvent{Counts: counts}}, nil
}

// Dealt reports whether the game is past the forming phase.
func (s *Session) Dealt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != Forming
}

// removePlayer does the shared quit/kick work. Caller holds the lock and
// has validated that id is seated.
func (s *Session) removePlayer(id Identity, events []Event) ([]Event, error) {
	pos := s.seatIndex(id)
	wasCurrent := s.state == InPlay && id == s.currentPlayer()

	if s.state == InPlay {
		s.saved[id] = s.hands[id]
	}
	delete(s.hands, id)
	s.seats = append(s.seats[:pos], s.seats[pos+1:]...)

	if id == s.owner && len(s.seats) > 0 {
		s.owner = s.seats[0]
		if len(s.seats) > 1 {
			events = append(events, OwnerChangedEvent{Owner: s.owner})
		}
	}

	if len(s.seats) < 2 {
		s.state = Stopped
		s.logger.Info("stopped", "reason", StopNotEnough)
		return append(events, StoppedEvent{Reason: StopNotEnough}), nil
	}

	if s.state == InPlay {
		s.turn.SeatRemoved(pos, len(s.seats))
		if wasCurrent {
			// A departing active player takes their drawn-card marker
			// with them.
			s.drawn = nil
		}
		events = append(events, s.turnEvents()...)
	}
	return events, nil
}

// applyEffect installs card as the top card and applies its effect, with
// the turn index already pointing at the player the effect lands on. The
// top card is replaced before any penalty draw so a mid-effect rebuild
// excludes the card actually in play.
func (s *Session) applyEffect(card deck.Card) ([]Event, error) {
	var events []Event
	s.top = card

	effect := ResolveEffect(card, len(s.seats))
	switch effect {
	case EffectDrawTwo, EffectDrawFour:
		victim := s.currentPlayer()
		n := effect.PenaltyCards()
		drawn := make([]deck.Card, 0, n)
		for i := 0; i < n; i++ {
			c, err := s.pile.Draw()
			if err != nil {
				return nil, err
			}
			s.hands[victim] = append(s.hands[victim], c)
			drawn = append(drawn, c)
		}
		events = append(events,
			DrawPenaltyEvent{Player: victim, Count: n},
			PenaltyCardsEvent{Player: victim, Cards: drawn},
		)
		s.turn.Advance(len(s.seats))

	case EffectSkip:
		events = append(events, SkippedEvent{Player: s.currentPlayer()})
		s.turn.Advance(len(s.seats))

	case EffectReverse:
		events = append(events, ReversedEvent{})
		s.turn.Reverse()
		s.turn.Advance(len(s.seats))
		s.turn.Advance(len(s.seats))
	}

	return events, nil
}

// turnEvents announces the new active player's turn publicly and their hand
// privately.
func (s *Session) turnEvents() []Event {
	current := s.currentPlayer()
	return []Event{
		TopCardEvent{Player: current, TopCard: s.top},
		s.handEvent(current),
	}
}

func (s *Session) handEvent(viewer Identity) Event {
	return HandEvent{
		Player: viewer,
		Cards:  s.hands[viewer].Clone(),
		Next:   s.upcomingCounts(),
	}
}

// upcomingCounts lists the other seats in play order starting after the
// active player.
func (s *Session) upcomingCounts() []SeatCount {
	counts := make([]SeatCount, 0, len(s.seats)-1)
	idx := s.turn.Current()
	for i := 1; i < len(s.seats); i++ {
		pos := idx + i*s.turn.Direction()
		pos = ((pos % len(s.seats)) + len(s.seats)) % len(s.seats)
		counts = append(counts, SeatCount{Player: s.seats[pos], Cards: len(s.hands[s.seats[pos]])})
	}
	return counts
}

// inPlay reports every card outside the pile, for deck rebuilds. Saved
// hands count: a departed player's cards stay reserved until they rejoin,
// so a rebuild must not deal them back out.
func (s *Session) inPlay() []deck.Card {
	var cards []deck.Card
	for _, hand := range s.hands {
		cards = append(cards, hand...)
	}
	for _, hand := range s.saved {
		cards = append(cards, hand...)
	}
	if s.state == InPlay {
		cards = append(cards, s.top)
	}
	return cards
}

// abortCorrupt converts a deck multiset violation into a session abort:
// the game can't continue against a corrupted pile, so it stops with a
// diagnostic instead of rejecting the action and letting players retry.
// Any other draw failure passes through unchanged.
func (s *Session) abortCorrupt(err error) ([]Event, error) {
	if !errors.Is(err, deck.ErrCorrupt) {
		return nil, err
	}
	s.state = Stopped
	s.logger.Error("aborting corrupted game", "error", err)
	return []Event{StoppedEvent{Reason: StopDeckCorrupted}}, nil
}

func (s *Session) currentPlayer() Identity {
	return s.seats[s.turn.Current()]
}

func (s *Session) seatIndex(id Identity) int {
	for i, seat := range s.seats {
		if seat == id {
			return i
		}
	}
	return -1
}

// Describe summarises the session for admin listings.
func (s *Session) Describe() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%s (%d players, %s)", s.channel, len(s.seats), s.state)
}
