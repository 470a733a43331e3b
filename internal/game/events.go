package game

import (
	"time"

	"github.com/lox/unobot/internal/deck"
)

// EventKind identifies a notification record type.
type EventKind string

const (
	EventStarted      EventKind = "started"
	EventJoined       EventKind = "joined"
	EventEnoughToDeal EventKind = "enough_to_deal"
	EventTopCard      EventKind = "top_card"
	EventHand         EventKind = "hand"
	EventDrewCard     EventKind = "drew_card"
	EventPassed       EventKind = "passed"
	EventDrawPenalty  EventKind = "draw_penalty"
	EventPenaltyCards EventKind = "penalty_cards"
	EventSkipped      EventKind = "skipped"
	EventReversed     EventKind = "reversed"
	EventLastCard     EventKind = "last_card"
	EventWon          EventKind = "won"
	EventPlayerLeft   EventKind = "player_left"
	EventOwnerChanged EventKind = "owner_changed"
	EventStopped      EventKind = "stopped"
	EventRenamed      EventKind = "renamed"
	EventMoved        EventKind = "moved"
	EventCounts       EventKind = "counts"
	EventLedgerError  EventKind = "ledger_error"
)

// Audience says who a notification is for. The zero value is public: the
// transport delivers it to the session's channel. A non-empty To makes it a
// private notice for that player only.
type Audience struct {
	To Identity
}

// Private reports whether the record is addressed to a single player.
func (a Audience) Private() bool {
	return a.To != ""
}

// Public is the channel-wide audience.
func Public() Audience {
	return Audience{}
}

// PrivateTo addresses a record to one player.
func PrivateTo(id Identity) Audience {
	return Audience{To: id}
}

// Event is a notification record emitted by the core. The transport layer
// owns all formatting and delivery; events carry raw values only.
type Event interface {
	Kind() EventKind
	Audience() Audience
}

// SeatCount pairs a player with their hand size, for standings displays.
type SeatCount struct {
	Player Identity
	Cards  int
}

// StartedEvent announces a new session accepting joins.
type StartedEvent struct {
	Owner Identity
}

func (e StartedEvent) Kind() EventKind    { return EventStarted }
func (e StartedEvent) Audience() Audience { return Public() }

// JoinedEvent announces a player taking a seat. DealtIn is set when they
// received a hand immediately (mid-game join); Rejoined when a saved hand
// was restored.
type JoinedEvent struct {
	Player   Identity
	Position int // 1-based seat number
	Rejoined bool
	DealtIn  bool
}

func (e JoinedEvent) Kind() EventKind    { return EventJoined }
func (e JoinedEvent) Audience() Audience { return Public() }

// EnoughToDealEvent tells the owner the table can be dealt.
type EnoughToDealEvent struct {
	Owner Identity
}

func (e EnoughToDealEvent) Kind() EventKind    { return EventEnoughToDeal }
func (e EnoughToDealEvent) Audience() Audience { return PrivateTo(e.Owner) }

// TopCardEvent announces whose turn it is and the card to beat.
type TopCardEvent struct {
	Player  Identity
	TopCard deck.Card
}

func (e TopCardEvent) Kind() EventKind    { return EventTopCard }
func (e TopCardEvent) Audience() Audience { return Public() }

// HandEvent privately shows a player their cards, with the seats coming up
// after them in play order.
type HandEvent struct {
	Player Identity
	Cards  []deck.Card
	Next   []SeatCount
}

func (e HandEvent) Kind() EventKind    { return EventHand }
func (e HandEvent) Audience() Audience { return PrivateTo(e.Player) }

// DrewCardEvent privately reports the card a player drew.
type DrewCardEvent struct {
	Player Identity
	Card   deck.Card
}

func (e DrewCardEvent) Kind() EventKind    { return EventDrewCard }
func (e DrewCardEvent) Audience() Audience { return PrivateTo(e.Player) }

// PassedEvent announces a forfeited turn.
type PassedEvent struct {
	Player Identity
}

func (e PassedEvent) Kind() EventKind    { return EventPassed }
func (e PassedEvent) Audience() Audience { return Public() }

// DrawPenaltyEvent announces a player drawing penalty cards and losing
// their turn (DrawTwo / WildDrawFour).
type DrawPenaltyEvent struct {
	Player Identity
	Count  int
}

func (e DrawPenaltyEvent) Kind() EventKind    { return EventDrawPenalty }
func (e DrawPenaltyEvent) Audience() Audience { return Public() }

// PenaltyCardsEvent privately shows the penalized player what they drew.
type PenaltyCardsEvent struct {
	Player Identity
	Cards  []deck.Card
}

func (e PenaltyCardsEvent) Kind() EventKind    { return EventPenaltyCards }
func (e PenaltyCardsEvent) Audience() Audience { return PrivateTo(e.Player) }

// SkippedEvent announces a skipped player.
type SkippedEvent struct {
	Player Identity
}

func (e SkippedEvent) Kind() EventKind    { return EventSkipped }
func (e SkippedEvent) Audience() Audience { return Public() }

// ReversedEvent announces a direction flip.
type ReversedEvent struct{}

func (e ReversedEvent) Kind() EventKind    { return EventReversed }
func (e ReversedEvent) Audience() Audience { return Public() }

// LastCardEvent announces a player down to one card.
type LastCardEvent struct {
	Player Identity
}

func (e LastCardEvent) Kind() EventKind    { return EventLastCard }
func (e LastCardEvent) Audience() Audience { return Public() }

// MatchResult is the terminal outcome handed to the score ledger.
type MatchResult struct {
	Winner       Identity
	Points       int
	Elapsed      time.Duration
	Participants []Identity
}

// WonEvent announces the winner and their score for the match.
type WonEvent struct {
	Result MatchResult
}

func (e WonEvent) Kind() EventKind    { return EventWon }
func (e WonEvent) Audience() Audience { return Public() }

// PlayerLeftEvent announces a quit or kick.
type PlayerLeftEvent struct {
	Player   Identity
	Position int // 1-based seat number before removal
	Kicked   bool
	By       Identity // requester, for kicks
}

func (e PlayerLeftEvent) Kind() EventKind    { return EventPlayerLeft }
func (e PlayerLeftEvent) Audience() Audience { return Public() }

// OwnerChangedEvent announces ownership passing to another seat.
type OwnerChangedEvent struct {
	Owner Identity
}

func (e OwnerChangedEvent) Kind() EventKind    { return EventOwnerChanged }
func (e OwnerChangedEvent) Audience() Audience { return Public() }

// StopReason says why a session ended without a winner.
type StopReason string

const (
	StopRequested     StopReason = "requested"
	StopNotEnough     StopReason = "not_enough_players"
	StopDeckCorrupted StopReason = "deck_corrupted"
)

// StoppedEvent announces the session ending without a winner.
type StoppedEvent struct {
	Reason StopReason
	By     Identity // for StopRequested
}

func (e StoppedEvent) Kind() EventKind    { return EventStopped }
func (e StoppedEvent) Audience() Audience { return Public() }

// RenamedEvent privately confirms a nick change was followed.
type RenamedEvent struct {
	Old     Identity
	New     Identity
	Channel string
}

func (e RenamedEvent) Kind() EventKind    { return EventRenamed }
func (e RenamedEvent) Audience() Audience { return PrivateTo(e.New) }

// MovedEvent announces the session relocating to another channel.
type MovedEvent struct {
	From string
	To   string
	By   Identity
}

func (e MovedEvent) Kind() EventKind    { return EventMoved }
func (e MovedEvent) Audience() Audience { return Public() }

// CountsEvent reports standings. Public when requested for the channel.
type CountsEvent struct {
	Counts []SeatCount
}

func (e CountsEvent) Kind() EventKind    { return EventCounts }
func (e CountsEvent) Audience() Audience { return Public() }

// LedgerErrorEvent surfaces a score persistence failure. Gameplay is
// unaffected; the transport relays the failure.
type LedgerErrorEvent struct {
	Err error
}

func (e LedgerErrorEvent) Kind() EventKind    { return EventLedgerError }
func (e LedgerErrorEvent) Audience() Audience { return Public() }
