package server

import (
	"io"
	rand "math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unobot/internal/deck"
	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/ledger"
	"github.com/lox/unobot/internal/randutil"
)

func testService(t *testing.T) *GameService {
	t.Helper()
	logger := log.New(io.Discard)
	seed := int64(0)
	newRNG := func() *rand.Rand {
		seed++
		return randutil.New(seed)
	}
	registry := NewRegistry(quartz.NewMock(t), newRNG, logger)
	scores := ledger.New(filepath.Join(t.TempDir(), "scores.json"), logger)
	return NewGameService(registry, scores, []string{"Admin"}, logger)
}

func kinds(events []game.Event) []game.EventKind {
	out := make([]game.EventKind, len(events))
	for i, e := range events {
		out[i] = e.Kind()
	}
	return out
}

func TestStartAndStop(t *testing.T) {
	g := testService(t)

	events, err := g.Start("#uno", "Alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, game.Normalize("alice"), events[0].(game.StartedEvent).Owner)

	// A second start in an occupied channel is treated as a join.
	events, err = g.Start("#uno", "bob")
	require.NoError(t, err)
	joined := events[0].(game.JoinedEvent)
	assert.Equal(t, game.Identity("bob"), joined.Player)
	assert.Equal(t, 2, joined.Position)

	_, err = g.Start("#uno", "bob")
	assert.ErrorIs(t, err, game.ErrAlreadySeated)

	_, err = g.Stop("#uno", "bob")
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	events, err = g.Stop("#uno", "alice")
	require.NoError(t, err)
	stopped := events[0].(game.StoppedEvent)
	assert.Equal(t, game.StopRequested, stopped.Reason)

	_, err = g.Join("#uno", "bob")
	assert.ErrorIs(t, err, ErrChannelUnknown)
}

func TestAdminMayStopAndDeal(t *testing.T) {
	g := testService(t)
	_, err := g.Start("#uno", "alice")
	require.NoError(t, err)
	_, err = g.Join("#uno", "bob")
	require.NoError(t, err)

	// The admin is neither seated nor the owner.
	_, err = g.Deal("#uno", "admin")
	require.NoError(t, err)

	_, err = g.Stop("#uno", "admin")
	require.NoError(t, err)
}

func TestGameFlowThroughService(t *testing.T) {
	g := testService(t)
	_, err := g.Start("#uno", "alice")
	require.NoError(t, err)

	events, err := g.Join("#uno", "bob")
	require.NoError(t, err)
	assert.Contains(t, kinds(events), game.EventEnoughToDeal)

	events, err = g.Deal("#uno", "alice")
	require.NoError(t, err)
	assert.Contains(t, kinds(events), game.EventTopCard)

	_, err = g.Play("#uno", "alice", "not a card")
	assert.ErrorIs(t, err, deck.ErrInvalidCard)

	_, err = g.QueryHand("#uno", "alice")
	require.NoError(t, err)
	events, err = g.QueryCounts("#uno")
	require.NoError(t, err)
	assert.Equal(t, game.EventCounts, events[0].Kind())
}

func TestQuitBelowTwoTearsDown(t *testing.T) {
	g := testService(t)
	_, err := g.Start("#uno", "alice")
	require.NoError(t, err)
	_, err = g.Join("#uno", "bob")
	require.NoError(t, err)
	_, err = g.Deal("#uno", "alice")
	require.NoError(t, err)

	events, err := g.Quit("#uno", "bob")
	require.NoError(t, err)
	assert.Contains(t, kinds(events), game.EventStopped)

	// The stop removed the session from the registry.
	_, err = g.Join("#uno", "carol")
	assert.ErrorIs(t, err, ErrChannelUnknown)
}

func TestSettleRecordsWin(t *testing.T) {
	g := testService(t)
	_, err := g.Start("#uno", "alice")
	require.NoError(t, err)

	result := game.MatchResult{
		Winner:       game.Normalize("alice"),
		Points:       95,
		Elapsed:      90 * time.Second,
		Participants: []game.Identity{game.Normalize("alice"), game.Normalize("bob")},
	}
	events := g.settle("#uno", []game.Event{game.WonEvent{Result: result}})
	assert.Equal(t, []game.EventKind{game.EventWon}, kinds(events), "no ledger error on success")

	standing, err := g.Rank("alice")
	require.NoError(t, err)
	assert.Equal(t, 95, standing.Points)
	assert.Equal(t, 1, standing.Wins)

	_, err = g.Join("#uno", "carol")
	assert.ErrorIs(t, err, ErrChannelUnknown, "won session is torn down")
}

func TestSettleSurfacesLedgerFailure(t *testing.T) {
	logger := log.New(io.Discard)
	registry := NewRegistry(quartz.NewMock(t), func() *rand.Rand { return randutil.New(1) }, logger)
	// A directory as score file makes every write fail.
	scores := ledger.New(t.TempDir(), logger)
	g := NewGameService(registry, scores, nil, logger)

	result := game.MatchResult{
		Winner:       game.Normalize("alice"),
		Points:       10,
		Participants: []game.Identity{game.Normalize("alice"), game.Normalize("bob")},
	}
	events := g.settle("#uno", []game.Event{game.WonEvent{Result: result}})
	assert.Contains(t, kinds(events), game.EventLedgerError)
}

func TestRenameFollowsAcrossSessions(t *testing.T) {
	g := testService(t)
	_, err := g.Start("#one", "alice")
	require.NoError(t, err)
	_, err = g.Start("#two", "bob")
	require.NoError(t, err)
	_, err = g.Join("#two", "alice")
	require.NoError(t, err)

	events := g.Rename("alice", "alicia")
	assert.Len(t, events, 2, "renamed in both sessions")

	s, err := g.registry.Get("#one")
	require.NoError(t, err)
	assert.Equal(t, game.Normalize("alicia"), s.Owner())

	assert.Empty(t, g.Rename("nobody", "somebody"))
}

func TestRelocate(t *testing.T) {
	g := testService(t)
	_, err := g.Start("#old", "alice")
	require.NoError(t, err)

	_, err = g.Relocate("#old", "bob", "#new")
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	events, err := g.Relocate("#old", "alice", "#new")
	require.NoError(t, err)
	moved := events[0].(game.MovedEvent)
	assert.Equal(t, "#old", moved.From)
	assert.Equal(t, "#new", moved.To)

	_, err = g.QueryCounts("#old")
	assert.ErrorIs(t, err, ErrChannelUnknown)
}

func TestOverview(t *testing.T) {
	g := testService(t)
	assert.Empty(t, g.Overview())

	_, err := g.Start("#uno", "alice")
	require.NoError(t, err)
	overview := g.Overview()
	require.Len(t, overview, 1)
	assert.Contains(t, overview[0], "#uno")
}
