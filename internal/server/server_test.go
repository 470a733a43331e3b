package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/render"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	prefs := render.NewPrefStore()
	formatter := NewFormatter(render.NewRenderer(), prefs)
	return NewServer("127.0.0.1:0", testService(t), formatter, prefs, log.New(io.Discard))
}

// subscriber registers a socketless client in the given channels. Sends
// queue in the connection buffer where the test can read them back.
func subscriber(s *Server, nick game.Identity, channels ...string) *Connection {
	c := NewConnection(nil, s, log.New(io.Discard))
	c.SetNick(nick)
	for _, ch := range channels {
		c.JoinChannel(ch)
	}
	s.mu.Lock()
	s.connections[c] = true
	s.mu.Unlock()
	return c
}

// notices drains the queued messages into their notice texts.
func notices(t *testing.T, c *Connection) []string {
	t.Helper()
	var out []string
	for {
		select {
		case msg := <-c.send:
			var data NoticeData
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			out = append(out, data.Text)
		default:
			return out
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Result().StatusCode)
}

func TestStopWithChannelArgument(t *testing.T) {
	s := testServer(t)
	alice := subscriber(s, "alice", "#uno", "#ops")
	bob := subscriber(s, "bob", "#uno")

	s.dispatch(alice, "#uno", Command{Verb: VerbStart})
	started := notices(t, bob)
	require.Len(t, started, 1)
	assert.Contains(t, started[0], "UNO started by alice")
	notices(t, alice)

	// The owner stops the #uno game from a different channel by naming it.
	s.dispatch(alice, "#ops", Command{Verb: VerbStop, Args: []string{"#uno"}})

	got := notices(t, bob)
	require.Len(t, got, 1)
	assert.Equal(t, "Game stopped by alice.", got[0])
	_, err := s.service.registry.Get("#uno")
	assert.ErrorIs(t, err, ErrChannelUnknown)
}

func TestStopDefaultsToCurrentChannel(t *testing.T) {
	s := testServer(t)
	alice := subscriber(s, "alice", "#uno")

	s.dispatch(alice, "#uno", Command{Verb: VerbStart})
	notices(t, alice)

	s.dispatch(alice, "#uno", Command{Verb: VerbStop})
	got := notices(t, alice)
	require.Len(t, got, 1)
	assert.Equal(t, "Game stopped by alice.", got[0])
}

func TestStopRemoteUnauthorized(t *testing.T) {
	s := testServer(t)
	alice := subscriber(s, "alice", "#uno")
	mallory := subscriber(s, "mallory", "#ops")

	s.dispatch(alice, "#uno", Command{Verb: VerbStart})
	notices(t, alice)

	s.dispatch(mallory, "#ops", Command{Verb: VerbStop, Args: []string{"#uno"}})
	got := notices(t, mallory)
	require.Len(t, got, 1)
	assert.Equal(t, "You aren't allowed to do that.", got[0])

	_, err := s.service.registry.Get("#uno")
	assert.NoError(t, err)
}
