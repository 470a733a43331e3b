package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/unobot/internal/game"
	"github.com/lox/unobot/internal/render"
)

// Server is the WebSocket chat transport: clients claim a nick, join
// channels and type commands; game events come back as notices.
type Server struct {
	addr      string
	upgrader  websocket.Upgrader
	service   *GameService
	formatter *Formatter
	prefs     *render.PrefStore
	logger    *log.Logger

	mu          sync.RWMutex
	connections map[*Connection]bool
}

// NewServer wires the transport over the game service. prefs must be the
// same store the formatter renders with.
func NewServer(addr string, service *GameService, formatter *Formatter, prefs *render.PrefStore, logger *log.Logger) *Server {
	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		service:     service,
		formatter:   formatter,
		prefs:       prefs,
		logger:      logger.WithPrefix("server"),
		connections: make(map[*Connection]bool),
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	httpServer := &http.Server{Addr: s.addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		s.closeConnections()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) closeConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s, s.logger)

	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("client connected", "total", total)

	client.Start()

	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.logger.Info("client disconnected", "nick", client.Nick(), "total", total)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) handleHello(c *Connection, data HelloData) {
	nick := game.Normalize(data.Nick)
	if nick == "" {
		c.sendError("hello requires a nick")
		return
	}
	if s.nickTaken(nick, c) {
		c.sendError("nick already in use: " + string(nick))
		return
	}
	c.SetNick(nick)
	if msg, err := NewMessage(MessageWelcome, WelcomeData{Nick: string(nick)}); err == nil {
		_ = c.Send(msg)
	}
}

func (s *Server) handleNick(c *Connection, data NickData) {
	old := c.Nick()
	if old == "" {
		c.sendError("say hello before changing nick")
		return
	}
	nick := game.Normalize(data.Nick)
	if nick == "" || s.nickTaken(nick, c) {
		c.sendError("nick unavailable: " + data.Nick)
		return
	}
	c.SetNick(nick)
	events := s.service.Rename(string(old), string(nick))
	s.deliver("", events)
}

func (s *Server) handleJoinChannel(c *Connection, data ChannelData) {
	if c.Nick() == "" {
		c.sendError("say hello before joining a channel")
		return
	}
	if data.Channel == "" {
		c.sendError("join requires a channel")
		return
	}
	c.JoinChannel(data.Channel)
}

func (s *Server) handlePartChannel(c *Connection, data ChannelData) {
	c.PartChannel(data.Channel)
}

func (s *Server) handleChat(c *Connection, data ChatData) {
	nick := c.Nick()
	if nick == "" || !c.InChannel(data.Channel) {
		return
	}
	cmd, ok := ParseCommand(data.Text)
	if !ok {
		// Ordinary chatter, not ours to answer.
		return
	}
	s.dispatch(c, data.Channel, cmd)
}

// dispatch runs one parsed command and delivers the outcome. Rejections go
// back to the actor privately; events go to their audience.
func (s *Server) dispatch(c *Connection, channel string, cmd Command) {
	actor := string(c.Nick())

	run := func(events []game.Event, err error) {
		if err != nil {
			s.notify(c, s.formatter.Error(err))
			return
		}
		s.deliver(channel, events)
	}

	switch cmd.Verb {
	case VerbStart:
		run(s.service.Start(channel, actor))
	case VerbStop:
		// An explicit channel argument stops a game remotely.
		target := channel
		if len(cmd.Args) > 0 {
			target = cmd.Args[0]
		}
		events, err := s.service.Stop(target, actor)
		if err != nil {
			s.notify(c, s.formatter.Error(err))
			return
		}
		s.deliver(target, events)
	case VerbJoin:
		run(s.service.Join(channel, actor))
	case VerbQuit:
		run(s.service.Quit(channel, actor))
	case VerbKick:
		if len(cmd.Args) == 0 {
			s.notify(c, "Who am I kicking?")
			return
		}
		run(s.service.Kick(channel, actor, cmd.Args[0]))
	case VerbDeal:
		run(s.service.Deal(channel, actor))
	case VerbPlay:
		if len(cmd.Args) == 0 {
			s.notify(c, "Command syntax error. Use e.g. .play r 3 or .play w y.")
			return
		}
		run(s.service.Play(channel, actor, strings.Join(cmd.Args, " ")))
	case VerbDraw:
		run(s.service.Draw(channel, actor))
	case VerbPass:
		run(s.service.Pass(channel, actor))
	case VerbDrawOrPass:
		run(s.service.DrawOrPass(channel, actor))
	case VerbCards:
		run(s.service.QueryHand(channel, actor))
	case VerbCounts:
		run(s.service.QueryCounts(channel))
	case VerbColors:
		s.setColors(c, cmd.Args)
	case VerbTheme:
		s.setTheme(c, cmd.Args)
	case VerbHelp:
		for _, line := range HelpLines {
			s.notify(c, line)
		}
	case VerbTop:
		s.sendTop(c, channel)
	case VerbRank:
		name := actor
		if len(cmd.Args) > 0 {
			name = cmd.Args[0]
		}
		standing, err := s.service.Rank(name)
		if err != nil {
			s.notify(c, s.formatter.Error(err))
			return
		}
		s.broadcast(channel, s.formatter.RankLine(standing))
	case VerbGames:
		if !s.service.IsAdmin(actor) {
			s.notify(c, s.formatter.Error(game.ErrUnauthorized))
			return
		}
		overview := s.service.Overview()
		if len(overview) == 0 {
			s.notify(c, "No games running.")
			return
		}
		for _, line := range overview {
			s.notify(c, line)
		}
	case VerbMove:
		if len(cmd.Args) == 0 {
			s.notify(c, "I need a channel name to move to.")
			return
		}
		run(s.service.Relocate(channel, actor, cmd.Args[0]))
	}
}

func (s *Server) setColors(c *Connection, args []string) {
	id := c.Nick()
	if len(args) == 0 {
		setting := "off"
		if s.prefs.Get(id).Colors {
			setting = "on"
		}
		s.notify(c, fmt.Sprintf("Current UNO card color setting: %s.", setting))
		return
	}
	switch strings.ToLower(args[0]) {
	case "on", "yes":
		s.prefs.SetColors(id, true)
		s.notify(c, "Will use color codes on your UNO turn.")
	case "off", "no":
		s.prefs.SetColors(id, false)
		s.notify(c, "Will print plain cards on your UNO turn.")
	default:
		s.notify(c, "You must specify on or off for card colors.")
	}
}

func (s *Server) setTheme(c *Connection, args []string) {
	id := c.Nick()
	if len(args) == 0 {
		s.notify(c, fmt.Sprintf("You are currently using the %s card theme.", s.prefs.Get(id).Theme))
		return
	}
	theme, err := render.ParseTheme(args[0])
	if err != nil {
		names := make([]string, len(render.Themes))
		for i, t := range render.Themes {
			names[i] = string(t)
		}
		s.notify(c, "You must specify one of the available themes: "+strings.Join(names, ", "))
		return
	}
	s.prefs.SetTheme(id, theme)
	s.notify(c, fmt.Sprintf("Will use the %s card theme on your UNO turn.", theme))
}

func (s *Server) sendTop(c *Connection, channel string) {
	standings, err := s.service.Top(0)
	if err != nil {
		s.notify(c, s.formatter.Error(err))
		return
	}
	if len(standings) == 0 {
		s.broadcast(channel, "No scores yet")
		return
	}
	for _, standing := range standings {
		s.broadcast(channel, s.formatter.StandingRow(standing))
	}
}

// deliver routes events to their audiences. A relocation is announced in
// both the old and the new channel.
func (s *Server) deliver(channel string, events []game.Event) {
	for _, e := range events {
		if aud := e.Audience(); aud.Private() {
			s.sendEventTo(aud.To, e)
			continue
		}
		if moved, ok := e.(game.MovedEvent); ok {
			s.broadcastEvent(moved.From, e)
			s.broadcastEvent(moved.To, e)
			continue
		}
		s.broadcastEvent(channel, e)
	}
}

// broadcastEvent formats an event per subscriber so each viewer gets their
// own colors and theme.
func (s *Server) broadcastEvent(channel string, e game.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if !conn.InChannel(channel) {
			continue
		}
		text := s.formatter.Event(e, conn.Nick())
		if text == "" {
			continue
		}
		s.sendNotice(conn, NoticeData{Channel: channel, Text: text})
	}
}

func (s *Server) sendEventTo(id game.Identity, e game.Event) {
	text := s.formatter.Event(e, id)
	if text == "" {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if conn.Nick() == id {
			s.sendNotice(conn, NoticeData{Text: text, Private: true})
		}
	}
}

// broadcast sends pre-formatted text to every subscriber of a channel.
func (s *Server) broadcast(channel, text string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if conn.InChannel(channel) {
			s.sendNotice(conn, NoticeData{Channel: channel, Text: text})
		}
	}
}

// notify sends private text to one connection.
func (s *Server) notify(c *Connection, text string) {
	s.sendNotice(c, NoticeData{Text: text, Private: true})
}

func (s *Server) sendNotice(c *Connection, data NoticeData) {
	msg, err := NewMessage(MessageNotice, data)
	if err != nil {
		s.logger.Error("failed to create notice", "error", err)
		return
	}
	if err := c.Send(msg); err != nil {
		s.logger.Debug("failed to send notice", "nick", c.Nick(), "error", err)
	}
}

func (s *Server) nickTaken(nick game.Identity, self *Connection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for conn := range s.connections {
		if conn != self && conn.Nick() == nick {
			return true
		}
	}
	return false
}
