package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/unobot/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrConnectionClosed = websocket.ErrCloseSent

// hub is the server-side handler a connection routes messages to.
type hub interface {
	handleHello(c *Connection, data HelloData)
	handleNick(c *Connection, data NickData)
	handleJoinChannel(c *Connection, data ChannelData)
	handlePartChannel(c *Connection, data ChannelData)
	handleChat(c *Connection, data ChatData)
}

// Connection wraps one WebSocket client: its claimed nick, the channels it
// has joined and the outgoing message queue.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	hub       hub
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once

	nick     game.Identity
	channels map[string]bool
}

// NewConnection creates a connection wrapper routing to the hub.
func NewConnection(conn *websocket.Conn, h hub, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		hub:      h,
		logger:   logger.WithPrefix("conn"),
		ctx:      ctx,
		cancel:   cancel,
		channels: make(map[string]bool),
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Done is closed when the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Send queues a message to the client. A full buffer closes the connection
// rather than blocking the game.
func (c *Connection) Send(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection", "nick", c.Nick())
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetNick records the nick this connection speaks as.
func (c *Connection) SetNick(nick game.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nick = nick
}

// Nick returns the connection's nick, empty before hello.
func (c *Connection) Nick() game.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nick
}

// JoinChannel subscribes the connection to a channel's notices.
func (c *Connection) JoinChannel(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels[channel] = true
}

// PartChannel unsubscribes the connection from a channel.
func (c *Connection) PartChannel(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, channel)
}

// InChannel reports whether the connection is subscribed to a channel.
func (c *Connection) InChannel(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels[channel]
}

func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "nick", c.Nick())

	switch msg.Type {
	case MessageHello:
		var data HelloData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse hello data")
			return
		}
		c.hub.handleHello(c, data)

	case MessageNick:
		var data NickData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse nick data")
			return
		}
		c.hub.handleNick(c, data)

	case MessageJoinChannel:
		var data ChannelData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse channel data")
			return
		}
		c.hub.handleJoinChannel(c, data)

	case MessagePartChannel:
		var data ChannelData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse channel data")
			return
		}
		c.hub.handlePartChannel(c, data)

	case MessageChat:
		var data ChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse chat data")
			return
		}
		c.hub.handleChat(c, data)

	default:
		c.sendError("unknown message type: " + string(msg.Type))
	}
}

func (c *Connection) sendError(message string) {
	msg, err := NewMessage(MessageError, ErrorData{Message: message})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}
	_ = c.Send(msg)
}
