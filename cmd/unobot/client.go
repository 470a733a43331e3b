package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/unobot/cmd/unobot/shared"
	"github.com/lox/unobot/internal/server"
)

// ClientCmd connects to a server as a line-oriented chat client.
type ClientCmd struct {
	Server  string `kong:"default='ws://localhost:8067/ws',help='WebSocket server URL'"`
	Nick    string `kong:"default='',help='Nick (defaults to $USER)'"`
	Channel string `kong:"default='#uno',help='Channel to join'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
}

func (c *ClientCmd) Run() error {
	logger := shared.SetupLogger(c.Debug)

	nick := strings.TrimSpace(c.Nick)
	if nick == "" {
		nick = os.Getenv("USER")
	}
	if nick == "" {
		nick = "player"
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.Server, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.Server, err)
	}
	defer conn.Close()

	if err := send(conn, server.MessageHello, server.HelloData{Nick: nick}); err != nil {
		return err
	}
	if err := send(conn, server.MessageJoinChannel, server.ChannelData{Channel: c.Channel}); err != nil {
		return err
	}
	logger.Info("connected", "server", c.Server, "nick", nick, "channel", c.Channel)

	ctx := shared.SetupSignalHandler(logger)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return conn.Close()
	})

	g.Go(func() error {
		for {
			var msg server.Message
			if err := conn.ReadJSON(&msg); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			printMessage(&msg)
		}
	})

	g.Go(func() error {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if err := send(conn, server.MessageChat, server.ChatData{Channel: c.Channel, Text: line}); err != nil {
				return err
			}
		}
		return scanner.Err()
	})

	err = g.Wait()
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func send(conn *websocket.Conn, t server.MessageType, data interface{}) error {
	msg, err := server.NewMessage(t, data)
	if err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

func printMessage(msg *server.Message) {
	switch msg.Type {
	case server.MessageWelcome:
		var data server.WelcomeData
		if json.Unmarshal(msg.Data, &data) == nil {
			fmt.Printf("* connected as %s\n", data.Nick)
		}
	case server.MessageNotice:
		var data server.NoticeData
		if json.Unmarshal(msg.Data, &data) != nil {
			return
		}
		if data.Private {
			fmt.Printf("* %s\n", data.Text)
		} else {
			fmt.Printf("[%s] %s\n", data.Channel, data.Text)
		}
	case server.MessageError:
		var data server.ErrorData
		if json.Unmarshal(msg.Data, &data) == nil {
			fmt.Printf("! %s\n", data.Message)
		}
	}
}
