package server

import (
	"encoding/json"
	"time"
)

// MessageType discriminates the WebSocket message envelope.
type MessageType string

const (
	// Client → server
	MessageHello       MessageType = "hello"
	MessageJoinChannel MessageType = "join_channel"
	MessagePartChannel MessageType = "part_channel"
	MessageNick        MessageType = "nick"
	MessageChat        MessageType = "chat"

	// Server → client
	MessageWelcome MessageType = "welcome"
	MessageNotice  MessageType = "notice"
	MessageError   MessageType = "error"
)

// Message is the wire envelope for both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage wraps a payload in an envelope with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// HelloData introduces the client and claims a nick.
type HelloData struct {
	Nick string `json:"nick"`
}

// ChannelData names a channel to join or part.
type ChannelData struct {
	Channel string `json:"channel"`
}

// NickData requests a nick change.
type NickData struct {
	Nick string `json:"nick"`
}

// ChatData is a line of chat typed into a channel.
type ChatData struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// WelcomeData confirms the hello and echoes the accepted nick.
type WelcomeData struct {
	Nick string `json:"nick"`
}

// NoticeData is a formatted game notice. Private notices carry no channel.
type NoticeData struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
	Private bool   `json:"private,omitempty"`
}

// ErrorData reports a protocol-level failure.
type ErrorData struct {
	Message string `json:"message"`
}
