// Package event defines the wire contract of the hub: inbound event
// names accepted from clients and the payloads broadcast back. Field
// names are stable; clients interoperate against these shapes.
package event

import (
	"chat-hub/domain"

	"github.com/google/uuid"
)

// Inbound event names.
const (
	Join           = "join"
	Message        = "message"
	Typing         = "typing"
	PrivateMessage = "private-message"
	ReactMessage   = "react-message"
	MarkRead       = "mark-read"
	CreateRoom     = "create-room"
	SwitchRoom     = "switch-room"
	SearchMessages = "search-messages"
)

// Outbound event names.
const (
	PreviousMessages = "previous-messages"
	Roster           = "roster"
	UserJoined       = "user-joined"
	UserLeft         = "user-left"
	RoomCreated      = "room-created"
	RoomState        = "room-state"
	MessageReactions = "message-reactions"
	MessageRead      = "message-read"
)

type UserJoinedPayload struct {
	User   domain.Session   `json:"user"`
	Roster []domain.Session `json:"roster"`
}

type UserLeftPayload struct {
	Username string           `json:"username"`
	RoomID   domain.RoomID    `json:"roomId"`
	Roster   []domain.Session `json:"roster"`
}

type RosterPayload struct {
	RoomID domain.RoomID    `json:"roomId"`
	Users  []domain.Session `json:"users"`
}

type PreviousMessagesPayload struct {
	RoomID   domain.RoomID    `json:"roomId"`
	Messages []domain.Message `json:"messages"`
}

type TypingPayload struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type MessageReactionsPayload struct {
	MessageID uuid.UUID           `json:"messageId"`
	Reactions map[string][]string `json:"reactions"`
}

type MessageReadPayload struct {
	MessageID uuid.UUID `json:"messageId"`
	ReadCount int       `json:"readCount"`
}

type RoomStatePayload struct {
	Room     domain.Room      `json:"room"`
	Messages []domain.Message `json:"messages"`
	Roster   []domain.Session `json:"roster"`
}
