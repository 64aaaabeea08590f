package runtime

import (
	"github.com/google/uuid"
)

// Inbound payload shapes. Validation tags run before dispatch; a
// failing payload becomes a ValidationError ack and never reaches the
// stores.

type JoinRequest struct {
	Username string `json:"username" validate:"required"`
	RoomID   string `json:"roomId"`
}

type MessageRequest struct {
	Text          string `json:"text" validate:"required"`
	AttachmentURL string `json:"attachmentUrl" validate:"omitempty,url"`
}

type TypingRequest struct {
	IsTyping bool `json:"isTyping"`
}

type PrivateMessageRequest struct {
	To   string `json:"toSessionId" validate:"required"`
	Text string `json:"text" validate:"required"`
}

type ReactRequest struct {
	MessageID uuid.UUID `json:"messageId" validate:"required"`
	Label     string    `json:"reactionLabel" validate:"required"`
}

type MarkReadRequest struct {
	MessageID uuid.UUID `json:"messageId" validate:"required"`
}

type CreateRoomRequest struct {
	Name       string `json:"name" validate:"required"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private"`
}

type SwitchRoomRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}
