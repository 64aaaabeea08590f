package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PrivateMessage is a direct message between two sessions. Both
// directions of a conversation share one log, filed under the
// canonical conversation key.
type PrivateMessage struct {
	ID           uuid.UUID `json:"messageId"`
	FromUsername string    `json:"fromUsername"`
	From         SessionID `json:"fromSessionId"`
	ToUsername   string    `json:"toUsername"`
	To           SessionID `json:"toSessionId"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"timestamp"`
}

func NewPrivateMessage(from Session, to Session, text string) PrivateMessage {
	return PrivateMessage{
		ID:           uuid.New(),
		FromUsername: from.Username,
		From:         from.ID,
		ToUsername:   to.Username,
		To:           to.ID,
		Text:         text,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

// ConversationKey canonicalizes the unordered session pair so both
// directions land in the same log.
func ConversationKey(a, b SessionID) string {
	if strings.Compare(string(a), string(b)) > 0 {
		a, b = b, a
	}
	return string(a) + ":" + string(b)
}
