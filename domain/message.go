// Package domain contains core concepts of the messaging hub.
// This file defines Message entities and their in-place mutations.
// Messages are append-only per room and never deleted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents one room message. Text and identity fields are
// immutable after creation; Reactions and ReadBy mutate in place and
// must only be touched under the runtime lock.
type Message struct {
	ID            uuid.UUID           `json:"messageId"`
	Author        string              `json:"authorUsername"`
	RoomID        RoomID              `json:"roomId"`
	Text          string              `json:"text"`
	Lang          string              `json:"lang,omitempty"`
	AttachmentURL string              `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time           `json:"timestamp"`
	Reactions     map[string][]string `json:"reactions"`
	ReadBy        []SessionID         `json:"readBy"`
}

// NewMessage stamps the server receipt time and records the author's
// session as the first reader (self-read).
func NewMessage(roomID RoomID, author string, authorSession SessionID, text, lang, attachmentURL string) *Message {
	return &Message{
		ID:            uuid.New(),
		Author:        author,
		RoomID:        roomID,
		Text:          text,
		Lang:          lang,
		AttachmentURL: attachmentURL,
		CreatedAt:     time.Now().UTC().Truncate(time.Millisecond),
		Reactions:     make(map[string][]string),
		ReadBy:        []SessionID{authorSession},
	}
}

// ToggleReaction adds the username under the label, or removes it when
// already present. A label whose last user toggles off is removed from
// the mapping entirely, so Reactions never carries an empty set.
func (m *Message) ToggleReaction(label, username string) {
	users := m.Reactions[label]
	for i, u := range users {
		if u == username {
			users = append(users[:i], users[i+1:]...)
			if len(users) == 0 {
				delete(m.Reactions, label)
			} else {
				m.Reactions[label] = users
			}
			return
		}
	}
	m.Reactions[label] = append(users, username)
}

// MarkRead records the session as having read the message. The read
// count is monotonically non-decreasing; a duplicate session is a no-op
// and is reported as unchanged.
func (m *Message) MarkRead(id SessionID) (count int, changed bool) {
	for _, existing := range m.ReadBy {
		if existing == id {
			return len(m.ReadBy), false
		}
	}
	m.ReadBy = append(m.ReadBy, id)
	return len(m.ReadBy), true
}

// Snapshot returns a deep copy safe to hand out after the lock is
// released.
func (m *Message) Snapshot() Message {
	cp := *m
	cp.Reactions = make(map[string][]string, len(m.Reactions))
	for label, users := range m.Reactions {
		cp.Reactions[label] = append([]string(nil), users...)
	}
	cp.ReadBy = append([]SessionID(nil), m.ReadBy...)
	return cp
}
