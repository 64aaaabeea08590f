package runtime

import (
	"strings"

	"chat-hub/domain"
	"chat-hub/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Messages is the store for room logs and private conversations.
// Logs are append-only; messages mutate in place (reactions, read
// receipts) and are located by linear scan. Per-room history is
// expected to stay small, so the O(n) lookup per mutation is a known,
// accepted cost rather than a hidden defect.
type Messages struct {
	dir *Directory
}

func NewMessages(dir *Directory) *Messages {
	return &Messages{dir: dir}
}

// Append stores a new message at the tail of the room's log. The log
// exists for every room created through the Directory; an
// uninitialized log means the room id never existed.
func (m *Messages) Append(roomID domain.RoomID, author string, authorSession domain.SessionID, text, lang, attachmentURL string) (domain.Message, error) {
	d := m.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.logs[roomID]; !ok {
		return domain.Message{}, errors.ErrRoomNotFound
	}
	msg := domain.NewMessage(roomID, author, authorSession, text, lang, attachmentURL)
	d.logs[roomID] = append(d.logs[roomID], msg)
	return msg.Snapshot(), nil
}

// ToggleReaction flips the username's presence under the label and
// returns the updated reactions mapping. A stale room or message
// reference is a silent no-op: mutation endpoints must not fault the
// session over a reference the client is about to drop anyway.
func (m *Messages) ToggleReaction(roomID domain.RoomID, messageID uuid.UUID, label, username string) (map[string][]string, bool) {
	d := m.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	msg := m.find(roomID, messageID)
	if msg == nil {
		return nil, false
	}
	msg.ToggleReaction(label, username)
	return msg.Snapshot().Reactions, true
}

// MarkRead records a read receipt and reports the new count. Changed
// is false when the session already read the message or the reference
// is stale.
func (m *Messages) MarkRead(roomID domain.RoomID, messageID uuid.UUID, id domain.SessionID) (count int, changed bool) {
	d := m.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	msg := m.find(roomID, messageID)
	if msg == nil {
		return 0, false
	}
	return msg.MarkRead(id)
}

// Search returns the room's messages whose text or author contains the
// query, case-insensitively, in log order.
func (m *Messages) Search(roomID domain.RoomID, query string) []domain.Message {
	d := m.dir
	d.mu.RLock()
	defer d.mu.RUnlock()

	needle := strings.ToLower(query)
	return lo.FilterMap(d.logs[roomID], func(msg *domain.Message, _ int) (domain.Message, bool) {
		if strings.Contains(strings.ToLower(msg.Text), needle) ||
			strings.Contains(strings.ToLower(msg.Author), needle) {
			return msg.Snapshot(), true
		}
		return domain.Message{}, false
	})
}

// History returns the room's full log in arrival order. Unknown rooms
// yield an empty history, matching the permissive switch policy.
func (m *Messages) History(roomID domain.RoomID) []domain.Message {
	d := m.dir
	d.mu.RLock()
	defer d.mu.RUnlock()

	return lo.Map(d.logs[roomID], func(msg *domain.Message, _ int) domain.Message {
		return msg.Snapshot()
	})
}

// AppendPrivate files a direct message under the canonical
// conversation key shared by both directions.
func (m *Messages) AppendPrivate(from, to domain.Session, text string) domain.PrivateMessage {
	pm := domain.NewPrivateMessage(from, to, text)

	d := m.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	key := domain.ConversationKey(from.ID, to.ID)
	d.privates[key] = append(d.privates[key], pm)
	return pm
}

// Conversation returns the private log between two sessions in
// arrival order.
func (m *Messages) Conversation(a, b domain.SessionID) []domain.PrivateMessage {
	d := m.dir
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]domain.PrivateMessage(nil), d.privates[domain.ConversationKey(a, b)]...)
}

// find must be called with the lock held. Linear scan by design.
func (m *Messages) find(roomID domain.RoomID, messageID uuid.UUID) *domain.Message {
	for _, msg := range m.dir.logs[roomID] {
		if msg.ID == messageID {
			return msg
		}
	}
	return nil
}
