// Package runtime coordinates sessions, rooms, and message state.
// It owns the process-wide registries and serializes every
// read-modify-write against them. It contains no transport logic.
package runtime

import (
	"sync"
	"time"

	"chat-hub/domain"
	"chat-hub/errors"
)

// Directory holds the authoritative in-memory registries: connected
// sessions, rooms, per-room message logs, and per-conversation private
// logs. One coarse lock guards all of them; every mutation that must
// be atomic (session registration + room membership, room creation +
// log initialization) happens under a single acquisition.
//
// Construct one Directory per process at startup and pass it by
// reference. Tests get isolated instances.
type Directory struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
	rooms    map[domain.RoomID]*domain.Room
	logs     map[domain.RoomID][]*domain.Message
	privates map[string][]domain.PrivateMessage
}

// NewDirectory seeds the well-known global room and its empty log.
func NewDirectory() *Directory {
	d := &Directory{
		sessions: make(map[domain.SessionID]*domain.Session),
		rooms:    make(map[domain.RoomID]*domain.Room),
		logs:     make(map[domain.RoomID][]*domain.Message),
		privates: make(map[string][]domain.PrivateMessage),
	}
	global := &domain.Room{
		ID:         domain.GlobalRoomID,
		Name:       "Global",
		Visibility: domain.VisibilityPublic,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
		Members:    make(map[domain.SessionID]struct{}),
	}
	d.rooms[global.ID] = global
	d.logs[global.ID] = nil
	return d
}

// LookupSession returns a snapshot of the session, or false when the
// id is unknown.
func (d *Directory) LookupSession(id domain.SessionID) (domain.Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	return *s, true
}

// RoomByID returns a shallow copy of the room without its member set.
func (d *Directory) RoomByID(id domain.RoomID) (domain.Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	cp := *r
	cp.Members = nil
	return cp, true
}

// CreateRoom generates a unique room id and atomically initializes the
// member set and an empty message log, so no room can ever exist
// without a log.
func (d *Directory) CreateRoom(name string, visibility domain.Visibility, creator string) domain.Room {
	room := domain.NewRoom(name, visibility, creator)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[room.ID] = room
	d.logs[room.ID] = nil

	cp := *room
	cp.Members = nil
	return cp
}

// AllRooms lists every room, member sets elided.
func (d *Directory) AllRooms() []domain.Room {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		cp := *r
		cp.Members = nil
		out = append(out, cp)
	}
	return out
}

// SessionCount reports how many sessions are currently registered.
func (d *Directory) SessionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

// RoomCount reports how many rooms exist, the global room included.
func (d *Directory) RoomCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// AllSessionIDs returns every registered session id, for global
// broadcasts.
func (d *Directory) AllSessionIDs() []domain.SessionID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.SessionID, 0, len(d.sessions))
	for id := range d.sessions {
		out = append(out, id)
	}
	return out
}

// memberIDs must be called with at least a read lock held.
func (d *Directory) memberIDs(roomID domain.RoomID) []domain.SessionID {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.SessionID, 0, len(room.Members))
	for id := range room.Members {
		out = append(out, id)
	}
	return out
}

// MemberIDs returns the session ids currently in the room, in no
// particular order. Unknown rooms yield nil.
func (d *Directory) MemberIDs(roomID domain.RoomID) []domain.SessionID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.memberIDs(roomID)
}

// ensureRoomExists must be called with the write lock held.
func (d *Directory) ensureRoomExists(roomID domain.RoomID) error {
	if _, ok := d.rooms[roomID]; !ok {
		return errors.ErrRoomNotFound
	}
	return nil
}
