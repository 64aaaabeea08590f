package runtime

import (
	"sort"
	"time"

	"chat-hub/domain"
	"chat-hub/errors"

	"github.com/samber/lo"
)

// Rooms manages membership transitions. Every transition composes the
// session registry mutation and the member set mutation under one lock
// acquisition, so a session is never registered without a membership
// or member of two rooms at once.
type Rooms struct {
	dir *Directory
}

func NewRooms(dir *Directory) *Rooms {
	return &Rooms{dir: dir}
}

// Join binds a new session to a room and returns the resulting roster.
// The target room must exist; the global room is pre-seeded, so this
// only fails on a bad explicit id.
func (r *Rooms) Join(id domain.SessionID, username string, roomID domain.RoomID) ([]domain.Session, error) {
	d := r.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.sessions[id]; ok {
		return nil, errors.ErrAlreadyJoined
	}
	if err := d.ensureRoomExists(roomID); err != nil {
		return nil, err
	}

	d.sessions[id] = &domain.Session{
		ID:       id,
		Username: username,
		RoomID:   roomID,
		JoinedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	d.rooms[roomID].Members[id] = struct{}{}

	return r.roster(roomID), nil
}

// Switch moves the session from its current room to newRoomID.
// The policy is permissive: membership is recorded even when the
// target room is unknown, in which case the returned roster is empty
// and history will be too. A vanished old room is a no-op.
func (r *Rooms) Switch(id domain.SessionID, newRoomID domain.RoomID) (oldRoomID domain.RoomID, roster []domain.Session, err error) {
	d := r.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.sessions[id]
	if !ok {
		return "", nil, errors.ErrSessionNotFound
	}

	oldRoomID = session.RoomID
	if old, ok := d.rooms[oldRoomID]; ok {
		delete(old.Members, id)
	}
	session.RoomID = newRoomID
	if target, ok := d.rooms[newRoomID]; ok {
		target.Members[id] = struct{}{}
	}

	return oldRoomID, r.roster(newRoomID), nil
}

// Leave removes the session from the registry and from its room's
// member set, returning what is needed to notify the remaining
// members. Called on disconnect; unknown sessions are reported, not
// faulted.
func (r *Rooms) Leave(id domain.SessionID) (domain.Session, bool) {
	d := r.dir
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	delete(d.sessions, id)
	if room, ok := d.rooms[session.RoomID]; ok {
		delete(room.Members, id)
	}
	return *session, true
}

// Roster returns the live session infos for a room, ordered by join
// time. Member ids with no registered session are dropped rather than
// surfaced, keeping the view usable even if the registries ever
// disagree.
func (r *Rooms) Roster(roomID domain.RoomID) []domain.Session {
	d := r.dir
	d.mu.RLock()
	defer d.mu.RUnlock()
	return r.roster(roomID)
}

// roster must be called with at least a read lock held.
func (r *Rooms) roster(roomID domain.RoomID) []domain.Session {
	d := r.dir
	members := lo.FilterMap(d.memberIDs(roomID), func(id domain.SessionID, _ int) (domain.Session, bool) {
		s, ok := d.sessions[id]
		if !ok {
			return domain.Session{}, false
		}
		return *s, true
	})
	sort.Slice(members, func(i, j int) bool {
		if members[i].JoinedAt.Equal(members[j].JoinedAt) {
			return members[i].ID < members[j].ID
		}
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return members
}
