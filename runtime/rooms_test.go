package runtime

import (
	"testing"

	"chat-hub/domain"
	"chat-hub/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// membershipCount reports how many rooms currently contain the session.
func membershipCount(dir *Directory, id domain.SessionID) int {
	dir.mu.RLock()
	defer dir.mu.RUnlock()
	count := 0
	for _, room := range dir.rooms {
		if _, ok := room.Members[id]; ok {
			count++
		}
	}
	return count
}

func TestRooms_Join_AddsSessionAndComputesRoster(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)
	id := domain.SessionID(uuid.NewString())

	// When a session joins the global room
	roster, err := rooms.Join(id, "alice", domain.GlobalRoomID)
	req.NoError(err)

	// Then it is registered with a membership in exactly one room
	session, ok := dir.LookupSession(id)
	req.True(ok)
	req.Equal("alice", session.Username)
	req.Equal(domain.GlobalRoomID, session.RoomID)
	req.Equal(1, membershipCount(dir, id))

	req.Len(roster, 1)
	req.Equal(id, roster[0].ID)
}

func TestRooms_Join_UnknownRoomFails(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)
	id := domain.SessionID(uuid.NewString())

	_, err := rooms.Join(id, "alice", "no-such-room")
	req.ErrorIs(err, errors.ErrRoomNotFound)

	// A failed join leaves nothing behind
	_, ok := dir.LookupSession(id)
	req.False(ok)
	req.Equal(0, membershipCount(dir, id))
}

func TestRooms_Join_TwiceIsRejected(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)
	id := domain.SessionID(uuid.NewString())

	_, err := rooms.Join(id, "alice", domain.GlobalRoomID)
	req.NoError(err)

	// A second join on the same session is an explicit fault, and the
	// existing state is untouched
	_, err = rooms.Join(id, "impostor", domain.GlobalRoomID)
	req.ErrorIs(err, errors.ErrAlreadyJoined)

	session, _ := dir.LookupSession(id)
	req.Equal("alice", session.Username)
}

func TestRooms_Switch_MembershipStaysSingular(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)
	id := domain.SessionID(uuid.NewString())
	other := dir.CreateRoom("backend", domain.VisibilityPublic, "alice")

	_, err := rooms.Join(id, "alice", domain.GlobalRoomID)
	req.NoError(err)

	oldRoom, roster, err := rooms.Switch(id, other.ID)
	req.NoError(err)
	req.Equal(domain.GlobalRoomID, oldRoom)
	req.Len(roster, 1)

	// At every observable instant the session belongs to at most one room
	req.Equal(1, membershipCount(dir, id))
	session, _ := dir.LookupSession(id)
	req.Equal(other.ID, session.RoomID)
	req.Empty(rooms.Roster(domain.GlobalRoomID))
}

func TestRooms_Switch_UnknownTargetIsPermissive(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)
	id := domain.SessionID(uuid.NewString())

	_, err := rooms.Join(id, "alice", domain.GlobalRoomID)
	req.NoError(err)

	// Switching to a room that does not exist still records the
	// session's intent; the roster just comes back empty
	oldRoom, roster, err := rooms.Switch(id, "vanished")
	req.NoError(err)
	req.Equal(domain.GlobalRoomID, oldRoom)
	req.Empty(roster)

	session, _ := dir.LookupSession(id)
	req.Equal(domain.RoomID("vanished"), session.RoomID)
	req.Equal(0, membershipCount(dir, id))
}

func TestRooms_Switch_UnjoinedSessionFails(t *testing.T) {
	req := require.New(t)
	rooms := NewRooms(NewDirectory())

	_, _, err := rooms.Switch("ghost", domain.GlobalRoomID)
	req.ErrorIs(err, errors.ErrSessionNotFound)
}

func TestRooms_Leave_RemovesEverything(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)
	id := domain.SessionID(uuid.NewString())

	_, err := rooms.Join(id, "alice", domain.GlobalRoomID)
	req.NoError(err)

	left, ok := rooms.Leave(id)
	req.True(ok)
	req.Equal("alice", left.Username)
	req.Equal(domain.GlobalRoomID, left.RoomID)

	_, found := dir.LookupSession(id)
	req.False(found)
	req.Equal(0, membershipCount(dir, id))

	// Leaving twice reports absence instead of faulting
	_, ok = rooms.Leave(id)
	req.False(ok)
}

func TestRooms_Roster_DropsStaleMembers(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)
	a := domain.SessionID(uuid.NewString())
	b := domain.SessionID(uuid.NewString())

	_, err := rooms.Join(a, "alice", domain.GlobalRoomID)
	req.NoError(err)
	_, err = rooms.Join(b, "bob", domain.GlobalRoomID)
	req.NoError(err)

	// Simulate a registry inconsistency: member id with no session
	dir.mu.Lock()
	delete(dir.sessions, b)
	dir.mu.Unlock()

	roster := rooms.Roster(domain.GlobalRoomID)
	req.Len(roster, 1)
	req.Equal(a, roster[0].ID)
}

func TestRooms_Roster_OrderedByJoinTime(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	rooms := NewRooms(dir)

	for i := 0; i < 5; i++ {
		_, err := rooms.Join(domain.SessionID(uuid.NewString()), "user", domain.GlobalRoomID)
		req.NoError(err)
	}

	roster := rooms.Roster(domain.GlobalRoomID)
	req.Len(roster, 5)
	for i := 1; i < len(roster); i++ {
		req.False(roster[i].JoinedAt.Before(roster[i-1].JoinedAt))
	}
}
