package runtime

import (
	"sync"
	"testing"

	"chat-hub/domain"

	"github.com/stretchr/testify/require"
)

func TestDirectory_SeedsGlobalRoom(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()

	room, ok := dir.RoomByID(domain.GlobalRoomID)
	req.True(ok)
	req.Equal(domain.GlobalRoomID, room.ID)
	req.Equal(domain.VisibilityPublic, room.Visibility)

	// The log is initialized together with the room
	_, hasLog := dir.logs[domain.GlobalRoomID]
	req.True(hasLog)
}

func TestDirectory_CreateRoom_InitializesLogAtomically(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()

	room := dir.CreateRoom("backend", domain.VisibilityPublic, "alice")

	req.NotEmpty(room.ID)
	req.Equal("backend", room.Name)
	req.Equal("alice", room.Creator)

	_, hasLog := dir.logs[room.ID]
	req.True(hasLog)

	stored, ok := dir.RoomByID(room.ID)
	req.True(ok)
	req.Equal(room.ID, stored.ID)
}

func TestDirectory_CreateRoom_UniqueIDsUnderConcurrency(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()

	const n = 64
	ids := make(chan domain.RoomID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- dir.CreateRoom("room", domain.VisibilityPublic, "").ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[domain.RoomID]struct{})
	for id := range ids {
		_, dup := seen[id]
		req.False(dup, "duplicate room id %s", id)
		seen[id] = struct{}{}

		// Every concurrently created room got its own log
		_, hasLog := dir.logs[id]
		req.True(hasLog)
	}
	req.Len(seen, n)
	req.Equal(n+1, dir.RoomCount()) // +1 for global
}

func TestDirectory_AllRooms_ElidesMemberSets(t *testing.T) {
	req := require.New(t)
	dir := NewDirectory()
	dir.CreateRoom("one", domain.VisibilityPrivate, "bob")

	rooms := dir.AllRooms()
	req.Len(rooms, 2)
	for _, r := range rooms {
		req.Nil(r.Members)
	}
}
