package domain

import (
	"time"

	"github.com/google/uuid"
)

type RoomID string

// GlobalRoomID is the well-known room every deployment carries.
// It is seeded at startup and never destroyed.
const GlobalRoomID RoomID = "global"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

type Room struct {
	ID         RoomID     `json:"roomId"`
	Name       string     `json:"name"`
	Visibility Visibility `json:"visibility"`
	Creator    string     `json:"creatorUsername,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`

	// Members is mutated only by the runtime under its lock.
	Members map[SessionID]struct{} `json:"-"`
}

func NewRoom(name string, visibility Visibility, creator string) *Room {
	return &Room{
		ID:         RoomID(uuid.NewString()),
		Name:       name,
		Visibility: visibility,
		Creator:    creator,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
		Members:    make(map[SessionID]struct{}),
	}
}
