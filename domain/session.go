// Package domain contains core concepts of the messaging hub.
// This file defines Session entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// SessionID identifies one live connection. It is opaque, unique per
// connection, and the only key used for routing. Username is display
// metadata and never a routing key.
type SessionID string

type Session struct {
	ID       SessionID `json:"sessionId"`
	Username string    `json:"username"`
	RoomID   RoomID    `json:"currentRoomId"`
	JoinedAt time.Time `json:"joinedAt"`
}
