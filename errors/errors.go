package errors

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound    = fmt.Errorf("room not found")
	ErrAlreadyJoined   = fmt.Errorf("session already joined")
	ErrSessionNotFound = fmt.Errorf("session not found")
	ErrValidation      = fmt.Errorf("invalid payload")
	ErrOperationFailed = fmt.Errorf("operation failed")
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
)

// Kind maps a fault to the stable identifier carried in error acks.
// Unknown faults collapse to the catch-all so internal details never
// reach clients.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "RoomNotFound"
	case errors.Is(err, ErrAlreadyJoined):
		return "AlreadyJoined"
	case errors.Is(err, ErrSessionNotFound):
		return "SessionNotFound"
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	default:
		return "OperationFailed"
	}
}
