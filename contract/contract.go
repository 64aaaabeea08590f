//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"encoding/json"
	"reflect"

	"chat-hub/domain"
)

// Ack returns a structured result to the originating session,
// correlated with its triggering event. Nil when the client did not
// request one.
type Ack func(payload any)

// Inbound is one event delivered by the channel transport.
type Inbound struct {
	Session domain.SessionID
	Name    string
	Payload json.RawMessage
	Ack     Ack
}

// Transport delivers one payload to one connected session. Delivery is
// best-effort and non-blocking; a slow or gone recipient is the
// transport's problem, never the caller's.
type Transport interface {
	Send(id domain.SessionID, event string, payload any) error
}

// Router fans events out to sessions. Per-recipient failure is
// isolated and logged, never retried and never propagated.
type Router interface {
	ToSession(id domain.SessionID, event string, payload any)
	ToRoom(roomID domain.RoomID, event string, payload any, exclude ...domain.SessionID)
	ToAll(event string, payload any)
}

// SessionHandler receives the transport's lifecycle signals and
// inbound events.
type SessionHandler interface {
	Connected(id domain.SessionID)
	Disconnected(id domain.SessionID)
	Handle(in Inbound)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
