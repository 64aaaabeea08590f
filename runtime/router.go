package runtime

import (
	"log/slog"

	"chat-hub/contract"
	"chat-hub/domain"
)

// BroadcastRouter resolves room membership through the Directory and
// hands each delivery to the transport. Fan-out is best-effort: a
// failed recipient is logged and skipped, never retried, and never
// blocks the rest of the fan-out.
type BroadcastRouter struct {
	log       *slog.Logger
	dir       *Directory
	transport contract.Transport
}

func NewBroadcastRouter(log *slog.Logger, dir *Directory, transport contract.Transport) *BroadcastRouter {
	return &BroadcastRouter{log: log, dir: dir, transport: transport}
}

func (r *BroadcastRouter) ToSession(id domain.SessionID, event string, payload any) {
	if err := r.transport.Send(id, event, payload); err != nil {
		r.log.Warn("Delivery failed", "session", id, "event", event, "error", err)
	}
}

func (r *BroadcastRouter) ToRoom(roomID domain.RoomID, event string, payload any, exclude ...domain.SessionID) {
	skip := make(map[domain.SessionID]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	for _, id := range r.dir.MemberIDs(roomID) {
		if _, ok := skip[id]; ok {
			continue
		}
		r.ToSession(id, event, payload)
	}
}

func (r *BroadcastRouter) ToAll(event string, payload any) {
	for _, id := range r.dir.AllSessionIDs() {
		r.ToSession(id, event, payload)
	}
}
