package runtime

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"

	"github.com/go-playground/validator/v10"
)

// Sanitizer cleans message text before it is stored or broadcast and
// tags it with a detected language code.
type Sanitizer interface {
	Sanitize(text string) (clean string, lang string)
}

// Coordinator is the per-session state machine. It binds transport
// sessions to usernames and rooms, routes every inbound event to the
// right store operation, and decides what goes back out. A session is
// Unjoined until its join is accepted, Joined afterwards; join is the
// only event accepted while Unjoined, and a second join is rejected.
//
// No handler fault may tear down a session: request/response events
// answer with an error ack, fire-and-forget events log and move on.
type Coordinator struct {
	log       *slog.Logger
	dir       *Directory
	rooms     *Rooms
	messages  *Messages
	router    contract.Router
	sanitizer Sanitizer
	validate  *validator.Validate
}

func NewCoordinator(log *slog.Logger, dir *Directory, rooms *Rooms, messages *Messages, router contract.Router, sanitizer Sanitizer) *Coordinator {
	return &Coordinator{
		log:       log,
		dir:       dir,
		rooms:     rooms,
		messages:  messages,
		router:    router,
		sanitizer: sanitizer,
		validate:  validator.New(),
	}
}

// SetRouter wires the outbound side once the transport exists; the
// transport needs the coordinator as its handler, so construction is
// two-step. Must be called before the first connection is accepted.
func (c *Coordinator) SetRouter(router contract.Router) {
	c.router = router
}

// Ack payloads. Status is "ok" or "error"; error acks carry the fault
// kind from the taxonomy plus a human-readable detail.

type ErrorAck struct {
	Status string `json:"status"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

type MessageAck struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
}

type RoomAck struct {
	Status string      `json:"status"`
	Room   domain.Room `json:"room"`
}

type SearchAck struct {
	Status  string           `json:"status"`
	Results []domain.Message `json:"results"`
}

func (c *Coordinator) Connected(id domain.SessionID) {
	c.log.Debug("Session connected", "session", id)
}

// Disconnected runs the cleanup mutation before any notification goes
// out. Disconnection is transport-driven, not an error path.
func (c *Coordinator) Disconnected(id domain.SessionID) {
	session, ok := c.rooms.Leave(id)
	if !ok {
		c.log.Debug("Unjoined session disconnected", "session", id)
		return
	}
	roster := c.rooms.Roster(session.RoomID)
	c.router.ToRoom(session.RoomID, event.UserLeft, event.UserLeftPayload{
		Username: session.Username,
		RoomID:   session.RoomID,
		Roster:   roster,
	})
}

// Handle dispatches one inbound event. Panics are converted into
// OperationFailed results here so nothing propagates past the handler
// boundary.
func (c *Coordinator) Handle(in contract.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			c.fail(in, fmt.Errorf("%w: %v", errors.ErrOperationFailed, r))
		}
	}()

	switch in.Name {
	case event.Join:
		c.handleJoin(in)
	case event.Message:
		c.handleMessage(in)
	case event.Typing:
		c.handleTyping(in)
	case event.PrivateMessage:
		c.handlePrivateMessage(in)
	case event.ReactMessage:
		c.handleReact(in)
	case event.MarkRead:
		c.handleMarkRead(in)
	case event.CreateRoom:
		c.handleCreateRoom(in)
	case event.SwitchRoom:
		c.handleSwitchRoom(in)
	case event.SearchMessages:
		c.handleSearch(in)
	default:
		c.fail(in, fmt.Errorf("%w: unknown event %q", errors.ErrValidation, in.Name))
	}
}

func (c *Coordinator) handleJoin(in contract.Inbound) {
	req, err := decode[JoinRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	roomID := domain.RoomID(req.RoomID)
	if roomID == "" {
		roomID = domain.GlobalRoomID
	}

	roster, err := c.rooms.Join(in.Session, req.Username, roomID)
	if err != nil {
		c.fail(in, err)
		return
	}
	session, _ := c.dir.LookupSession(in.Session)

	c.router.ToSession(in.Session, event.PreviousMessages, event.PreviousMessagesPayload{
		RoomID:   roomID,
		Messages: c.messages.History(roomID),
	})
	c.router.ToSession(in.Session, event.Roster, event.RosterPayload{RoomID: roomID, Users: roster})
	c.router.ToRoom(roomID, event.UserJoined, event.UserJoinedPayload{
		User:   session,
		Roster: roster,
	}, in.Session)
}

func (c *Coordinator) handleMessage(in contract.Inbound) {
	session, ok := c.dir.LookupSession(in.Session)
	if !ok {
		c.fail(in, errors.ErrSessionNotFound)
		return
	}
	req, err := decode[MessageRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}

	text, lang := req.Text, ""
	if c.sanitizer != nil {
		text, lang = c.sanitizer.Sanitize(text)
	}

	msg, err := c.messages.Append(session.RoomID, session.Username, session.ID, text, lang, req.AttachmentURL)
	if err != nil {
		c.fail(in, err)
		return
	}

	c.router.ToRoom(session.RoomID, event.Message, msg)
	c.ack(in, MessageAck{Status: "ok", MessageID: msg.ID.String()})
}

func (c *Coordinator) handleTyping(in contract.Inbound) {
	session, ok := c.dir.LookupSession(in.Session)
	if !ok {
		c.fail(in, errors.ErrSessionNotFound)
		return
	}
	req, err := decode[TypingRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	c.router.ToRoom(session.RoomID, event.Typing, event.TypingPayload{
		Username: session.Username,
		IsTyping: req.IsTyping,
	}, session.ID)
}

func (c *Coordinator) handlePrivateMessage(in contract.Inbound) {
	sender, ok := c.dir.LookupSession(in.Session)
	if !ok {
		c.fail(in, errors.ErrSessionNotFound)
		return
	}
	req, err := decode[PrivateMessageRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	target, ok := c.dir.LookupSession(domain.SessionID(req.To))
	if !ok {
		c.fail(in, fmt.Errorf("%w: unknown recipient", errors.ErrSessionNotFound))
		return
	}

	pm := c.messages.AppendPrivate(sender, target, req.Text)
	c.router.ToSession(target.ID, event.PrivateMessage, pm)
	c.router.ToSession(sender.ID, event.PrivateMessage, pm)
	c.ack(in, MessageAck{Status: "ok", MessageID: pm.ID.String()})
}

func (c *Coordinator) handleReact(in contract.Inbound) {
	session, ok := c.dir.LookupSession(in.Session)
	if !ok {
		c.fail(in, errors.ErrSessionNotFound)
		return
	}
	req, err := decode[ReactRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	// Stale room or message reference is a silent no-op: nothing is
	// emitted and the session lives on.
	reactions, ok := c.messages.ToggleReaction(session.RoomID, req.MessageID, req.Label, session.Username)
	if !ok {
		return
	}
	c.router.ToRoom(session.RoomID, event.MessageReactions, event.MessageReactionsPayload{
		MessageID: req.MessageID,
		Reactions: reactions,
	})
}

func (c *Coordinator) handleMarkRead(in contract.Inbound) {
	session, ok := c.dir.LookupSession(in.Session)
	if !ok {
		c.fail(in, errors.ErrSessionNotFound)
		return
	}
	req, err := decode[MarkReadRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	count, changed := c.messages.MarkRead(session.RoomID, req.MessageID, session.ID)
	if !changed {
		return
	}
	c.router.ToRoom(session.RoomID, event.MessageRead, event.MessageReadPayload{
		MessageID: req.MessageID,
		ReadCount: count,
	})
}

func (c *Coordinator) handleCreateRoom(in contract.Inbound) {
	session, ok := c.dir.LookupSession(in.Session)
	if !ok {
		c.fail(in, errors.ErrSessionNotFound)
		return
	}
	req, err := decode[CreateRoomRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	visibility := domain.Visibility(req.Visibility)
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}

	room := c.dir.CreateRoom(req.Name, visibility, session.Username)
	c.ack(in, RoomAck{Status: "ok", Room: room})
	c.router.ToAll(event.RoomCreated, room)
}

func (c *Coordinator) handleSwitchRoom(in contract.Inbound) {
	req, err := decode[SwitchRoomRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	newRoomID := domain.RoomID(req.RoomID)

	oldRoomID, roster, err := c.rooms.Switch(in.Session, newRoomID)
	if err != nil {
		c.fail(in, err)
		return
	}
	session, _ := c.dir.LookupSession(in.Session)

	room, ok := c.dir.RoomByID(newRoomID)
	if !ok {
		// Permissive policy: the membership is recorded against the
		// session even though the room is unknown, so the client sees
		// an empty room rather than a fault.
		room = domain.Room{ID: newRoomID}
	}
	c.router.ToSession(in.Session, event.RoomState, event.RoomStatePayload{
		Room:     room,
		Messages: c.messages.History(newRoomID),
		Roster:   roster,
	})
	c.router.ToRoom(oldRoomID, event.UserLeft, event.UserLeftPayload{
		Username: session.Username,
		RoomID:   oldRoomID,
		Roster:   c.rooms.Roster(oldRoomID),
	})
	c.router.ToRoom(newRoomID, event.UserJoined, event.UserJoinedPayload{
		User:   session,
		Roster: roster,
	}, session.ID)
}

func (c *Coordinator) handleSearch(in contract.Inbound) {
	session, ok := c.dir.LookupSession(in.Session)
	if !ok {
		c.fail(in, errors.ErrSessionNotFound)
		return
	}
	req, err := decode[SearchRequest](c.validate, in.Payload)
	if err != nil {
		c.fail(in, err)
		return
	}
	c.ack(in, SearchAck{Status: "ok", Results: c.messages.Search(session.RoomID, req.Query)})
}

func (c *Coordinator) ack(in contract.Inbound, payload any) {
	if in.Ack != nil {
		in.Ack(payload)
	}
}

// fail converts a handler fault into an error ack when the event was
// request/response, or a diagnostic log when it was fire-and-forget.
func (c *Coordinator) fail(in contract.Inbound, err error) {
	if in.Ack != nil {
		in.Ack(ErrorAck{Status: "error", Kind: errors.Kind(err), Detail: err.Error()})
		return
	}
	c.log.Warn("Event handling failed", "session", in.Session, "event", in.Name, "error", err)
}

// decode unmarshals and validates an inbound payload. Both failure
// modes surface as ValidationError.
func decode[T any](validate *validator.Validate, raw json.RawMessage) (T, error) {
	var req T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			return req, fmt.Errorf("%w: %v", errors.ErrValidation, err)
		}
	}
	if err := validate.Struct(&req); err != nil {
		return req, fmt.Errorf("%w: %v", errors.ErrValidation, err)
	}
	return req, nil
}
