// Interactive terminal client for the hub. Plain lines are sent as
// room messages; slash commands drive rooms, search, and direct
// messages. Purely a development tool: the wire contract it speaks is
// the same one browser clients use.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"chat-hub/domain"
	"chat-hub/domain/event"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	AckID int64           `json:"ackId,omitempty"`
}

type app struct {
	conn  *websocket.Conn
	ackID atomic.Int64

	mu     sync.Mutex
	roster []domain.Session
}

func main() {
	addr := flag.String("addr", "localhost:8080", "hub address")
	user := flag.String("user", "", "username (required)")
	room := flag.String("room", "", "room id, defaults to global")
	flag.Parse()

	if *user == "" {
		log.Fatal("missing -user")
	}

	url := fmt.Sprintf("ws://%s/ws", *addr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	a := &app{conn: conn}
	a.send(event.Join, map[string]string{"username": *user, "roomId": *room}, false)

	go a.listen()

	color.Cyan.Println("Connected. /who /create /switch /search /dm, plain text to chat.")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		a.dispatch(strings.TrimSpace(scanner.Text()))
	}
}

func (a *app) dispatch(line string) {
	switch {
	case line == "":
	case line == "/who":
		a.printRoster()
	case strings.HasPrefix(line, "/create "):
		a.send(event.CreateRoom, map[string]string{"name": strings.TrimPrefix(line, "/create ")}, true)
	case strings.HasPrefix(line, "/switch "):
		a.send(event.SwitchRoom, map[string]string{"roomId": strings.TrimPrefix(line, "/switch ")}, false)
	case strings.HasPrefix(line, "/search "):
		a.send(event.SearchMessages, map[string]string{"query": strings.TrimPrefix(line, "/search ")}, true)
	case strings.HasPrefix(line, "/dm "):
		parts := strings.SplitN(strings.TrimPrefix(line, "/dm "), " ", 2)
		if len(parts) != 2 {
			color.Red.Println("usage: /dm <sessionId> <text>")
			return
		}
		a.send(event.PrivateMessage, map[string]string{"toSessionId": parts[0], "text": parts[1]}, true)
	default:
		a.send(event.Message, map[string]string{"text": line}, true)
	}
}

func (a *app) send(name string, data any, withAck bool) {
	f := frame{Event: name}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			color.Red.Println("encode:", err)
			return
		}
		f.Data = raw
	}
	if withAck {
		f.AckID = a.ackID.Add(1)
	}
	if err := a.conn.WriteJSON(f); err != nil {
		log.Fatalf("write: %v", err)
	}
}

func (a *app) listen() {
	for {
		var f frame
		if err := a.conn.ReadJSON(&f); err != nil {
			color.Red.Println("connection closed:", err)
			os.Exit(1)
		}
		a.render(f)
	}
}

func (a *app) render(f frame) {
	switch f.Event {
	case event.Message:
		var m domain.Message
		if json.Unmarshal(f.Data, &m) == nil {
			color.Printf("<green>%s</>: %s\n", m.Author, m.Text)
		}
	case event.PrivateMessage:
		var pm domain.PrivateMessage
		if json.Unmarshal(f.Data, &pm) == nil {
			color.Printf("<magenta>[dm] %s -> %s</>: %s\n", pm.FromUsername, pm.ToUsername, pm.Text)
		}
	case event.PreviousMessages:
		var p event.PreviousMessagesPayload
		if json.Unmarshal(f.Data, &p) == nil {
			for _, m := range p.Messages {
				color.Printf("<gray>%s: %s</>\n", m.Author, m.Text)
			}
		}
	case event.Roster:
		var p event.RosterPayload
		if json.Unmarshal(f.Data, &p) == nil {
			a.setRoster(p.Users)
		}
	case event.UserJoined:
		var p event.UserJoinedPayload
		if json.Unmarshal(f.Data, &p) == nil {
			a.setRoster(p.Roster)
			color.Yellow.Println(p.User.Username, "joined")
		}
	case event.UserLeft:
		var p event.UserLeftPayload
		if json.Unmarshal(f.Data, &p) == nil {
			a.setRoster(p.Roster)
			color.Yellow.Println(p.Username, "left")
		}
	case event.RoomCreated:
		var r domain.Room
		if json.Unmarshal(f.Data, &r) == nil {
			color.Cyan.Println("room created:", r.Name, "("+string(r.ID)+")")
		}
	case event.RoomState:
		var p event.RoomStatePayload
		if json.Unmarshal(f.Data, &p) == nil {
			a.setRoster(p.Roster)
			color.Cyan.Println("switched to", string(p.Room.ID))
			for _, m := range p.Messages {
				color.Printf("<gray>%s: %s</>\n", m.Author, m.Text)
			}
		}
	case event.Typing:
		var p event.TypingPayload
		if json.Unmarshal(f.Data, &p) == nil && p.IsTyping {
			color.Gray.Println(p.Username, "is typing...")
		}
	case "ack":
		a.renderAck(f.Data)
	}
}

// renderAck prints either search results as a table or the raw status
// line for everything else.
func (a *app) renderAck(data json.RawMessage) {
	var probe struct {
		Status  string           `json:"status"`
		Kind    string           `json:"kind"`
		Detail  string           `json:"detail"`
		Results []domain.Message `json:"results"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return
	}
	if probe.Status == "error" {
		color.Red.Println(probe.Kind+":", probe.Detail)
		return
	}
	if probe.Results != nil {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Author", "Text", "At"})
		for _, m := range probe.Results {
			table.Append([]string{m.Author, m.Text, m.CreatedAt.Format("15:04:05")})
		}
		table.Render()
	}
}

func (a *app) setRoster(users []domain.Session) {
	a.mu.Lock()
	a.roster = users
	a.mu.Unlock()
}

func (a *app) printRoster() {
	a.mu.Lock()
	users := append([]domain.Session(nil), a.roster...)
	a.mu.Unlock()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Username", "Session", "Joined"})
	for _, u := range users {
		table.Append([]string{u.Username, string(u.ID), u.JoinedAt.Format("15:04:05")})
	}
	table.Render()
}
