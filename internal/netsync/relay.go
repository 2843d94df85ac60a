package netsync

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultRoom is used when a client does not name a room.
const DefaultRoom = "lobby"

// Relay is a websocket hub. Every frame a client sends is forwarded to all
// other clients in the same room. It does not inspect frames.
type Relay struct {
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu    sync.Mutex
	rooms map[string]map[*relayClient]struct{}
}

type relayClient struct {
	conn    *websocket.Conn
	room    string
	writeMu sync.Mutex
}

// NewRelay creates an empty hub. Cross-origin browsers are allowed: peers
// trust each other anyway.
func NewRelay(logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
		rooms:  make(map[string]map[*relayClient]struct{}),
	}
}

// ServeHTTP upgrades the request and relays frames until the client leaves.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		r.logger.Warn("websocket upgrade failed", "remote", req.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(maxFrameSize)

	room := req.URL.Query().Get(roomQueryParam)
	if room == "" {
		room = DefaultRoom
	}
	c := &relayClient{conn: conn, room: room}
	r.join(c)
	defer r.leave(c)

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				r.logger.Debug("relay read ended", "room", room, "error", err)
			}
			return
		}
		r.broadcast(c, frame)
	}
}

func (r *Relay) join(c *relayClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[c.room]
	if !ok {
		members = make(map[*relayClient]struct{})
		r.rooms[c.room] = members
	}
	members[c] = struct{}{}
	r.logger.Info("peer joined", "room", c.room, "peers", len(members))
}

func (r *Relay) leave(c *relayClient) {
	r.mu.Lock()
	members := r.rooms[c.room]
	delete(members, c)
	if len(members) == 0 {
		delete(r.rooms, c.room)
	}
	r.logger.Info("peer left", "room", c.room, "peers", len(members))
	r.mu.Unlock()
	_ = c.conn.Close()
}

func (r *Relay) broadcast(from *relayClient, frame []byte) {
	r.mu.Lock()
	targets := make([]*relayClient, 0, len(r.rooms[from.room]))
	for c := range r.rooms[from.room] {
		if c != from {
			targets = append(targets, c)
		}
	}
	r.mu.Unlock()

	for _, c := range targets {
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := c.conn.WriteMessage(websocket.TextMessage, frame)
		c.writeMu.Unlock()
		if err != nil {
			r.logger.Warn("relay write failed", "room", c.room, "error", err)
		}
	}
}

// Peers returns the number of clients in room.
func (r *Relay) Peers(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[room])
}

// Close disconnects every client. Their ServeHTTP calls return.
func (r *Relay) Close() {
	r.mu.Lock()
	var all []*relayClient
	for _, members := range r.rooms {
		for c := range members {
			all = append(all, c)
		}
	}
	r.mu.Unlock()

	for _, c := range all {
		_ = c.conn.Close()
	}
}
