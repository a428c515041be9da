// Package stream pushes engine snapshots and tick output to external
// presentation layers over websockets.
//
// The engine is single-threaded. Server serializes every engine call behind
// one mutex, so the scheduler loop and client commands never overlap.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nathoo/arenacore/engine"
	"github.com/nathoo/arenacore/types"
)

// sendBuffer is how many frames may queue per client before it is dropped.
const sendBuffer = 64

// Message is a frame sent to clients.
type Message struct {
	Type     string          `json:"type"` // hello, tick, snapshot, error
	Client   string          `json:"client,omitempty"`
	Tick     uint64          `json:"tick,omitempty"`
	Output   []string        `json:"output,omitempty"`
	Events   []types.Event   `json:"events,omitempty"`
	Snapshot *types.Snapshot `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Command is a frame received from clients.
type Command struct {
	Type string `json:"type"` // snapshot, unlock, visit
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Server owns an engine and fans its ticks out to websocket clients.
type Server struct {
	mu  sync.Mutex
	eng *engine.Engine

	clientsMu sync.Mutex
	clients   map[string]*client

	log      *log.Logger
	upgrader websocket.Upgrader
	now      func() int64
}

// NewServer wraps eng. A nil logger falls back to the engine's.
func NewServer(eng *engine.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = eng.Log
	}
	return &Server{
		eng:     eng,
		clients: make(map[string]*client),
		log:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		now: func() int64 { return time.Now().UnixMilli() },
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// Step ticks the engine at now and broadcasts the result when the tick was
// effective.
func (s *Server) Step(now int64) types.Result {
	s.mu.Lock()
	result := s.eng.Tick(now)
	var snap types.Snapshot
	if result.Ticked {
		snap = s.eng.Snapshot()
	}
	s.mu.Unlock()

	if result.Ticked {
		s.broadcast(Message{
			Type:     "tick",
			Tick:     snap.Tick,
			Output:   result.Output,
			Events:   result.Events,
			Snapshot: &snap,
		})
	}
	return result
}

// Run ticks the engine at interval until ctx is cancelled.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Duration(s.eng.Defs.Tuning.TickIntervalMillis) * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return
		case <-ticker.C:
			s.Step(s.now())
		}
	}
}

// Handle upgrades an HTTP request and serves one client until it
// disconnects.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, sendBuffer)}
	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()
	s.log.Info("client connected", "client", c.id, "remote", r.RemoteAddr)

	go s.writeLoop(c)

	hello := s.snapshotMessage("hello")
	hello.Client = c.id
	s.enqueue(c, hello)

	s.readLoop(c)
}

// readLoop applies client commands until the connection fails.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			s.log.Debug("discarding malformed command", "client", c.id, "err", err)
			s.enqueue(c, Message{Type: "error", Error: "malformed command"})
			continue
		}

		switch cmd.Type {
		case "snapshot":
		case "unlock":
			s.mu.Lock()
			s.eng.Unlock()
			s.mu.Unlock()
		case "visit":
			s.mu.Lock()
			s.eng.MarkVisited()
			s.mu.Unlock()
		default:
			s.enqueue(c, Message{Type: "error", Error: "unknown command " + cmd.Type})
			continue
		}
		s.enqueue(c, s.snapshotMessage("snapshot"))
	}
}

func (s *Server) writeLoop(c *client) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Debug("write failed", "client", c.id, "err", err)
			c.conn.Close()
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

func (s *Server) snapshotMessage(kind string) Message {
	s.mu.Lock()
	snap := s.eng.Snapshot()
	s.mu.Unlock()
	return Message{Type: kind, Tick: snap.Tick, Snapshot: &snap}
}

func (s *Server) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal frame", "err", err)
		return
	}

	s.clientsMu.Lock()
	var slow []*client
	for _, c := range s.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	s.clientsMu.Unlock()

	for _, c := range slow {
		s.log.Warn("dropping slow client", "client", c.id)
		s.drop(c)
	}
}

func (s *Server) enqueue(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal frame", "err", err)
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if _, ok := s.clients[c.id]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// drop unregisters c and closes its send queue. Safe to call twice.
func (s *Server) drop(c *client) {
	s.clientsMu.Lock()
	_, ok := s.clients[c.id]
	if ok {
		delete(s.clients, c.id)
		close(c.send)
	}
	s.clientsMu.Unlock()
	if ok {
		s.log.Info("client disconnected", "client", c.id)
	}
}

func (s *Server) closeAll() {
	s.clientsMu.Lock()
	all := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		all = append(all, c)
	}
	s.clientsMu.Unlock()
	for _, c := range all {
		s.drop(c)
	}
}
