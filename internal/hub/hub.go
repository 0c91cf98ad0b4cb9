package hub

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

// Role tags a connection with the direction it participates in. Commands are
// delivered to agents, status reports to controllers.
type Role string

const (
	RoleController Role = "controller"
	RoleAgent      Role = "agent"
)

const (
	// Per-connection outbound buffer. A recipient that falls this far behind
	// starts losing frames; the next cadence tick re-synchronizes status.
	sendBuffer = 64

	// Bounded intake queues per message class.
	queueDepth = 256

	cacheWriteTimeout = 200 * time.Millisecond
)

// Conn is an ephemeral registration of one transport session with the hub.
// The hub owns the lifecycle: Register creates it, Unregister closes the
// outbound channel so the transport writer exits.
type Conn struct {
	ID   uuid.UUID
	Role Role
	send chan []byte
}

// Frames is the ordered stream of outbound frames for this connection.
// The channel is closed on unregister.
func (c *Conn) Frames() <-chan []byte {
	return c.send
}

type statusSubmission struct {
	frame    []byte
	snapshot status.PlaybackStatus
}

// Hub is the relay broker: it owns the live-connection set, partitioned by
// role, and fans each message class out to all peers of the opposite role.
//
// All mutation of the connection set happens on the run loop. Producers only
// enqueue; a full queue or a slow recipient drops frames (best-effort
// delivery, no mailbox).
type Hub struct {
	register   chan *Conn
	unregister chan *Conn
	commands   chan []byte
	statuses   chan statusSubmission

	latest atomic.Pointer[status.PlaybackStatus]
	cache  *StatusCache

	controllers atomic.Int32
	agents      atomic.Int32
}

// New constructs a hub. cache may be nil to run without warm-start persistence.
func New(cache *StatusCache) *Hub {
	return &Hub{
		register:   make(chan *Conn),
		unregister: make(chan *Conn),
		commands:   make(chan []byte, queueDepth),
		statuses:   make(chan statusSubmission, queueDepth),
		cache:      cache,
	}
}

// Run executes the broadcast loop until ctx is cancelled. It is the single
// writer for the connection set and the owner of the latest status value.
func (h *Hub) Run(ctx context.Context) {
	if h.cache != nil {
		if st, err := h.cache.Load(ctx); err != nil {
			log.Printf("hub: status cache load failed: %v", err)
		} else if st != nil {
			h.latest.Store(st)
			log.Printf("hub: warm-started status from cache (elapsed=%.1fs)", st.Elapsed)
		}
	}

	conns := make(map[*Conn]bool)

	for {
		select {
		case <-ctx.Done():
			for c := range conns {
				close(c.send)
				delete(conns, c)
			}
			return

		case c := <-h.register:
			conns[c] = true
			h.count(c.Role).Add(1)
			// Replay the latest snapshot so a fresh controller is not blind
			// until the next cadence tick.
			if c.Role == RoleController {
				if st := h.latest.Load(); st != nil {
					if frame, err := protocol.EncodeStatus(*st); err == nil {
						trySend(c, frame)
					}
				}
			}

		case c := <-h.unregister:
			if conns[c] {
				close(c.send)
				delete(conns, c)
				h.count(c.Role).Add(-1)
			}

		case frame := <-h.commands:
			for c := range conns {
				if c.Role == RoleAgent {
					trySend(c, frame)
				}
			}

		case sub := <-h.statuses:
			snapshot := sub.snapshot
			h.latest.Store(&snapshot)
			h.saveToCache(ctx, snapshot)
			for c := range conns {
				if c.Role == RoleController {
					trySend(c, sub.frame)
				}
			}
		}
	}
}

// Register creates a connection with the given role and adds it to the live
// set. Blocks until the run loop accepts it.
func (h *Hub) Register(role Role) *Conn {
	c := &Conn{ID: uuid.New(), Role: role, send: make(chan []byte, sendBuffer)}
	h.register <- c
	return c
}

// Unregister removes the connection from the live set; subsequent broadcasts
// no longer attempt delivery to it.
func (h *Hub) Unregister(c *Conn) {
	h.unregister <- c
}

// SubmitCommand accepts a command from any connection and broadcasts it to
// every agent. No acknowledgement is produced: the end-to-end ack is the
// status report that follows the agent applying the command.
func (h *Hub) SubmitCommand(cmd protocol.Command) error {
	frame, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	select {
	case h.commands <- frame:
	default:
		log.Printf("hub: command queue full, dropping %s", cmd.Kind)
	}
	return nil
}

// SubmitStatus accepts a snapshot from the agent and broadcasts it to every
// controller. The snapshot becomes the hub's current status.
func (h *Hub) SubmitStatus(st status.PlaybackStatus) error {
	frame, err := protocol.EncodeStatus(st)
	if err != nil {
		return err
	}
	select {
	case h.statuses <- statusSubmission{frame: frame, snapshot: st}:
	default:
		log.Printf("hub: status queue full, dropping report")
	}
	return nil
}

// Latest returns the most recently broadcast snapshot, or nil before the
// first agent report.
func (h *Hub) Latest() *status.PlaybackStatus {
	return h.latest.Load()
}

// Counts reports live connections per role.
func (h *Hub) Counts() (controllers, agents int) {
	return int(h.controllers.Load()), int(h.agents.Load())
}

func (h *Hub) count(role Role) *atomic.Int32 {
	if role == RoleAgent {
		return &h.agents
	}
	return &h.controllers
}

func (h *Hub) saveToCache(ctx context.Context, st status.PlaybackStatus) {
	if h.cache == nil {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, cacheWriteTimeout)
	defer cancel()
	if err := h.cache.Save(cctx, st); err != nil {
		log.Printf("hub: status cache save failed: %v", err)
	}
}

// trySend enqueues a frame for one recipient without blocking the loop.
// A recipient whose buffer is full loses the frame.
func trySend(c *Conn, frame []byte) {
	select {
	case c.send <- frame:
	default:
	}
}
