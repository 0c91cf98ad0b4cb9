package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"nhooyr.io/websocket"

	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

// Transport is the agent's view of its channel to the hub. Connect is a
// single attempt — the runtime's cadence provides the retry loop, so the
// transport itself never retries or backs off.
type Transport interface {
	Connected() bool
	Connect(ctx context.Context) error
	Commands() <-chan protocol.Command
	WriteStatus(ctx context.Context, st status.PlaybackStatus) error
	Close() error
}

// WSTransport is the WebSocket transport to the hub's relay endpoint.
// Commands survive reconnects: the command channel is created once and fed
// by whichever connection is currently live.
type WSTransport struct {
	url  string
	cmds chan protocol.Command

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWSTransport builds a transport for the hub at hubURL
// (e.g. "ws://localhost:8089").
func NewWSTransport(hubURL string) *WSTransport {
	return &WSTransport{
		url:  strings.TrimRight(hubURL, "/") + "/api/v1/ws?role=agent",
		cmds: make(chan protocol.Command, 16),
	}
}

func (t *WSTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// Connect performs one dial attempt and, on success, starts the read pump
// that feeds incoming commands to the runtime.
func (t *WSTransport) Connect(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, t.url, nil)
	if err != nil {
		return fmt.Errorf("dial hub: %w", err)
	}

	t.mu.Lock()
	if t.conn != nil {
		t.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "duplicate connect")
		return nil
	}
	t.conn = conn
	t.mu.Unlock()

	go t.readPump(conn)
	return nil
}

func (t *WSTransport) Commands() <-chan protocol.Command {
	return t.cmds
}

func (t *WSTransport) WriteStatus(ctx context.Context, st status.PlaybackStatus) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	frame, err := protocol.EncodeStatus(st)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		t.drop(conn)
		return fmt.Errorf("write status: %w", err)
	}
	return nil
}

func (t *WSTransport) Close() error {
	t.mu.Lock()
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "")
	}
	return nil
}

func (t *WSTransport) readPump(conn *websocket.Conn) {
	for {
		_, frame, err := conn.Read(context.Background())
		if err != nil {
			t.drop(conn)
			return
		}
		msg, err := protocol.Decode(frame)
		if err != nil {
			log.Printf("agent: discarding frame: %v", err)
			continue
		}
		if msg.Event != protocol.EventCommand {
			continue
		}
		cmd, err := protocol.DecodeCommand(msg)
		if err != nil {
			log.Printf("agent: discarding command: %v", err)
			continue
		}
		select {
		case t.cmds <- cmd:
		default:
			log.Printf("agent: command backlog full, dropping %s", cmd.Kind)
		}
	}
}

// drop clears the live connection if it is still the given one. Transport
// drops are detected here and by failed writes; either way the runtime's
// next report performs the reconnect.
func (t *WSTransport) drop(conn *websocket.Conn) {
	t.mu.Lock()
	if t.conn == conn {
		t.conn = nil
	}
	t.mu.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
}
