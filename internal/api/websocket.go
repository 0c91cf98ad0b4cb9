package api

import (
	"context"
	"log"
	"net/http"

	"nhooyr.io/websocket"

	"github.com/peter-mghendi/clicker/internal/hub"
	"github.com/peter-mghendi/clicker/internal/protocol"
)

// ──────────────────── WebSocket Relay Endpoint ────────────────────

// handleWebSocket upgrades the connection, tags it with a role and attaches
// it to the hub. Controllers receive status broadcasts; agents receive
// command broadcasts. Commands are accepted from any peer, status reports
// only from agents.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	role := hub.RoleController
	switch r.URL.Query().Get("role") {
	case "agent":
		role = hub.RoleAgent
	case "", "controller":
	default:
		http.Error(w, "unknown role", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Printf("WebSocket accept error: %v", err)
		return
	}

	peer := s.hub.Register(role)
	log.Printf("WebSocket %s connected: %s", role, peer.ID)

	ctx := r.Context()

	// Writer goroutine. Each write is time-bounded so one stalled recipient
	// cannot hold up frames queued behind it.
	go func() {
		defer conn.Close(websocket.StatusNormalClosure, "")
		for frame := range peer.Frames() {
			wctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
			err := conn.Write(wctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				return
			}
		}
	}()

	// Reader loop. A malformed frame is discarded, never a reason to tear
	// down the connection.
	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			break
		}
		msg, err := protocol.Decode(frame)
		if err != nil {
			log.Printf("WebSocket %s %s: discarding frame: %v", role, peer.ID, err)
			continue
		}
		switch msg.Event {
		case protocol.EventCommand:
			cmd, err := protocol.DecodeCommand(msg)
			if err != nil {
				log.Printf("WebSocket %s %s: discarding command: %v", role, peer.ID, err)
				continue
			}
			s.hub.SubmitCommand(cmd)
		case protocol.EventStatus:
			if role != hub.RoleAgent {
				log.Printf("WebSocket %s %s: discarding status from non-agent", role, peer.ID)
				continue
			}
			st, err := protocol.DecodeStatus(msg)
			if err != nil {
				log.Printf("WebSocket %s %s: discarding status: %v", role, peer.ID, err)
				continue
			}
			s.hub.SubmitStatus(st)
		default:
			log.Printf("WebSocket %s %s: discarding unknown event %q", role, peer.ID, msg.Event)
		}
	}

	s.hub.Unregister(peer)
	log.Printf("WebSocket %s disconnected: %s", role, peer.ID)
}
