package api

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/peter-mghendi/clicker/internal/config"
	"github.com/peter-mghendi/clicker/internal/httputil"
	"github.com/peter-mghendi/clicker/internal/hub"
	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/version"
)

// Server exposes the hub over HTTP: the WebSocket relay endpoint, the
// request/response command ingress, and a small read-only surface.
type Server struct {
	cfg     *config.Config
	hub     *hub.Hub
	limiter *rate.Limiter
	router  *http.ServeMux
}

func NewServer(cfg *config.Config, h *hub.Hub) *Server {
	s := &Server{
		cfg:     cfg,
		hub:     h,
		limiter: rate.NewLimiter(rate.Limit(cfg.IngressRPS), cfg.IngressBurst),
		router:  http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /api/v1/status", s.handleStatus)
	s.router.HandleFunc("GET /api/v1/peers", s.handlePeers)
	s.router.HandleFunc("POST /api/v1/command", s.rlCommand(s.handleCommand))

	// WebSocket
	s.router.HandleFunc("GET /api/v1/ws", s.handleWebSocket)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// rlCommand rate-limits the unauthenticated command ingress. The channel is
// trusted and LAN-local; the limiter only guards against a runaway client.
func (s *Server) rlCommand(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			httputil.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many commands")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Load().Version,
	})
}

// handleStatus returns the most recently broadcast snapshot, or null before
// the first agent report.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.hub.Latest())
}

func (s *Server) handlePeers(w http.ResponseWriter, r *http.Request) {
	controllers, agents := s.hub.Counts()
	httputil.WriteJSON(w, http.StatusOK, map[string]int{
		"controllers": controllers,
		"agents":      agents,
	})
}

// handleCommand is the HTTP ingress: it validates and forwards a command to
// the hub. The response acknowledges ingress only — the playback result
// arrives as the next status broadcast.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd protocol.Command
	if err := httputil.ReadJSON(r, &cmd); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "BAD_COMMAND", err.Error())
		return
	}
	if err := cmd.Validate(); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "BAD_COMMAND", err.Error())
		return
	}
	if err := s.hub.SubmitCommand(cmd); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "RELAY_ERROR", err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"accepted": string(cmd.Kind)})
}
