package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

// HTTPAdapter bridges to a player's local debug surface: GET /status returns
// the player's loosely-typed state object, POST /command applies a command.
type HTTPAdapter struct {
	baseURL string
	client  *http.Client
}

func NewHTTPAdapter(baseURL string) *HTTPAdapter {
	return &HTTPAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (a *HTTPAdapter) Read() (status.PlaybackStatus, error) {
	resp, err := a.client.Get(a.baseURL + "/status")
	if err != nil {
		return status.PlaybackStatus{}, fmt.Errorf("player status: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return status.PlaybackStatus{}, fmt.Errorf("player status: HTTP %d", resp.StatusCode)
	}

	// The player surface is a dynamic object, not a stable schema; decode
	// into a map and coerce field by field.
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return status.PlaybackStatus{}, fmt.Errorf("player status: %w", err)
	}
	return status.FromPayload(payload)
}

func (a *HTTPAdapter) Apply(cmd protocol.Command) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	resp, err := a.client.Post(a.baseURL+"/command", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("player command: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("player command: HTTP %d", resp.StatusCode)
	}
	return nil
}
