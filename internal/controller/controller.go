package controller

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

// Controller attaches to the hub as a controller peer: it issues commands
// and keeps the most recently received status report as its render state.
// Each report fully replaces the previous one — there is no merging.
type Controller struct {
	url      string
	retry    time.Duration
	onStatus func(status.PlaybackStatus)

	mu     sync.Mutex
	conn   *websocket.Conn
	latest *status.PlaybackStatus
}

// New builds a controller for the hub at hubURL. onStatus, if non-nil, is
// invoked for every received report. retry is the pause between dial
// attempts when the hub is unreachable.
func New(hubURL string, retry time.Duration, onStatus func(status.PlaybackStatus)) *Controller {
	if retry <= 0 {
		retry = 500 * time.Millisecond
	}
	return &Controller{
		url:      strings.TrimRight(hubURL, "/") + "/api/v1/ws?role=controller",
		retry:    retry,
		onStatus: onStatus,
	}
}

// Run maintains the hub connection until ctx is cancelled: one dial attempt,
// read reports until the transport drops, wait out the retry interval, start
// over. No backoff.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := c.session(ctx); err != nil {
			log.Printf("controller: session ended: %v", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.retry):
		}
	}
}

func (c *Controller) session(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial hub: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		msg, err := protocol.Decode(frame)
		if err != nil {
			log.Printf("controller: discarding frame: %v", err)
			continue
		}
		if msg.Event != protocol.EventStatus {
			continue
		}
		st, err := protocol.DecodeStatus(msg)
		if err != nil {
			log.Printf("controller: discarding status: %v", err)
			continue
		}
		c.store(st)
	}
}

// Send issues a command over the live connection.
func (c *Controller) Send(ctx context.Context, cmd protocol.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}
	frame, err := protocol.EncodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// Connected reports whether a hub session is live.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Latest returns the current render state, or nil before the first report.
func (c *Controller) Latest() *status.PlaybackStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest
}

func (c *Controller) store(st status.PlaybackStatus) {
	c.mu.Lock()
	c.latest = &st
	c.mu.Unlock()
	if c.onStatus != nil {
		c.onStatus(st)
	}
}
