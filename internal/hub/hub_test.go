package hub

import (
	"context"
	"testing"
	"time"

	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func recvFrame(t *testing.T, c *Conn, timeout time.Duration) ([]byte, bool) {
	t.Helper()
	select {
	case frame, ok := <-c.Frames():
		return frame, ok
	case <-time.After(timeout):
		return nil, false
	}
}

func mustStatus(t *testing.T, frame []byte) status.PlaybackStatus {
	t.Helper()
	msg, err := protocol.Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Event != protocol.EventStatus {
		t.Fatalf("event=%q", msg.Event)
	}
	st, err := protocol.DecodeStatus(msg)
	if err != nil {
		t.Fatalf("DecodeStatus: %v", err)
	}
	return st
}

func TestCommandFanOut(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	agent1 := h.Register(RoleAgent)
	agent2 := h.Register(RoleAgent)
	ctrl := h.Register(RoleController)

	if err := h.SubmitCommand(protocol.Command{Kind: protocol.KindPlay}); err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}

	for _, a := range []*Conn{agent1, agent2} {
		frame, ok := recvFrame(t, a, time.Second)
		if !ok {
			t.Fatalf("agent %s received nothing", a.ID)
		}
		msg, err := protocol.Decode(frame)
		if err != nil || msg.Event != protocol.EventCommand {
			t.Fatalf("agent got %q err=%v", msg.Event, err)
		}
	}

	// Exactly one copy per agent, and nothing for controllers.
	if _, ok := recvFrame(t, agent1, 50*time.Millisecond); ok {
		t.Fatal("agent received a duplicate")
	}
	if _, ok := recvFrame(t, ctrl, 50*time.Millisecond); ok {
		t.Fatal("controller must not receive commands")
	}
}

func TestStatusFanOutAndLatest(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	ctrl1 := h.Register(RoleController)
	ctrl2 := h.Register(RoleController)
	agent := h.Register(RoleAgent)

	st := status.PlaybackStatus{Duration: 3600, Elapsed: 120, Playing: true, Volume: 80}
	if err := h.SubmitStatus(st); err != nil {
		t.Fatalf("SubmitStatus: %v", err)
	}

	for _, c := range []*Conn{ctrl1, ctrl2} {
		frame, ok := recvFrame(t, c, time.Second)
		if !ok {
			t.Fatalf("controller %s received nothing", c.ID)
		}
		if got := mustStatus(t, frame); got != st {
			t.Fatalf("got=%+v want=%+v", got, st)
		}
	}
	if _, ok := recvFrame(t, agent, 50*time.Millisecond); ok {
		t.Fatal("agent must not receive status reports")
	}

	if latest := h.Latest(); latest == nil || *latest != st {
		t.Fatalf("latest=%+v want=%+v", latest, st)
	}
}

func TestPerSenderFIFO(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	ctrl := h.Register(RoleController)

	for i := 1; i <= 10; i++ {
		st := status.PlaybackStatus{Duration: 3600, Elapsed: float64(i)}
		if err := h.SubmitStatus(st); err != nil {
			t.Fatalf("SubmitStatus %d: %v", i, err)
		}
	}

	for i := 1; i <= 10; i++ {
		frame, ok := recvFrame(t, ctrl, time.Second)
		if !ok {
			t.Fatalf("missing report %d", i)
		}
		if got := mustStatus(t, frame); got.Elapsed != float64(i) {
			t.Fatalf("out of order: got elapsed=%v want %d", got.Elapsed, i)
		}
	}
}

func TestNewControllerGetsLatestReplayed(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	st := status.PlaybackStatus{Duration: 3600, Elapsed: 42, Playing: true}
	if err := h.SubmitStatus(st); err != nil {
		t.Fatalf("SubmitStatus: %v", err)
	}

	// Wait for the loop to adopt the snapshot before registering.
	deadline := time.Now().Add(time.Second)
	for h.Latest() == nil {
		if time.Now().After(deadline) {
			t.Fatal("latest never set")
		}
		time.Sleep(time.Millisecond)
	}

	ctrl := h.Register(RoleController)
	frame, ok := recvFrame(t, ctrl, time.Second)
	if !ok {
		t.Fatal("no replay on register")
	}
	if got := mustStatus(t, frame); got != st {
		t.Fatalf("replayed=%+v want=%+v", got, st)
	}

	agent := h.Register(RoleAgent)
	if _, ok := recvFrame(t, agent, 50*time.Millisecond); ok {
		t.Fatal("agents must not get a status replay")
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	agent := h.Register(RoleAgent)
	h.Unregister(agent)

	if _, ok := <-agent.Frames(); ok {
		t.Fatal("frames channel should be closed after unregister")
	}
	// Broadcasts after teardown must not attempt delivery to it.
	if err := h.SubmitCommand(protocol.Command{Kind: protocol.KindPause}); err != nil {
		t.Fatalf("SubmitCommand: %v", err)
	}

	waitCounts(t, h, 0, 0)
}

func TestCounts(t *testing.T) {
	t.Parallel()

	h := startHub(t)
	h.Register(RoleController)
	h.Register(RoleController)
	h.Register(RoleAgent)

	waitCounts(t, h, 2, 1)
}

func waitCounts(t *testing.T, h *Hub, controllers, agents int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		c, a := h.Counts()
		if c == controllers && a == agents {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("counts=%d,%d want %d,%d", c, a, controllers, agents)
		}
		time.Sleep(time.Millisecond)
	}
}
