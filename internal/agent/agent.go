package agent

import (
	"context"
	"log"
	"time"

	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

// Agent bridges the hub and the player adapter. It is the single source of
// truth for playback state: a fixed-interval ticker drives status reports,
// and every received command triggers one extra out-of-cadence report so
// controller-initiated actions reflect faster than the next tick.
type Agent struct {
	adapter  PlayerAdapter
	tr       Transport
	interval time.Duration

	// last known-good snapshot, substituted when a status read fails so
	// controllers see stale-but-present status instead of flicker.
	last *status.PlaybackStatus
}

func New(adapter PlayerAdapter, tr Transport, interval time.Duration) *Agent {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Agent{adapter: adapter, tr: tr, interval: interval}
}

// Run executes the poll loop until ctx is cancelled. Transport drops are
// recovered by the reconnect-before-report check: one attempt per report,
// no backoff, so the reconnect rate equals the poll rate.
func (a *Agent) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	// Report once up front so a freshly started agent is visible before the
	// first tick.
	a.report(ctx)

	for {
		select {
		case <-ctx.Done():
			a.tr.Close()
			return ctx.Err()
		case <-ticker.C:
			a.report(ctx)
		case cmd := <-a.tr.Commands():
			a.apply(cmd)
			a.report(ctx)
		}
	}
}

// apply forwards a command to the player adapter. Failures are swallowed:
// the follow-up report carries whatever state the player actually reached.
func (a *Agent) apply(cmd protocol.Command) {
	if err := a.adapter.Apply(cmd); err != nil {
		log.Printf("agent: apply %s failed: %v", cmd.Kind, err)
	}
}

// report performs the reconnect-before-report check, reads the player and
// sends one status report. Any failure drops this tick's report; the next
// tick starts over.
func (a *Agent) report(ctx context.Context) {
	if !a.tr.Connected() {
		if err := a.tr.Connect(ctx); err != nil {
			log.Printf("agent: reconnect failed, skipping report: %v", err)
			return
		}
		log.Printf("agent: connected to hub")
	}

	st, err := a.adapter.Read()
	if err != nil {
		if a.last == nil {
			log.Printf("agent: status read failed, nothing to report: %v", err)
			return
		}
		log.Printf("agent: status read failed, reporting last known state: %v", err)
		st = *a.last
	} else {
		snapshot := st
		a.last = &snapshot
	}

	if err := a.tr.WriteStatus(ctx, st); err != nil {
		log.Printf("agent: report failed: %v", err)
	}
}
