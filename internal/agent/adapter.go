package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

// PlayerAdapter is the capability boundary to the actual playback surface.
// Apply is best-effort and may fail silently upstream; the runtime swallows
// failures either way and reports whatever Read returns next.
type PlayerAdapter interface {
	Read() (status.PlaybackStatus, error)
	Apply(cmd protocol.Command) error
}

// Seconds skipped by the back/forward commands.
const skipStep = 30.0

// SimAdapter is an in-process player: elapsed advances in real time while
// playing, and every command kind mutates the simulated surface. It backs
// the agent when no real player is configured, and the tests.
type SimAdapter struct {
	mu       sync.Mutex
	st       status.PlaybackStatus
	lastRead time.Time
}

// NewSimAdapter starts the simulated player paused at the beginning of a
// show episode.
func NewSimAdapter() *SimAdapter {
	return &SimAdapter{
		st: status.PlaybackStatus{
			Duration: 3600,
			Elapsed:  0,
			Playing:  false,
			Volume:   80,
			Metadata: status.Metadata{
				Type:     status.TypeShow,
				Title:    "Standby Cinema",
				Boxart:   "https://art.invalid/standby/boxart.jpg",
				Storyart: "https://art.invalid/standby/storyart.jpg",
				Synopsis: "A player with nothing better to do.",
				Episode: &status.Episode{
					Seq:      1,
					Title:    "Pilot",
					Thumbs:   []string{"https://art.invalid/standby/s01e01/thumb.jpg"},
					Stills:   []string{"https://art.invalid/standby/s01e01/still.jpg"},
					Synopsis: "It begins.",
				},
				Season: &status.Season{Seq: 1},
			},
		},
		lastRead: time.Now(),
	}
}

func (s *SimAdapter) Read() (status.PlaybackStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()
	return s.st, nil
}

func (s *SimAdapter) Apply(cmd protocol.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advance()

	switch cmd.Kind {
	case protocol.KindPlay:
		s.st.Playing = true
	case protocol.KindPause:
		s.st.Playing = false
	case protocol.KindBack:
		s.seek(s.st.Elapsed - skipStep)
	case protocol.KindForward:
		s.seek(s.st.Elapsed + skipStep)
	case protocol.KindSeek:
		if cmd.Position == nil {
			return fmt.Errorf("seek without position")
		}
		s.seek(*cmd.Position)
	case protocol.KindVolume:
		if cmd.Level == nil {
			return fmt.Errorf("volume without level")
		}
		s.st.Volume = *cmd.Level
	default:
		return fmt.Errorf("unknown command %q", cmd.Kind)
	}
	return nil
}

// advance moves elapsed forward by wall time while playing. Callers hold mu.
func (s *SimAdapter) advance() {
	now := time.Now()
	if s.st.Playing {
		s.st.Elapsed += now.Sub(s.lastRead).Seconds()
		if s.st.Elapsed >= s.st.Duration {
			s.st.Elapsed = s.st.Duration
			s.st.Playing = false
		}
	}
	s.lastRead = now
}

func (s *SimAdapter) seek(position float64) {
	if position < 0 {
		position = 0
	}
	if position > s.st.Duration {
		position = s.st.Duration
	}
	s.st.Elapsed = position
}
