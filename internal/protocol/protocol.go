package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/peter-mghendi/clicker/internal/status"
)

// Events carried over the relay channel. Commands flow controller -> agent,
// status reports flow agent -> controller.
const (
	EventCommand = "player:command"
	EventStatus  = "player:status"
)

// Kind enumerates the supported playback commands.
type Kind string

const (
	KindBack    Kind = "back"
	KindForward Kind = "forward"
	KindPause   Kind = "pause"
	KindPlay    Kind = "play"
	KindSeek    Kind = "seek"
	KindVolume  Kind = "volume"
)

// Command is a stateless control request. It carries no session or origin
// identity: the relay broadcasts it to every connected agent.
type Command struct {
	Kind     Kind     `json:"kind"`
	Position *float64 `json:"position,omitempty"` // seek only
	Level    *int     `json:"level,omitempty"`    // volume only
}

func (c Command) Validate() error {
	switch c.Kind {
	case KindBack, KindForward, KindPause, KindPlay:
		return nil
	case KindSeek:
		if c.Position == nil {
			return fmt.Errorf("seek requires position")
		}
		if *c.Position < 0 {
			return fmt.Errorf("seek position must be >= 0, got %v", *c.Position)
		}
		return nil
	case KindVolume:
		if c.Level == nil {
			return fmt.Errorf("volume requires level")
		}
		if *c.Level < 0 || *c.Level > 100 {
			return fmt.Errorf("volume level must be 0..100, got %d", *c.Level)
		}
		return nil
	default:
		return fmt.Errorf("unknown command kind %q", c.Kind)
	}
}

// Seek builds a seek command for the given position.
func Seek(position float64) Command {
	return Command{Kind: KindSeek, Position: &position}
}

// SetVolume builds a volume command for the given level.
func SetVolume(level int) Command {
	return Command{Kind: KindVolume, Level: &level}
}

// Message is the tagged envelope every frame on the wire uses.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// EncodeCommand marshals a command into a wire frame.
func EncodeCommand(cmd Command) ([]byte, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal command: %w", err)
	}
	return json.Marshal(Message{Event: EventCommand, Data: data})
}

// EncodeStatus marshals a status snapshot into a wire frame.
func EncodeStatus(st status.PlaybackStatus) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}
	return json.Marshal(Message{Event: EventStatus, Data: data})
}

// Decode parses a wire frame into its envelope. A frame that is not valid
// JSON or carries no event is rejected; the caller discards it without
// tearing down the connection.
func Decode(frame []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed frame: %w", err)
	}
	if msg.Event == "" {
		return Message{}, fmt.Errorf("frame missing event")
	}
	return msg, nil
}

// DecodeCommand parses and validates the command carried by a frame.
func DecodeCommand(msg Message) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		return Command{}, fmt.Errorf("malformed command: %w", err)
	}
	if err := cmd.Validate(); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// DecodeStatus parses the status snapshot carried by a frame.
func DecodeStatus(msg Message) (status.PlaybackStatus, error) {
	var st status.PlaybackStatus
	if err := json.Unmarshal(msg.Data, &st); err != nil {
		return status.PlaybackStatus{}, fmt.Errorf("malformed status: %w", err)
	}
	return st, nil
}
