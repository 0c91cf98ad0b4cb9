package status

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// FromPayload decodes the loosely-typed player object exposed by the playback
// surface into a typed snapshot. The surface is a dynamic "any"-shaped value:
// scalars may arrive as strings or numbers, optional sections may be missing
// or empty, and unknown fields are ignored.
func FromPayload(payload map[string]any) (PlaybackStatus, error) {
	if payload == nil {
		return PlaybackStatus{}, fmt.Errorf("empty player payload")
	}

	duration, err := cast.ToFloat64E(payload["duration"])
	if err != nil {
		return PlaybackStatus{}, fmt.Errorf("duration: %w", err)
	}
	elapsed, err := cast.ToFloat64E(payload["elapsed"])
	if err != nil {
		return PlaybackStatus{}, fmt.Errorf("elapsed: %w", err)
	}

	st := PlaybackStatus{
		Duration: duration,
		Elapsed:  elapsed,
		Playing:  cast.ToBool(payload["isPlaying"]),
		Volume:   decodeVolume(payload["volume"]),
		Metadata: decodeMetadata(cast.ToStringMap(payload["metadata"])),
	}
	return st, nil
}

// decodeVolume accepts either the surface's native 0..1 fraction or an
// already-scaled 0..100 percent.
func decodeVolume(v any) int {
	f := cast.ToFloat64(v)
	if f > 1 {
		n := int(math.Round(f))
		if n > 100 {
			return 100
		}
		return n
	}
	return RoundVolume(f)
}

func decodeMetadata(m map[string]any) Metadata {
	if len(m) == 0 {
		return Metadata{Type: TypeMovie}
	}

	meta := Metadata{
		Type:     TypeMovie,
		Title:    cast.ToString(m["title"]),
		Artwork:  cast.ToString(m["artwork"]),
		Boxart:   cast.ToString(m["boxart"]),
		Storyart: cast.ToString(m["storyart"]),
		Synopsis: cast.ToString(m["synopsis"]),
	}
	if cast.ToString(m["type"]) == string(TypeShow) {
		meta.Type = TypeShow
		if ep := cast.ToStringMap(m["episode"]); len(ep) > 0 {
			meta.Episode = &Episode{
				Seq:      cast.ToInt(ep["seq"]),
				Title:    cast.ToString(ep["title"]),
				Thumbs:   cast.ToStringSlice(ep["thumbs"]),
				Stills:   cast.ToStringSlice(ep["stills"]),
				Synopsis: cast.ToString(ep["synopsis"]),
			}
		}
		// Season is fully optional and sometimes arrives as an empty object.
		if se, ok := m["season"]; ok {
			sm := cast.ToStringMap(se)
			meta.Season = &Season{
				Seq:   cast.ToInt(sm["seq"]),
				Title: cast.ToString(sm["title"]),
			}
		}
	}
	return meta
}
