package status

import "math"

// MediaType distinguishes the two playback surfaces the player exposes.
type MediaType string

const (
	TypeMovie MediaType = "movie"
	TypeShow  MediaType = "show"
)

// Episode describes the currently playing episode of a show.
type Episode struct {
	Seq      int      `json:"seq"`
	Title    string   `json:"title,omitempty"`
	Thumbs   []string `json:"thumbs,omitempty"`
	Stills   []string `json:"stills,omitempty"`
	Synopsis string   `json:"synopsis,omitempty"`
}

// Season groups episode context. The player surface sometimes reports a
// season object with no fields populated, so every field is optional and
// callers must not assume any particular shape.
type Season struct {
	Seq   int    `json:"seq,omitempty"`
	Title string `json:"title,omitempty"`
}

// Metadata describes the currently playing item. It is a value object with
// no identity of its own: every status emission carries a complete copy and
// fully replaces the previous one, never a diff.
//
// Episode and Season are present only when Type is TypeShow; Season may be
// absent even then.
type Metadata struct {
	Type     MediaType `json:"type"`
	Title    string    `json:"title"`
	Artwork  string    `json:"artwork,omitempty"`
	Boxart   string    `json:"boxart,omitempty"`
	Storyart string    `json:"storyart,omitempty"`
	Synopsis string    `json:"synopsis,omitempty"`
	Episode  *Episode  `json:"episode,omitempty"`
	Season   *Season   `json:"season,omitempty"`
}

// PlaybackStatus is a complete snapshot of playback state. Snapshots are
// immutable once constructed; a new snapshot replaces the old wholesale.
// elapsed <= duration is a property of the upstream player, not enforced
// here — the relay passes status through unmodified.
type PlaybackStatus struct {
	Duration float64  `json:"duration"`
	Elapsed  float64  `json:"elapsed"`
	Playing  bool     `json:"isPlaying"`
	Volume   int      `json:"volume"`
	Metadata Metadata `json:"metadata"`
}

// RoundVolume converts the player surface's fractional 0..1 volume to the
// 0..100 integer scale. Rounds to nearest (0.8732 -> 87) and clamps.
func RoundVolume(fraction float64) int {
	v := int(math.Round(fraction * 100))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
