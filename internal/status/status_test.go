package status

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestRoundVolume(t *testing.T) {
	t.Parallel()

	cases := []struct {
		fraction float64
		want     int
	}{
		{0, 0},
		{1, 100},
		{0.8732, 87}, // round, not truncate
		{0.875, 88},
		{0.004, 0},
		{0.005, 1},
		{-0.1, 0},
		{1.2, 100},
	}
	for _, tc := range cases {
		if got := RoundVolume(tc.fraction); got != tc.want {
			t.Errorf("RoundVolume(%v)=%d want %d", tc.fraction, got, tc.want)
		}
	}
}

func TestStatusWireFieldNames(t *testing.T) {
	t.Parallel()

	st := PlaybackStatus{Duration: 3600, Elapsed: 120, Playing: true, Volume: 80}
	data, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"duration"`, `"elapsed"`, `"isPlaying"`, `"volume"`, `"metadata"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("wire form missing %s: %s", field, data)
		}
	}
}

func TestFromPayload_LooseTypes(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"duration":  "3600",
		"elapsed":   120.5,
		"isPlaying": "true",
		"volume":    0.8732,
		"metadata": map[string]any{
			"type":     "show",
			"title":    "Night Shift",
			"boxart":   "https://art.invalid/ns/box.jpg",
			"synopsis": "Late nights.",
			"episode": map[string]any{
				"seq":    "3",
				"title":  "Graveyard",
				"thumbs": []any{"https://art.invalid/ns/e3/t.jpg"},
			},
			"season": map[string]any{},
		},
	}

	st, err := FromPayload(payload)
	if err != nil {
		t.Fatalf("FromPayload: %v", err)
	}
	if st.Duration != 3600 || st.Elapsed != 120.5 {
		t.Fatalf("duration=%v elapsed=%v", st.Duration, st.Elapsed)
	}
	if !st.Playing {
		t.Fatal("expected playing")
	}
	if st.Volume != 87 {
		t.Fatalf("volume=%d want 87", st.Volume)
	}
	if st.Metadata.Type != TypeShow || st.Metadata.Title != "Night Shift" {
		t.Fatalf("metadata=%+v", st.Metadata)
	}
	if st.Metadata.Episode == nil || st.Metadata.Episode.Seq != 3 {
		t.Fatalf("episode=%+v", st.Metadata.Episode)
	}
	// An empty season object is valid: all fields optional.
	if st.Metadata.Season == nil || st.Metadata.Season.Seq != 0 {
		t.Fatalf("season=%+v", st.Metadata.Season)
	}
}

func TestFromPayload_MovieWithoutSections(t *testing.T) {
	t.Parallel()

	st, err := FromPayload(map[string]any{
		"duration":  7200,
		"elapsed":   10,
		"isPlaying": false,
		"volume":    0.5,
		"metadata":  map[string]any{"type": "movie", "title": "The Long Haul"},
	})
	if err != nil {
		t.Fatalf("FromPayload: %v", err)
	}
	if st.Metadata.Type != TypeMovie {
		t.Fatalf("type=%q", st.Metadata.Type)
	}
	if st.Metadata.Episode != nil || st.Metadata.Season != nil {
		t.Fatalf("movie must not carry show sections: %+v", st.Metadata)
	}
}

func TestFromPayload_PercentVolume(t *testing.T) {
	t.Parallel()

	st, err := FromPayload(map[string]any{"duration": 1, "elapsed": 0, "volume": 80})
	if err != nil {
		t.Fatalf("FromPayload: %v", err)
	}
	if st.Volume != 80 {
		t.Fatalf("volume=%d want 80", st.Volume)
	}
	if st.Metadata.Type != TypeMovie {
		t.Fatalf("missing metadata should default to movie, got %q", st.Metadata.Type)
	}
}

func TestFromPayload_Rejects(t *testing.T) {
	t.Parallel()

	if _, err := FromPayload(nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
	if _, err := FromPayload(map[string]any{"duration": "soon", "elapsed": 0}); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}
