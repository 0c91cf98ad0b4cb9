// Package version reports the build version of the relay binaries.
package version

import (
	"encoding/json"
	"log"
	"os"
)

const fallback = "0.0.0-dev"

type Info struct {
	Version string `json:"version"`
}

// Load reads version.json from the working directory. A missing or
// malformed file is not fatal; the binaries just report a dev version.
func Load() Info {
	data, err := os.ReadFile("version.json")
	if err != nil {
		return Info{Version: fallback}
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil || info.Version == "" {
		log.Printf("warning: could not parse version.json: %v", err)
		return Info{Version: fallback}
	}
	return info
}
