package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/peter-mghendi/clicker/internal/config"
	"github.com/peter-mghendi/clicker/internal/controller"
	"github.com/peter-mghendi/clicker/internal/protocol"
	"github.com/peter-mghendi/clicker/internal/status"
)

const usage = `clicker - remote playback controller

Usage:
  clicker play|pause|back|forward     issue a simple command
  clicker seek <seconds>              jump to a position
  clicker volume <0..100>             set the volume
  clicker status                      print the hub's latest snapshot
  clicker watch                       attach as a controller and print reports

The hub address comes from HUB_URL (default ws://localhost:8089).
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "play", "pause", "back", "forward":
		send(cfg.HubURL, protocol.Command{Kind: protocol.Kind(os.Args[1])})
	case "seek":
		if len(os.Args) < 3 {
			fatal("seek requires a position in seconds")
		}
		pos, err := strconv.ParseFloat(os.Args[2], 64)
		if err != nil {
			fatal("bad position %q", os.Args[2])
		}
		send(cfg.HubURL, protocol.Seek(pos))
	case "volume":
		if len(os.Args) < 3 {
			fatal("volume requires a level 0..100")
		}
		level, err := strconv.Atoi(os.Args[2])
		if err != nil {
			fatal("bad level %q", os.Args[2])
		}
		send(cfg.HubURL, protocol.SetVolume(level))
	case "status":
		printStatus(cfg.HubURL)
	case "watch":
		watch(cfg.HubURL)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

// httpBase rewrites the hub's WebSocket URL for its HTTP surface.
func httpBase(hubURL string) string {
	base := strings.TrimRight(hubURL, "/")
	base = strings.Replace(base, "ws://", "http://", 1)
	return strings.Replace(base, "wss://", "https://", 1)
}

func send(hubURL string, cmd protocol.Command) {
	if err := cmd.Validate(); err != nil {
		fatal("%v", err)
	}
	body, _ := json.Marshal(cmd)
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Post(httpBase(hubURL)+"/api/v1/command", "application/json", bytes.NewReader(body))
	if err != nil {
		fatal("hub unreachable: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(resp.Body)
		fatal("hub rejected command: HTTP %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	fmt.Printf("accepted: %s\n", cmd.Kind)
}

func printStatus(hubURL string) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(httpBase(hubURL) + "/api/v1/status")
	if err != nil {
		fatal("hub unreachable: %v", err)
	}
	defer resp.Body.Close()
	var envelope struct {
		Data *status.PlaybackStatus `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		fatal("bad response: %v", err)
	}
	if envelope.Data == nil {
		fmt.Println("no status reported yet")
		return
	}
	printSnapshot(*envelope.Data)
}

func watch(hubURL string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := controller.New(hubURL, 500*time.Millisecond, printSnapshot)
	fmt.Printf("watching %s (ctrl-c to stop)\n", hubURL)
	c.Run(ctx)
}

func printSnapshot(st status.PlaybackStatus) {
	state := "paused"
	if st.Playing {
		state = "playing"
	}
	title := st.Metadata.Title
	if st.Metadata.Type == status.TypeShow && st.Metadata.Episode != nil {
		title = fmt.Sprintf("%s / ep %d %s", title, st.Metadata.Episode.Seq, st.Metadata.Episode.Title)
	}
	fmt.Printf("[%s] %s  %.0f/%.0fs  vol=%d\n", state, title, st.Elapsed, st.Duration, st.Volume)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
