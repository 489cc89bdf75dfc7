// ABOUTME: Entry point for the Resonate voice client
// ABOUTME: Loads configuration from the environment and runs one voice session
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/resonate-voice/internal/app"
	"github.com/Resonate-Protocol/resonate-voice/internal/config"
	"github.com/Resonate-Protocol/resonate-voice/internal/ui"
	"github.com/Resonate-Protocol/resonate-voice/internal/version"
	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
	"github.com/Resonate-Protocol/resonate-voice/pkg/audio/capture"
	"github.com/Resonate-Protocol/resonate-voice/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	url, err := cfg.URL()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Set up logging
	f, err := os.OpenFile(cfg.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if cfg.TUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
		log.Printf("Starting %s %s", version.Product, version.Version)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	captureFormat := audio.CaptureFormat()
	source, err := capture.New(cfg.CaptureBackend, captureFormat, captureFormat.FrameSamples(audio.FrameDuration))
	if err != nil {
		log.Fatalf("Failed to create capture source: %v", err)
	}
	out, err := output.New(cfg.PlaybackBackend)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}

	// TUI setup
	var tuiProg *tea.Program
	var tuiDone chan struct{}
	var control *ui.Control

	if cfg.TUI {
		control = ui.NewControl()
		tuiProg, err = ui.Run(control)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		tuiDone = make(chan struct{})
		go func() {
			if _, err := tuiProg.Run(); err != nil {
				log.Printf("TUI error: %v", err)
			}
			close(tuiDone)
		}()

		// Quitting the TUI stops the session like a signal does
		go func() {
			select {
			case <-control.Quit:
				log.Printf("Received quit signal from TUI")
				stop()
			case <-ctx.Done():
			}
		}()
	}

	// Helper to update TUI
	updateTUI := func(msg tea.Msg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}
	updateTUI(ui.StatusMsg{Deployment: cfg.Deployment, Voice: cfg.Session.Voice})

	session, err := app.NewSession(app.Config{
		Dial: app.DialRealtime(realtime.Config{
			URL:       url,
			APIKey:    cfg.APIKey,
			UserAgent: version.UserAgent(),
		}),
		Source:   source,
		Output:   out,
		Session:  cfg.Session.RealtimeConfig(),
		Greeting: cfg.Session.Greeting,
		OnStateChange: func(state app.State) {
			updateTUI(ui.StatusMsg{State: state.String()})
		},
		OnTranscript: func(text string) {
			if tuiProg != nil {
				tuiProg.Send(ui.TranscriptMsg{Text: text})
				return
			}
			fmt.Printf("[you]: %s\n", text)
		},
		OnRemoteError: func(ev realtime.ErrorEvent) {
			if ev.Detail != nil {
				updateTUI(ui.ErrorMsg{Text: ev.Detail.Message})
			}
		},
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	if tuiProg != nil {
		go statsUpdateLoop(ctx, session, updateTUI)
	}

	runErr := session.Run(ctx)

	if tuiProg != nil {
		tuiProg.Quit()
		<-tuiDone
	}

	if runErr != nil {
		log.Fatalf("Session failed: %v", runErr)
	}
	log.Printf("Session stopped")
}

// statsUpdateLoop periodically updates TUI with pipeline statistics
func statsUpdateLoop(ctx context.Context, session *app.Session, updateTUI func(tea.Msg)) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	// Use a slower ticker for expensive runtime stats to avoid GC pauses
	runtimeStatsTicker := time.NewTicker(2 * time.Second)
	defer runtimeStatsTicker.Stop()

	for {
		select {
		case <-runtimeStatsTicker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			updateTUI(ui.StatusMsg{Goroutines: runtime.NumGoroutine(), MemAlloc: m.Alloc})

		case <-ticker.C:
			stats := session.Stats()
			updateTUI(ui.StatusMsg{Stats: &ui.StatsMsg{
				Captured:  stats.FramesCaptured,
				Dropped:   stats.FramesDropped,
				Sent:      stats.FramesSent,
				Received:  stats.ChunksReceived,
				Played:    stats.ChunksPlayed,
				Responses: stats.ResponsesCompleted,
				Errors:    stats.RemoteErrors,
				Queued:    stats.PlaybackQueued,
			}})

		case <-ctx.Done():
			return
		}
	}
}
