// ABOUTME: Voice session orchestration
// ABOUTME: Connects, runs capture/send, receive and playback tasks, then drains
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
	"github.com/Resonate-Protocol/resonate-voice/pkg/audio/capture"
	"github.com/Resonate-Protocol/resonate-voice/pkg/audio/encode"
	"github.com/Resonate-Protocol/resonate-voice/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPlaybackQueueSize = 50
	DefaultGracePeriod       = 2 * time.Second
	DefaultPollInterval      = 200 * time.Millisecond
)

// Config holds session configuration
type Config struct {
	// Dial opens the realtime connection (required)
	Dial Dialer

	// Source is the microphone (required)
	Source capture.Source

	// Output is the speaker (required)
	Output output.Output

	// Session is sent as session.update right after connecting
	Session realtime.SessionConfig

	// Greeting, when set, is sent as response.create instructions once
	// audio is flowing
	Greeting string

	// FrameQueueSize defaults to capture.DefaultQueueCapacity
	FrameQueueSize int

	// DropPolicy applies when the frame queue is full
	DropPolicy capture.DropPolicy

	// PlaybackQueueSize defaults to 50
	PlaybackQueueSize int

	// GracePeriod bounds how long draining waits for tasks (default: 2s)
	GracePeriod time.Duration

	// PollInterval is the sender's frame wait (default: 200ms)
	PollInterval time.Duration

	// OnStateChange is called on every state transition
	OnStateChange func(State)

	// OnTranscript is called with each non-empty user transcript
	OnTranscript func(string)

	// OnRemoteError is called for error events reported by the service
	OnRemoteError func(realtime.ErrorEvent)
}

// Stats contains pipeline counters
type Stats struct {
	FramesCaptured     int64
	FramesDropped      int64
	FramesSent         int64
	ChunksReceived     int64
	ChunksPlayed       int64
	ResponsesCompleted int64
	Transcripts        int64
	RemoteErrors       int64
	PlaybackQueued     int
}

// Session runs one conversation over one connection
type Session struct {
	config  Config
	encoder encode.Encoder

	frames   *capture.FrameQueue
	playback chan audio.Chunk

	mu      sync.Mutex
	state   State
	started bool

	framesSent     atomic.Int64
	chunksReceived atomic.Int64
	chunksPlayed   atomic.Int64
	responses      atomic.Int64
	transcripts    atomic.Int64
	remoteErrors   atomic.Int64
}

// NewSession validates config and applies defaults
func NewSession(config Config) (*Session, error) {
	if config.Dial == nil {
		return nil, fmt.Errorf("session: dialer is required")
	}
	if config.Source == nil {
		return nil, fmt.Errorf("session: capture source is required")
	}
	if config.Output == nil {
		return nil, fmt.Errorf("session: output is required")
	}
	if config.FrameQueueSize <= 0 {
		config.FrameQueueSize = capture.DefaultQueueCapacity
	}
	if config.PlaybackQueueSize <= 0 {
		config.PlaybackQueueSize = DefaultPlaybackQueueSize
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = DefaultGracePeriod
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}

	encoder, err := encode.NewPCM(audio.CaptureFormat())
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	return &Session{
		config:   config,
		encoder:  encoder,
		frames:   capture.NewFrameQueue(config.FrameQueueSize, config.DropPolicy),
		playback: make(chan audio.Chunk, config.PlaybackQueueSize),
	}, nil
}

// Run connects and streams until ctx is done or a task fails. It returns nil
// on a clean stop and the first failure otherwise. A Session runs once.
func (s *Session) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session: already run")
	}
	s.started = true
	s.mu.Unlock()

	s.setState(StateConnecting)

	conn, err := s.config.Dial(ctx)
	if err != nil {
		s.setState(StateStopped)
		if ctx.Err() != nil {
			// Stopped before the connection was up
			return nil
		}
		return fmt.Errorf("connect: %w", err)
	}

	if err := conn.Send(ctx, realtime.NewSessionUpdate(s.config.Session)); err != nil {
		conn.Close()
		s.setState(StateStopped)
		return fmt.Errorf("session update: %w", err)
	}
	log.Printf("Session: configured (voice=%s)", s.config.Session.Voice)

	if err := s.config.Output.Open(audio.PlaybackSampleRate, 1); err != nil {
		conn.Close()
		s.setState(StateStopped)
		return fmt.Errorf("open %s output: %w", s.config.Output.Name(), err)
	}

	if err := s.config.Source.Start(s.frames); err != nil {
		conn.Close()
		s.config.Output.Close()
		s.setState(StateStopped)
		return fmt.Errorf("start %s capture: %w", s.config.Source.Name(), err)
	}

	s.setState(StateActive)

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	g, gctx := errgroup.WithContext(runCtx)

	// The first task failure becomes the cause of runCtx so it survives a
	// drain that times out
	goTask := func(task func() error) {
		g.Go(func() error {
			err := task()
			if err != nil {
				cancel(err)
			}
			return err
		})
	}

	goTask(func() error { return s.runReader(gctx, conn) })
	goTask(func() error { return s.runSender(gctx, conn) })
	goTask(func() error { return s.runPlayback(gctx) })

	if s.config.Greeting != "" {
		goTask(func() error {
			if err := conn.Send(gctx, realtime.NewResponseCreate(s.config.Greeting)); err != nil {
				if gctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("greeting: %w", err)
			}
			return nil
		})
	}

	<-gctx.Done()
	s.setState(StateDraining)
	cancel(nil)

	// Closing the connection unblocks a pending read
	if err := conn.Close(); err != nil {
		log.Printf("Session: close connection: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var runErr error
	select {
	case runErr = <-done:
	case <-time.After(s.config.GracePeriod):
		log.Printf("Session: tasks still running after %v, closing devices", s.config.GracePeriod)
		if ctx.Err() == nil {
			runErr = context.Cause(runCtx)
		}
	}

	if err := s.config.Source.Close(); err != nil {
		log.Printf("Session: close capture: %v", err)
	}
	if err := s.config.Output.Close(); err != nil {
		log.Printf("Session: close output: %v", err)
	}

	s.setState(StateStopped)

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns pipeline counters
func (s *Session) Stats() Stats {
	return Stats{
		FramesCaptured:     s.frames.Offered(),
		FramesDropped:      s.frames.Dropped(),
		FramesSent:         s.framesSent.Load(),
		ChunksReceived:     s.chunksReceived.Load(),
		ChunksPlayed:       s.chunksPlayed.Load(),
		ResponsesCompleted: s.responses.Load(),
		Transcripts:        s.transcripts.Load(),
		RemoteErrors:       s.remoteErrors.Load(),
		PlaybackQueued:     len(s.playback),
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	log.Printf("Session: %s", state)
	if s.config.OnStateChange != nil {
		s.config.OnStateChange(state)
	}
}
