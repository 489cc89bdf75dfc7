// ABOUTME: Inbound event task
// ABOUTME: Dispatches server events to playback, transcript display and logs
package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
)

// runReader receives events until the connection ends or ctx is done
func (s *Session) runReader(ctx context.Context, conn Conn) error {
	for {
		event, err := conn.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reader: %w", err)
		}

		if err := s.handleEvent(ctx, event); err != nil {
			return nil
		}
	}
}

// handleEvent processes one event. It only fails when ctx is done while
// waiting for playback queue space.
func (s *Session) handleEvent(ctx context.Context, event realtime.Event) error {
	switch ev := event.(type) {
	case realtime.SessionCreated:
		log.Printf("Reader: session created: %s (model %s)", ev.SessionID, ev.Model)

	case realtime.AudioDelta:
		pcm, err := ev.Decode()
		if err != nil {
			log.Printf("Reader: dropping undecodable audio delta: %v", err)
			return nil
		}
		if len(pcm) == 0 {
			return nil
		}
		s.chunksReceived.Add(1)

		// Blocks while playback is behind
		select {
		case s.playback <- audio.Chunk(pcm):
		case <-ctx.Done():
			return ctx.Err()
		}

	case realtime.AudioDone:
		if ev.Kind == realtime.TypeResponseDone || ev.Kind == realtime.TypeResponseCompleted {
			s.responses.Add(1)
		}

	case realtime.TranscriptionCompleted:
		text := strings.TrimSpace(ev.Transcript)
		if text == "" {
			return nil
		}
		s.transcripts.Add(1)
		if s.config.OnTranscript != nil {
			s.config.OnTranscript(text)
		} else {
			log.Printf("[you]: %s", text)
		}

	case realtime.ErrorEvent:
		s.remoteErrors.Add(1)
		log.Printf("Reader: service error: %s", ev)
		if s.config.OnRemoteError != nil {
			s.config.OnRemoteError(ev)
		}

	case realtime.Unknown:
	}
	return nil
}
