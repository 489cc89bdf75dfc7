// ABOUTME: Speaker playback task
// ABOUTME: Writes received PCM16 chunks to the output device in order
package app

import (
	"context"
	"fmt"
)

// runPlayback writes queued chunks until ctx is done
func (s *Session) runPlayback(ctx context.Context) error {
	for {
		select {
		case chunk := <-s.playback:
			if err := s.config.Output.Write(chunk); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("playback: %w", err)
			}
			s.chunksPlayed.Add(1)

		case <-ctx.Done():
			return nil
		}
	}
}
