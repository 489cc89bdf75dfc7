// ABOUTME: Outbound audio task
// ABOUTME: Encodes captured frames and sends them as input_audio_buffer.append
package app

import (
	"context"
	"fmt"

	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
)

// runSender drains the frame queue until ctx is done
func (s *Session) runSender(ctx context.Context, conn Conn) error {
	for {
		frame, ok := s.frames.Next(ctx, s.config.PollInterval)
		if !ok {
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		pcm, err := s.encoder.Encode(frame.Samples)
		if err != nil {
			return fmt.Errorf("sender: encode: %w", err)
		}

		if err := conn.Send(ctx, realtime.NewInputAudioAppend(pcm)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("sender: %w", err)
		}
		s.framesSent.Add(1)
	}
}
