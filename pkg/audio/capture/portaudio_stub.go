//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package capture

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
)

// PortAudio capture implementation (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio capture source
func NewPortAudio(format audio.Format, frameSamples int) Source {
	return &PortAudio{}
}

// Start initializes PortAudio
func (p *PortAudio) Start(q *FrameQueue) error {
	return fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

// Close releases resources
func (p *PortAudio) Close() error {
	return nil
}

// Name returns "portaudio"
func (p *PortAudio) Name() string {
	return "portaudio"
}
