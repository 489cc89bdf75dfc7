// ABOUTME: Capture source interface and backend selection
// ABOUTME: Common interface for microphone capture backends
package capture

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
)

// Source represents a microphone input device
type Source interface {
	// Start opens the device and begins offering frames to q
	Start(q *FrameQueue) error

	// Close stops capture and releases the device
	Close() error

	// Name returns the backend name
	Name() string
}

// New creates a capture source for the named backend. An empty name selects malgo.
func New(backend string, format audio.Format, frameSamples int) (Source, error) {
	if frameSamples <= 0 {
		return nil, fmt.Errorf("invalid frame size: %d", frameSamples)
	}

	switch backend {
	case "", "malgo":
		return NewMalgo(format, frameSamples), nil
	case "portaudio":
		return NewPortAudio(format, frameSamples), nil
	default:
		return nil, fmt.Errorf("unknown capture backend: %s", backend)
	}
}
