// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for audio playback backends
package output

import "fmt"

// Output represents an audio output device
type Output interface {
	// Open initializes the output device for PCM16 audio
	Open(sampleRate, channels int) error

	// Write outputs PCM16 bytes (blocks until accepted)
	Write(pcm []byte) error

	// Close releases output resources
	Close() error

	// Name returns the backend name
	Name() string
}

// New creates an output for the named backend. An empty name selects oto.
func New(backend string) (Output, error) {
	switch backend {
	case "", "oto":
		return NewOto(), nil
	case "malgo":
		return NewMalgo(), nil
	default:
		return nil, fmt.Errorf("unknown playback backend: %s", backend)
	}
}
