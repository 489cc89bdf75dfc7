//go:build portaudio

// ABOUTME: PortAudio microphone capture
// ABOUTME: Cross-platform capture using PortAudio's callback stream
package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
	"github.com/gordonklaus/portaudio"
)

// PortAudio capture implementation
type PortAudio struct {
	format       audio.Format
	frameSamples int
	stream       *portaudio.Stream
	mu           sync.Mutex
}

// NewPortAudio creates a new PortAudio capture source
func NewPortAudio(format audio.Format, frameSamples int) Source {
	return &PortAudio{
		format:       format,
		frameSamples: frameSamples,
	}
}

// Start initializes PortAudio and opens the default input stream
func (p *PortAudio) Start(q *FrameQueue) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream != nil {
		return fmt.Errorf("capture already started")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	framer := NewFramer(p.frameSamples, func(frame audio.Frame) {
		q.Offer(frame)
	})

	stream, err := portaudio.OpenDefaultStream(p.format.Channels, 0, float64(p.format.SampleRate), p.frameSamples, func(in []float32) {
		framer.Write(in)
	})
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("failed to start stream: %w", err)
	}

	p.stream = stream
	log.Printf("Audio capture initialized: %dHz, %d channels, %d samples/frame (portaudio)",
		p.format.SampleRate, p.format.Channels, p.frameSamples)

	return nil
}

// Close releases resources
func (p *PortAudio) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return nil
	}

	if err := p.stream.Stop(); err != nil {
		log.Printf("Warning: portaudio stop error: %v", err)
	}
	if err := p.stream.Close(); err != nil {
		log.Printf("Warning: portaudio close error: %v", err)
	}
	p.stream = nil

	return portaudio.Terminate()
}

// Name returns "portaudio"
func (p *PortAudio) Name() string {
	return "portaudio"
}
