// ABOUTME: Malgo-based microphone capture
// ABOUTME: Uses miniaudio via malgo with a float32 capture callback
package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
	"github.com/gen2brain/malgo"
)

// Malgo capture implementation using malgo/miniaudio library
type Malgo struct {
	format       audio.Format
	frameSamples int

	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	framer   *Framer
	scratch  []float32
	mu       sync.Mutex
}

// NewMalgo creates a new Malgo capture source
func NewMalgo(format audio.Format, frameSamples int) Source {
	return &Malgo{
		format:       format,
		frameSamples: frameSamples,
	}
}

// Start initializes the capture device and starts the callback
func (m *Malgo) Start(q *FrameQueue) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		return fmt.Errorf("capture already started")
	}

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(m.format.Channels)
	deviceConfig.SampleRate = uint32(m.format.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(m.frameSamples)
	deviceConfig.Alsa.NoMMap = 1

	m.framer = NewFramer(m.frameSamples, func(frame audio.Frame) {
		q.Offer(frame)
	})

	onSamples := func(_, pInputSamples []byte, frameCount uint32) {
		m.dataCallback(pInputSamples)
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		ctx.Free()
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	m.malgoCtx = ctx
	m.device = device

	log.Printf("Audio capture initialized: %dHz, %d channels, %d samples/frame (malgo)",
		m.format.SampleRate, m.format.Channels, m.frameSamples)

	return nil
}

// dataCallback runs on the miniaudio thread and must return promptly
func (m *Malgo) dataCallback(input []byte) {
	m.scratch = bytesToFloat32(m.scratch, input)
	m.framer.Write(m.scratch)
}

// Close stops capture and releases the device
func (m *Malgo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.device != nil {
		if err := m.device.Stop(); err != nil {
			log.Printf("Warning: capture device stop error: %v", err)
		}
		m.device.Uninit()
		m.device = nil
	}

	if m.malgoCtx != nil {
		if err := m.malgoCtx.Uninit(); err != nil {
			log.Printf("Warning: malgo context uninit error: %v", err)
		}
		m.malgoCtx.Free()
		m.malgoCtx = nil
	}

	return nil
}

// Name returns "malgo"
func (m *Malgo) Name() string {
	return "malgo"
}
