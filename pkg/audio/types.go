// ABOUTME: Audio type definitions
// ABOUTME: Defines audio formats, captured frames and encoded chunks
package audio

import (
	"math"
	"time"
)

const (
	// PCM16 range used for float conversion; -1.0 and 1.0 map to equal magnitudes
	MaxInt16 = 32767
	MinInt16 = -32767

	// CodecPCM16 is the format tag the realtime service uses for raw
	// little-endian signed 16-bit audio.
	CodecPCM16 = "pcm16"

	// CaptureSampleRate is the microphone rate sent to the service.
	CaptureSampleRate = 16000

	// PlaybackSampleRate is the rate the service emits synthesized audio at.
	PlaybackSampleRate = 24000

	// FrameDuration is the capture interval; one Frame per interval.
	FrameDuration = 100 * time.Millisecond
)

// Format describes audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// CaptureFormat returns the fixed microphone format (16kHz mono)
func CaptureFormat() Format {
	return Format{Codec: CodecPCM16, SampleRate: CaptureSampleRate, Channels: 1, BitDepth: 16}
}

// PlaybackFormat returns the fixed speaker format (24kHz mono)
func PlaybackFormat() Format {
	return Format{Codec: CodecPCM16, SampleRate: PlaybackSampleRate, Channels: 1, BitDepth: 16}
}

// FrameSamples returns the number of samples per channel in d of audio
func (f Format) FrameSamples(d time.Duration) int {
	return int(int64(f.SampleRate) * int64(d) / int64(time.Second))
}

// BytesPerSecond returns the PCM byte rate of the format
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.Channels * (f.BitDepth / 8)
}

// Frame is a block of captured mono float32 samples
type Frame struct {
	Samples  []float32
	Captured time.Time
}

// NewFrame allocates a zeroed frame of n samples
func NewFrame(n int) Frame {
	return Frame{Samples: make([]float32, n)}
}

// Duration returns the playing time of the frame at sampleRate
func (f Frame) Duration(sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(sampleRate)
}

// Chunk is encoded PCM16 little-endian audio
type Chunk []byte

// Samples returns the number of 16-bit samples in the chunk
func (c Chunk) Samples() int {
	return len(c) / 2
}

// SampleFromFloat32 converts a float sample to int16, clamping to [-1, 1].
// NaN maps to silence.
func SampleFromFloat32(v float32) int16 {
	f := float64(v)
	if math.IsNaN(f) {
		return 0
	}
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	return int16(math.Round(f * MaxInt16))
}

// SampleToFloat32 converts an int16 sample back to the [-1, 1] float range
func SampleToFloat32(sample int16) float32 {
	v := float32(sample) / MaxInt16
	if v < -1 {
		v = -1
	}
	return v
}
