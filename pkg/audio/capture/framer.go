// ABOUTME: Re-slices device callback buffers into fixed-size frames
// ABOUTME: Also converts raw float32 callback bytes into samples
package capture

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
)

// Framer accumulates samples and emits frames of exactly size samples.
// It is not safe for concurrent use; each device callback owns one.
type Framer struct {
	size int
	buf  []float32
	emit func(audio.Frame)
}

// NewFramer creates a framer that calls emit for every completed frame
func NewFramer(size int, emit func(audio.Frame)) *Framer {
	return &Framer{
		size: size,
		buf:  make([]float32, 0, size),
		emit: emit,
	}
}

// Write appends samples, emitting as many complete frames as possible
func (f *Framer) Write(samples []float32) {
	for len(samples) > 0 {
		n := min(f.size-len(f.buf), len(samples))
		f.buf = append(f.buf, samples[:n]...)
		samples = samples[n:]

		if len(f.buf) == f.size {
			f.emit(audio.Frame{Samples: f.buf, Captured: time.Now()})
			f.buf = make([]float32, 0, f.size)
		}
	}
}

// Pending returns the number of samples waiting for a full frame
func (f *Framer) Pending() int {
	return len(f.buf)
}

// bytesToFloat32 decodes little-endian float32 samples into dst, growing it
// as needed, and returns the filled slice.
func bytesToFloat32(dst []float32, src []byte) []float32 {
	n := len(src) / 4
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return dst
}
