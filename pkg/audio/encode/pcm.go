// ABOUTME: PCM16 audio encoder
// ABOUTME: Encodes float32 samples to little-endian signed 16-bit PCM bytes
package encode

import (
	"encoding/binary"
	"fmt"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
)

// PCMEncoder encodes PCM16 audio
type PCMEncoder struct{}

// NewPCM creates a new PCM16 encoder
func NewPCM(format audio.Format) (Encoder, error) {
	if format.Codec != audio.CodecPCM16 {
		return nil, fmt.Errorf("invalid codec for PCM encoder: %s", format.Codec)
	}

	if format.BitDepth != 16 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16)", format.BitDepth)
	}

	return &PCMEncoder{}, nil
}

// Encode converts float32 samples to PCM16 bytes
func (e *PCMEncoder) Encode(samples []float32) ([]byte, error) {
	return Float32ToPCM16(samples), nil
}

// Close releases resources
func (e *PCMEncoder) Close() error {
	return nil
}

// Float32ToPCM16 clamps each sample to [-1, 1], scales by 32767 and writes
// it as a little-endian int16. Output is always 2*len(samples) bytes.
func Float32ToPCM16(samples []float32) []byte {
	output := make([]byte, len(samples)*2)
	for i, sample := range samples {
		binary.LittleEndian.PutUint16(output[i*2:], uint16(audio.SampleFromFloat32(sample)))
	}
	return output
}

// PCM16ToInt16 decodes little-endian PCM16 bytes. A trailing odd byte is ignored.
func PCM16ToInt16(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return samples
}
