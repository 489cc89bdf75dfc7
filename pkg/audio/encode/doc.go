// ABOUTME: Audio encoder package for encoding captured samples to wire format
// ABOUTME: Provides Encoder interface and the PCM16 implementation
// Package encode converts captured float32 audio into the PCM16 wire format.
//
// The realtime service accepts little-endian signed 16-bit mono audio only,
// so PCM16 is the single supported codec.
//
// Example:
//
//	encoder, err := encode.NewPCM(audio.CaptureFormat())
//	data, err := encoder.Encode(frame.Samples)
package encode
