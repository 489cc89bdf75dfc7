// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Frame and Chunk types and sample conversion helpers
// Package audio provides the audio types shared by capture, encoding and playback.
//
// This package defines:
//   - Format: Describes a stream format (codec, sample rate, channels, bit depth)
//   - Frame: A fixed-length block of captured float32 samples
//   - Chunk: Encoded PCM16 bytes travelling to or from the service
//
// Example:
//
//	format := audio.CaptureFormat()
//	frame := audio.NewFrame(format.FrameSamples(100 * time.Millisecond))
//	pcm := audio.SampleFromFloat32(frame.Samples[0])
package audio
