// ABOUTME: Audio output package for playing synthesized speech
// ABOUTME: Provides Output interface with oto and malgo implementations
// Package output provides audio playback devices.
//
// Writes take raw PCM16 little-endian bytes and block until the device has
// accepted them, so a slow speaker applies backpressure to the caller.
//
// Example:
//
//	out, err := output.New("oto")
//	err = out.Open(24000, 1)
//	err = out.Write(pcm)
package output
