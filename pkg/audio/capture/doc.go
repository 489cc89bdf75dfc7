// ABOUTME: Microphone capture package
// ABOUTME: Provides Source interface, frame queue and device backends
// Package capture acquires fixed-size microphone frames.
//
// Device callbacks run on the audio subsystem's own thread. They only
// re-slice samples into frames and offer them to a FrameQueue, which never
// blocks: when the queue is full the frame is dropped and counted.
//
// Backends:
//   - malgo (default): miniaudio via github.com/gen2brain/malgo
//   - portaudio: build with -tags portaudio
//
// Example:
//
//	q := capture.NewFrameQueue(10, capture.DropNewest)
//	src, err := capture.New("malgo", audio.CaptureFormat(), 1600)
//	err = src.Start(q)
//	frame, ok := q.Next(ctx, 200*time.Millisecond)
package capture
