// ABOUTME: Test doubles for the session pipeline
// ABOUTME: Fake connection, capture source and recording output
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio/capture"
	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
)

type fakeConn struct {
	mu      sync.Mutex
	sent    []realtime.ClientEvent
	sendErr error

	inbound   chan realtime.Event
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan realtime.Event, 16),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) Send(ctx context.Context, ev realtime.ClientEvent) error {
	select {
	case <-c.closed:
		return realtime.ErrClosed
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, ev)
	return nil
}

func (c *fakeConn) Receive(ctx context.Context) (realtime.Event, error) {
	select {
	case ev := <-c.inbound:
		return ev, nil
	case <-c.closed:
		return nil, realtime.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) messages() []realtime.ClientEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]realtime.ClientEvent(nil), c.sent...)
}

type fakeSource struct {
	mu       sync.Mutex
	queue    *capture.FrameQueue
	startErr error
	started  chan struct{}
	closed   bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{started: make(chan struct{})}
}

func (s *fakeSource) Start(q *capture.FrameQueue) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.mu.Lock()
	s.queue = q
	s.mu.Unlock()
	close(s.started)
	return nil
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type recordingOutput struct {
	mu         sync.Mutex
	sampleRate int
	channels   int
	opened     bool
	closed     bool
	chunks     [][]byte
	writeErr   error

	// gate, when set, blocks Write until it is closed
	gate    chan struct{}
	written chan struct{}
}

func newRecordingOutput() *recordingOutput {
	return &recordingOutput{written: make(chan struct{}, 64)}
}

func (o *recordingOutput) Open(sampleRate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sampleRate = sampleRate
	o.channels = channels
	o.opened = true
	return nil
}

func (o *recordingOutput) Write(pcm []byte) error {
	if o.gate != nil {
		<-o.gate
	}

	o.mu.Lock()
	if o.writeErr != nil {
		o.mu.Unlock()
		return o.writeErr
	}
	if !o.opened {
		o.mu.Unlock()
		return errors.New("not opened")
	}
	o.chunks = append(o.chunks, append([]byte(nil), pcm...))
	o.mu.Unlock()

	select {
	case o.written <- struct{}{}:
	default:
	}
	return nil
}

func (o *recordingOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return nil
}

func (o *recordingOutput) Name() string { return "recording" }

func (o *recordingOutput) snapshot() (chunks [][]byte, opened, closed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([][]byte(nil), o.chunks...), o.opened, o.closed
}
