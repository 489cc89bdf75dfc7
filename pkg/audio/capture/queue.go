// ABOUTME: Bounded frame queue between the capture callback and the sender
// ABOUTME: Non-blocking offer with a drop policy, timeout-bounded pop
package capture

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
)

// DefaultQueueCapacity is the number of frames buffered between capture and send
const DefaultQueueCapacity = 10

// DropPolicy decides which frame is lost when the queue is full
type DropPolicy int

const (
	// DropNewest discards the frame being offered
	DropNewest DropPolicy = iota
	// DropOldest evicts the oldest queued frame to make room
	DropOldest
)

// String returns the policy name
func (p DropPolicy) String() string {
	switch p {
	case DropNewest:
		return "drop-newest"
	case DropOldest:
		return "drop-oldest"
	default:
		return "unknown"
	}
}

// FrameQueue is a bounded single-producer/single-consumer frame queue
type FrameQueue struct {
	frames chan audio.Frame
	policy DropPolicy

	offered atomic.Int64
	dropped atomic.Int64
}

// NewFrameQueue creates a queue holding at most capacity frames
func NewFrameQueue(capacity int, policy DropPolicy) *FrameQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &FrameQueue{
		frames: make(chan audio.Frame, capacity),
		policy: policy,
	}
}

// Offer enqueues a frame without blocking. It reports whether the offered
// frame was kept.
func (q *FrameQueue) Offer(frame audio.Frame) bool {
	q.offered.Add(1)

	select {
	case q.frames <- frame:
		return true
	default:
	}

	if q.policy == DropNewest {
		q.dropped.Add(1)
		return false
	}

	// Evict the oldest frame, then retry once
	select {
	case <-q.frames:
		q.dropped.Add(1)
	default:
	}

	select {
	case q.frames <- frame:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Next waits up to timeout for a frame. ok is false on timeout or when ctx
// is done; callers check ctx.Err() to tell the two apart.
func (q *FrameQueue) Next(ctx context.Context, timeout time.Duration) (frame audio.Frame, ok bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case frame = <-q.frames:
		return frame, true
	case <-ctx.Done():
		return audio.Frame{}, false
	case <-timer.C:
		return audio.Frame{}, false
	}
}

// Len returns the number of queued frames
func (q *FrameQueue) Len() int {
	return len(q.frames)
}

// Cap returns the queue capacity
func (q *FrameQueue) Cap() int {
	return cap(q.frames)
}

// Offered returns the total number of frames offered
func (q *FrameQueue) Offered() int64 {
	return q.offered.Load()
}

// Dropped returns the number of frames lost to overflow
func (q *FrameQueue) Dropped() int64 {
	return q.dropped.Load()
}
