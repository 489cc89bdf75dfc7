// ABOUTME: Connection abstraction used by the session pipeline
// ABOUTME: Adapts the realtime client and allows fakes in tests
package app

import (
	"context"

	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
)

// Conn is the realtime connection as seen by the pipeline
type Conn interface {
	Send(ctx context.Context, ev realtime.ClientEvent) error
	Receive(ctx context.Context) (realtime.Event, error)
	Close() error
}

// Dialer opens the single connection for a session
type Dialer func(ctx context.Context) (Conn, error)

// DialRealtime returns a Dialer for the realtime service
func DialRealtime(config realtime.Config) Dialer {
	return func(ctx context.Context) (Conn, error) {
		client, err := realtime.Dial(ctx, config)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
