// ABOUTME: WebSocket client for the Azure OpenAI Realtime API
// ABOUTME: Handles URL building, dialing, serialized sends and event reads
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultHandshakeTimeout bounds the websocket upgrade
	DefaultHandshakeTimeout = 15 * time.Second

	// closeGracePeriod bounds the close frame write on shutdown
	closeGracePeriod = time.Second

	realtimePath = "/openai/realtime"
)

// ErrClosed is returned by Send and Receive once the connection is closed
var ErrClosed = errors.New("realtime: connection closed")

// Config holds connection configuration
type Config struct {
	// URL is the full wss:// endpoint, see BuildURL
	URL string

	// APIKey is sent in the api-key header
	APIKey string

	// Subprotocol defaults to "realtime"
	Subprotocol string

	// HandshakeTimeout defaults to 15s
	HandshakeTimeout time.Duration

	// UserAgent is optional
	UserAgent string
}

// BuildURL composes the realtime endpoint from an Azure resource endpoint.
// Any scheme on endpoint is replaced by wss and a trailing slash is dropped.
func BuildURL(endpoint, apiVersion, deployment string) (string, error) {
	rest := endpoint
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	rest = strings.TrimRight(rest, "/")
	if rest == "" {
		return "", fmt.Errorf("realtime: empty endpoint")
	}
	if deployment == "" {
		return "", fmt.Errorf("realtime: empty deployment")
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	host, prefix := rest, ""
	if i := strings.Index(rest, "/"); i >= 0 {
		host, prefix = rest[:i], rest[i:]
	}

	u := url.URL{
		Scheme: "wss",
		Host:   host,
		Path:   prefix + realtimePath,
		RawQuery: url.Values{
			"api-version": []string{apiVersion},
			"deployment":  []string{deployment},
		}.Encode(),
	}
	return u.String(), nil
}

// Client is a single realtime connection. Send is safe for concurrent use;
// Receive must only be called from one goroutine.
type Client struct {
	conn *websocket.Conn

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Dial opens the websocket and returns a connected client
func Dial(ctx context.Context, config Config) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("realtime: dial: empty URL")
	}
	if config.Subprotocol == "" {
		config.Subprotocol = DefaultSubprotocol
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = DefaultHandshakeTimeout
	}

	header := http.Header{}
	header.Set("api-key", config.APIKey)
	if config.UserAgent != "" {
		header.Set("User-Agent", config.UserAgent)
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: config.HandshakeTimeout,
		Subprotocols:     []string{config.Subprotocol},
	}

	log.Printf("Connecting to %s", redactURL(config.URL))

	// gorilla applies no read limit unless one is set, so messages are uncapped
	conn, resp, err := dialer.DialContext(ctx, config.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("realtime: dial: %w (status %s)", err, resp.Status)
		}
		return nil, fmt.Errorf("realtime: dial: %w", err)
	}

	if got := conn.Subprotocol(); got != config.Subprotocol {
		log.Printf("Warning: server selected subprotocol %q, requested %q", got, config.Subprotocol)
	}

	return &Client{conn: conn}, nil
}

// Send stamps an event_id on ev if it has none and writes it as one text frame
func (c *Client) Send(ctx context.Context, ev ClientEvent) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	h := ev.header()
	if h.EventID == "" {
		h.EventID = "evt_" + uuid.NewString()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("realtime: marshal %s: %w", h.Type, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return c.wrap("send", err)
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return c.wrap("send", err)
	}
	return nil
}

// Receive blocks for the next server event. Cancelling ctx unblocks the read
// and leaves the connection unusable; callers close it afterwards.
func (c *Client) Receive(ctx context.Context) (Event, error) {
	for {
		if c.closed.Load() {
			return nil, ErrClosed
		}

		stop := context.AfterFunc(ctx, func() {
			_ = c.conn.SetReadDeadline(time.Unix(1, 0))
		})
		messageType, data, err := c.conn.ReadMessage()
		stop()

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, c.wrap("receive", err)
		}

		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}

		event, err := ParseEvent(data)
		if err != nil {
			// A malformed frame is not fatal to the stream
			log.Printf("Dropping malformed event: %v", err)
			continue
		}
		return event, nil
	}
}

// Close sends a close frame and releases the connection. Safe to call more than once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)

		// WriteControl may run concurrently with a pending Send
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client shutdown")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))

		c.closeErr = c.conn.Close()
		log.Printf("Connection closed")
	})
	return c.closeErr
}

// wrap maps errors after Close to ErrClosed
func (c *Client) wrap(op string, err error) error {
	if c.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return fmt.Errorf("realtime: %s: %w", op, ErrClosed)
	}
	return fmt.Errorf("realtime: %s: %w", op, err)
}

// redactURL strips the query string for logging
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	return u.String()
}
