// ABOUTME: Tests for the realtime websocket client
// ABOUTME: Runs the client against an in-process websocket server
package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name       string
		endpoint   string
		apiVersion string
		deployment string
		want       string
		wantErr    bool
	}{
		{
			name:       "https endpoint",
			endpoint:   "https://myres.openai.azure.com",
			apiVersion: "2025-04-01-preview",
			deployment: "gpt-4o-realtime",
			want:       "wss://myres.openai.azure.com/openai/realtime?api-version=2025-04-01-preview&deployment=gpt-4o-realtime",
		},
		{
			name:       "trailing slash",
			endpoint:   "https://myres.openai.azure.com/",
			apiVersion: "v1",
			deployment: "d",
			want:       "wss://myres.openai.azure.com/openai/realtime?api-version=v1&deployment=d",
		},
		{
			name:       "bare host",
			endpoint:   "myres.openai.azure.com",
			apiVersion: "v1",
			deployment: "d",
			want:       "wss://myres.openai.azure.com/openai/realtime?api-version=v1&deployment=d",
		},
		{
			name:       "default api version",
			endpoint:   "wss://host",
			deployment: "d",
			want:       "wss://host/openai/realtime?api-version=" + DefaultAPIVersion + "&deployment=d",
		},
		{
			name:       "path prefix kept",
			endpoint:   "https://gateway.example.com/azure/",
			apiVersion: "v1",
			deployment: "d",
			want:       "wss://gateway.example.com/azure/openai/realtime?api-version=v1&deployment=d",
		},
		{
			name:       "empty endpoint",
			endpoint:   "https://",
			deployment: "d",
			wantErr:    true,
		},
		{
			name:     "empty deployment",
			endpoint: "https://host",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(tt.endpoint, tt.apiVersion, tt.deployment)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// testServer upgrades every request and hands the connection to handle
type testServer struct {
	*httptest.Server

	mu      sync.Mutex
	headers http.Header
	proto   string
}

func newTestServer(t *testing.T, handle func(conn *websocket.Conn)) *testServer {
	t.Helper()

	ts := &testServer{}
	upgrader := websocket.Upgrader{
		Subprotocols: []string{DefaultSubprotocol},
		CheckOrigin:  func(r *http.Request) bool { return true },
	}

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ts.mu.Lock()
		ts.headers = r.Header.Clone()
		ts.proto = conn.Subprotocol()
		ts.mu.Unlock()

		handle(conn)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

// drain reads until the peer goes away
func drain(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func dialTest(t *testing.T, ts *testServer) *Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, Config{
		URL:       ts.wsURL(),
		APIKey:    "secret-key",
		UserAgent: "resonate-voice-test",
	})
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDial_Handshake(t *testing.T) {
	ts := newTestServer(t, drain)
	client := dialTest(t, ts)

	// Send a message so the handler has certainly recorded the request
	if err := client.Send(context.Background(), NewResponseCreate("")); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	client.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		ts.mu.Lock()
		headers, proto := ts.headers, ts.proto
		ts.mu.Unlock()
		if headers != nil {
			if got := headers.Get("api-key"); got != "secret-key" {
				t.Errorf("expected api-key header secret-key, got %q", got)
			}
			if got := headers.Get("User-Agent"); got != "resonate-voice-test" {
				t.Errorf("expected User-Agent resonate-voice-test, got %q", got)
			}
			if proto != DefaultSubprotocol {
				t.Errorf("expected subprotocol %q, got %q", DefaultSubprotocol, proto)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("server never recorded the handshake")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDial_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := Dial(context.Background(), Config{URL: "ws" + strings.TrimPrefix(server.URL, "http")})
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestDial_EmptyURL(t *testing.T) {
	if _, err := Dial(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestSend_StampsEventID(t *testing.T) {
	received := make(chan map[string]any, 2)
	ts := newTestServer(t, func(conn *websocket.Conn) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg map[string]any
			if err := json.Unmarshal(data, &msg); err == nil {
				received <- msg
			}
		}
	})
	client := dialTest(t, ts)

	if err := client.Send(context.Background(), NewInputAudioAppend([]byte{1, 2})); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	preset := NewResponseCreate("")
	preset.EventID = "evt_fixed"
	if err := client.Send(context.Background(), preset); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	for i, wantType := range []string{TypeInputAudioAppend, TypeResponseCreate} {
		select {
		case msg := <-received:
			if msg["type"] != wantType {
				t.Errorf("message %d: expected type %s, got %v", i, wantType, msg["type"])
			}
			id, _ := msg["event_id"].(string)
			if !strings.HasPrefix(id, "evt_") {
				t.Errorf("message %d: expected evt_ event id, got %q", i, id)
			}
			if i == 1 && id != "evt_fixed" {
				t.Errorf("expected preset event id to be kept, got %q", id)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
}

func TestReceive_Events(t *testing.T) {
	pcm := []byte{0x10, 0x20, 0x30, 0x40}
	ts := newTestServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"session.created","session":{"id":"s1"}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`this is not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"response.audio.delta","delta":"`+base64.StdEncoding.EncodeToString(pcm)+`"}`))
		drain(conn)
	})
	client := dialTest(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	event, err := client.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if created, ok := event.(SessionCreated); !ok || created.SessionID != "s1" {
		t.Fatalf("expected SessionCreated s1, got %#v", event)
	}

	// The malformed frame is skipped
	event, err = client.Receive(ctx)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	delta, ok := event.(AudioDelta)
	if !ok {
		t.Fatalf("expected AudioDelta, got %T", event)
	}
	decoded, err := delta.Decode()
	if err != nil || string(decoded) != string(pcm) {
		t.Errorf("unexpected payload %v (err %v)", decoded, err)
	}
}

func TestReceive_ContextCancel(t *testing.T) {
	ts := newTestServer(t, drain)
	client := dialTest(t, ts)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.Receive(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Receive took %v to observe cancellation", elapsed)
	}
}

func TestReceive_UnblockedByClose(t *testing.T) {
	ts := newTestServer(t, drain)
	client := dialTest(t, ts)

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Receive(context.Background())
		errCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	client.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive was not unblocked by Close")
	}
}

func TestReceive_ServerClose(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn) {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	})
	client := dialTest(t, ts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Receive(ctx)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after server close, got %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	ts := newTestServer(t, drain)
	client := dialTest(t, ts)

	first := client.Close()
	second := client.Close()
	if first != second {
		t.Errorf("expected repeated Close to return the same result, got %v and %v", first, second)
	}

	if err := client.Send(context.Background(), NewResponseCreate("")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Send after Close, got %v", err)
	}
	if _, err := client.Receive(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Receive after Close, got %v", err)
	}
}
