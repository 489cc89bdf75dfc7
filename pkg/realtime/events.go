// ABOUTME: Realtime server event definitions and parsing
// ABOUTME: Decodes inbound JSON into a closed set of typed events
package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Server event types. Several events have two spellings across API versions;
// both map to the same Go type.
const (
	TypeSessionCreated              = "session.created"
	TypeResponseAudioDelta          = "response.audio.delta"
	TypeResponseOutputAudioDelta    = "response.output_audio.delta"
	TypeResponseAudioDone           = "response.audio.done"
	TypeResponseOutputAudioDone     = "response.output_audio.done"
	TypeResponseCompleted           = "response.completed"
	TypeResponseDone                = "response.done"
	TypeInputTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	TypeError                       = "error"
	TypeResponseError               = "response.error"
)

// Event is an inbound server message
type Event interface {
	// Type returns the wire type string the event arrived with
	Type() string
}

// SessionCreated is sent once the service has accepted the connection
type SessionCreated struct {
	SessionID string
	Model     string
}

func (e SessionCreated) Type() string { return TypeSessionCreated }

// AudioDelta carries one chunk of synthesized PCM16 audio
type AudioDelta struct {
	Kind       string
	ResponseID string
	ItemID     string
	Payload    string // base64, from "delta" or "audio"
}

func (e AudioDelta) Type() string { return e.Kind }

// Decode returns the raw PCM16 bytes of the delta
func (e AudioDelta) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("invalid audio payload: %w", err)
	}
	return data, nil
}

// AudioDone marks the end of an utterance or response
type AudioDone struct {
	Kind       string
	ResponseID string
}

func (e AudioDone) Type() string { return e.Kind }

// TranscriptionCompleted carries the transcript of the user's speech
type TranscriptionCompleted struct {
	ItemID     string
	Transcript string
}

func (e TranscriptionCompleted) Type() string { return TypeInputTranscriptionCompleted }

// ErrorDetail is the nested error object of an error event
type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// ErrorEvent is a service-reported error. It is never fatal to the session.
type ErrorEvent struct {
	Kind   string
	Detail *ErrorDetail
	Raw    json.RawMessage
}

func (e ErrorEvent) Type() string { return e.Kind }

// String returns the full event for diagnostics
func (e ErrorEvent) String() string {
	return string(e.Raw)
}

// Unknown is any event type the client does not handle
type Unknown struct {
	Kind string
	Raw  json.RawMessage
}

func (e Unknown) Type() string { return e.Kind }

// envelope is decoded first so that unknown events with unexpected field
// shapes never fail parsing.
type envelope struct {
	Type string `json:"type"`
}

type audioEvent struct {
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	Delta      string `json:"delta"`
	Audio      string `json:"audio"`
}

type sessionEvent struct {
	Session struct {
		ID    string `json:"id"`
		Model string `json:"model"`
	} `json:"session"`
}

type transcriptionEvent struct {
	ItemID     string `json:"item_id"`
	Transcript string `json:"transcript"`
}

type errorEvent struct {
	Error *ErrorDetail `json:"error"`
}

// ParseEvent decodes one inbound message
func ParseEvent(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}

	raw := json.RawMessage(append([]byte(nil), data...))

	switch env.Type {
	case TypeSessionCreated:
		var msg sessionEvent
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", env.Type, err)
		}
		return SessionCreated{SessionID: msg.Session.ID, Model: msg.Session.Model}, nil

	case TypeResponseAudioDelta, TypeResponseOutputAudioDelta:
		var msg audioEvent
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", env.Type, err)
		}
		payload := msg.Delta
		if payload == "" {
			payload = msg.Audio
		}
		return AudioDelta{Kind: env.Type, ResponseID: msg.ResponseID, ItemID: msg.ItemID, Payload: payload}, nil

	case TypeResponseAudioDone, TypeResponseOutputAudioDone, TypeResponseCompleted, TypeResponseDone:
		var msg audioEvent
		// response.done carries a nested response object; the id is optional
		_ = json.Unmarshal(data, &msg)
		return AudioDone{Kind: env.Type, ResponseID: msg.ResponseID}, nil

	case TypeInputTranscriptionCompleted:
		var msg transcriptionEvent
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", env.Type, err)
		}
		return TranscriptionCompleted{ItemID: msg.ItemID, Transcript: msg.Transcript}, nil

	case TypeError, TypeResponseError:
		var msg errorEvent
		// Keep the raw event even if the error object has an unexpected shape
		_ = json.Unmarshal(data, &msg)
		return ErrorEvent{Kind: env.Type, Detail: msg.Error, Raw: raw}, nil

	default:
		return Unknown{Kind: env.Type, Raw: raw}, nil
	}
}
