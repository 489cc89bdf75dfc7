// ABOUTME: Realtime client event definitions
// ABOUTME: Typed outgoing messages for session setup, audio and responses
package realtime

import "encoding/base64"

// Client event types
const (
	TypeSessionUpdate      = "session.update"
	TypeInputAudioAppend   = "input_audio_buffer.append"
	TypeResponseCreate     = "response.create"
	DefaultSubprotocol     = "realtime"
	DefaultAPIVersion      = "2025-04-01-preview"
	TurnDetectionServerVAD = "server_vad"
)

// ClientEvent is implemented by every message the client sends
type ClientEvent interface {
	header() *Header
}

// Header carries the fields common to all client events
type Header struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"`
}

func (h *Header) header() *Header { return h }

// SessionConfig configures voice, audio formats and turn detection
type SessionConfig struct {
	Voice                   string                   `json:"voice,omitempty"`
	Modalities              []string                 `json:"modalities,omitempty"`
	InputAudioFormat        string                   `json:"input_audio_format,omitempty"`
	OutputAudioFormat       string                   `json:"output_audio_format,omitempty"`
	TurnDetection           *TurnDetection           `json:"turn_detection,omitempty"`
	InputAudioTranscription *InputAudioTranscription `json:"input_audio_transcription,omitempty"`
	Instructions            string                   `json:"instructions,omitempty"`
}

// TurnDetection configures server-side voice activity detection
type TurnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMS int     `json:"silence_duration_ms"`
}

// InputAudioTranscription selects the model used to transcribe user audio
type InputAudioTranscription struct {
	Model string `json:"model"`
}

// SessionUpdate is the handshake message sent right after connecting
type SessionUpdate struct {
	Header
	Session SessionConfig `json:"session"`
}

// NewSessionUpdate wraps a session configuration in a session.update event
func NewSessionUpdate(session SessionConfig) *SessionUpdate {
	return &SessionUpdate{
		Header:  Header{Type: TypeSessionUpdate},
		Session: session,
	}
}

// InputAudioAppend carries one chunk of base64 PCM16 microphone audio
type InputAudioAppend struct {
	Header
	Audio string `json:"audio"`
}

// NewInputAudioAppend base64-encodes pcm into an input_audio_buffer.append event
func NewInputAudioAppend(pcm []byte) *InputAudioAppend {
	return &InputAudioAppend{
		Header: Header{Type: TypeInputAudioAppend},
		Audio:  base64.StdEncoding.EncodeToString(pcm),
	}
}

// ResponseOptions overrides settings for a single response
type ResponseOptions struct {
	Instructions string `json:"instructions,omitempty"`
}

// ResponseCreate asks the service to produce a response
type ResponseCreate struct {
	Header
	Response *ResponseOptions `json:"response,omitempty"`
}

// NewResponseCreate builds a response.create; empty instructions omit the override
func NewResponseCreate(instructions string) *ResponseCreate {
	msg := &ResponseCreate{Header: Header{Type: TypeResponseCreate}}
	if instructions != "" {
		msg.Response = &ResponseOptions{Instructions: instructions}
	}
	return msg
}
