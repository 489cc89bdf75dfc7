// ABOUTME: Session profile describing voice, formats and turn detection
// ABOUTME: Optional YAML file layered over built-in defaults
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/Resonate-Protocol/resonate-voice/pkg/audio"
	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
	"gopkg.in/yaml.v3"
)

// Session is the profile sent in session.update plus the opening greeting
type Session struct {
	Voice              string        `yaml:"voice"`
	Modalities         []string      `yaml:"modalities"`
	InputAudioFormat   string        `yaml:"input_audio_format"`
	OutputAudioFormat  string        `yaml:"output_audio_format"`
	TurnDetection      TurnDetection `yaml:"turn_detection"`
	TranscriptionModel string        `yaml:"transcription_model"`
	Instructions       string        `yaml:"instructions"`

	// Greeting is sent as response.create instructions once audio is flowing.
	// Empty disables the greeting.
	Greeting string `yaml:"greeting"`
}

type TurnDetection struct {
	Type              string  `yaml:"type"`
	Threshold         float64 `yaml:"threshold"`
	PrefixPaddingMS   int     `yaml:"prefix_padding_ms"`
	SilenceDurationMS int     `yaml:"silence_duration_ms"`
}

// DefaultSession returns the profile used when no session file is given
func DefaultSession() Session {
	return Session{
		Voice:             "alloy",
		Modalities:        []string{"text", "audio"},
		InputAudioFormat:  audio.CodecPCM16,
		OutputAudioFormat: audio.CodecPCM16,
		TurnDetection: TurnDetection{
			Type:              realtime.TurnDetectionServerVAD,
			Threshold:         0.5,
			SilenceDurationMS: 600,
		},
		TranscriptionModel: "whisper-1",
		Instructions:       "Be concise and helpful. Speak clearly. Always speak in english.",
		Greeting:           "Greet the user briefly in english.",
	}
}

// LoadSession reads a YAML session profile from path
func LoadSession(path string) (*Session, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("session: open %q: %w", path, err)
	}
	defer f.Close()

	s, err := LoadSessionFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("session: parse %q: %w", path, err)
	}
	return s, nil
}

// LoadSessionFromReader decodes YAML over DefaultSession and validates it.
// Unknown keys are rejected.
func LoadSessionFromReader(r io.Reader) (*Session, error) {
	s := DefaultSession()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the profile against what the audio pipeline can handle
func (s Session) Validate() error {
	var errs []error

	// Capture and playback only speak PCM16
	if s.InputAudioFormat != audio.CodecPCM16 {
		errs = append(errs, fmt.Errorf("input_audio_format %q is unsupported; only %s", s.InputAudioFormat, audio.CodecPCM16))
	}
	if s.OutputAudioFormat != audio.CodecPCM16 {
		errs = append(errs, fmt.Errorf("output_audio_format %q is unsupported; only %s", s.OutputAudioFormat, audio.CodecPCM16))
	}
	if !slices.Contains(s.Modalities, "audio") {
		errs = append(errs, fmt.Errorf("modalities must include audio, got %v", s.Modalities))
	}
	if t := s.TurnDetection.Threshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("turn_detection.threshold %v must be within [0, 1]", t))
	}
	if s.TurnDetection.SilenceDurationMS < 0 || s.TurnDetection.PrefixPaddingMS < 0 {
		errs = append(errs, fmt.Errorf("turn_detection durations must not be negative"))
	}

	return errors.Join(errs...)
}

// RealtimeConfig converts the profile to its session.update payload
func (s Session) RealtimeConfig() realtime.SessionConfig {
	cfg := realtime.SessionConfig{
		Voice:             s.Voice,
		Modalities:        s.Modalities,
		InputAudioFormat:  s.InputAudioFormat,
		OutputAudioFormat: s.OutputAudioFormat,
		Instructions:      s.Instructions,
	}
	if s.TurnDetection.Type != "" {
		cfg.TurnDetection = &realtime.TurnDetection{
			Type:              s.TurnDetection.Type,
			Threshold:         s.TurnDetection.Threshold,
			PrefixPaddingMS:   s.TurnDetection.PrefixPaddingMS,
			SilenceDurationMS: s.TurnDetection.SilenceDurationMS,
		}
	}
	if s.TranscriptionModel != "" {
		cfg.InputAudioTranscription = &realtime.InputAudioTranscription{Model: s.TranscriptionModel}
	}
	return cfg
}
