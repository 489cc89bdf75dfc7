// ABOUTME: Tests for the YAML session profile
// ABOUTME: Verifies defaults, overrides, unknown keys and validation
package config

import (
	"strings"
	"testing"
)

func TestLoadSessionFromReader_Empty(t *testing.T) {
	s, err := LoadSessionFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadSessionFromReader() error = %v", err)
	}
	def := DefaultSession()
	if s.Voice != def.Voice || s.Instructions != def.Instructions || s.Greeting != def.Greeting {
		t.Errorf("empty profile should equal defaults, got %+v", s)
	}
}

func TestLoadSessionFromReader_Overrides(t *testing.T) {
	profile := `
voice: shimmer
modalities: [audio]
turn_detection:
  threshold: 0.7
  prefix_padding_ms: 300
instructions: Answer like a pirate.
`
	s, err := LoadSessionFromReader(strings.NewReader(profile))
	if err != nil {
		t.Fatalf("LoadSessionFromReader() error = %v", err)
	}

	if s.Voice != "shimmer" {
		t.Errorf("expected voice shimmer, got %q", s.Voice)
	}
	if len(s.Modalities) != 1 || s.Modalities[0] != "audio" {
		t.Errorf("expected modalities [audio], got %v", s.Modalities)
	}
	if s.TurnDetection.Threshold != 0.7 || s.TurnDetection.PrefixPaddingMS != 300 {
		t.Errorf("unexpected turn detection %+v", s.TurnDetection)
	}
	// Unset nested keys keep their defaults
	if s.TurnDetection.SilenceDurationMS != 600 || s.TurnDetection.Type != "server_vad" {
		t.Errorf("expected default silence and type, got %+v", s.TurnDetection)
	}
}

func TestLoadSessionFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		wantMsg string
	}{
		{"unknown key", "voice: alloy\ntemperature: 0.8\n", "temperature"},
		{"non pcm input", "input_audio_format: g711_ulaw\n", "input_audio_format"},
		{"non pcm output", "output_audio_format: g711_alaw\n", "output_audio_format"},
		{"text only", "modalities: [text]\n", "modalities"},
		{"threshold range", "turn_detection:\n  threshold: 1.5\n", "threshold"},
		{"negative silence", "turn_detection:\n  silence_duration_ms: -1\n", "negative"},
		{"bad yaml", "voice: [unterminated\n", "decode yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSessionFromReader(strings.NewReader(tt.profile))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error should mention %q, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestRealtimeConfig(t *testing.T) {
	cfg := DefaultSession().RealtimeConfig()

	if cfg.Voice != "alloy" || cfg.InputAudioFormat != "pcm16" || cfg.OutputAudioFormat != "pcm16" {
		t.Errorf("unexpected session config %+v", cfg)
	}
	if cfg.TurnDetection == nil || cfg.TurnDetection.Threshold != 0.5 || cfg.TurnDetection.SilenceDurationMS != 600 {
		t.Errorf("unexpected turn detection %+v", cfg.TurnDetection)
	}
	if cfg.InputAudioTranscription == nil || cfg.InputAudioTranscription.Model != "whisper-1" {
		t.Errorf("unexpected transcription %+v", cfg.InputAudioTranscription)
	}

	s := DefaultSession()
	s.TurnDetection.Type = ""
	s.TranscriptionModel = ""
	cfg = s.RealtimeConfig()
	if cfg.TurnDetection != nil || cfg.InputAudioTranscription != nil {
		t.Error("empty turn detection type and transcription model should be omitted")
	}
}
