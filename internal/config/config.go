// ABOUTME: Runtime configuration loaded from the environment
// ABOUTME: Reads .env when present and validates every required variable at once
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Resonate-Protocol/resonate-voice/pkg/realtime"
	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvEndpoint        = "AZURE_OPENAI_ENDPOINT"
	EnvAPIKey          = "AZURE_OPENAI_API_KEY"
	EnvDeployment      = "AZURE_OPENAI_DEPLOYMENT"
	EnvAPIVersion      = "AZURE_OPENAI_API_VERSION"
	EnvSessionFile     = "VOICE_SESSION_FILE"
	EnvLogFile         = "VOICE_LOG_FILE"
	EnvTUI             = "VOICE_TUI"
	EnvCaptureBackend  = "VOICE_CAPTURE_BACKEND"
	EnvPlaybackBackend = "VOICE_PLAYBACK_BACKEND"
)

const DefaultLogFile = "resonate-voice.log"

// Config is everything the client needs before connecting
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string

	SessionFile     string
	LogFile         string
	TUI             bool
	CaptureBackend  string
	PlaybackBackend string

	Session Session
}

// Load reads .env (if any) into the process environment and then builds a
// Config from it. A missing .env is not an error; existing variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv. All problems are reported together.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Endpoint:        strings.TrimSpace(getenv(EnvEndpoint)),
		APIKey:          strings.TrimSpace(getenv(EnvAPIKey)),
		Deployment:      strings.TrimSpace(getenv(EnvDeployment)),
		APIVersion:      strings.TrimSpace(getenv(EnvAPIVersion)),
		SessionFile:     getenv(EnvSessionFile),
		LogFile:         getenv(EnvLogFile),
		CaptureBackend:  strings.ToLower(strings.TrimSpace(getenv(EnvCaptureBackend))),
		PlaybackBackend: strings.ToLower(strings.TrimSpace(getenv(EnvPlaybackBackend))),
	}

	var errs []error
	for _, req := range []struct {
		name  string
		value string
	}{
		{EnvEndpoint, cfg.Endpoint},
		{EnvAPIKey, cfg.APIKey},
		{EnvDeployment, cfg.Deployment},
	} {
		if req.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", req.name))
		}
	}

	if cfg.APIVersion == "" {
		cfg.APIVersion = realtime.DefaultAPIVersion
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}

	if raw := getenv(EnvTUI); raw != "" {
		tui, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %q is not a boolean", EnvTUI, raw))
		}
		cfg.TUI = tui
	}

	switch cfg.CaptureBackend {
	case "", "malgo", "portaudio":
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q (want malgo or portaudio)", EnvCaptureBackend, cfg.CaptureBackend))
	}
	switch cfg.PlaybackBackend {
	case "", "oto", "malgo":
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q (want oto or malgo)", EnvPlaybackBackend, cfg.PlaybackBackend))
	}

	cfg.Session = DefaultSession()
	if cfg.SessionFile != "" {
		session, err := LoadSession(cfg.SessionFile)
		if err != nil {
			errs = append(errs, err)
		} else {
			cfg.Session = *session
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// URL is the realtime websocket endpoint for this configuration
func (c *Config) URL() (string, error) {
	return realtime.BuildURL(c.Endpoint, c.APIVersion, c.Deployment)
}
