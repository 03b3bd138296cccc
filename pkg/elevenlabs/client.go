// Package elevenlabs is a text-to-speech client for the ElevenLabs API.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claire-namusoke/portfolio/pkg/llm"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io"
	DefaultModel   = "eleven_monolingual_v1"

	// minAudioBytes guards against a 200 that carries no playable audio.
	minAudioBytes = 1000
)

// ErrInvalidAudio is returned when the API answers 200 without usable audio.
var ErrInvalidAudio = errors.New("speech service returned no valid audio data")

// Config is the ElevenLabs client configuration.
type Config struct {
	APIKey  string `toml:"api_key"`
	VoiceID string `toml:"voice_id"`
	Model   string `toml:"model"`

	// BaseURL overrides the API endpoint (e.g., for tests).
	BaseURL string `toml:"base_url"`

	Stability       float64 `toml:"stability"`
	SimilarityBoost float64 `toml:"similarity_boost"`

	// Timeout bounds one synthesis round trip.
	Timeout time.Duration `toml:"timeout"`
}

// Client implements assistant.SpeechSynthesizer.
type Client struct {
	config     Config
	httpClient *http.Client
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// NewClient creates a Client. Missing credentials are reported per call.
func NewClient(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Stability == 0 {
		config.Stability = 0.7
	}
	if config.SimilarityBoost == 0 {
		config.SimilarityBoost = 0.8
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Configured reports whether both the API key and the voice id are set.
func (c *Client) Configured() bool {
	return c.config.APIKey != "" && c.config.VoiceID != ""
}

// Synthesize returns the audio payload for text.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !c.Configured() {
		return nil, llm.ErrNotConfigured
	}

	reqBody, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.config.Model,
		VoiceSettings: voiceSettings{
			Stability:       c.config.Stability,
			SimilarityBoost: c.config.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(c.config.VoiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("xi-api-key", c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &llm.ServiceError{
			Service: "elevenlabs",
			Status:  httpResp.StatusCode,
			Body:    string(body),
		}
	}

	if len(body) <= minAudioBytes {
		return nil, fmt.Errorf("%w (%d bytes, content type %q)",
			ErrInvalidAudio, len(body), httpResp.Header.Get("Content-Type"))
	}

	return body, nil
}
