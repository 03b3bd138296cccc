// Package openai adapts the OpenAI API to the assistant's language model and
// speech transcription interfaces.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"github.com/claire-namusoke/portfolio/pkg/llm"
)

const (
	DefaultModel              = "gpt-4o-mini"
	DefaultTranscriptionModel = openaiapi.Whisper1
)

// Config is the OpenAI client configuration.
type Config struct {
	// APIKey authenticates every request. An empty key leaves the client
	// unconfigured rather than failing at startup.
	APIKey string `toml:"api_key"`

	// Model is the chat-completion model (e.g., "gpt-4o-mini")
	Model string `toml:"model"`

	// TranscriptionModel is the speech-to-text model (e.g., "whisper-1")
	TranscriptionModel string `toml:"transcription_model"`

	// BaseURL overrides the API endpoint; empty uses api.openai.com.
	BaseURL string `toml:"base_url"`
}

// Client implements assistant.LanguageModel and assistant.SpeechTranscriber.
type Client struct {
	api    *openaiapi.Client
	config Config
}

// NewClient creates a Client. It never fails; without an API key every call
// returns llm.ErrNotConfigured.
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.TranscriptionModel == "" {
		config.TranscriptionModel = DefaultTranscriptionModel
	}

	c := &Client{config: config}
	if strings.TrimSpace(config.APIKey) != "" {
		apiConfig := openaiapi.DefaultConfig(config.APIKey)
		if config.BaseURL != "" {
			apiConfig.BaseURL = strings.TrimRight(config.BaseURL, "/")
		}
		c.api = openaiapi.NewClientWithConfig(apiConfig)
	}
	return c
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.api != nil
}

// Complete runs a non-streaming chat completion.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if c.api == nil {
		return "", llm.ErrNotConfigured
	}

	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	resp, err := c.api.CreateChatCompletion(ctx, openaiapi.ChatCompletionRequest{
		Model:       model,
		Messages:    toAPIMessages(req.WithSystem()),
		Temperature: req.Options.Temperature,
		MaxTokens:   req.Options.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", upstreamError("chat completion", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned empty response")
	}

	return resp.Choices[0].Message.Content, nil
}

// Transcribe sends recorded audio to the transcription endpoint. filename only
// hints the audio format to the API.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.api == nil {
		return "", llm.ErrNotConfigured
	}
	if filename == "" {
		filename = "speech.wav"
	}

	resp, err := c.api.CreateTranscription(ctx, openaiapi.AudioRequest{
		Model:    c.config.TranscriptionModel,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", upstreamError("transcription", err)
	}

	return resp.Text, nil
}

// upstreamError turns non-success HTTP responses into *llm.ServiceError.
// Transport errors (including context deadlines) are wrapped unchanged.
func upstreamError(op string, err error) error {
	var apiErr *openaiapi.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", op, &llm.ServiceError{
			Service: "openai",
			Status:  apiErr.HTTPStatusCode,
			Body:    apiErr.Message,
		})
	}

	var reqErr *openaiapi.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s: %w", op, &llm.ServiceError{
			Service: "openai",
			Status:  reqErr.HTTPStatusCode,
			Body:    reqErr.Error(),
		})
	}

	return fmt.Errorf("%s: %w", op, err)
}

func toAPIMessages(msgs []llm.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		res = append(res, openaiapi.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return res
}
