// Package assistant runs one visitor question through the language model and,
// when asked, the speech synthesizer, recording both sides in the session's
// conversation log. Service failures never escape: they become turns.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/conversation"
	"github.com/claire-namusoke/portfolio/pkg/llm"
	"github.com/claire-namusoke/portfolio/pkg/logger"
	"github.com/claire-namusoke/portfolio/pkg/prompt"
)

// ErrEmptyAudio is returned by Transcribe when no audio was recorded.
var ErrEmptyAudio = errors.New("empty audio")

// LanguageModel answers a completion request with text.
type LanguageModel interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// SpeechSynthesizer turns text into an audio payload.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// SpeechTranscriber turns recorded audio into text.
type SpeechTranscriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// ContextAssembler produces the context bundle for a turn.
type ContextAssembler interface {
	Assemble(ctx context.Context) prompt.Bundle
}

// Config tunes the assistant.
type Config struct {
	// Owner is the portfolio owner the assistant speaks for.
	Owner string

	Persona prompt.Persona

	// Options are passed through to the language model.
	Options llm.Options

	CompletionTimeout time.Duration
	SpeechTimeout     time.Duration
	TranscribeTimeout time.Duration
}

// DefaultConfig returns the production timeouts and sampling settings.
func DefaultConfig() Config {
	return Config{
		Owner:   "Claire",
		Persona: prompt.PersonaWarm,
		Options: llm.Options{
			Temperature: 0.2,
			MaxTokens:   800,
		},
		CompletionTimeout: 60 * time.Second,
		SpeechTimeout:     30 * time.Second,
		TranscribeTimeout: 60 * time.Second,
	}
}

// Assistant implements the turn protocol. It holds no per-session state; the
// caller passes in the session's log.
type Assistant struct {
	config      Config
	assembler   ContextAssembler
	model       LanguageModel
	speech      SpeechSynthesizer
	transcriber SpeechTranscriber
	logger      *zap.Logger
}

// New creates an Assistant. speech and transcriber may be nil, which behaves
// like an unconfigured service.
func New(config Config, assembler ContextAssembler, model LanguageModel, speech SpeechSynthesizer, transcriber SpeechTranscriber, logger *zap.Logger) *Assistant {
	def := DefaultConfig()
	if config.Owner == "" {
		config.Owner = def.Owner
	}
	if config.Persona == "" {
		config.Persona = def.Persona
	}
	if config.CompletionTimeout <= 0 {
		config.CompletionTimeout = def.CompletionTimeout
	}
	if config.SpeechTimeout <= 0 {
		config.SpeechTimeout = def.SpeechTimeout
	}
	if config.TranscribeTimeout <= 0 {
		config.TranscribeTimeout = def.TranscribeTimeout
	}

	return &Assistant{
		config:      config,
		assembler:   assembler,
		model:       model,
		speech:      speech,
		transcriber: transcriber,
		logger:      logger,
	}
}

// WithPersona returns a copy of the assistant speaking in persona.
func (a *Assistant) WithPersona(persona prompt.Persona) *Assistant {
	c := *a
	c.config.Persona = persona
	return &c
}

// HandleUserInput runs one question through the protocol and returns the
// assistant turn. ok is false when text is blank and nothing was recorded.
//
// If text is both the latest question and already answered, the existing
// answer is returned and nothing is appended.
func (a *Assistant) HandleUserInput(ctx context.Context, log *conversation.Log, text string, mode Mode) (turn conversation.Turn, ok bool) {
	if strings.TrimSpace(text) == "" {
		return conversation.Turn{}, false
	}

	if log.HasAnsweredAlready(text) {
		existing, _ := log.LastAssistantTurn()
		a.logger.Debug("question already answered", zap.String("question", logger.Preview(text, 50)))
		return existing, true
	}

	log.Append(conversation.UserTurn(text))

	turn = a.answer(ctx, text, mode)
	turn.Role = conversation.RoleAssistant
	turn.InResponseTo = text
	log.Append(turn)

	turn, _ = log.LastAssistantTurn()
	return turn, true
}

// answer never panics past this frame; a misbehaving collaborator becomes an
// error turn like any other failure.
func (a *Assistant) answer(ctx context.Context, question string, mode Mode) (turn conversation.Turn) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("assistant collaborator panicked", zap.Any("panic", r))
			turn = conversation.Turn{
				Text:   fmt.Sprintf("Error contacting the language model: %v", r),
				Error:  true,
				Speech: conversation.SpeechNotRequested,
			}
		}
	}()

	bundle := a.assembler.Assemble(ctx)
	req := llm.CompletionRequest{
		System: prompt.SystemInstruction(a.config.Persona, a.config.Owner, bundle.FAQ),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt.UserMessage(bundle, question)},
		},
		Options: a.config.Options,
	}

	answer, err := a.complete(ctx, req)
	if err != nil {
		return conversation.Turn{
			Text:   describeCompletionError(err),
			Error:  true,
			Speech: conversation.SpeechNotRequested,
		}
	}

	turn = conversation.Turn{Speech: conversation.SpeechNotRequested}
	if mode.WantsText() {
		turn.Text = answer
	}
	if mode.WantsSpeech() {
		turn.Audio, turn.Speech = a.synthesize(ctx, answer)
	}
	return turn
}

func (a *Assistant) complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if a.model == nil {
		return "", llm.ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.CompletionTimeout)
	defer cancel()

	start := time.Now()
	answer, err := a.model.Complete(ctx, req)
	if err != nil {
		a.logger.Error("language model request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return "", err
	}

	a.logger.Debug("language model answered",
		zap.String("content_preview", logger.Preview(answer, 100)),
		zap.Duration("duration", time.Since(start)),
	)
	return answer, nil
}

func (a *Assistant) synthesize(ctx context.Context, text string) ([]byte, conversation.SpeechStatus) {
	if a.speech == nil {
		return nil, conversation.SpeechNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.SpeechTimeout)
	defer cancel()

	start := time.Now()
	audio, err := a.speech.Synthesize(ctx, text)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		a.logger.Warn("speech synthesis not configured")
		return nil, conversation.SpeechNotConfigured
	case err != nil:
		a.logger.Error("speech synthesis failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, conversation.SpeechFailed
	case len(audio) == 0:
		a.logger.Warn("speech synthesis returned no audio")
		return nil, conversation.SpeechFailed
	}

	a.logger.Debug("speech synthesized",
		zap.Int("bytes", len(audio)),
		zap.Duration("duration", time.Since(start)),
	)
	return audio, conversation.SpeechOK
}

// Transcribe turns recorded audio into question text.
func (a *Assistant) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	if a.transcriber == nil {
		return "", llm.ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.TranscribeTimeout)
	defer cancel()

	text, err := a.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func describeCompletionError(err error) string {
	if errors.Is(err, llm.ErrNotConfigured) {
		return "The assistant is not configured: the language model API key is missing."
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Error contacting the language model: request timed out (%v)", err)
	}
	return fmt.Sprintf("Error contacting the language model: %v", err)
}
