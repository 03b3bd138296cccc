// Package services builds the assistant stack shared by the CLI commands
// from a loaded configuration.
package services

import (
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/assets"
	"github.com/claire-namusoke/portfolio/pkg/assistant"
	"github.com/claire-namusoke/portfolio/pkg/config"
	"github.com/claire-namusoke/portfolio/pkg/elevenlabs"
	"github.com/claire-namusoke/portfolio/pkg/llm"
	"github.com/claire-namusoke/portfolio/pkg/openai"
	"github.com/claire-namusoke/portfolio/pkg/prompt"
)

// Services are the long-lived collaborators of one process.
type Services struct {
	Assets     *assets.Store
	Assistant  *assistant.Assistant
	OpenAI     *openai.Client
	ElevenLabs *elevenlabs.Client
}

// New wires the asset store, the context assembler, both upstream clients
// and the assistant. Unconfigured clients are still wired; they report
// themselves per call.
func New(cfg config.Config, logger *zap.Logger) *Services {
	store := assets.NewStore(cfg.Assets, logger)
	oa := openai.NewClient(cfg.OpenAI)
	tts := elevenlabs.NewClient(cfg.ElevenLabs)

	if !oa.Configured() {
		logger.Warn("OpenAI API key missing; the assistant will answer with a configuration notice")
	}
	if !tts.Configured() {
		logger.Warn("ElevenLabs credentials missing; speech output is disabled")
	}

	assembler := prompt.NewAssembler(store, cfg.Context, logger)
	asst := assistant.New(assistant.Config{
		Owner:   cfg.Owner.FirstName(),
		Persona: prompt.PersonaWarm,
		Options: llm.Options{
			Temperature: cfg.Assistant.Temperature,
			MaxTokens:   cfg.Assistant.MaxTokens,
		},
		CompletionTimeout: cfg.Assistant.CompletionTimeout,
		SpeechTimeout:     cfg.ElevenLabs.Timeout,
		TranscribeTimeout: cfg.Assistant.TranscribeTimeout,
	}, assembler, oa, tts, oa, logger)

	return &Services{
		Assets:     store,
		Assistant:  asst,
		OpenAI:     oa,
		ElevenLabs: tts,
	}
}
