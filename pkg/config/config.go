// Package config loads the portfolio service configuration from an optional
// TOML file and the environment. Credentials usually come from the
// environment; a missing credential is not a load error, the affected
// service simply reports itself as not configured.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/claire-namusoke/portfolio/pkg/assets"
	"github.com/claire-namusoke/portfolio/pkg/elevenlabs"
	"github.com/claire-namusoke/portfolio/pkg/openai"
	"github.com/claire-namusoke/portfolio/pkg/prompt"
	"github.com/claire-namusoke/portfolio/pkg/session"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "portfolio.toml"

// Config is the whole service configuration.
type Config struct {
	Server     ServerConfig      `toml:"server"`
	Owner      OwnerConfig       `toml:"owner"`
	Pages      PagesConfig       `toml:"pages"`
	Assets     assets.Config     `toml:"assets"`
	OpenAI     openai.Config     `toml:"openai"`
	ElevenLabs elevenlabs.Config `toml:"elevenlabs"`
	Context    prompt.Limits     `toml:"context"`
	Assistant  AssistantConfig   `toml:"assistant"`
	Session    session.Config    `toml:"session"`
	Archive    ArchiveConfig     `toml:"archive"`
}

// ServerConfig is the HTTP listener configuration.
type ServerConfig struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen"`

	// WatchAssets reloads asset files when they change on disk.
	WatchAssets bool `toml:"watch_assets"`
}

// PagesConfig selects which pages of the site exist.
type PagesConfig struct {
	Assistant bool `toml:"assistant"`
	Voice     bool `toml:"voice"`
}

// AssistantConfig tunes the language model call.
type AssistantConfig struct {
	Temperature       float32       `toml:"temperature"`
	MaxTokens         int           `toml:"max_tokens"`
	CompletionTimeout time.Duration `toml:"completion_timeout"`
	TranscribeTimeout time.Duration `toml:"transcribe_timeout"`
}

// ArchiveConfig controls the transcript archive.
type ArchiveConfig struct {
	Enabled bool `toml:"enabled"`

	// DBPath is the SQLite file; empty keeps the archive in memory.
	DBPath string `toml:"db"`

	// AdminToken guards the /archive HTTP routes. Without it the routes are
	// not mounted and the archive is only readable through the CLI.
	AdminToken string `toml:"admin_token"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Owner: DefaultOwner(),
		Pages: PagesConfig{
			Assistant: true,
			Voice:     true,
		},
		Assets: assets.DefaultConfig(),
		OpenAI: openai.Config{
			Model:              openai.DefaultModel,
			TranscriptionModel: openai.DefaultTranscriptionModel,
		},
		ElevenLabs: elevenlabs.Config{
			Model:           elevenlabs.DefaultModel,
			Stability:       0.7,
			SimilarityBoost: 0.8,
			Timeout:         30 * time.Second,
		},
		Context: prompt.DefaultLimits(),
		Assistant: AssistantConfig{
			Temperature:       0.2,
			MaxTokens:         800,
			CompletionTimeout: 60 * time.Second,
			TranscribeTimeout: 60 * time.Second,
		},
		Session: session.DefaultConfig(),
	}
}

// Load applies, in order: defaults, the TOML file at path (a missing file is
// fine), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Server.ListenAddr == "" {
		return Config{}, errors.New("server.listen must not be empty")
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "OPENAI_MODEL")
	setString(&cfg.ElevenLabs.APIKey, "ELEVEN_API_KEY")
	setString(&cfg.ElevenLabs.VoiceID, "ELEVEN_VOICE_ID")
	setString(&cfg.Server.ListenAddr, "PORTFOLIO_LISTEN")
	setString(&cfg.Assets.Dir, "PORTFOLIO_ASSETS")
	setString(&cfg.Archive.DBPath, "PORTFOLIO_ARCHIVE_DB")
	setString(&cfg.Archive.AdminToken, "PORTFOLIO_ARCHIVE_TOKEN")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
