// Package server exposes the portfolio over HTTP: page content as JSON, asset
// passthrough, and the per-visitor assistant endpoints.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/archive"
	"github.com/claire-namusoke/portfolio/pkg/assets"
	"github.com/claire-namusoke/portfolio/pkg/assistant"
	"github.com/claire-namusoke/portfolio/pkg/llm"
	"github.com/claire-namusoke/portfolio/pkg/prompt"
	"github.com/claire-namusoke/portfolio/pkg/session"
)

// uploadLimit bounds recorded audio uploads.
const uploadLimit = 16 << 20

// Server is the portfolio HTTP server. Each visitor's conversation lives in
// its own session; the server itself holds no conversation state.
type Server struct {
	config    Config
	assets    *assets.Store
	assistant *assistant.Assistant
	concise   *assistant.Assistant
	sessions  *session.Manager
	archiver  *archive.Archiver
	logger    *zap.Logger
	server    *fiber.App
}

// New creates a Server. archiver may be nil to disable the transcript archive.
func New(config Config, store *assets.Store, asst *assistant.Assistant, sessions *session.Manager, archiver *archive.Archiver, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		BodyLimit:             uploadLimit,
	})

	s := &Server{
		config:    config,
		assets:    store,
		assistant: asst,
		concise:   asst.WithPersona(prompt.PersonaConcise),
		sessions:  sessions,
		archiver:  archiver,
		logger:    logger,
		server:    app,
	}

	if archiver != nil {
		sessions.OnDispose(s.archiveSession)
	}

	s.routes(app)
	return s
}

func (s *Server) routes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// Pages
	app.Get("/api/pages", s.handlePages)
	app.Get("/api/about", s.handleAbout)
	app.Get("/api/projects", s.handleProjects)
	app.Get("/assets/profile", s.handleProfile)
	app.Get("/assets/cv", s.handleCV)

	// Visitor session and assistant
	app.Post("/api/session", s.handleCreateSession)
	app.Delete("/api/session", s.handleDisposeSession)
	app.Get("/api/chat", s.handleGetChat)
	app.Post("/api/chat", s.handleChat)
	app.Delete("/api/chat", s.handleClearChat)
	app.Post("/api/chat/panel", s.handleTogglePanel)

	// Voice page
	if s.config.Pages.Voice {
		app.Post("/api/transcribe", s.handleTranscribe)
		app.Post("/api/voice", s.handleVoice)
	}

	// Transcript archive inspection, owner only
	if s.archiver != nil && s.config.ArchiveToken != "" {
		admin := app.Group("/archive", keyauth.New(keyauth.Config{
			Validator:    s.validateArchiveToken,
			ErrorHandler: unauthorized,
		}))
		admin.Get("/stats", s.handleArchiveStats)
		admin.Get("/history", s.handleListHistories)
		admin.Get("/history/:hash", s.handleGetHistory)
	}
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting portfolio server",
		zap.String("listen", s.config.ListenAddr),
		zap.Bool("assistant_page", s.config.Pages.Assistant),
		zap.Bool("voice_page", s.config.Pages.Voice),
	)

	return s.server.Listen(s.config.ListenAddr)
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.ShutdownWithContext(ctx)
}

// Close releases the archive.
func (s *Server) Close() error {
	if s.archiver == nil {
		return nil
	}
	return s.archiver.Close()
}

// archiveSession stores the session's transcript before its log is cleared.
func (s *Server) archiveSession(ctx context.Context, sess *session.Session) {
	if s.archiver == nil || sess.Log.Len() == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	head, err := s.archiver.Archive(ctx, sess.Log.Turns())
	if err != nil {
		s.logger.Error("failed to archive conversation", zap.String("session", sess.ID), zap.Error(err))
		return
	}
	if head != "" {
		s.logger.Info("conversation archived",
			zap.String("session", sess.ID),
			zap.String("head_hash", head[:16]),
		)
	}
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(llm.ErrorResponse{Error: msg})
}

func isNotConfigured(err error) bool {
	return errors.Is(err, llm.ErrNotConfigured)
}
