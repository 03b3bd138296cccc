package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/cmd/portfolio/services"
	"github.com/claire-namusoke/portfolio/pkg/archive"
	"github.com/claire-namusoke/portfolio/pkg/config"
	"github.com/claire-namusoke/portfolio/pkg/logger"
	"github.com/claire-namusoke/portfolio/pkg/session"
	"github.com/claire-namusoke/portfolio/server"
)

const serveLongDesc string = `Serve the portfolio site and its assistant over HTTP.

Configuration is read from the TOML file given by --config (missing is fine),
then from the environment: OPENAI_API_KEY, ELEVEN_API_KEY and ELEVEN_VOICE_ID
enable the language model and speech services.

Examples:
  portfolio serve
  portfolio serve --listen :9090 --debug
  portfolio serve --config /etc/portfolio.toml`

const serveShortDesc string = "Serve the portfolio site"

const shutdownGrace = 10 * time.Second

type serveCommander struct {
	configPath string
	listen     string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", config.DefaultPath, "Path to the TOML config file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Server.ListenAddr = c.listen
	}

	log := logger.NewLogger(c.debug)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := services.New(cfg, log)

	if cfg.Server.WatchAssets {
		go func() {
			if err := svc.Assets.Watch(ctx); err != nil {
				log.Error("asset watcher stopped", zap.Error(err))
			}
		}()
	}

	var archiver *archive.Archiver
	if cfg.Archive.Enabled {
		archiver, err = archive.Open(cfg.Archive.DBPath, log)
		if err != nil {
			return fmt.Errorf("could not open transcript archive: %w", err)
		}
	}

	sessions := session.NewManager(cfg.Session, log)
	srv := server.New(server.Config{
		ListenAddr:   cfg.Server.ListenAddr,
		Owner:        cfg.Owner,
		Pages:        cfg.Pages,
		ArchiveToken: cfg.Archive.AdminToken,
	}, svc.Assets, svc.Assistant, sessions, archiver, log)
	defer srv.Close()

	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		sessions.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err = <-errCh:
		stop()
	case <-ctx.Done():
		log.Info("shutting down portfolio server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}

	// Remaining sessions are archived before the archive closes.
	<-sweeperDone

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("portfolio server failed: %w", err)
	}
	return nil
}
