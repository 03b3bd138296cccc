package chatcmder

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/cmd/portfolio/services"
	"github.com/claire-namusoke/portfolio/pkg/assistant"
	"github.com/claire-namusoke/portfolio/pkg/config"
	"github.com/claire-namusoke/portfolio/pkg/logger"
)

const chatLongDesc string = `Chat with the portfolio assistant in the terminal.

Each run is one conversation. Type /clear to start over and esc to leave.
Log lines go to the file given by --log-file and are discarded otherwise.

Examples:
  portfolio chat
  portfolio chat --log-file chat.log --debug`

const chatShortDesc string = "Chat with the assistant in the terminal"

type chatCommander struct {
	configPath string
	mode       string
	logFile    string
	debug      bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", config.DefaultPath, "Path to the TOML config file")
	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", "text", "Response mode: text, speech or both")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Write logs to this file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	mode, err := assistant.ParseMode(c.mode)
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
		defer f.Close()
		log = logger.NewLoggerTo(f, c.debug)
	}
	defer func() { _ = log.Sync() }()

	svc := services.New(cfg, log)
	// Query the background before bubbletea owns the terminal.
	style := "light"
	if termenv.HasDarkBackground() {
		style = "dark"
	}

	m := newModel(ctx, svc.Assistant, mode, cfg.Owner.FirstName(), style)

	if _, err := tea.NewProgram(m, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
