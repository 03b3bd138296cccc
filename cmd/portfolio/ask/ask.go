package askcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/claire-namusoke/portfolio/cmd/portfolio/services"
	"github.com/claire-namusoke/portfolio/pkg/assistant"
	"github.com/claire-namusoke/portfolio/pkg/config"
	"github.com/claire-namusoke/portfolio/pkg/conversation"
	"github.com/claire-namusoke/portfolio/pkg/logger"
	"github.com/claire-namusoke/portfolio/pkg/prompt"
)

const askLongDesc string = `Ask the portfolio assistant one question.

The answer is printed to stdout, rendered as markdown when stdout is a
terminal. With a speech mode, --out writes the synthesized audio to a file.

Examples:
  portfolio ask "What tools does Claire use?"
  portfolio ask --mode both --out answer.mp3 "Why data analytics?"
  portfolio ask --persona concise "Summarize Claire's experience"`

const askShortDesc string = "Ask the assistant one question"

type askCommander struct {
	configPath string
	mode       string
	persona    string
	out        string
	debug      bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", config.DefaultPath, "Path to the TOML config file")
	cmd.Flags().StringVarP(&cmder.mode, "mode", "m", "text", "Response mode: text, speech or both")
	cmd.Flags().StringVar(&cmder.persona, "persona", string(prompt.PersonaWarm), "Assistant register: warm or concise")
	cmd.Flags().StringVarP(&cmder.out, "out", "o", "", "Write synthesized audio to this file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *askCommander) run(ctx context.Context, stdout, stderr io.Writer, question string) error {
	mode, err := assistant.ParseMode(c.mode)
	if err != nil {
		return err
	}

	persona := prompt.Persona(c.persona)
	if persona != prompt.PersonaWarm && persona != prompt.PersonaConcise {
		return fmt.Errorf("unknown persona %q", c.persona)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	log := logger.NewLoggerTo(stderr, c.debug)
	defer func() { _ = log.Sync() }()

	asst := services.New(cfg, log).Assistant.WithPersona(persona)

	turn, ok := asst.HandleUserInput(ctx, conversation.NewLog(), question, mode)
	if !ok {
		return errors.New("question must not be empty")
	}
	if turn.Error {
		return errors.New(turn.Text)
	}

	if turn.Text != "" {
		if err := render(stdout, turn.Text); err != nil {
			return err
		}
	}

	if turn.NoAudioGenerated() {
		fmt.Fprintln(stderr, "No audio was generated for this answer.")
	}
	if len(turn.Audio) > 0 {
		if c.out == "" {
			fmt.Fprintf(stderr, "Synthesized %d bytes of audio; pass --out to save it.\n", len(turn.Audio))
			return nil
		}
		if err := os.WriteFile(c.out, turn.Audio, 0o644); err != nil {
			return fmt.Errorf("could not write audio: %w", err)
		}
		fmt.Fprintf(stderr, "Wrote audio to %s\n", c.out)
	}

	return nil
}

// render prints markdown through glamour when w is a terminal and as plain
// text otherwise.
func render(w io.Writer, text string) error {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
		if err == nil {
			if out, err := r.Render(text); err == nil {
				_, err = io.WriteString(w, out)
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, text)
	return err
}
