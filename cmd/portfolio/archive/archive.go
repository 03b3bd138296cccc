package archivecmder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claire-namusoke/portfolio/pkg/archive"
	"github.com/claire-namusoke/portfolio/pkg/config"
	"github.com/claire-namusoke/portfolio/pkg/logger"
)

const archiveLongDesc string = `Inspect and maintain the SQLite transcript archive.

Conversations are archived when a visitor clears the chat or their session
ends. The database defaults to archive.db from the config file.

Examples:
  portfolio archive list --db portfolio.db
  portfolio archive show 3f2a9c... --db portfolio.db
  portfolio archive merge --db portfolio.db replica-a.db replica-b.db`

const archiveShortDesc string = "Inspect the transcript archive"

type archiveCommander struct {
	configPath string
	dbPath     string
	asJSON     bool
}

func NewArchiveCmd() *cobra.Command {
	cmder := &archiveCommander{}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: archiveShortDesc,
		Long:  archiveLongDesc,
	}

	cmd.PersistentFlags().StringVarP(&cmder.configPath, "config", "c", config.DefaultPath, "Path to the TOML config file")
	cmd.PersistentFlags().StringVarP(&cmder.dbPath, "db", "d", "", "Path to the SQLite archive (overrides config)")
	cmd.PersistentFlags().BoolVar(&cmder.asJSON, "json", false, "Print JSON instead of text")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List archived conversations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return cmder.list(cmd)
			},
		},
		&cobra.Command{
			Use:   "show <hash>",
			Short: "Print the conversation ending at hash",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return cmder.show(cmd, args[0])
			},
		},
		newMergeCmd(cmder),
	)

	return cmd
}

// resolveDBPath prefers --db, then the config file. The in-memory archive
// cannot be inspected from another process, so an empty path is an error.
func (c *archiveCommander) resolveDBPath() (string, error) {
	if c.dbPath != "" {
		return c.dbPath, nil
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return "", err
	}
	if cfg.Archive.DBPath == "" {
		return "", fmt.Errorf("no archive database configured; pass --db or set archive.db")
	}
	return cfg.Archive.DBPath, nil
}

func (c *archiveCommander) open() (*archive.Archiver, error) {
	path, err := c.resolveDBPath()
	if err != nil {
		return nil, err
	}

	storer, err := archive.NewSQLiteStorer(path)
	if err != nil {
		return nil, fmt.Errorf("could not open archive %s: %w", path, err)
	}
	return archive.New(storer, zap.NewNop()), nil
}

func (c *archiveCommander) list(cmd *cobra.Command) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()

	histories, err := a.Histories(cmd.Context())
	if err != nil {
		return fmt.Errorf("could not list conversations: %w", err)
	}

	out := cmd.OutOrStdout()
	if c.asJSON {
		return writeJSON(out, histories)
	}

	if len(histories) == 0 {
		fmt.Fprintln(out, "No archived conversations.")
		return nil
	}

	for _, h := range histories {
		first := ""
		if len(h.Turns) > 0 {
			first = logger.Preview(h.Turns[0].Text, 60)
		}
		fmt.Fprintf(out, "%s  %2d turns  %s\n", h.HeadHash[:16], h.Depth, first)
	}
	return nil
}

func (c *archiveCommander) show(cmd *cobra.Command, hash string) error {
	a, err := c.open()
	if err != nil {
		return err
	}
	defer a.Close()

	history, err := a.History(cmd.Context(), hash)
	if err != nil {
		return fmt.Errorf("could not load conversation %s: %w", hash, err)
	}

	out := cmd.OutOrStdout()
	if c.asJSON {
		return writeJSON(out, history)
	}

	for _, t := range history.Turns {
		text := t.Text
		if text == "" && t.AudioBytes > 0 {
			text = fmt.Sprintf("(spoken answer, %d bytes of audio)", t.AudioBytes)
		}
		fmt.Fprintf(out, "%s: %s\n", t.Role, text)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
