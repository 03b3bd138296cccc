package archivecmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claire-namusoke/portfolio/pkg/archive"
)

const mergeLongDesc string = `Merge transcript archives into one.

Copies every archived turn from each source database into the target.
Content addressing means turns already present in the target are skipped,
so merging the same source twice is harmless.

Examples:
  portfolio archive merge --db portfolio.db replica-a.db replica-b.db`

const mergeShortDesc string = "Merge SQLite archives into the target archive"

func newMergeCmd(parent *archiveCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "merge [sources...]",
		Short: mergeShortDesc,
		Long:  mergeLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parent.merge(cmd.Context(), cmd, args)
		},
	}
}

func (c *archiveCommander) merge(ctx context.Context, cmd *cobra.Command, sources []string) error {
	targetPath, err := c.resolveDBPath()
	if err != nil {
		return fmt.Errorf("could not resolve target archive: %w", err)
	}

	target, err := archive.NewSQLiteStorer(targetPath)
	if err != nil {
		return fmt.Errorf("could not open target archive %s: %w", targetPath, err)
	}
	defer target.Close()

	var totalNew, totalDuped int

	for _, srcPath := range sources {
		srcNew, srcDuped, err := mergeFrom(ctx, target, srcPath)
		if err != nil {
			return err
		}

		totalNew += srcNew
		totalDuped += srcDuped

		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d new, %d already existed\n", srcPath, srcNew, srcDuped)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Merged %d new turns from %d sources (%d already existed) into %s\n",
		totalNew, len(sources), totalDuped, targetPath)

	return nil
}

func mergeFrom(ctx context.Context, target archive.Storer, srcPath string) (added, duped int, err error) {
	source, err := archive.NewSQLiteStorer(srcPath)
	if err != nil {
		return 0, 0, fmt.Errorf("could not open source archive %s: %w", srcPath, err)
	}
	defer source.Close()

	nodes, err := source.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("could not list turns from %s: %w", srcPath, err)
	}

	for _, n := range nodes {
		exists, err := target.Has(ctx, n.Hash)
		if err != nil {
			return 0, 0, fmt.Errorf("could not check turn %s: %w", n.Hash, err)
		}
		if exists {
			duped++
			continue
		}
		if err := target.Put(ctx, n); err != nil {
			return 0, 0, fmt.Errorf("could not put turn %s: %w", n.Hash, err)
		}
		added++
	}

	return added, duped, nil
}
