package main

import (
	"os"

	"github.com/spf13/cobra"

	archivecmder "github.com/claire-namusoke/portfolio/cmd/portfolio/archive"
	askcmder "github.com/claire-namusoke/portfolio/cmd/portfolio/ask"
	chatcmder "github.com/claire-namusoke/portfolio/cmd/portfolio/chat"
	servecmder "github.com/claire-namusoke/portfolio/cmd/portfolio/serve"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "portfolio",
		Short:        "Claire Namusoke's portfolio site and assistant",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		servecmder.NewServeCmd(),
		askcmder.NewAskCmd(),
		chatcmder.NewChatCmd(),
		archivecmder.NewArchiveCmd(),
	)

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
