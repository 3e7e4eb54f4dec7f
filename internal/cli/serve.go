package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-prep/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run the MCP server on stdin/stdout.

Stdout carries the protocol, so logs always go to stderr or --log-file.
Configure the binary as a stdio server in your MCP client.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log.Info().
				Str("version", a.build.Version).
				Str("build_time", a.build.BuildTime).
				Str("commit", a.build.GitCommit).
				Msg("Starting MCP server")

			return server.New(a.fs, a.build.Version).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
