package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/dataset-curator/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger(cmd, nil)
			if err != nil {
				return err
			}
			logger.Debug("mcp server starting", "version", Version, "commit", GitCommit)

			srv := server.New(server.Options{
				Logger:     logger,
				Version:    Version,
				ConfigPath: ctx.configPath(),
			})
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
