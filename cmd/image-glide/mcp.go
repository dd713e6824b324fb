package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-glide/internal/server"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the JSON-RPC tool server on stdin/stdout",
	Long: `mcp exposes URL generation, inline rendering and preset lookup as
JSON-RPC 2.0 tools over stdio, one request per line. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(server.Options{
		Presets:    a.presets,
		URLs:       a.urls,
		SourceRoot: a.server.SourceRoot,
		Version:    Version,
		Logger:     logger,
	})
	logger.Debug().Str("version", Version).Msg("tool server started")
	return srv.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
}
