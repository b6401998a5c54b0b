package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	Long: `Expose the reviewer as MCP tools for AI agents: teaching and searching
lessons, and triggering a review of a pull request.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := requireStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		log := newLogger()
		source := newSourceClient(cfg.HTTP.RequestTimeout)
		pipeline := newPipeline(source, s, log)

		return mcp.NewServer(s, pipeline).ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
