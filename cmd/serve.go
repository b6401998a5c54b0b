package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook server",
	Long: `Start the HTTP server that receives GitHub pull_request webhooks and
reviews each opened, synchronized, or reopened PR in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := newLogger()

		mem, err := newStore()
		if err != nil {
			return err
		}
		if mem != nil {
			defer func() { _ = mem.Close() }()
		}

		source := newSourceClient(cfg.HTTP.RequestTimeout)
		pipeline := newPipeline(source, mem, log)

		srv := server.New(pipeline, cfg.Server.WebhookSecret, cfg.HTTP.RequestTimeout, log)

		go func() {
			log.Info("webhook server listening", "addr", cfg.ServerAddr(), "memory", mem != nil)
			if err := srv.Listen(cfg.ServerAddr()); err != nil {
				log.Error("server stopped", "error", err)
				stop()
			}
		}()

		<-ctx.Done()
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		done := make(chan struct{})
		go func() {
			_ = srv.Shutdown()
			close(done)
		}()

		select {
		case <-done:
			log.Info("server shut down")
		case <-shutdownCtx.Done():
			log.Warn("server shutdown timeout", "timeout", cfg.Server.ShutdownTimeout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
