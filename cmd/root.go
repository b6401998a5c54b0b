package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/config"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/github"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/llm"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/memory"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/orchestrator"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/output"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui  *output.UI
	cfg *config.Config

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "reviewer",
	Short: "AI PR Reviewer - automated pull request review with memory",
	Long: `reviewer analyzes pull request diffs with a language model and posts
structured review comments. It can be taught durable lessons that are
retrieved by semantic similarity and folded into future reviews.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Print instead of publishing to GitHub")
}

func initConfig() {
	c, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg = c
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
}

// newLogger builds the process logger at the configured level.
func newLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newStore opens the lesson store, or returns nil when memory is disabled.
func newStore() (memory.Store, error) {
	if !cfg.Memory.Enabled {
		return nil, nil
	}

	embedder := memory.NewOllamaEmbedder(cfg.Memory.OllamaURL, cfg.Memory.EmbedModel, cfg.HTTP.RequestTimeout)
	s, err := memory.NewSQLiteStore(cfg.Memory.DBPath, embedder)
	if err != nil {
		return nil, fmt.Errorf("open lesson store: %w", err)
	}
	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate lesson store: %w", err)
	}
	return s, nil
}

// requireStore is newStore for commands that cannot run without memory.
func requireStore() (memory.Store, error) {
	if !cfg.Memory.Enabled {
		return nil, fmt.Errorf("the lesson store is disabled; set REVIEWER_MEMORY_ENABLED=true")
	}
	return newStore()
}

// newPipeline wires the review pipeline with the configured adapters. mem
// may be nil.
func newPipeline(source github.Client, mem memory.Store, log *slog.Logger) *orchestrator.Pipeline {
	backend := llm.NewAnthropicBackend(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	return orchestrator.New(source, backend, mem, log, cfg.HTTP.RequestTimeout)
}

func newSourceClient(timeout time.Duration) *github.RESTClient {
	return github.NewRESTClient(cfg.GitHub.BaseURL, cfg.GitHub.Token, timeout)
}
