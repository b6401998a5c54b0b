package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/github"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/review"
)

var (
	reviewRepo string
	reviewPR   int
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a pull request once and publish the result",
	Long: `Run the full review pipeline against a single pull request, the same
path the webhook server takes. With --dry-run the rendered comment is
printed instead of being posted to GitHub.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reviewRepo == "" || reviewPR <= 0 {
			return fmt.Errorf("both --repo and --pr are required")
		}

		log := newLogger()

		mem, err := newStore()
		if err != nil {
			return err
		}
		if mem != nil {
			defer func() { _ = mem.Close() }()
		}

		var source github.Client = newSourceClient(cfg.HTTP.RequestTimeout)
		if dryRun {
			source = &dryRunClient{inner: source}
		}

		pipeline := newPipeline(source, mem, log)

		event := models.Event{
			Action:   models.ActionOpened,
			Repo:     reviewRepo,
			PRNumber: reviewPR,
		}
		if err := pipeline.Process(cmd.Context(), event); err != nil {
			return fmt.Errorf("review %s#%d: %w", reviewRepo, reviewPR, err)
		}
		ui.Success("reviewed %s#%d", reviewRepo, reviewPR)
		return nil
	},
}

// dryRunClient fetches diffs normally but prints the review comment
// instead of posting it.
type dryRunClient struct {
	inner github.Client
}

func (c *dryRunClient) FetchDiff(ctx context.Context, repo string, number int) (string, error) {
	return c.inner.FetchDiff(ctx, repo, number)
}

func (c *dryRunClient) PublishReview(_ context.Context, repo string, number int, result *models.ReviewResult) (string, error) {
	ui.Info("dry run, would comment on %s#%d:", repo, number)
	fmt.Fprintln(ui.Out, review.FormatComment(result))
	return "", nil
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVarP(&reviewRepo, "repo", "r", "", "Repository in owner/name form")
	reviewCmd.Flags().IntVarP(&reviewPR, "pr", "p", 0, "Pull request number")
}
