// Package github is the source adapter: it fetches pull request diffs and
// publishes review comments through the GitHub REST API.
package github

import (
	"context"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// Client fetches pull request diffs and publishes review comments. repo is
// the full "owner/name" form.
type Client interface {
	FetchDiff(ctx context.Context, repo string, number int) (string, error)
	PublishReview(ctx context.Context, repo string, number int, result *models.ReviewResult) (string, error)
}
