// Package orchestrator sequences one pull request review from webhook
// event to published comment. Every well-formed event produces some
// ReviewResult: fetch, memory, and analysis failures downgrade the result
// instead of aborting, and only a publish failure surfaces as an error.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/github"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/llm"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/memory"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/redact"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/review"
)

const (
	// retrievalQueryLimit caps how much diff text is sent as a memory
	// query.
	retrievalQueryLimit = 1000
	// lessonTopK is how many lessons are folded into the prompt.
	lessonTopK = 3
)

// Pipeline runs reviews. Each Process call owns its event, diff, and
// result exclusively; a Pipeline may serve many events concurrently.
type Pipeline struct {
	source  github.Client
	backend llm.Backend
	memory  memory.Store // nil when no lesson store is configured
	log     *slog.Logger
	timeout time.Duration // per external call
}

// New creates a pipeline. mem may be nil; reviews then run without past
// lessons.
func New(source github.Client, backend llm.Backend, mem memory.Store, log *slog.Logger, timeout time.Duration) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		source:  source,
		backend: backend,
		memory:  mem,
		log:     log,
		timeout: timeout,
	}
}

// Process reviews one event end to end. Irrelevant or malformed events are
// ignored without error. The returned error is non-nil only when the final
// publish step failed.
func (p *Pipeline) Process(ctx context.Context, event models.Event) error {
	if !event.Reviewable() {
		p.log.Debug("ignoring event", "action", event.Action)
		return nil
	}
	if !event.Valid() {
		p.log.Warn("ignoring event without repo or PR number", "repo", event.Repo, "pr", event.PRNumber)
		return nil
	}

	log := p.log.With("repo", event.Repo, "pr", event.PRNumber)
	log.Info("review started", "action", event.Action)

	diff := p.fetchDiff(ctx, log, event)

	mode := diff.DecideMode()
	persona := diff.DecidePersona()
	log.Info("review plan decided", "mode", mode, "persona", persona, "diff_bytes", diff.Size())

	lessons := p.retrieveLessons(ctx, log, diff)

	prompt := review.BuildPrompt(persona, mode, diff.Text, lessons)

	result := p.analyze(ctx, log, prompt)

	pubCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	url, err := p.source.PublishReview(pubCtx, event.Repo, event.PRNumber, result)
	if err != nil {
		return fmt.Errorf("publish review %s#%d: %w", event.Repo, event.PRNumber, err)
	}

	log.Info("review published", "url", url, "score", result.SecurityScore, "findings", len(result.Findings))
	return nil
}

// fetchDiff retrieves the PR diff. Fetch failures degrade to an empty
// diff, which is valid input for the rest of the pipeline.
func (p *Pipeline) fetchDiff(ctx context.Context, log *slog.Logger, event models.Event) models.Diff {
	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := p.source.FetchDiff(fetchCtx, event.Repo, event.PRNumber)
	if err != nil {
		log.Warn("diff fetch failed, continuing with empty diff", "error", err)
		text = ""
	}
	return models.Diff{PRNumber: event.PRNumber, Text: text}
}

// retrieveLessons queries the memory store with the scrubbed head of the
// diff. Any failure is absorbed as "no lessons".
func (p *Pipeline) retrieveLessons(ctx context.Context, log *slog.Logger, diff models.Diff) []string {
	if p.memory == nil {
		return nil
	}

	query := diff.Text
	if len(query) > retrievalQueryLimit {
		query = query[:retrievalQueryLimit]
	}
	query = redact.Scrub(query)

	searchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	lessons, err := p.memory.Search(searchCtx, query, lessonTopK)
	if err != nil {
		log.Warn("lesson retrieval failed, continuing without memories", "error", err)
		return nil
	}
	return lessons
}

// analyze calls the model and validates its response. Both failure modes
// produce the degraded result instead of an error.
func (p *Pipeline) analyze(ctx context.Context, log *slog.Logger, prompt string) *models.ReviewResult {
	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.backend.Generate(genCtx, prompt)
	if err != nil {
		log.Warn("model call failed, publishing degraded result", "error", err)
		return models.FailedResult(err)
	}

	result, err := review.ParseResult(raw)
	if err != nil {
		log.Warn("model response did not validate, publishing degraded result", "error", err)
		return models.FailedResult(err)
	}
	return result
}
