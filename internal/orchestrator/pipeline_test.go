package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// fakeSource records calls and returns canned diff/publish behavior.
type fakeSource struct {
	diff       string
	diffErr    error
	publishErr error

	fetchCalls    int
	published     []*models.ReviewResult
	publishedRepo string
	publishedPR   int
}

func (f *fakeSource) FetchDiff(_ context.Context, repo string, number int) (string, error) {
	f.fetchCalls++
	return f.diff, f.diffErr
}

func (f *fakeSource) PublishReview(_ context.Context, repo string, number int, result *models.ReviewResult) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	f.published = append(f.published, result)
	f.publishedRepo = repo
	f.publishedPR = number
	return "https://example.com/comment/1", nil
}

type fakeBackend struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeBackend) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeMemory struct {
	lessons []string
	err     error
	queries []string
}

func (f *fakeMemory) Add(context.Context, string, string) (string, error) { return "", nil }
func (f *fakeMemory) Search(_ context.Context, query string, topK int) ([]string, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.lessons, nil
}
func (f *fakeMemory) List(context.Context) ([]*models.Lesson, error) { return nil, nil }
func (f *fakeMemory) Migrate(context.Context) error                  { return nil }
func (f *fakeMemory) Close() error                                   { return nil }

const cleanResponse = `{"summary": "Looks fine", "findings": [], "security_score": 90, "is_blocking": false}`

func openedEvent() models.Event {
	return models.Event{Action: models.ActionOpened, Repo: "octo/repo", PRNumber: 7}
}

func newTestPipeline(src *fakeSource, backend *fakeBackend, mem *fakeMemory) *Pipeline {
	// The interface value must be nil, not a typed nil pointer.
	if mem == nil {
		return New(src, backend, nil, nil, time.Second)
	}
	return New(src, backend, mem, nil, time.Second)
}

func TestProcessHappyPath(t *testing.T) {
	src := &fakeSource{diff: "diff --git a/x b/x\n+hello"}
	backend := &fakeBackend{response: cleanResponse}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, src.published, 1)
	assert.Equal(t, "octo/repo", src.publishedRepo)
	assert.Equal(t, 7, src.publishedPR)
	assert.Equal(t, 90, src.published[0].SecurityScore)

	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "+hello")
}

func TestProcessIgnoresIrrelevantEvents(t *testing.T) {
	tests := []struct {
		name  string
		event models.Event
	}{
		{"closed action", models.Event{Action: "closed", Repo: "octo/repo", PRNumber: 1}},
		{"missing repo", models.Event{Action: models.ActionOpened, PRNumber: 1}},
		{"missing PR number", models.Event{Action: models.ActionOpened, Repo: "octo/repo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{}
			backend := &fakeBackend{response: cleanResponse}

			err := newTestPipeline(src, backend, nil).Process(context.Background(), tt.event)
			require.NoError(t, err)
			assert.Zero(t, src.fetchCalls)
			assert.Empty(t, src.published)
		})
	}
}

func TestProcessEmptyDiff(t *testing.T) {
	src := &fakeSource{diff: ""}
	backend := &fakeBackend{response: cleanResponse}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, src.published, 1)
	assert.Empty(t, src.published[0].Findings)
}

func TestProcessFetchFailureDegradesToEmptyDiff(t *testing.T) {
	src := &fakeSource{diffErr: errors.New("network down")}
	backend := &fakeBackend{response: cleanResponse}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, src.published, 1)
	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "--- BEGIN DIFF ---")
}

func TestProcessMemoryFailureContinues(t *testing.T) {
	src := &fakeSource{diff: "small diff"}
	backend := &fakeBackend{response: cleanResponse}
	mem := &fakeMemory{err: errors.New("store unreachable")}

	err := newTestPipeline(src, backend, mem).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, src.published, 1)
	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "<past_learnings>\n</past_learnings>")
}

func TestProcessRetrievalQueryScrubbedAndCapped(t *testing.T) {
	secret := "ghp_" + strings.Repeat("a", 36)
	src := &fakeSource{diff: "token " + secret + " " + strings.Repeat("x", 2000)}
	backend := &fakeBackend{response: cleanResponse}
	mem := &fakeMemory{lessons: []string{"never commit tokens"}}

	err := newTestPipeline(src, backend, mem).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, mem.queries, 1)
	assert.NotContains(t, mem.queries[0], secret)
	assert.Contains(t, mem.queries[0], "[REDACTED_SECRET]")
	assert.LessOrEqual(t, len(mem.queries[0]), 1000+len("[REDACTED_SECRET]"))

	assert.Contains(t, backend.prompts[0], "never commit tokens")
}

func TestProcessBackendFailurePublishesDegradedResult(t *testing.T) {
	src := &fakeSource{diff: "diff"}
	backend := &fakeBackend{err: errors.New("model exploded")}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, src.published, 1)
	result := src.published[0]
	assert.True(t, strings.HasPrefix(result.Summary, models.FailurePrefix))
	assert.Equal(t, 0, result.SecurityScore)
	assert.False(t, result.IsBlocking)
	assert.Empty(t, result.Findings)
}

func TestProcessMalformedResponsePublishesDegradedResult(t *testing.T) {
	src := &fakeSource{diff: "diff"}
	backend := &fakeBackend{response: "I am not JSON"}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, src.published, 1)
	assert.True(t, strings.HasPrefix(src.published[0].Summary, models.FailurePrefix))
	assert.Equal(t, 0, src.published[0].SecurityScore)
}

func TestProcessPublishFailureIsTerminal(t *testing.T) {
	src := &fakeSource{diff: "diff", publishErr: errors.New("comment rejected")}
	backend := &fakeBackend{response: cleanResponse}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	assert.ErrorContains(t, err, "comment rejected")
}

func TestProcessSummaryModeForLargeDiff(t *testing.T) {
	src := &fakeSource{diff: strings.Repeat("a", models.SummaryThresholdBytes+1)}
	backend := &fakeBackend{response: cleanResponse}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "only the first")
}

func TestProcessSecurityPersonaForSensitiveDiff(t *testing.T) {
	src := &fakeSource{diff: "+API_KEY = os.Getenv(\"KEY\")"}
	backend := &fakeBackend{response: cleanResponse}

	err := newTestPipeline(src, backend, nil).Process(context.Background(), openedEvent())
	require.NoError(t, err)

	require.Len(t, backend.prompts, 1)
	assert.Contains(t, backend.prompts[0], "security engineer")
}
