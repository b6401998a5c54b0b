package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// mockStore implements memory.Store for testing.
type mockStore struct {
	lessons []*models.Lesson

	addedTexts []string

	addErr    error
	searchErr error
	listErr   error
}

func (m *mockStore) Add(_ context.Context, text, category string) (string, error) {
	if m.addErr != nil {
		return "", m.addErr
	}
	m.addedTexts = append(m.addedTexts, text)
	id := fmt.Sprintf("lesson-%d", len(m.addedTexts))
	m.lessons = append(m.lessons, &models.Lesson{
		ID:        id,
		Text:      text,
		Category:  category,
		CreatedAt: time.Now(),
	})
	return id, nil
}

func (m *mockStore) Search(_ context.Context, _ string, topK int) ([]string, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := []string{}
	for _, l := range m.lessons {
		if len(out) == topK {
			break
		}
		out = append(out, l.Text)
	}
	return out, nil
}

func (m *mockStore) List(_ context.Context) ([]*models.Lesson, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.lessons, nil
}

func (m *mockStore) Migrate(_ context.Context) error { return nil }
func (m *mockStore) Close() error                    { return nil }

// mockReviewer implements Reviewer for testing.
type mockReviewer struct {
	events []models.Event
	err    error
}

func (m *mockReviewer) Process(_ context.Context, event models.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// callToolReq builds a mcpgo.CallToolRequest with the given name and arguments.
func callToolReq(name string, args map[string]any) mcpgo.CallToolRequest {
	return mcpgo.CallToolRequest{
		Params: mcpgo.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// resultText extracts the concatenated text from a CallToolResult.
func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, c := range result.Content {
		tc, ok := c.(mcpgo.TextContent)
		if ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}

func TestNewServer(t *testing.T) {
	srv := NewServer(&mockStore{}, nil)
	require.NotNil(t, srv)
	require.NotNil(t, srv.MCPServer())
}

func TestHandleTeachLesson(t *testing.T) {
	store := &mockStore{}
	srv := NewServer(store, nil)

	req := callToolReq("reviewer_teach_lesson", map[string]any{
		"text":     "Avoid hardcoding API keys.",
		"category": "security",
	})
	result, err := srv.handleTeachLesson(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, "lesson-1", out.ID)
	assert.Equal(t, []string{"Avoid hardcoding API keys."}, store.addedTexts)
}

func TestHandleTeachLesson_MissingText(t *testing.T) {
	srv := NewServer(&mockStore{}, nil)

	req := callToolReq("reviewer_teach_lesson", map[string]any{"category": "security"})
	result, err := srv.handleTeachLesson(context.Background(), req)
	require.NoError(t, err, "handler should not return Go error; should wrap in result")
	assert.True(t, result.IsError)
}

func TestHandleTeachLesson_StoreError(t *testing.T) {
	srv := NewServer(&mockStore{addErr: fmt.Errorf("db locked")}, nil)

	req := callToolReq("reviewer_teach_lesson", map[string]any{"text": "a lesson"})
	result, err := srv.handleTeachLesson(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "db locked")
}

func TestHandleSearchLessons(t *testing.T) {
	store := &mockStore{}
	_, _ = store.Add(context.Background(), "first lesson", "general")
	_, _ = store.Add(context.Background(), "second lesson", "general")
	srv := NewServer(store, nil)

	req := callToolReq("reviewer_search_lessons", map[string]any{
		"query": "lesson",
		"top_k": 1,
	})
	result, err := srv.handleSearchLessons(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var texts []string
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &texts))
	assert.Equal(t, []string{"first lesson"}, texts)
}

func TestHandleSearchLessons_MissingQuery(t *testing.T) {
	srv := NewServer(&mockStore{}, nil)

	req := callToolReq("reviewer_search_lessons", nil)
	result, err := srv.handleSearchLessons(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleListLessons(t *testing.T) {
	store := &mockStore{}
	_, _ = store.Add(context.Background(), "first lesson", "security")
	srv := NewServer(store, nil)

	req := callToolReq("reviewer_list_lessons", nil)
	result, err := srv.handleListLessons(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "lesson-1", out[0]["id"])
	assert.Equal(t, "security", out[0]["category"])
}

func TestHandleListLessons_Empty(t *testing.T) {
	srv := NewServer(&mockStore{}, nil)

	req := callToolReq("reviewer_list_lessons", nil)
	result, err := srv.handleListLessons(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Equal(t, "[]", resultText(t, result))
}

func TestHandleReviewPR(t *testing.T) {
	reviewer := &mockReviewer{}
	srv := NewServer(&mockStore{}, reviewer)

	req := callToolReq("reviewer_review_pr", map[string]any{
		"repo": "acme/widgets",
		"pr":   42,
	})
	result, err := srv.handleReviewPR(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Len(t, reviewer.events, 1)
	assert.Equal(t, "acme/widgets", reviewer.events[0].Repo)
	assert.Equal(t, 42, reviewer.events[0].PRNumber)
	assert.Equal(t, models.ActionOpened, reviewer.events[0].Action)
}

func TestHandleReviewPR_MissingPR(t *testing.T) {
	srv := NewServer(&mockStore{}, &mockReviewer{})

	req := callToolReq("reviewer_review_pr", map[string]any{"repo": "acme/widgets"})
	result, err := srv.handleReviewPR(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleReviewPR_PipelineError(t *testing.T) {
	srv := NewServer(&mockStore{}, &mockReviewer{err: fmt.Errorf("publish failed")})

	req := callToolReq("reviewer_review_pr", map[string]any{
		"repo": "acme/widgets",
		"pr":   7,
	})
	result, err := srv.handleReviewPR(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "publish failed")
}
