package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/review"
)

const defaultBaseURL = "https://api.github.com"

// RESTClient implements Client against the GitHub REST API.
type RESTClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTClient creates a client authenticated with token. An empty
// baseURL targets api.github.com.
func NewRESTClient(baseURL, token string, timeout time.Duration) *RESTClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &RESTClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) do(req *http.Request) ([]byte, int, error) {
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// FetchDiff returns the unified diff of a pull request using the diff
// media type.
func (c *RESTClient) FetchDiff(ctx context.Context, repo string, number int) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/pulls/%d", c.baseURL, repo, number)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create diff request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3.diff")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch diff %s#%d: %w", repo, number, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read diff %s#%d: %w", repo, number, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch diff %s#%d: status %d: %s", repo, number, resp.StatusCode, string(body))
	}

	return string(body), nil
}

// PublishReview renders the result as markdown and posts it as an issue
// comment, returning the comment URL.
func (c *RESTClient) PublishReview(ctx context.Context, repo string, number int, result *models.ReviewResult) (string, error) {
	payload, err := json.Marshal(map[string]string{"body": review.FormatComment(result)})
	if err != nil {
		return "", fmt.Errorf("marshal comment: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues/%d/comments", c.baseURL, repo, number)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create comment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("post comment %s#%d: %w", repo, number, err)
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("post comment %s#%d: status %d: %s", repo, number, status, string(body))
	}

	var created struct {
		HTMLURL string `json:"html_url"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("parse comment response: %w", err)
	}
	return created.HTMLURL, nil
}
