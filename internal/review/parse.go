package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// ErrMalformedResponse marks model output that did not validate into a
// ReviewResult.
var ErrMalformedResponse = errors.New("malformed model response")

// ParseResult validates raw model output into a ReviewResult. A single
// leading/trailing markdown code fence is tolerated and stripped. Unknown
// JSON fields are ignored; severity and category are accepted as any
// non-empty string since the model's vocabulary is open.
func ParseResult(raw string) (*models.ReviewResult, error) {
	content := stripFence(raw)

	var result models.ReviewResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if result.SecurityScore < 0 || result.SecurityScore > 100 {
		return nil, fmt.Errorf("%w: security_score %d out of range [0,100]", ErrMalformedResponse, result.SecurityScore)
	}

	for i, f := range result.Findings {
		if f.LineEnd < f.LineStart {
			return nil, fmt.Errorf("%w: finding %d has line_end %d before line_start %d", ErrMalformedResponse, i, f.LineEnd, f.LineStart)
		}
		if strings.TrimSpace(f.Suggestion) == "" {
			return nil, fmt.Errorf("%w: finding %d has an empty suggestion", ErrMalformedResponse, i)
		}
	}

	if result.Findings == nil {
		result.Findings = []models.ReviewFinding{}
	}

	return &result, nil
}

// stripFence removes one wrapping markdown code fence, if present.
func stripFence(raw string) string {
	content := strings.TrimSpace(raw)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}

	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[1:end], "\n"))
}
