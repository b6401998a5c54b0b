package models

// ReviewFinding is one issue located in a diff. Severity and category are
// open strings: the model's vocabulary is not controlled, so any non-empty
// label is accepted.
type ReviewFinding struct {
	FilePath    string `json:"file_path"`
	LineStart   int    `json:"line_start"`
	LineEnd     int    `json:"line_end"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Suggestion  string `json:"suggestion"`
	CodeSnippet string `json:"code_snippet,omitempty"`
}

// ReviewResult is the outcome of one analysis. A result always exists, even
// when analysis fails; see FailedResult.
type ReviewResult struct {
	Summary       string          `json:"summary"`
	Findings      []ReviewFinding `json:"findings"`
	SecurityScore int             `json:"security_score"`
	IsBlocking    bool            `json:"is_blocking"`
}

// FailurePrefix marks review summaries produced when analysis could not
// complete.
const FailurePrefix = "Analysis failed: "

// FailedResult builds the degraded result used when the model call or
// response validation fails. The pipeline publishes this instead of
// propagating the error.
func FailedResult(err error) *ReviewResult {
	return &ReviewResult{
		Summary:       FailurePrefix + err.Error(),
		Findings:      []ReviewFinding{},
		SecurityScore: 0,
		IsBlocking:    false,
	}
}
