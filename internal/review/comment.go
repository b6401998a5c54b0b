package review

import (
	"fmt"
	"strings"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
)

// FormatComment renders a review result as the markdown comment posted to
// the pull request.
func FormatComment(result *models.ReviewResult) string {
	var b strings.Builder

	b.WriteString("## AI Code Review\n\n")
	fmt.Fprintf(&b, "**Security Score:** %d/100\n\n", result.SecurityScore)
	fmt.Fprintf(&b, "**Summary:** %s\n\n", result.Summary)

	if len(result.Findings) == 0 {
		b.WriteString("No issues found.\n")
	} else {
		b.WriteString("### Findings\n\n")
		for _, f := range result.Findings {
			fmt.Fprintf(&b, "- **[%s]** `%s:%d`: %s\n", strings.ToUpper(f.Severity), f.FilePath, f.LineStart, f.Suggestion)
		}
	}

	if result.IsBlocking {
		b.WriteString("\n**This review recommends blocking the merge.**\n")
	}

	return b.String()
}
