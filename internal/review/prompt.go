// Package review builds the model prompt, validates the model's response,
// and renders the published comment.
package review

import (
	"fmt"
	"strings"

	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/models"
	"github.com/Somsubhra-Nandi/ai-pr-reviewer/internal/redact"
)

// personaRoles maps each reviewer profile to its role instruction. Unknown
// personas fall back to the developer role.
var personaRoles = map[models.Persona]string{
	models.PersonaSecurity:  "You are a security engineer. Focus on OWASP risks, leaked credentials, injection vectors, and authentication flaws.",
	models.PersonaDeveloper: "You are a senior software engineer. Focus on bugs, correctness, and clean code.",
}

func roleFor(p models.Persona) string {
	if role, ok := personaRoles[p]; ok {
		return role
	}
	return personaRoles[models.PersonaDeveloper]
}

const outputContract = `OUTPUT FORMAT:
Return ONLY a single valid JSON object. Do not wrap it in markdown code fences.
The object must match this structure exactly:
{
  "summary": "High-level summary of the change",
  "findings": [
    {
      "file_path": "path/to/file",
      "line_start": 10,
      "line_end": 12,
      "severity": "CRITICAL",
      "category": "SECURITY",
      "suggestion": "Concrete advice on how to fix it",
      "code_snippet": "the problematic code (optional)"
    }
  ],
  "security_score": 85,
  "is_blocking": false
}
"security_score" is an integer from 0 to 100. "suggestion" must never be empty.
If the diff has no issues, return an empty "findings" array.`

// BuildPrompt assembles the full instruction text from persona, mode, the
// raw diff, and retrieved lesson texts. It is a pure function of its
// inputs. Lessons are neutralized with redact.ForPrompt before they enter
// the past-learnings block, so stored text cannot escape it. In summary
// mode the diff is truncated to the size threshold and the model is told
// it sees a truncated change.
func BuildPrompt(persona models.Persona, mode models.Mode, diff string, lessons []string) string {
	var b strings.Builder

	b.WriteString("ROLE: ")
	b.WriteString(roleFor(persona))
	b.WriteString("\n\n")

	b.WriteString("TASK:\nReview the pull request diff below and report concrete findings.\n")
	if mode == models.ModeSummary && len(diff) > models.SummaryThresholdBytes {
		diff = diff[:models.SummaryThresholdBytes]
		fmt.Fprintf(&b, "The change is large, so only the first %d bytes of the diff are shown. Summarize overall risk and review what is visible.\n", models.SummaryThresholdBytes)
	}
	b.WriteString("\n")

	b.WriteString(outputContract)
	b.WriteString("\n\n")

	b.WriteString("<past_learnings>\n")
	for _, lesson := range lessons {
		b.WriteString("- ")
		b.WriteString(redact.ForPrompt(lesson))
		b.WriteString("\n")
	}
	b.WriteString("</past_learnings>\n\n")

	b.WriteString("--- BEGIN DIFF ---\n")
	b.WriteString(diff)
	b.WriteString("\n--- END DIFF ---\n")

	return b.String()
}
