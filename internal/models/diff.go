package models

import "strings"

// Mode selects review granularity from diff size.
type Mode string

const (
	ModeDetailed Mode = "detailed"
	ModeSummary  Mode = "summary"
)

// Persona names the instruction profile given to the model.
type Persona string

const (
	PersonaDeveloper Persona = "developer"
	PersonaSecurity  Persona = "security"
)

// SummaryThresholdBytes is the diff size above which reviews switch to
// summary mode. A diff of exactly this size is still reviewed in detail.
const SummaryThresholdBytes = 10000

// Diff is the textual change set of one pull request, owned by a single
// pipeline run.
type Diff struct {
	PRNumber int
	Text     string
}

// Size returns the diff length in bytes.
func (d Diff) Size() int {
	return len(d.Text)
}

// DecideMode picks the review granularity from the diff size alone.
func (d Diff) DecideMode() Mode {
	if len(d.Text) > SummaryThresholdBytes {
		return ModeSummary
	}
	return ModeDetailed
}

// DecidePersona picks the reviewer profile from the diff content alone.
// Changes that mention secrets or API keys get the security reviewer.
func (d Diff) DecidePersona() Persona {
	lower := strings.ToLower(d.Text)
	if strings.Contains(lower, "secret") || strings.Contains(lower, "api_key") {
		return PersonaSecurity
	}
	return PersonaDeveloper
}
