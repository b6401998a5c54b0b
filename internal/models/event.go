package models

// EventAction is the pull request lifecycle action carried by a webhook event.
type EventAction string

const (
	ActionOpened      EventAction = "opened"
	ActionSynchronize EventAction = "synchronize"
	ActionReopened    EventAction = "reopened"
)

// Event is one inbound pull request notification. It is consumed by exactly
// one pipeline run and never persisted.
type Event struct {
	Action   EventAction
	Repo     string // "owner/name"
	PRNumber int
	Payload  []byte // raw webhook body, retained for signature verification upstream
}

// Reviewable reports whether this action should trigger a review.
func (e Event) Reviewable() bool {
	switch e.Action {
	case ActionOpened, ActionSynchronize, ActionReopened:
		return true
	}
	return false
}

// Valid reports whether the event carries enough identity to locate a PR.
func (e Event) Valid() bool {
	return e.Repo != "" && e.PRNumber > 0
}
