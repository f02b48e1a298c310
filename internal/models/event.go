package models

import "encoding/json"

// FatalErrorStep is the sentinel step name the backend emits when the whole
// analysis run has failed. It ends the session, not just one step.
const FatalErrorStep = "general_error"

// StepEvent is one raw inbound event from the analysis stream. The backend
// emits loosely structured payloads: Output may be a JSON object, a
// JSON-encoded string, or a doubly-encoded string, and some steps use
// alternate top-level fields instead of Output.
type StepEvent struct {
	Step      string          `json:"step"`
	Title     string          `json:"title,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Error     *EventError     `json:"error,omitempty"`

	// Legacy alternate payload fields observed on older backends.
	TechStack       json.RawMessage `json:"tech_stack,omitempty"`
	DeliveryContext json.RawMessage `json:"delivery_context,omitempty"`
}

// OutputText returns Output as plain text: JSON strings are unquoted, any
// other payload is returned verbatim.
func (e StepEvent) OutputText() string {
	if len(e.Output) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Output, &s); err == nil {
		return s
	}
	return string(e.Output)
}

// EventError is the error object attached to per-step error events.
type EventError struct {
	Message         string `json:"message"`
	Details         string `json:"details,omitempty"`
	Retryable       bool   `json:"retryable"`
	SuggestedAction string `json:"suggested_action,omitempty"`
}

// UpdateKind discriminates the possible outcomes of classifying one event.
type UpdateKind string

const (
	UpdateSuccess   UpdateKind = "success"
	UpdateStepError UpdateKind = "step_error"
	UpdateFatal     UpdateKind = "fatal"
	// UpdateIgnored marks events that carry nothing applicable: unknown step
	// ids, empty payloads. They are logged but never mutate state.
	UpdateIgnored UpdateKind = "ignored"
)

// StepUpdate is the normalized result of classifying one inbound event.
type StepUpdate struct {
	SessionID  string
	StepID     StepID
	Kind       UpdateKind
	Details    string
	Structured *StructuredData
	Failure    *StepFailure
	// FatalMessage is set only for UpdateFatal.
	FatalMessage string
}
