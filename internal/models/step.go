package models

// StepID identifies one stage of the fixed analysis pipeline.
type StepID string

const (
	StepDocumentPreparation StepID = "document_preparation"
	StepPlatforms           StepID = "platforms"
	StepRequirements        StepID = "requirements"
	StepTechStack           StepID = "techstack"
	StepTeamComposition     StepID = "team_composition"
	StepEffortEstimation    StepID = "effort_estimation"
	StepDevelopmentPlan     StepID = "development_plan"
	StepFinalReport         StepID = "final_report"
)

// StepOrder is the fixed pipeline order. It never changes during a run.
var StepOrder = []StepID{
	StepDocumentPreparation,
	StepPlatforms,
	StepRequirements,
	StepTechStack,
	StepTeamComposition,
	StepEffortEstimation,
	StepDevelopmentPlan,
	StepFinalReport,
}

// KnownStep reports whether id is one of the fixed pipeline steps.
func KnownStep(id StepID) bool {
	for _, s := range StepOrder {
		if s == id {
			return true
		}
	}
	return false
}

// StepStatus represents the lifecycle state of a single step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusDone       StepStatus = "done"
	StepStatusError      StepStatus = "error"
)

// Step is one stage of the analysis pipeline as shown to the user.
type Step struct {
	ID          StepID          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      StepStatus      `json:"status"`
	Details     string          `json:"details,omitempty"`
	Structured  *StructuredData `json:"structuredData,omitempty"`
	Failure     *StepFailure    `json:"failure,omitempty"`
}

// Clone returns a deep copy of the step. Structured payloads are immutable
// once published, so the pointer is shared.
func (s Step) Clone() Step {
	c := s
	if s.Failure != nil {
		f := *s.Failure
		c.Failure = &f
	}
	return c
}

// StepFailure describes a per-step recoverable error.
type StepFailure struct {
	Message         string `json:"message"`
	Details         string `json:"details,omitempty"`
	Retryable       bool   `json:"retryable"`
	SuggestedAction string `json:"suggestedAction,omitempty"`
}
