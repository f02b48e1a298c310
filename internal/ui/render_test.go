package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rfp-insight/console/internal/models"
	"github.com/rfp-insight/console/internal/progress"
)

func sampleSnapshot() progress.Snapshot {
	return progress.Snapshot{
		Steps: []models.Step{
			{ID: models.StepDocumentPreparation, Title: "Document Preparation", Status: models.StepStatusDone, Details: "indexed 12 pages"},
			{ID: models.StepPlatforms, Title: "Platform Identification", Status: models.StepStatusInProgress},
			{ID: models.StepRequirements, Title: "Requirements Analysis", Status: models.StepStatusPending},
		},
		Processing: true,
	}
}

func TestRenderShowsAllSteps(t *testing.T) {
	out := Render(sampleSnapshot(), models.ConnConnected, "acme.pdf")

	assert.Contains(t, out, "RFP Analysis")
	assert.Contains(t, out, "acme.pdf")
	assert.Contains(t, out, "[connected]")
	assert.Contains(t, out, "● Document Preparation")
	assert.Contains(t, out, "◐ Platform Identification")
	assert.Contains(t, out, "○ Requirements Analysis")
	assert.Contains(t, out, "Processing...")
}

func TestRenderErrorStep(t *testing.T) {
	snap := sampleSnapshot()
	snap.Steps[1].Status = models.StepStatusError
	snap.Steps[1].Failure = &models.StepFailure{Message: "timeout", Retryable: true}
	snap.Processing = false

	out := Render(snap, models.ConnConnected, "")
	assert.Contains(t, out, "✕ Platform Identification")
	assert.Contains(t, out, "timeout")
	assert.NotContains(t, out, "Processing...")
}

func TestRenderDetailOnlyForSelectedStep(t *testing.T) {
	snap := sampleSnapshot()
	snap.Selected = models.StepDocumentPreparation
	snap.DetailVisible = true

	out := Render(snap, models.ConnConnected, "")
	assert.Contains(t, out, "indexed 12 pages")

	snap.DetailVisible = false
	out = Render(snap, models.ConnConnected, "")
	assert.NotContains(t, out, "indexed 12 pages")
}

func TestRenderFatal(t *testing.T) {
	snap := sampleSnapshot()
	snap.FatalMessage = "pipeline crashed"
	snap.Processing = false

	out := Render(snap, models.ConnDisconnected, "acme.pdf")
	assert.Contains(t, out, "Analysis failed: pipeline crashed")
	assert.Contains(t, out, "Session ended.")
	assert.Contains(t, out, "[disconnected]")
}

func TestRenderFinished(t *testing.T) {
	snap := sampleSnapshot()
	for i := range snap.Steps {
		snap.Steps[i].Status = models.StepStatusDone
	}
	snap.Processing = false
	snap.Finished = true

	out := Render(snap, models.ConnConnected, "")
	assert.Contains(t, out, "Analysis complete.")
	assert.Equal(t, 3, strings.Count(out, "●"))
}

func TestRenderStepDetail(t *testing.T) {
	out := RenderStepDetail(models.Step{
		ID:      models.StepTechStack,
		Title:   "Technology Stack",
		Status:  models.StepStatusError,
		Failure: &models.StepFailure{Message: "timeout", SuggestedAction: "retry the step"},
	})
	assert.Contains(t, out, "Technology Stack")
	assert.Contains(t, out, "timeout")
	assert.Contains(t, out, "retry the step")
}
