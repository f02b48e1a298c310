package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rfp-insight/console/internal/models"
)

func TestSummarizePlatforms(t *testing.T) {
	data := &models.StructuredData{
		Kind: models.StepPlatforms,
		Platforms: &models.PlatformAnalysis{
			Platforms: []models.Platform{
				{Name: "Web", Reason: "primary audience"},
				{Name: "Mobile"},
			},
			Rationale:    "both channels required",
			Traceability: &models.Traceability{CitedReferences: []int{1, 4}, PagesAffected: []int{2}},
		},
	}

	got := Summarize(data)
	assert.Contains(t, got, "### Recommended Platforms")
	assert.Contains(t, got, "**Web**")
	assert.Contains(t, got, "primary audience")
	assert.Contains(t, got, "**Rationale:** both channels required")
	assert.Contains(t, got, "2 cited reference(s) across 1 page(s)")
}

func TestSummarizeTeamCounts(t *testing.T) {
	data := &models.StructuredData{
		Kind: models.StepTeamComposition,
		Team: &models.TeamComposition{Roles: []models.TeamRole{
			{Role: "Backend Engineer", Count: 2},
			{Role: "QA", Count: 0.5, Justification: "shared"},
		}},
	}

	got := Summarize(data)
	assert.Contains(t, got, "Backend Engineer × 2")
	assert.Contains(t, got, "QA × 0.5")
	assert.Contains(t, got, "shared")
}

func TestSummarizeEffortRange(t *testing.T) {
	data := &models.StructuredData{
		Kind: models.StepEffortEstimation,
		Effort: &models.EffortEstimate{
			MinSprints:        4,
			MaxSprints:        6.5,
			SprintLengthWeeks: 2,
			Confidence:        "medium",
		},
	}

	got := Summarize(data)
	assert.Contains(t, got, "4–6.5")
	assert.Contains(t, got, "(2-week sprints)")
	assert.Contains(t, got, "**Confidence:** medium")
}

func TestSummarizeIsDeterministic(t *testing.T) {
	data := &models.StructuredData{
		Kind: models.StepDevelopmentPlan,
		Plan: &models.DevelopmentPlan{
			Phases:       []models.PlanPhase{{Name: "Discovery", Deliverables: []string{"scope doc"}}},
			CrossCutting: []string{"security"},
		},
	}
	assert.Equal(t, Summarize(data), Summarize(data))
	assert.Contains(t, Summarize(data), "**Phase 1: Discovery**")
}
