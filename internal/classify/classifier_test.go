package classify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfp-insight/console/internal/models"
)

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestClassifyPlatformsDirectObject(t *testing.T) {
	c := New(nil)
	payload := map[string]interface{}{
		"platforms": []interface{}{"Web", map[string]interface{}{"name": "Mobile", "reason": "field teams"}},
		"rationale": "both user groups need access",
	}
	ev := models.StepEvent{Step: "platforms", Output: rawJSON(t, payload)}

	u := c.Classify("s1", ev)

	assert.Equal(t, models.UpdateSuccess, u.Kind)
	assert.Equal(t, models.StepPlatforms, u.StepID)
	require.NotNil(t, u.Structured)
	require.NotNil(t, u.Structured.Platforms)
	require.Len(t, u.Structured.Platforms.Platforms, 2)
	assert.Equal(t, "Web", u.Structured.Platforms.Platforms[0].Name)
	assert.Equal(t, "Mobile", u.Structured.Platforms.Platforms[1].Name)
	assert.Equal(t, "field teams", u.Structured.Platforms.Platforms[1].Reason)
	assert.NotEmpty(t, u.Details)
}

func TestClassifyPlatformsDoubleEncoded(t *testing.T) {
	c := New(nil)

	// The backend quirk: output is a stringified single-element array whose
	// element carries yet another stringified object in "output".
	inner, err := json.Marshal(map[string]interface{}{
		"platforms": []string{"Web"},
		"rationale": "browser-only audience",
	})
	require.NoError(t, err)
	wrapped, err := json.Marshal([]map[string]string{{"output": string(inner)}})
	require.NoError(t, err)
	doubled, err := json.Marshal(string(wrapped))
	require.NoError(t, err)

	u := c.Classify("s1", models.StepEvent{Step: "platforms", Output: doubled})

	require.Equal(t, models.UpdateSuccess, u.Kind)
	require.NotNil(t, u.Structured)
	require.NotNil(t, u.Structured.Platforms)
	require.Len(t, u.Structured.Platforms.Platforms, 1)
	assert.Equal(t, "Web", u.Structured.Platforms.Platforms[0].Name)
	assert.Equal(t, "browser-only audience", u.Structured.Platforms.Rationale)

	// Same result as the single-encoded form.
	direct := c.Classify("s1", models.StepEvent{Step: "platforms", Output: rawJSON(t, map[string]interface{}{
		"platforms": []string{"Web"},
		"rationale": "browser-only audience",
	})})
	assert.Equal(t, direct.Structured.Platforms.Platforms, u.Structured.Platforms.Platforms)
}

func TestClassifyFallbackOnUnparsableOutput(t *testing.T) {
	c := New(nil)
	ev := models.StepEvent{Step: "platforms", Output: rawJSON(t, "not json at {{{ all")}

	u := c.Classify("s1", ev)

	assert.Equal(t, models.UpdateSuccess, u.Kind)
	assert.Nil(t, u.Structured)
	assert.Equal(t, "not json at {{{ all", u.Details)
}

func TestClassifyEmptyOutputIgnored(t *testing.T) {
	c := New(nil)
	u := c.Classify("s1", models.StepEvent{Step: "document_preparation"})
	assert.Equal(t, models.UpdateIgnored, u.Kind)
}

func TestClassifyUnknownStepIgnored(t *testing.T) {
	c := New(nil)
	u := c.Classify("s1", models.StepEvent{Step: "mystery_step", Output: rawJSON(t, "text")})
	assert.Equal(t, models.UpdateIgnored, u.Kind)
}

func TestClassifyStepError(t *testing.T) {
	c := New(nil)
	ev := models.StepEvent{
		Step: "techstack_error",
		Error: &models.EventError{
			Message:         "timeout",
			Retryable:       true,
			SuggestedAction: "try again",
		},
	}

	u := c.Classify("s1", ev)

	assert.Equal(t, models.UpdateStepError, u.Kind)
	assert.Equal(t, models.StepTechStack, u.StepID)
	require.NotNil(t, u.Failure)
	assert.Equal(t, "timeout", u.Failure.Message)
	assert.True(t, u.Failure.Retryable)
	assert.Equal(t, "try again", u.Failure.SuggestedAction)
}

func TestClassifyErrorSuffixWithUnknownBase(t *testing.T) {
	c := New(nil)
	ev := models.StepEvent{Step: "bogus_error", Error: &models.EventError{Message: "x"}}
	u := c.Classify("s1", ev)
	assert.Equal(t, models.UpdateIgnored, u.Kind)
}

func TestClassifyFatalSentinel(t *testing.T) {
	c := New(nil)

	u := c.Classify("s1", models.StepEvent{
		Step:  models.FatalErrorStep,
		Error: &models.EventError{Message: "pipeline crashed"},
	})
	assert.Equal(t, models.UpdateFatal, u.Kind)
	assert.Equal(t, "pipeline crashed", u.FatalMessage)

	// Without a message the fatal update still carries something readable.
	u = c.Classify("s1", models.StepEvent{Step: models.FatalErrorStep})
	assert.Equal(t, models.UpdateFatal, u.Kind)
	assert.NotEmpty(t, u.FatalMessage)
}

func TestClassifyFinalReportStripsBanner(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name   string
		report string
		want   string
	}{
		{
			name:   "banner on first line",
			report: "# RFP Analysis Report\n\n## Summary\nBody.",
			want:   "## Summary\nBody.",
		},
		{
			name:   "no banner",
			report: "## Summary\nBody.",
			want:   "## Summary\nBody.",
		},
		{
			name:   "banner-like heading with extra text kept",
			report: "# RFP Analysis Report for ACME\nBody.",
			want:   "# RFP Analysis Report for ACME\nBody.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := c.Classify("s1", models.StepEvent{Step: "final_report", Output: rawJSON(t, tt.report)})
			assert.Equal(t, models.UpdateSuccess, u.Kind)
			assert.Equal(t, tt.want, u.Details)
		})
	}
}

func TestClassifyTechStackAlternateField(t *testing.T) {
	c := New(nil)
	ev := models.StepEvent{
		Step: "techstack",
		TechStack: rawJSON(t, map[string]interface{}{
			"stack_model": "three-tier",
			"frontend":    []string{"React"},
			"backend":     []string{"Go"},
		}),
	}

	u := c.Classify("s1", ev)

	require.Equal(t, models.UpdateSuccess, u.Kind)
	require.NotNil(t, u.Structured)
	require.NotNil(t, u.Structured.TechStack)
	assert.Equal(t, "three-tier", u.Structured.TechStack.StackModel)
	assert.Equal(t, []string{"React"}, u.Structured.TechStack.Frontend)
}

func TestClassifyRequirementsNeedsBothLists(t *testing.T) {
	c := New(nil)

	// Only functional present: not valid structured data, falls back to text.
	partial := rawJSON(t, map[string]interface{}{
		"functional": []map[string]string{{"title": "Login"}},
	})
	u := c.Classify("s1", models.StepEvent{Step: "requirements", Output: partial})
	assert.Equal(t, models.UpdateSuccess, u.Kind)
	assert.Nil(t, u.Structured)

	full := rawJSON(t, map[string]interface{}{
		"functional":     []map[string]string{{"title": "Login"}},
		"non_functional": []map[string]string{{"title": "Uptime"}},
	})
	u = c.Classify("s1", models.StepEvent{Step: "requirements", Output: full})
	require.Equal(t, models.UpdateSuccess, u.Kind)
	require.NotNil(t, u.Structured)
	require.NotNil(t, u.Structured.Requirements)
	assert.Len(t, u.Structured.Requirements.Functional, 1)
	assert.Len(t, u.Structured.Requirements.NonFunctional, 1)
}

func TestClassifyEffortEstimation(t *testing.T) {
	c := New(nil)
	ev := models.StepEvent{Step: "effort_estimation", Output: rawJSON(t, map[string]interface{}{
		"min_sprints": 4,
		"max_sprints": 6.5,
		"confidence":  "medium",
	})}

	u := c.Classify("s1", ev)

	require.Equal(t, models.UpdateSuccess, u.Kind)
	require.NotNil(t, u.Structured)
	require.NotNil(t, u.Structured.Effort)
	assert.Equal(t, 4.0, u.Structured.Effort.MinSprints)
	assert.Equal(t, 6.5, u.Structured.Effort.MaxSprints)
}

func TestClassifyDevelopmentPlanDeliveryContext(t *testing.T) {
	c := New(nil)
	ev := models.StepEvent{
		Step: "development_plan",
		DeliveryContext: rawJSON(t, map[string]interface{}{
			"phases":        []map[string]string{{"name": "Discovery"}},
			"cross_cutting": []string{"QA"},
		}),
	}

	u := c.Classify("s1", ev)

	require.Equal(t, models.UpdateSuccess, u.Kind)
	require.NotNil(t, u.Structured)
	require.NotNil(t, u.Structured.Plan)
	require.Len(t, u.Structured.Plan.Phases, 1)
	assert.Equal(t, "Discovery", u.Structured.Plan.Phases[0].Name)
}

func TestDecodeObjectArrayWrapped(t *testing.T) {
	raw := json.RawMessage(`[{"platforms":["Web"]}]`)
	obj, ok := decodeObject(raw)
	assert.True(t, ok)
	assert.Contains(t, obj, "platforms")

	_, ok = decodeObject(json.RawMessage(`[]`))
	assert.False(t, ok)

	_, ok = decodeObject(nil)
	assert.False(t, ok)
}
