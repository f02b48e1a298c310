package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformUnmarshalVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Platform
	}{
		{"bare string", `"Web"`, Platform{Name: "Web"}},
		{"name and reason", `{"name":"Mobile","reason":"field use"}`, Platform{Name: "Mobile", Reason: "field use"}},
		{"platform alias", `{"platform":"Desktop"}`, Platform{Name: "Desktop"}},
		{"rationale alias", `{"name":"Web","rationale":"browser users"}`, Platform{Name: "Web", Reason: "browser users"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Platform
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &p))
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestRequirementUnmarshalVariants(t *testing.T) {
	var r Requirement
	require.NoError(t, json.Unmarshal([]byte(`"User login"`), &r))
	assert.Equal(t, "User login", r.Title)

	require.NoError(t, json.Unmarshal([]byte(`{"requirement":"2FA","description":"TOTP"}`), &r))
	assert.Equal(t, "2FA", r.Title)
	assert.Equal(t, "2FA: TOTP", r.Label())
}

func TestTeamRoleUnmarshalVariants(t *testing.T) {
	var role TeamRole
	require.NoError(t, json.Unmarshal([]byte(`{"title":"QA Engineer","count":1.5}`), &role))
	assert.Equal(t, "QA Engineer", role.Role)
	assert.Equal(t, 1.5, role.Count)

	require.NoError(t, json.Unmarshal([]byte(`"Tech Lead"`), &role))
	assert.Equal(t, "Tech Lead", role.Role)
}

func TestPlanPhaseUnmarshalVariants(t *testing.T) {
	var p PlanPhase
	require.NoError(t, json.Unmarshal([]byte(`{"phase":"Discovery","duration":"2 weeks"}`), &p))
	assert.Equal(t, "Discovery", p.Name)
	assert.Equal(t, "2 weeks", p.Duration)
}

func TestSynthesizeTraceability(t *testing.T) {
	got := SynthesizeTraceability([]Highlight{
		{Reference: 3, Page: 7},
		{Reference: 1, Page: 2},
		{Reference: 3, Page: 2},
	})
	require.NotNil(t, got)
	assert.Equal(t, []int{1, 3}, got.CitedReferences)
	assert.Equal(t, []int{2, 7}, got.PagesAffected)

	assert.Nil(t, SynthesizeTraceability(nil))
}

func TestStepClone(t *testing.T) {
	orig := Step{
		ID:      StepTechStack,
		Status:  StepStatusError,
		Failure: &StepFailure{Message: "boom"},
	}
	c := orig.Clone()
	c.Failure.Message = "changed"
	assert.Equal(t, "boom", orig.Failure.Message)
}

func TestStepEventOutputText(t *testing.T) {
	assert.Equal(t, "", StepEvent{}.OutputText())
	assert.Equal(t, "plain", StepEvent{Output: json.RawMessage(`"plain"`)}.OutputText())
	assert.Equal(t, `{"a":1}`, StepEvent{Output: json.RawMessage(`{"a":1}`)}.OutputText())
}
