// structured.go - Per-step structured payload extraction and validation
package classify

import (
	"encoding/json"

	"github.com/rfp-insight/console/internal/models"
)

// parseStructured attempts step-specific structured parsing of one event.
// Returns (nil, false) when the payload does not validate as that step's
// shape; the caller falls back to generic text handling.
func parseStructured(stepID models.StepID, ev models.StepEvent) (*models.StructuredData, bool) {
	fields, ok := decodeStructured(payloadSource(stepID, ev))
	if !ok {
		return nil, false
	}

	switch stepID {
	case models.StepPlatforms:
		return parsePlatforms(fields)
	case models.StepRequirements:
		return parseRequirements(fields)
	case models.StepTechStack:
		return parseTechStack(fields)
	case models.StepTeamComposition:
		return parseTeamComposition(fields)
	case models.StepEffortEstimation:
		return parseEffortEstimation(fields)
	case models.StepDevelopmentPlan:
		return parseDevelopmentPlan(fields)
	}
	return nil, false
}

// payloadSource picks the field carrying the structured payload. Older
// backends used dedicated top-level fields for some steps.
func payloadSource(stepID models.StepID, ev models.StepEvent) json.RawMessage {
	switch stepID {
	case models.StepTechStack:
		if len(ev.TechStack) > 0 {
			return ev.TechStack
		}
	case models.StepDevelopmentPlan:
		if len(ev.DeliveryContext) > 0 {
			return ev.DeliveryContext
		}
	}
	return ev.Output
}

// decodeStructured unwraps the backend's known payload encodings and returns
// the object's fields:
//
//	1. the raw value may be an object, or a JSON-encoded string of one
//	2. an array payload means "take the first element"
//	3. an object whose own "output" field is a string holds one more level
//	   of JSON encoding (a known backend quirk, tolerated here)
func decodeStructured(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	obj, ok := decodeObject(raw)
	if !ok {
		return nil, false
	}

	// Nested string-typed "output" carries the real payload.
	if inner, exists := obj["output"]; exists {
		var s string
		if err := json.Unmarshal(inner, &s); err == nil {
			if nested, ok := decodeObject(json.RawMessage(s)); ok {
				return nested, true
			}
			return nil, false
		}
	}
	return obj, true
}

// decodeObject resolves string-encoding and array-wrapping down to a single
// JSON object.
func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	// Unquote a JSON-encoded string payload first.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) == 0 {
			return nil, false
		}
		raw = arr[0]
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func parsePlatforms(fields map[string]json.RawMessage) (*models.StructuredData, bool) {
	raw, exists := fields["platforms"]
	if !exists {
		return nil, false
	}
	var platforms []models.Platform
	if err := json.Unmarshal(raw, &platforms); err != nil || len(platforms) == 0 {
		return nil, false
	}

	analysis := &models.PlatformAnalysis{Platforms: platforms}
	if raw, exists := fields["rationale"]; exists {
		json.Unmarshal(raw, &analysis.Rationale)
	}
	if raw, exists := fields["traceability"]; exists {
		var tr models.Traceability
		if err := json.Unmarshal(raw, &tr); err == nil {
			analysis.Traceability = &tr
		}
	}
	if raw, exists := fields["highlight_data"]; exists {
		json.Unmarshal(raw, &analysis.Highlights)
	}
	// No traceability object but highlight regions present: synthesize the
	// citation metadata from them. Absence of both is not an error.
	if analysis.Traceability == nil {
		analysis.Traceability = models.SynthesizeTraceability(analysis.Highlights)
	}

	return &models.StructuredData{Kind: models.StepPlatforms, Platforms: analysis}, true
}

func parseRequirements(fields map[string]json.RawMessage) (*models.StructuredData, bool) {
	rawF, haveF := fields["functional"]
	rawN, haveN := fields["non_functional"]
	if !haveF || !haveN {
		return nil, false
	}
	var analysis models.RequirementAnalysis
	if err := json.Unmarshal(rawF, &analysis.Functional); err != nil {
		return nil, false
	}
	if err := json.Unmarshal(rawN, &analysis.NonFunctional); err != nil {
		return nil, false
	}
	return &models.StructuredData{Kind: models.StepRequirements, Requirements: &analysis}, true
}

func parseTechStack(fields map[string]json.RawMessage) (*models.StructuredData, bool) {
	raw, exists := fields["stack_model"]
	if !exists {
		return nil, false
	}
	var stack models.TechStackDescriptor
	if err := json.Unmarshal(raw, &stack.StackModel); err != nil || stack.StackModel == "" {
		return nil, false
	}
	unmarshalField(fields, "frontend", &stack.Frontend)
	unmarshalField(fields, "backend", &stack.Backend)
	unmarshalField(fields, "database", &stack.Database)
	unmarshalField(fields, "infrastructure", &stack.Infrastructure)
	unmarshalField(fields, "notes", &stack.Notes)
	return &models.StructuredData{Kind: models.StepTechStack, TechStack: &stack}, true
}

func parseTeamComposition(fields map[string]json.RawMessage) (*models.StructuredData, bool) {
	raw, exists := fields["roles"]
	if !exists {
		return nil, false
	}
	var team models.TeamComposition
	if err := json.Unmarshal(raw, &team.Roles); err != nil || len(team.Roles) == 0 {
		return nil, false
	}
	return &models.StructuredData{Kind: models.StepTeamComposition, Team: &team}, true
}

func parseEffortEstimation(fields map[string]json.RawMessage) (*models.StructuredData, bool) {
	rawMin, haveMin := fields["min_sprints"]
	rawMax, haveMax := fields["max_sprints"]
	if !haveMin || !haveMax {
		return nil, false
	}
	var estimate models.EffortEstimate
	if err := json.Unmarshal(rawMin, &estimate.MinSprints); err != nil {
		return nil, false
	}
	if err := json.Unmarshal(rawMax, &estimate.MaxSprints); err != nil {
		return nil, false
	}
	unmarshalField(fields, "sprint_length_weeks", &estimate.SprintLengthWeeks)
	unmarshalField(fields, "confidence", &estimate.Confidence)
	unmarshalField(fields, "assumptions", &estimate.Assumptions)
	return &models.StructuredData{Kind: models.StepEffortEstimation, Effort: &estimate}, true
}

func parseDevelopmentPlan(fields map[string]json.RawMessage) (*models.StructuredData, bool) {
	rawPhases, havePhases := fields["phases"]
	rawCross, haveCross := fields["cross_cutting"]
	if !havePhases || !haveCross {
		return nil, false
	}
	var plan models.DevelopmentPlan
	if err := json.Unmarshal(rawPhases, &plan.Phases); err != nil || len(plan.Phases) == 0 {
		return nil, false
	}
	if err := json.Unmarshal(rawCross, &plan.CrossCutting); err != nil {
		return nil, false
	}
	return &models.StructuredData{Kind: models.StepDevelopmentPlan, Plan: &plan}, true
}

// unmarshalField decodes an optional field, ignoring absence and mismatched
// types.
func unmarshalField(fields map[string]json.RawMessage, key string, dst interface{}) {
	if raw, exists := fields[key]; exists {
		json.Unmarshal(raw, dst)
	}
}
