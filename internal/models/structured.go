package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// StructuredData is the per-step structured payload union. Exactly one field
// matching Kind is non-nil.
type StructuredData struct {
	Kind         StepID               `json:"kind"`
	Platforms    *PlatformAnalysis    `json:"platforms,omitempty"`
	Requirements *RequirementAnalysis `json:"requirements,omitempty"`
	TechStack    *TechStackDescriptor `json:"techStack,omitempty"`
	Team         *TeamComposition     `json:"teamComposition,omitempty"`
	Effort       *EffortEstimate      `json:"effortEstimate,omitempty"`
	Plan         *DevelopmentPlan     `json:"developmentPlan,omitempty"`
}

// PlatformAnalysis is the structured payload of the platforms step.
type PlatformAnalysis struct {
	Platforms    []Platform    `json:"platforms"`
	Rationale    string        `json:"rationale,omitempty"`
	Traceability *Traceability `json:"traceability,omitempty"`
	Highlights   []Highlight   `json:"highlight_data,omitempty"`
}

// Platform is a single recommended platform. The backend sends either a bare
// string or an object, depending on version.
type Platform struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// UnmarshalJSON accepts both "web" and {"name":"web","reason":"..."} forms.
func (p *Platform) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Name = s
		return nil
	}
	var obj struct {
		Name      string `json:"name"`
		Platform  string `json:"platform"`
		Reason    string `json:"reason"`
		Rationale string `json:"rationale"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Name = obj.Name
	if p.Name == "" {
		p.Name = obj.Platform
	}
	p.Reason = obj.Reason
	if p.Reason == "" {
		p.Reason = obj.Rationale
	}
	return nil
}

// Traceability links platform recommendations back to source-document
// citations.
type Traceability struct {
	CitedReferences []int `json:"cited_references"`
	PagesAffected   []int `json:"pages_affected"`
}

// Highlight is one citation region in the source document.
type Highlight struct {
	Reference int    `json:"reference"`
	Page      int    `json:"page"`
	Text      string `json:"text,omitempty"`
}

// RequirementAnalysis is the structured payload of the requirements step.
type RequirementAnalysis struct {
	Functional    []Requirement `json:"functional"`
	NonFunctional []Requirement `json:"non_functional"`
}

// Requirement is a single extracted requirement. Accepts bare strings and
// {title, description} objects.
type Requirement struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (r *Requirement) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Title = s
		return nil
	}
	var obj struct {
		Title       string `json:"title"`
		Name        string `json:"name"`
		Requirement string `json:"requirement"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.Title = obj.Title
	if r.Title == "" {
		r.Title = obj.Name
	}
	if r.Title == "" {
		r.Title = obj.Requirement
	}
	r.Description = obj.Description
	return nil
}

// Label renders a requirement as one line of text.
func (r Requirement) Label() string {
	if r.Description == "" {
		return r.Title
	}
	if r.Title == "" {
		return r.Description
	}
	return r.Title + ": " + r.Description
}

// TechStackDescriptor is the structured payload of the techstack step.
type TechStackDescriptor struct {
	StackModel     string   `json:"stack_model"`
	Frontend       []string `json:"frontend,omitempty"`
	Backend        []string `json:"backend,omitempty"`
	Database       []string `json:"database,omitempty"`
	Infrastructure []string `json:"infrastructure,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// TeamComposition is the structured payload of the team composition step.
type TeamComposition struct {
	Roles []TeamRole `json:"roles"`
}

// TeamRole is one role in the proposed team.
type TeamRole struct {
	Role          string  `json:"role"`
	Count         float64 `json:"count,omitempty"`
	Justification string  `json:"justification,omitempty"`
}

func (t *TeamRole) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Role = s
		return nil
	}
	var obj struct {
		Role          string  `json:"role"`
		Title         string  `json:"title"`
		Name          string  `json:"name"`
		Count         float64 `json:"count"`
		Justification string  `json:"justification"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Role = obj.Role
	if t.Role == "" {
		t.Role = obj.Title
	}
	if t.Role == "" {
		t.Role = obj.Name
	}
	t.Count = obj.Count
	t.Justification = obj.Justification
	return nil
}

// EffortEstimate is the structured payload of the effort estimation step.
type EffortEstimate struct {
	MinSprints        float64  `json:"min_sprints"`
	MaxSprints        float64  `json:"max_sprints"`
	SprintLengthWeeks float64  `json:"sprint_length_weeks,omitempty"`
	Confidence        string   `json:"confidence,omitempty"`
	Assumptions       []string `json:"assumptions,omitempty"`
}

// DevelopmentPlan is the structured payload of the development plan step.
type DevelopmentPlan struct {
	Phases       []PlanPhase `json:"phases"`
	CrossCutting []string    `json:"cross_cutting"`
}

// PlanPhase is one phase of the proposed development plan.
type PlanPhase struct {
	Name         string   `json:"name"`
	Duration     string   `json:"duration,omitempty"`
	Description  string   `json:"description,omitempty"`
	Deliverables []string `json:"deliverables,omitempty"`
}

func (p *PlanPhase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		p.Name = s
		return nil
	}
	type alias PlanPhase
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = PlanPhase(obj)
	if p.Name == "" {
		var aux struct {
			Phase string `json:"phase"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(data, &aux); err == nil {
			p.Name = aux.Phase
			if p.Name == "" {
				p.Name = aux.Title
			}
		}
	}
	return nil
}

// SynthesizeTraceability derives citation metadata from a highlight list:
// sorted unique reference numbers and sorted unique page numbers. Returns nil
// for an empty list.
func SynthesizeTraceability(highlights []Highlight) *Traceability {
	if len(highlights) == 0 {
		return nil
	}
	refs := map[int]bool{}
	pages := map[int]bool{}
	for _, h := range highlights {
		refs[h.Reference] = true
		pages[h.Page] = true
	}
	return &Traceability{
		CitedReferences: sortedKeys(refs),
		PagesAffected:   sortedKeys(pages),
	}
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}

// JoinNonEmpty joins non-empty parts with sep. Shared by summary renderers.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
