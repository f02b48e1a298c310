// summary.go - Deterministic human-readable renderings of structured payloads
package classify

import (
	"fmt"
	"strings"

	"github.com/rfp-insight/console/internal/models"
)

// Summarize renders a structured payload as a markdown fragment used as the
// step's details text. Output is deterministic for a given payload.
func Summarize(data *models.StructuredData) string {
	switch data.Kind {
	case models.StepPlatforms:
		return summarizePlatforms(data.Platforms)
	case models.StepRequirements:
		return summarizeRequirements(data.Requirements)
	case models.StepTechStack:
		return summarizeTechStack(data.TechStack)
	case models.StepTeamComposition:
		return summarizeTeam(data.Team)
	case models.StepEffortEstimation:
		return summarizeEffort(data.Effort)
	case models.StepDevelopmentPlan:
		return summarizePlan(data.Plan)
	}
	return ""
}

func summarizePlatforms(p *models.PlatformAnalysis) string {
	var b strings.Builder
	b.WriteString("### Recommended Platforms\n")
	for _, platform := range p.Platforms {
		if platform.Reason != "" {
			fmt.Fprintf(&b, "- **%s** — %s\n", platform.Name, platform.Reason)
		} else {
			fmt.Fprintf(&b, "- **%s**\n", platform.Name)
		}
	}
	if p.Rationale != "" {
		fmt.Fprintf(&b, "\n**Rationale:** %s\n", p.Rationale)
	}
	if tr := p.Traceability; tr != nil && len(tr.CitedReferences) > 0 {
		fmt.Fprintf(&b, "\n*Based on %d cited reference(s) across %d page(s).*\n",
			len(tr.CitedReferences), len(tr.PagesAffected))
	}
	return strings.TrimRight(b.String(), "\n")
}

func summarizeRequirements(r *models.RequirementAnalysis) string {
	var b strings.Builder
	b.WriteString("### Functional Requirements\n")
	writeRequirementList(&b, r.Functional)
	b.WriteString("\n### Non-Functional Requirements\n")
	writeRequirementList(&b, r.NonFunctional)
	return strings.TrimRight(b.String(), "\n")
}

func writeRequirementList(b *strings.Builder, reqs []models.Requirement) {
	if len(reqs) == 0 {
		b.WriteString("_None identified._\n")
		return
	}
	for _, req := range reqs {
		fmt.Fprintf(b, "- %s\n", req.Label())
	}
}

func summarizeTechStack(t *models.TechStackDescriptor) string {
	var b strings.Builder
	b.WriteString("### Proposed Tech Stack\n")
	fmt.Fprintf(&b, "**Stack model:** %s\n", t.StackModel)
	writeStackSection(&b, "Frontend", t.Frontend)
	writeStackSection(&b, "Backend", t.Backend)
	writeStackSection(&b, "Database", t.Database)
	writeStackSection(&b, "Infrastructure", t.Infrastructure)
	if t.Notes != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Notes)
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeStackSection(b *strings.Builder, name string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- **%s:** %s\n", name, strings.Join(items, ", "))
}

func summarizeTeam(t *models.TeamComposition) string {
	var b strings.Builder
	b.WriteString("### Team Composition\n")
	for _, role := range t.Roles {
		line := role.Role
		if role.Count > 0 {
			line = fmt.Sprintf("%s × %s", line, formatCount(role.Count))
		}
		if role.Justification != "" {
			line += " — " + role.Justification
		}
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCount(c float64) string {
	if c == float64(int(c)) {
		return fmt.Sprintf("%d", int(c))
	}
	return fmt.Sprintf("%.1f", c)
}

func summarizeEffort(e *models.EffortEstimate) string {
	var b strings.Builder
	b.WriteString("### Effort Estimate\n")
	fmt.Fprintf(&b, "**Sprints:** %s–%s", formatCount(e.MinSprints), formatCount(e.MaxSprints))
	if e.SprintLengthWeeks > 0 {
		fmt.Fprintf(&b, " (%s-week sprints)", formatCount(e.SprintLengthWeeks))
	}
	b.WriteString("\n")
	if e.Confidence != "" {
		fmt.Fprintf(&b, "**Confidence:** %s\n", e.Confidence)
	}
	if len(e.Assumptions) > 0 {
		b.WriteString("\n**Assumptions:**\n")
		for _, a := range e.Assumptions {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func summarizePlan(p *models.DevelopmentPlan) string {
	var b strings.Builder
	b.WriteString("### Development Plan\n")
	for i, phase := range p.Phases {
		header := fmt.Sprintf("**Phase %d: %s**", i+1, phase.Name)
		if phase.Duration != "" {
			header += fmt.Sprintf(" (%s)", phase.Duration)
		}
		b.WriteString(header + "\n")
		if phase.Description != "" {
			fmt.Fprintf(&b, "%s\n", phase.Description)
		}
		for _, d := range phase.Deliverables {
			fmt.Fprintf(&b, "- %s\n", d)
		}
		b.WriteString("\n")
	}
	if len(p.CrossCutting) > 0 {
		b.WriteString("**Cross-cutting concerns:**\n")
		for _, c := range p.CrossCutting {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
