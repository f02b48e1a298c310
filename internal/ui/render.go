// render.go - Terminal presentation of the analysis progress
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rfp-insight/console/internal/models"
	"github.com/rfp-insight/console/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	fileStyle  = lipgloss.NewStyle().Faint(true)

	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	doneStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Underline(true)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(76)

	connStyles = map[models.ConnectionState]lipgloss.Style{
		models.ConnConnected:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.ConnConnecting:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.ConnDisconnected: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}

	fatalStyle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("196")).
			Foreground(lipgloss.Color("196")).
			Padding(0, 1)
)

func glyph(status models.StepStatus) string {
	switch status {
	case models.StepStatusInProgress:
		return "◐"
	case models.StepStatusDone:
		return "●"
	case models.StepStatusError:
		return "✕"
	default:
		return "○"
	}
}

func styleFor(status models.StepStatus) lipgloss.Style {
	switch status {
	case models.StepStatusInProgress:
		return activeStyle
	case models.StepStatusDone:
		return doneStyle
	case models.StepStatusError:
		return errorStyle
	default:
		return pendingStyle
	}
}

// Render draws the full progress view for one snapshot.
func Render(snap progress.Snapshot, conn models.ConnectionState, fileName string) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("RFP Analysis"))
	if fileName != "" {
		b.WriteString("  ")
		b.WriteString(fileStyle.Render(fileName))
	}
	b.WriteString("  ")
	b.WriteString(connStyles[conn].Render("[" + string(conn) + "]"))
	b.WriteString("\n\n")

	if snap.FatalMessage != "" {
		b.WriteString(fatalStyle.Render("Analysis failed: " + snap.FatalMessage))
		b.WriteString("\n\n")
	}

	for _, step := range snap.Steps {
		st := styleFor(step.Status)
		line := fmt.Sprintf("%s %s", glyph(step.Status), step.Title)
		if step.ID == snap.Selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(st.Render(line))
		if step.Status == models.StepStatusError && step.Failure != nil {
			b.WriteString(errorStyle.Render("  (" + step.Failure.Message + ")"))
		}
		b.WriteString("\n")

		if snap.DetailVisible && step.ID == snap.Selected && strings.TrimSpace(step.Details) != "" {
			b.WriteString(detailStyle.Render(step.Details))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case snap.FatalMessage != "":
		b.WriteString(errorStyle.Render("Session ended."))
	case snap.Finished:
		b.WriteString(doneStyle.Render("Analysis complete."))
	case snap.Processing:
		b.WriteString(activeStyle.Render("Processing..."))
	}
	b.WriteString("\n")

	return b.String()
}

// RenderStepDetail draws one step's detail body on its own, used for
// non-interactive output once a step completes.
func RenderStepDetail(step models.Step) string {
	var b strings.Builder
	b.WriteString(styleFor(step.Status).Render(glyph(step.Status) + " " + step.Title))
	b.WriteString("\n")
	if step.Failure != nil {
		b.WriteString(errorStyle.Render(step.Failure.Message))
		if step.Failure.SuggestedAction != "" {
			b.WriteString("\n" + fileStyle.Render("Suggested: "+step.Failure.SuggestedAction))
		}
		b.WriteString("\n")
		return b.String()
	}
	if strings.TrimSpace(step.Details) != "" {
		b.WriteString(detailStyle.Render(step.Details))
		b.WriteString("\n")
	}
	return b.String()
}
