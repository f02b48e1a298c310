// Package classify turns raw analysis-stream events into normalized step
// updates. The backend emits loosely structured payloads; everything here
// degrades gracefully instead of failing: a malformed payload becomes an
// opaque-text update, an unknown step becomes a no-op.
package classify

import (
	"strings"

	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/models"
)

// errorStepSuffix marks per-step error events, e.g. "techstack_error".
const errorStepSuffix = "_error"

// reportBanner is a redundant heading some backend versions prepend to the
// final report. It duplicates the exporter's own title and is stripped.
const reportBanner = "# RFP Analysis Report"

// Classifier normalizes raw step events. Safe for use from a single consumer
// goroutine; it holds no mutable state besides the logger.
type Classifier struct {
	log *zap.Logger
}

// New creates a classifier. A nil logger disables logging.
func New(log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{log: log.Named("classify")}
}

// Classify interprets one raw event received under sessionID and produces
// the normalized update. It never panics and never returns parse errors;
// failures surface as UpdateIgnored or as generic-text success updates.
func (c *Classifier) Classify(sessionID string, ev models.StepEvent) models.StepUpdate {
	// Fatal sentinel ends the whole session; no per-step processing.
	if ev.Step == models.FatalErrorStep {
		return models.StepUpdate{
			SessionID:    sessionID,
			Kind:         models.UpdateFatal,
			FatalMessage: fatalMessage(ev),
		}
	}

	// Per-step error events: "<step>_error" plus an error object.
	if base, ok := strings.CutSuffix(ev.Step, errorStepSuffix); ok && ev.Error != nil {
		stepID := models.StepID(base)
		if !models.KnownStep(stepID) {
			c.log.Warn("error event for unknown step", zap.String("step", ev.Step))
			return models.StepUpdate{SessionID: sessionID, Kind: models.UpdateIgnored}
		}
		return models.StepUpdate{
			SessionID: sessionID,
			StepID:    stepID,
			Kind:      models.UpdateStepError,
			Failure: &models.StepFailure{
				Message:         ev.Error.Message,
				Details:         ev.Error.Details,
				Retryable:       ev.Error.Retryable,
				SuggestedAction: ev.Error.SuggestedAction,
			},
		}
	}

	stepID := models.StepID(ev.Step)
	if !models.KnownStep(stepID) {
		c.log.Warn("event for unknown step discarded", zap.String("step", ev.Step))
		return models.StepUpdate{SessionID: sessionID, Kind: models.UpdateIgnored}
	}

	switch stepID {
	case models.StepFinalReport:
		// The final report is prose, never JSON.
		report := stripReportBanner(ev.OutputText())
		if strings.TrimSpace(report) == "" {
			return models.StepUpdate{SessionID: sessionID, StepID: stepID, Kind: models.UpdateIgnored}
		}
		return models.StepUpdate{
			SessionID: sessionID,
			StepID:    stepID,
			Kind:      models.UpdateSuccess,
			Details:   report,
		}
	case models.StepDocumentPreparation:
		return c.genericUpdate(sessionID, stepID, ev)
	}

	if structured, ok := parseStructured(stepID, ev); ok {
		return models.StepUpdate{
			SessionID:  sessionID,
			StepID:     stepID,
			Kind:       models.UpdateSuccess,
			Details:    Summarize(structured),
			Structured: structured,
		}
	}

	c.log.Debug("structured parse failed, falling back to text",
		zap.String("step", ev.Step))
	return c.genericUpdate(sessionID, stepID, ev)
}

// genericUpdate treats the payload as opaque text. An empty payload produces
// no state change.
func (c *Classifier) genericUpdate(sessionID string, stepID models.StepID, ev models.StepEvent) models.StepUpdate {
	text := ev.OutputText()
	if strings.TrimSpace(text) == "" {
		return models.StepUpdate{SessionID: sessionID, StepID: stepID, Kind: models.UpdateIgnored}
	}
	return models.StepUpdate{
		SessionID: sessionID,
		StepID:    stepID,
		Kind:      models.UpdateSuccess,
		Details:   text,
	}
}

func fatalMessage(ev models.StepEvent) string {
	if ev.Error != nil && ev.Error.Message != "" {
		return ev.Error.Message
	}
	if text := ev.OutputText(); strings.TrimSpace(text) != "" {
		return text
	}
	return "analysis failed"
}

// stripReportBanner removes the redundant banner heading when it is the
// first non-empty line of the report.
func stripReportBanner(report string) string {
	trimmed := strings.TrimLeft(report, "\n \t")
	if !strings.HasPrefix(trimmed, reportBanner) {
		return report
	}
	rest := trimmed[len(reportBanner):]
	if rest != "" && rest[0] != '\n' && rest[0] != '\r' {
		// Banner-like heading with extra text is a real heading, keep it.
		return report
	}
	return strings.TrimLeft(rest, "\r\n")
}
