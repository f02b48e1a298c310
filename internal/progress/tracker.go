// Package progress owns the ordered list of analysis steps and applies
// normalized updates to it. The tracker is the single source of truth for
// step state: all mutation goes through it, and readers only ever see
// copy-on-write snapshots.
package progress

import (
	"sync"

	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/models"
)

// preparingDetails is shown while the first step runs, before any event has
// arrived for it.
const preparingDetails = "Preparing document for analysis..."

// retryingDetails is shown while a failed step is being re-run.
const retryingDetails = "Retrying..."

// Snapshot is an immutable view of the tracker published to the presentation
// layer. Steps is a fresh copy on every mutation; rendering never tears.
type Snapshot struct {
	Steps         []models.Step
	Selected      models.StepID
	DetailVisible bool
	Processing    bool
	Finished      bool
	FatalMessage  string
}

// Tracker is the step-progress state machine. All methods are safe for
// concurrent use.
type Tracker struct {
	mu       sync.Mutex
	template []models.Step
	steps    []models.Step
	session  string

	selected      models.StepID
	detailVisible bool
	processing    bool
	finished      bool
	fatal         string

	onChange func(Snapshot)
	log      *zap.Logger
}

// NewTracker creates a tracker seeded from the step catalog template. The
// template's steps define the fixed pipeline order for every run.
func NewTracker(template []models.Step, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		template: cloneSteps(template),
		log:      log.Named("progress"),
	}
	t.steps = freshSteps(t.template)
	return t
}

// OnChange registers a callback invoked with a new snapshot after every
// state mutation. Invoked synchronously under the event being applied, never
// concurrently with itself.
func (t *Tracker) OnChange(fn func(Snapshot)) {
	t.mu.Lock()
	t.onChange = fn
	t.mu.Unlock()
}

// BindSession sets the session all subsequent updates are fenced against.
// Updates tagged with any other session are discarded unprocessed.
func (t *Tracker) BindSession(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.session = sessionID
}

// Reset replaces the step list with a fresh copy of the initial template and
// clears selection, detail visibility and the processing flag.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.steps = freshSteps(t.template)
	t.selected = ""
	t.detailVisible = false
	t.processing = false
	t.finished = false
	t.fatal = ""
	t.publishLocked()
}

// StartPreparation moves the first step to in_progress with placeholder
// details and arms the processing flag. Called once analysis is triggered.
func (t *Tracker) StartPreparation() {
	t.mu.Lock()
	defer t.mu.Unlock()

	steps := cloneSteps(t.steps)
	if steps[0].Status == models.StepStatusPending {
		steps[0].Status = models.StepStatusInProgress
		steps[0].Details = preparingDetails
	}
	t.steps = steps
	t.processing = true
	t.finished = false
	t.publishLocked()
}

// Apply applies one normalized update. Returns true when state changed.
//
// Fencing: updates tagged with a session other than the bound one are
// dropped. Monotonicity: a step that reached done never moves backward, and
// duplicate or reordered success events are ignored.
func (t *Tracker) Apply(u models.StepUpdate) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if u.SessionID != t.session {
		t.log.Debug("dropping update for stale session",
			zap.String("update_session", u.SessionID),
			zap.String("active_session", t.session))
		return false
	}
	if t.fatal != "" {
		// Session already dead; nothing may mutate step state anymore.
		return false
	}

	switch u.Kind {
	case models.UpdateFatal:
		t.fatal = u.FatalMessage
		t.processing = false
		t.publishLocked()
		return true
	case models.UpdateSuccess:
		return t.applySuccessLocked(u)
	case models.UpdateStepError:
		return t.applyErrorLocked(u)
	}
	return false
}

func (t *Tracker) applySuccessLocked(u models.StepUpdate) bool {
	idx := t.indexOf(u.StepID)
	if idx < 0 {
		return false
	}
	current := t.steps[idx]
	// Success only applies to pending or in_progress steps; anything else is
	// a duplicate or a replay and is ignored.
	if current.Status != models.StepStatusPending && current.Status != models.StepStatusInProgress {
		t.log.Debug("duplicate success suppressed", zap.String("step", string(u.StepID)))
		return false
	}

	steps := cloneSteps(t.steps)
	steps[idx].Status = models.StepStatusDone
	steps[idx].Details = u.Details
	steps[idx].Structured = u.Structured
	steps[idx].Failure = nil

	if idx == len(steps)-1 {
		t.finished = true
		t.processing = false
	} else if steps[idx+1].Status == models.StepStatusPending {
		// Auto-advance the next step. Selection is deliberately untouched:
		// the engine must not fight the user's navigation.
		steps[idx+1].Status = models.StepStatusInProgress
	}

	t.steps = steps
	t.publishLocked()
	return true
}

func (t *Tracker) applyErrorLocked(u models.StepUpdate) bool {
	idx := t.indexOf(u.StepID)
	if idx < 0 {
		return false
	}
	current := t.steps[idx]
	if current.Status == models.StepStatusDone {
		// A finished step cannot fail retroactively.
		return false
	}

	steps := cloneSteps(t.steps)
	steps[idx].Status = models.StepStatusError
	steps[idx].Failure = u.Failure
	if u.Failure != nil {
		steps[idx].Details = u.Failure.Message
	}
	// No auto-advance past an error; the pipeline waits for a retry.
	t.steps = steps
	t.processing = false
	t.publishLocked()
	return true
}

// Retry moves an errored step back to in_progress with a retrying
// placeholder and re-arms the processing flag. The actual backend re-trigger
// is the caller's responsibility.
func (t *Tracker) Retry(stepID models.StepID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.indexOf(stepID)
	if idx < 0 || t.steps[idx].Status != models.StepStatusError {
		return false
	}
	steps := cloneSteps(t.steps)
	steps[idx].Status = models.StepStatusInProgress
	steps[idx].Details = retryingDetails
	steps[idx].Failure = nil
	t.steps = steps
	t.processing = true
	t.publishLocked()
	return true
}

// Select focuses a step for detail display. Pure UI state, no lifecycle
// effect.
func (t *Tracker) Select(stepID models.StepID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.indexOf(stepID) < 0 {
		return
	}
	t.selected = stepID
	t.publishLocked()
}

// ToggleDetailVisibility flips the detail pane.
func (t *Tracker) ToggleDetailVisibility() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.detailVisible = !t.detailVisible
	t.publishLocked()
}

// Snapshot returns the current immutable view.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// IsComplete reports whether the final step finished successfully.
func (t *Tracker) IsComplete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.steps[len(t.steps)-1].Status == models.StepStatusDone
}

// Processing reports whether an analysis run is active.
func (t *Tracker) Processing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.processing
}

// FatalMessage returns the session-ending error, if any.
func (t *Tracker) FatalMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fatal
}

// Step returns a copy of one step by id.
func (t *Tracker) Step(stepID models.StepID) (models.Step, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.indexOf(stepID)
	if idx < 0 {
		return models.Step{}, false
	}
	return t.steps[idx].Clone(), true
}

func (t *Tracker) indexOf(stepID models.StepID) int {
	for i, s := range t.steps {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}

func (t *Tracker) snapshotLocked() Snapshot {
	return Snapshot{
		Steps:         cloneSteps(t.steps),
		Selected:      t.selected,
		DetailVisible: t.detailVisible,
		Processing:    t.processing,
		Finished:      t.finished,
		FatalMessage:  t.fatal,
	}
}

func (t *Tracker) publishLocked() {
	if t.onChange != nil {
		t.onChange(t.snapshotLocked())
	}
}

func cloneSteps(steps []models.Step) []models.Step {
	out := make([]models.Step, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}
	return out
}

// freshSteps resets a template copy to the initial pending state.
func freshSteps(template []models.Step) []models.Step {
	out := cloneSteps(template)
	for i := range out {
		out[i].Status = models.StepStatusPending
		out[i].Details = ""
		out[i].Structured = nil
		out[i].Failure = nil
	}
	return out
}
