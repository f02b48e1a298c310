// connstate.go - Explicit connection-state machine for the event stream
package stream

import "github.com/rfp-insight/console/internal/models"

// connTracker derives the user-visible connection state from transport
// signals. Transitions: dialing, ack, heartbeat, failure, close. The policy
// knob is maxFailures: with no prior successful ack, that many consecutive
// failures flip the reported state to disconnected while the transport keeps
// retrying quietly.
type connTracker struct {
	maxFailures int
	failures    int
	everAcked   bool
	current     models.ConnectionState
	notify      func(models.ConnectionState)
}

func newConnTracker(maxFailures int, notify func(models.ConnectionState)) *connTracker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &connTracker{
		maxFailures: maxFailures,
		current:     models.ConnDisconnected,
		notify:      notify,
	}
}

// Dialing is called before each connection attempt.
func (t *connTracker) Dialing() {
	if !t.everAcked && t.failures >= t.maxFailures {
		// Budget exhausted without ever connecting: stop claiming imminent
		// recovery.
		t.set(models.ConnDisconnected)
		return
	}
	t.set(models.ConnConnecting)
}

// Acked is called on the server's connected acknowledgement.
func (t *connTracker) Acked() {
	t.failures = 0
	t.everAcked = true
	t.set(models.ConnConnected)
}

// Heartbeat confirms liveness of an established connection.
func (t *connTracker) Heartbeat() {
	if t.everAcked {
		t.set(models.ConnConnected)
	}
}

// Failed is called when a connection attempt or an established connection
// errors out.
func (t *connTracker) Failed() {
	t.failures++
	if !t.everAcked && t.failures >= t.maxFailures {
		t.set(models.ConnDisconnected)
		return
	}
	t.set(models.ConnConnecting)
}

// Closed is called on deliberate teardown.
func (t *connTracker) Closed() {
	t.set(models.ConnDisconnected)
}

func (t *connTracker) set(s models.ConnectionState) {
	if s == t.current {
		return
	}
	t.current = s
	if t.notify != nil {
		t.notify(s)
	}
}
