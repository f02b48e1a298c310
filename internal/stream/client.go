// client.go - SSE transport adapter for the analysis event stream
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/config"
	"github.com/rfp-insight/console/internal/models"
)

// errFatal terminates the reconnection loop permanently for a session.
var errFatal = errors.New("stream: fatal pipeline error")

// Callbacks receive decoded stream traffic. OnStep and OnFatalError are
// tagged with the session id the connection was opened under; consumers are
// expected to re-check it against their active session.
type Callbacks struct {
	OnStep            func(sessionID string, ev models.StepEvent)
	OnConnectionState func(state models.ConnectionState)
	OnHeartbeat       func(at time.Time)
	OnFatalError      func(sessionID string, ev models.StepEvent)
}

// Client maintains one live SSE connection to the analysis backend,
// reconnecting with exponential backoff until closed or a fatal pipeline
// error arrives.
type Client struct {
	baseURL string
	cfg     config.StreamConfig
	cb      Callbacks
	http    *http.Client
	log     *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewClient builds a stream client. The http.Client must not enforce an
// overall request timeout; the stream is long-lived.
func NewClient(cfg config.StreamConfig, cb Callbacks, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cfg:     cfg,
		cb:      cb,
		http:    httpClient,
		log:     log,
	}
}

// Open starts consuming events for sessionID. Any previous connection is torn
// down first, and its reader is fully drained before the new one starts, so
// stale events never outlive the session they belong to.
func (c *Client) Open(ctx context.Context, sessionID string) {
	c.Close()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.run(runCtx, sessionID, done)
}

// Close tears down the current connection, if any. Safe to call repeatedly.
func (c *Client) Close() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (c *Client) run(ctx context.Context, sessionID string, done chan struct{}) {
	defer close(done)

	tracker := newConnTracker(c.cfg.MaxConnectFailures, c.cb.OnConnectionState)
	defer tracker.Closed()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	if c.cfg.MaxBackoff > 0 {
		bo.MaxInterval = c.cfg.MaxBackoff
	}

	for {
		tracker.Dialing()
		err := c.consume(ctx, sessionID, tracker, bo.Reset)
		if errors.Is(err, errFatal) {
			c.log.Info("stream closed after fatal pipeline error",
				zap.String("session_id", sessionID))
			return
		}
		if ctx.Err() != nil {
			return
		}
		tracker.Failed()
		c.log.Warn("stream connection lost, retrying",
			zap.String("session_id", sessionID),
			zap.Error(err))

		select {
		case <-time.After(bo.NextBackOff()):
		case <-ctx.Done():
			return
		}
	}
}

// consume runs one connection attempt to completion. onAck resets the
// backoff schedule once the server acknowledges the subscription.
func (c *Client) consume(ctx context.Context, sessionID string, tracker *connTracker, onAck func()) error {
	endpoint := fmt.Sprintf("%s/events?sessionId=%s", c.baseURL, url.QueryEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	config.ApplyTunnelBypass(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("stream endpoint returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	// Final-report payloads can be large.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var eventName string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if err := c.dispatch(sessionID, eventName, strings.Join(data, "\n"), tracker, onAck); err != nil {
				return err
			}
			eventName, data = "", nil
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if after, ok := strings.CutPrefix(line, "event:"); ok {
			eventName = strings.TrimSpace(after)
			continue
		}
		if after, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(after, " "))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errors.New("stream ended")
}

func (c *Client) dispatch(sessionID, eventName, data string, tracker *connTracker, onAck func()) error {
	switch eventName {
	case "connected":
		tracker.Acked()
		onAck()
		return nil
	case "heartbeat":
		tracker.Heartbeat()
		if c.cb.OnHeartbeat != nil {
			c.cb.OnHeartbeat(time.Now())
		}
		return nil
	}
	if data == "" {
		return nil
	}

	var ev models.StepEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		c.log.Warn("discarding malformed stream event",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil
	}
	// First fence: the event itself may carry a session id. Events from a
	// different session are dropped before they reach any consumer.
	if ev.SessionID != "" && ev.SessionID != sessionID {
		c.log.Debug("discarding event for foreign session",
			zap.String("session_id", sessionID),
			zap.String("event_session_id", ev.SessionID))
		return nil
	}

	if ev.Step == models.FatalErrorStep {
		if c.cb.OnFatalError != nil {
			c.cb.OnFatalError(sessionID, ev)
		}
		return errFatal
	}
	if c.cb.OnStep != nil {
		c.cb.OnStep(sessionID, ev)
	}
	return nil
}
