// journal.go - Append-only raw-event journal, one file per session
package journal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/models"
)

// Entry is one journaled stream event, recorded before classification so a
// session can be replayed against the classifier after the fact.
type Entry struct {
	ReceivedAt time.Time        `msgpack:"received_at"`
	SessionID  string           `msgpack:"session_id"`
	Event      models.StepEvent `msgpack:"event"`
}

// Writer appends entries for a single session to one journal file.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	enc  *msgpack.Encoder
	log  *zap.Logger
	path string
}

// Open creates (or truncates) the journal file for sessionID under dir.
func Open(dir, sessionID string, log *zap.Logger) (*Writer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(dir, sessionID+".journal")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create journal file: %w", err)
	}
	return &Writer{f: f, enc: msgpack.NewEncoder(f), log: log, path: path}, nil
}

// Path returns the journal file location.
func (w *Writer) Path() string { return w.path }

// Append records one event. Journal failures are logged, never fatal; losing
// the journal must not interrupt the live run.
func (w *Writer) Append(sessionID string, ev models.StepEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return
	}
	entry := Entry{ReceivedAt: time.Now().UTC(), SessionID: sessionID, Event: ev}
	if err := w.enc.Encode(&entry); err != nil {
		w.log.Warn("journal append failed", zap.String("path", w.path), zap.Error(err))
	}
}

// Close flushes and closes the journal file. Idempotent.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// ReadAll decodes every entry from a journal file, in write order.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	var entries []Entry
	for {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return entries, fmt.Errorf("decode journal entry: %w", err)
		}
		entries = append(entries, e)
	}
}
