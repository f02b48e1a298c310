// orchestrator.go - Upload, session acquisition, and analysis triggering
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/config"
	"github.com/rfp-insight/console/internal/models"
)

// ProgressFunc reports upload progress as bytes sent out of total.
type ProgressFunc func(sent, total int64)

// StepResetter resets the step progress state before a restarted run.
type StepResetter interface {
	Reset()
}

// Orchestrator owns the upload lifecycle: validate, upload, session
// acquisition, analysis trigger. It is the sole owner of the current session
// id and of the stored upload response.
type Orchestrator struct {
	apiBase string
	http    *http.Client
	log     *zap.Logger

	mu              sync.Mutex
	fileName        string
	sessionID       string
	response        *models.UploadResponse
	analysisStarted bool
}

// New builds an orchestrator. The upload timeout from cfg bounds every
// request made here; a timed-out upload rolls back like any transport error.
func New(cfg config.APIConfig, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		apiBase: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.UploadTimeout},
		log:     log,
	}
}

// SessionID returns the current session id, or "" before a successful upload.
func (o *Orchestrator) SessionID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sessionID
}

// FileName returns the name of the uploaded file, or "".
func (o *Orchestrator) FileName() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.fileName
}

// Response returns a copy of the stored upload response, or nil.
func (o *Orchestrator) Response() *models.UploadResponse {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.response == nil {
		return nil
	}
	cp := *o.response
	return &cp
}

// AnalysisStarted reports whether a trigger request has succeeded for the
// current session.
func (o *Orchestrator) AnalysisStarted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.analysisStarted
}

// Reset discards all upload-side state, returning to the pre-upload screen.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rollbackLocked()
}

func (o *Orchestrator) rollbackLocked() {
	o.fileName = ""
	o.sessionID = ""
	o.response = nil
	o.analysisStarted = false
}

// Upload validates and uploads the file at path, reporting progress through
// progress (may be nil). A provisional session id is minted client-side and
// replaced by the server-issued one on success. Any failure, including an
// HTTP 200 whose body lacks an md5, rolls back to the pre-upload state.
func (o *Orchestrator) Upload(ctx context.Context, path string, progress ProgressFunc) (*models.UploadResponse, error) {
	name := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if err := ValidateFile(name, info.Size(), sniffContentType(f)); err != nil {
		return nil, err
	}

	provisional := uuid.NewString()

	o.mu.Lock()
	o.fileName = name
	o.sessionID = provisional
	o.mu.Unlock()

	resp, err := o.doUpload(ctx, f, name, provisional, progress)
	if err != nil {
		o.mu.Lock()
		o.rollbackLocked()
		o.mu.Unlock()
		o.log.Warn("upload failed, rolled back", zap.String("file", name), zap.Error(err))
		return nil, err
	}

	o.mu.Lock()
	o.sessionID = resp.SessionID
	if o.sessionID == "" {
		o.sessionID = provisional
	}
	o.response = resp
	o.mu.Unlock()

	o.log.Info("upload accepted",
		zap.String("file", name),
		zap.String("session_id", resp.SessionID),
		zap.String("md5", resp.MD5))
	return resp, nil
}

// sniffContentType reads the leading bytes and rewinds.
func sniffContentType(f *os.File) string {
	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	f.Seek(0, io.SeekStart)
	return http.DetectContentType(buf[:n])
}

func (o *Orchestrator) doUpload(ctx context.Context, f io.Reader, name, sessionID string, progress ProgressFunc) (*models.UploadResponse, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := w.WriteField("sessionId", sessionID); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	total := int64(body.Len())
	reader := &countingReader{r: &body, total: total, fn: progress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiBase+"/rfp-upload", reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.ContentLength = total
	config.ApplyTunnelBypass(req)

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read upload response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upload returned status %d", resp.StatusCode)
	}
	return decodeUploadResponse(raw)
}

// decodeUploadResponse accepts either a bare object or a single-element array
// and requires md5 to be present before trusting anything else in the body.
func decodeUploadResponse(raw []byte) (*models.UploadResponse, error) {
	trimmed := bytes.TrimSpace(raw)
	var rec models.UploadResponse
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []models.UploadResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("malformed upload response: %w", err)
		}
		if len(list) == 0 {
			return nil, errors.New("empty upload response array")
		}
		rec = list[0]
	} else if err := json.Unmarshal(trimmed, &rec); err != nil {
		return nil, fmt.Errorf("malformed upload response: %w", err)
	}
	if rec.MD5 == "" {
		return nil, errors.New("upload response missing md5")
	}
	return &rec, nil
}

// TriggerAnalysis starts the pipeline with the stored upload token. On any
// failure the analysis-started flag is rolled back so the user can retry.
func (o *Orchestrator) TriggerAnalysis(ctx context.Context) error {
	o.mu.Lock()
	if o.response == nil {
		o.mu.Unlock()
		return errors.New("no upload to analyse")
	}
	payload := models.TriggerRequest(o.response, o.sessionID)
	o.analysisStarted = true
	o.mu.Unlock()

	if err := o.postTrigger(ctx, payload); err != nil {
		o.mu.Lock()
		o.analysisStarted = false
		o.mu.Unlock()
		o.log.Warn("analysis trigger failed", zap.String("session_id", payload.SessionID), zap.Error(err))
		return err
	}

	o.log.Info("analysis triggered", zap.String("session_id", payload.SessionID))
	return nil
}

// RestartAnalysis resets the step state and re-triggers the pipeline with the
// same session id. No new upload happens.
func (o *Orchestrator) RestartAnalysis(ctx context.Context, steps StepResetter) error {
	o.mu.Lock()
	if o.response == nil {
		o.mu.Unlock()
		return errors.New("no upload to analyse")
	}
	o.mu.Unlock()

	if steps != nil {
		steps.Reset()
	}
	return o.TriggerAnalysis(ctx)
}

func (o *Orchestrator) postTrigger(ctx context.Context, payload models.AnalysisRequest) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiBase+"/rfp-analyse", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	config.ApplyTunnelBypass(req)

	resp, err := o.http.Do(req)
	if err != nil {
		return fmt.Errorf("trigger request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("trigger returned status %d", resp.StatusCode)
	}
	return nil
}

// countingReader reports cumulative progress as the request body drains.
type countingReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.sent += int64(n)
		if c.fn != nil {
			c.fn(c.sent, c.total)
		}
	}
	return n, err
}
