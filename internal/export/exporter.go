// exporter.go - Final report export: PDF rendering and email delivery
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/config"
	"github.com/rfp-insight/console/internal/markup"
)

// Options controls one export. Filename is used for the downloaded PDF and
// for the email attachment; it defaults from the RFP file name.
type Options struct {
	Title             string `json:"title"`
	Filename          string `json:"filename"`
	RFPFileName       string `json:"rfpFileName"`
	IncludeBackground bool   `json:"includeBackground"`
}

// renderRequest is the body sent to the external HTML-to-PDF service.
type renderRequest struct {
	HTML     string `json:"html"`
	FileName string `json:"fileName"`
}

// Exporter turns final-report text into PDF bytes via an external rendering
// service and optionally forwards the result to the email delivery endpoint.
// Export failures never touch analysis state.
type Exporter struct {
	renderURL string
	apiBase   string
	http      *http.Client
	log       *zap.Logger
}

// New builds an exporter from the export and API configuration.
func New(exp config.ExportConfig, api config.APIConfig, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		renderURL: exp.RenderURL,
		apiBase:   strings.TrimRight(api.BaseURL, "/"),
		http:      &http.Client{Timeout: 60 * time.Second},
		log:       log,
	}
}

// PDFFileName derives the attachment name from the export options.
func PDFFileName(opts Options) string {
	name := strings.TrimSpace(opts.Filename)
	if name == "" {
		base := strings.TrimSuffix(opts.RFPFileName, ".pdf")
		if base == "" {
			base = "rfp-analysis"
		}
		name = base + "-analysis"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

// RenderPDF converts the report text to styled HTML and requests PDF bytes
// from the rendering service.
func (e *Exporter) RenderPDF(ctx context.Context, report string, opts Options) ([]byte, error) {
	if strings.TrimSpace(report) == "" {
		return nil, errors.New("report is empty")
	}
	if e.renderURL == "" {
		return nil, errors.New("no rendering service configured")
	}

	html := markup.ReportHTML(report, markup.ReportOptions{
		Title:             opts.Title,
		RFPFileName:       opts.RFPFileName,
		IncludeBackground: opts.IncludeBackground,
	})

	raw, err := json.Marshal(renderRequest{HTML: html, FileName: PDFFileName(opts)})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.renderURL, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	config.ApplyTunnelBypass(req)

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("render service returned status %d", resp.StatusCode)
	}
	pdf, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read rendered pdf: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("render service returned an empty document")
	}

	e.log.Info("report rendered", zap.String("file", PDFFileName(opts)), zap.Int("bytes", len(pdf)))
	return pdf, nil
}

// Email sends the rendered PDF to the delivery endpoint as a multipart form.
// Fire and forget from the pipeline's perspective; the caller only learns
// whether the handoff succeeded.
func (e *Exporter) Email(ctx context.Context, address string, pdf []byte, fileName string) error {
	if strings.TrimSpace(address) == "" {
		return errors.New("email address is required")
	}
	if len(pdf) == 0 {
		return errors.New("no pdf to send")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("email", address); err != nil {
		return err
	}
	part, err := w.CreateFormFile("pdf", fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(pdf); err != nil {
		return err
	}
	if err := w.WriteField("fileName", fileName); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiBase+"/sendToEmail", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	config.ApplyTunnelBypass(req)

	resp, err := e.http.Do(req)
	if err != nil {
		return fmt.Errorf("email request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("email endpoint returned status %d", resp.StatusCode)
	}
	e.log.Info("report emailed", zap.String("file", fileName))
	return nil
}
