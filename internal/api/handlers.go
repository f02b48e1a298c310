// handlers.go - Report export gateway handlers
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/export"
)

// GeneratePDFRequest is the body accepted by the generate-pdf endpoints.
// The PUT variant additionally requires Email.
type GeneratePDFRequest struct {
	Content string         `json:"content" validate:"required"`
	Options export.Options `json:"options"`
	Email   string         `json:"email" validate:"omitempty,email"`
}

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	exporter *export.Exporter
	log      *zap.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(exporter *export.Exporter, log *zap.Logger) ExportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportHandlerImpl{exporter: exporter, log: log}
}

// HandleGeneratePDF renders the posted report text and returns PDF bytes as
// an attachment.
func (h *ExportHandlerImpl) HandleGeneratePDF(c echo.Context) error {
	req, err := h.bindRequest(c)
	if err != nil {
		return err
	}

	pdf, err := h.renderPDF(c.Request().Context(), req)
	if err != nil {
		return err
	}

	fileName := export.PDFFileName(req.Options)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, fileName))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// HandleGeneratePDFAndEmail renders the report and forwards the PDF to the
// email delivery endpoint instead of returning the bytes.
func (h *ExportHandlerImpl) HandleGeneratePDFAndEmail(c echo.Context) error {
	req, err := h.bindRequest(c)
	if err != nil {
		return err
	}
	if req.Email == "" {
		return NewValidationError("email")
	}

	ctx := c.Request().Context()
	pdf, err := h.renderPDF(ctx, req)
	if err != nil {
		return err
	}

	fileName := export.PDFFileName(req.Options)
	emailCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	if err := h.exporter.Email(emailCtx, req.Email, pdf, fileName); err != nil {
		h.log.Warn("email delivery failed", zap.String("file", fileName), zap.Error(err))
		return NewBadGatewayError("failed to deliver email", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "sent",
		"fileName": fileName,
		"email":    req.Email,
	})
}

func (h *ExportHandlerImpl) bindRequest(c echo.Context) (*GeneratePDFRequest, error) {
	var req GeneratePDFRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewBadRequestError("invalid request body", err)
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (h *ExportHandlerImpl) renderPDF(ctx context.Context, req *GeneratePDFRequest) ([]byte, error) {
	pdf, err := h.exporter.RenderPDF(ctx, req.Content, req.Options)
	if err != nil {
		h.log.Warn("pdf render failed", zap.Error(err))
		return nil, NewBadGatewayError("failed to render PDF", err)
	}
	return pdf, nil
}
