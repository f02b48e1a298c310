// routes.go - Route registration helpers
// This file provides a clean way to register all export gateway routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rfp-insight/console/internal/export"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Exporter *export.Exporter
	Version  string
	Log      *zap.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Export ExportHandler
	Health HealthHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Export: NewExportHandler(deps.Exporter, deps.Log),
		Health: NewHealthHandler(deps.Version),
	}
}

// RegisterRoutes registers all routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/health", handlers.Health.HandleHealth)

	exportGroup := e.Group("/api")
	exportGroup.POST("/generate-pdf", handlers.Export.HandleGeneratePDF)
	exportGroup.PUT("/generate-pdf", handlers.Export.HandleGeneratePDFAndEmail)
}

// NewServer builds a configured Echo instance for the export gateway.
func NewServer(deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler
	e.Validator = NewValidator()
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	RegisterRoutes(e, NewHandlers(deps))
	return e
}
