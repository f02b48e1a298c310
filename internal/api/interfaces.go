// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import "github.com/labstack/echo/v4"

// ExportHandler handles report export operations
type ExportHandler interface {
	HandleGeneratePDF(c echo.Context) error
	HandleGeneratePDFAndEmail(c echo.Context) error
}

// HealthHandler handles liveness checks
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
