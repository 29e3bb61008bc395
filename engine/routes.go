package engine

import (
	"context"
	"errors"
	"net/http"

	"github.com/drummonds/pdf2image/config"
	"github.com/drummonds/pdf2image/database"
	"github.com/drummonds/pdf2image/internal/build"
	"github.com/drummonds/pdf2image/pdfsplitter"
	"github.com/labstack/echo/v4"
)

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	Splitter     *pdfsplitter.Splitter
	DB           database.Repository
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
}

// RegisterRoutes adds every API route to the handler's echo instance
func (serverHandler *ServerHandler) RegisterRoutes() {
	e := serverHandler.Echo

	e.GET("/api/health", serverHandler.GetHealth)

	// Conversion API routes
	e.POST("/api/images", serverHandler.PostImages)
	e.POST("/api/write", serverHandler.PostWrite)
	e.POST("/api/write/upload", serverHandler.PostWriteUpload)
	e.POST("/api/inspect", serverHandler.PostInspect)

	// Job history API routes
	e.GET("/api/jobs", serverHandler.GetRecentJobs)
	e.GET("/api/jobs/active", serverHandler.GetActiveJobs)
	e.GET("/api/jobs/:id", serverHandler.GetJob)
	e.DELETE("/api/jobs", serverHandler.DeleteOldJobs)
}

// GetHealth returns information about the running converter
// @Summary Get service health
// @Description Report version, renderer backend and storage settings
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service information"
// @Router /health [get]
func (serverHandler *ServerHandler) GetHealth(c echo.Context) error {
	healthInfo := map[string]interface{}{
		"status":             "ok",
		"version":            build.Version,
		"renderer":           serverHandler.ServerConfig.Renderer,
		"databaseType":       serverHandler.ServerConfig.DatabaseType,
		"outputPath":         serverHandler.ServerConfig.OutputPath,
		"sourcePath":         serverHandler.ServerConfig.SourcePath,
		"defaultScale":       serverHandler.ServerConfig.DefaultScale,
		"defaultCompression": serverHandler.ServerConfig.DefaultCompression,
	}
	return c.JSON(http.StatusOK, healthInfo)
}

// statusFor maps a conversion error to an HTTP status
func statusFor(err error) int {
	switch {
	case pdfsplitter.IsValidation(err), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case pdfsplitter.IsEngine(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]interface{}{
		"error": message,
	})
}
