package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/drummonds/pdf2image/config"
	database "github.com/drummonds/pdf2image/database"
	engine "github.com/drummonds/pdf2image/engine"
	"github.com/drummonds/pdf2image/engine/pdfrenderer"
	"github.com/drummonds/pdf2image/pdfsplitter"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	config.Logger = Logger
	engine.Logger = Logger
	pdfsplitter.Logger = Logger
	pdfrenderer.Logger = Logger
}

// newRenderer starts the configured rasterizer backend
func newRenderer(serverConfig config.ServerConfig) (pdfrenderer.Renderer, error) {
	return pdfrenderer.NewRenderer(pdfrenderer.Options{
		Backend:         serverConfig.Renderer,
		PoolSize:        serverConfig.PDFiumPoolSize,
		InstanceTimeout: serverConfig.RenderTimeout,
	})
}

// newEcho creates the echo instance with middleware and JSON errors for the API
func newEcho(serverConfig config.ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		if code == http.StatusNotFound && strings.HasPrefix(c.Request().URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}

		// For other errors, use default handler
		e.DefaultHTTPErrorHandler(err, c)
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	if serverConfig.MaxUploadMB > 0 {
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", serverConfig.MaxUploadMB)))
	}
	return e
}

// @title pdf2image API
// @version 1.0
// @description Rasterizes PDF pages into JPEG or PNG images
// @description Supports in-memory conversion, writing pages to disk, document inspection and job history

// @contact.name API Support
// @contact.url https://github.com/drummonds/pdf2image

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name Convert
// @tag.description Page rendering and image output

// @tag.name Jobs
// @tag.description Conversion job history

// @tag.name Health
// @tag.description Service health and defaults

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	// Show info banner if using ephemeral database
	if serverConfig.DatabaseType == "ephemeral" {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Println("  EPHEMERAL DATABASE MODE")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("• Job history will be destroyed on exit")
		fmt.Println(strings.Repeat("=", 50) + "\n")
	}

	Logger.Info("Setting up database", "type", serverConfig.DatabaseType)
	db, err := database.NewRepository(serverConfig)
	if err != nil {
		Logger.Error("Failed to set up database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	Logger.Info("Database setup complete")

	Logger.Info("Starting renderer", "backend", serverConfig.Renderer)
	renderer, err := newRenderer(serverConfig)
	if err != nil {
		Logger.Error("Failed to start renderer", "error", err)
		os.Exit(1)
	}
	defer renderer.Close()

	e := newEcho(serverConfig)
	serverHandler := engine.ServerHandler{
		Splitter:     pdfsplitter.New(renderer),
		DB:           db,
		Echo:         e,
		ServerConfig: serverConfig,
	}
	if err := serverHandler.StartupChecks(); err != nil { //Run all the sanity checks
		Logger.Error("Startup checks failed", "error", err)
		os.Exit(1)
	}
	scheduler := serverHandler.InitializeSchedules() //initialize all the cron jobs
	defer scheduler.Stop()
	serverHandler.RegisterRoutes()

	// Shut the server down cleanly so deferred closes run
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		Logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			Logger.Error("Error shutting down server", "error", err)
		}
	}()

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}

	Logger.Info("Starting HTTP server")

	// Try to start server with automatic port increment if port is in use
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort
	var startErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		startErr = e.Start(addr)

		if startErr != nil && isAddressInUse(startErr) {
			Logger.Warn("Port already in use, trying next port",
				"port", serverConfig.ListenAddrPort,
				"attempt", attempt+1,
				"max_attempts", maxRetries)

			serverConfig.ListenAddrPort = nextPort(serverConfig.ListenAddrPort)

			if attempt == maxRetries-1 {
				Logger.Error("Failed to find available port after maximum retries",
					"start_port", startPort,
					"end_port", serverConfig.ListenAddrPort,
					"max_retries", maxRetries)
				return
			}
		} else if startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			Logger.Error("Failed to start server", "error", startErr)
			return
		} else {
			break
		}
	}

	if serverConfig.ListenAddrPort != startPort {
		Logger.Warn("Server ran on alternative port due to conflicts",
			"requested_port", startPort,
			"actual_port", serverConfig.ListenAddrPort)
	}
	Logger.Info("Server stopped")
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "address already in use")
}

// nextPort increments a numeric port string
func nextPort(port string) string {
	portNum := 0
	fmt.Sscanf(port, "%d", &portNum)
	return fmt.Sprintf("%d", portNum+1)
}
