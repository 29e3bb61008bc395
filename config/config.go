package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Logger is global since we will need it everywhere; it defaults to
// slog.Default until the entry point injects its own
var Logger = slog.Default()

// ServerConfig contains all of the converter and server settings
type ServerConfig struct {
	ListenAddrIP       string
	ListenAddrPort     string
	DatabaseType       string
	DatabaseHost       string
	DatabasePort       string
	DatabaseUser       string
	DatabasePassword   string `json:"-"`
	DatabaseDbname     string
	DatabaseSslmode    string
	Renderer           string
	PDFiumPoolSize     int
	RenderTimeout      time.Duration
	OutputPath         string // absolute root for images written through the API
	SourcePath         string // absolute root for server side PDFs read through the API
	MaxUploadMB        int
	DefaultScale       string
	DefaultCompression string
	JobRetention       time.Duration
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

// loadEnvFiles reads .env and config.env, silently ignoring missing files
func loadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("config.env")
}

// SetupServer loads configuration and returns ServerConfig and Logger
func SetupServer() (ServerConfig, *slog.Logger) {
	loadEnvFiles()

	logger := setupLogging()
	Logger = logger

	serverConfigLive := Load()
	logger.Info("Configuration loaded",
		"database", serverConfigLive.DatabaseType,
		"renderer", serverConfigLive.Renderer,
		"outputPath", serverConfigLive.OutputPath)

	fmt.Println("\n========================================")
	fmt.Println("   pdf2image - PDF page rasterizer")
	fmt.Println("========================================")
	fmt.Printf("Server will start on: %s:%s\n", serverConfigLive.ListenAddrIP, serverConfigLive.ListenAddrPort)
	if serverConfigLive.ListenAddrIP == "" {
		fmt.Println("(Listening on all network interfaces)")
	}
	if getEnv("LOG_OUTPUT", "file") != "stdout" {
		fmt.Printf("Detailed logs: %s\n", getEnv("LOG_FILE", "pdf2image.log"))
	}

	return serverConfigLive, logger
}

// SetupCLI loads configuration for the console tool; logs go to stderr
func SetupCLI() (ServerConfig, *slog.Logger) {
	loadEnvFiles()

	level := parseLevel(getEnv("LOG_LEVEL", "warn"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	Logger = logger

	return Load(), logger
}

// Load reads every setting from the environment, applying defaults
func Load() ServerConfig {
	cfg := ServerConfig{}

	// Server configuration
	cfg.ListenAddrPort = getEnv("SERVER_PORT", "8000")
	cfg.ListenAddrIP = getEnv("SERVER_ADDR", "")

	// Database configuration
	cfg.DatabaseType = getEnv("DATABASE_TYPE", "sqlite")
	cfg.DatabaseHost = getEnv("DATABASE_HOST", "localhost")
	cfg.DatabasePort = getEnv("DATABASE_PORT", "5432")
	cfg.DatabaseUser = getEnv("DATABASE_USER", "pdf2image")
	cfg.DatabasePassword = getEnv("DATABASE_PASSWORD", "")
	cfg.DatabaseDbname = getEnv("DATABASE_NAME", "databases/pdf2image.sqlite")
	cfg.DatabaseSslmode = getEnv("DATABASE_SSLMODE", "disable")

	// Rendering configuration
	cfg.Renderer = strings.ToLower(getEnv("RENDERER", "pdfium"))
	cfg.PDFiumPoolSize = getEnvInt("PDFIUM_POOL_SIZE", 1)
	cfg.RenderTimeout = time.Duration(getEnvInt("RENDER_TIMEOUT_SECONDS", 30)) * time.Second
	cfg.DefaultScale = getEnv("DEFAULT_SCALE", "high")
	cfg.DefaultCompression = getEnv("DEFAULT_COMPRESSION", "medium")

	// Output configuration
	cfg.OutputPath = absPath(getEnv("OUTPUT_PATH", "output"))
	cfg.SourcePath = absPath(getEnv("SOURCE_PATH", "input"))

	cfg.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", 32)
	cfg.JobRetention = time.Duration(getEnvInt("JOB_RETENTION_HOURS", 168)) * time.Hour

	return cfg
}

// absPath makes a configured directory absolute, keeping it as is on failure
func absPath(dir string) string {
	abs, err := filepath.Abs(filepath.FromSlash(dir))
	if err != nil {
		Logger.Error("Failed creating absolute path", "path", dir, "error", err)
		return dir
	}
	return abs
}

// DebugQueries reports whether database queries should be logged verbosely
func DebugQueries() bool {
	return getEnvBool("DATABASE_DEBUG", false)
}

func parseLevel(logLevel string) slog.Level {
	switch logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// setupLogging configures the application logger
func setupLogging() *slog.Logger {
	handlerOptions := &slog.HandlerOptions{Level: parseLevel(getEnv("LOG_LEVEL", "debug"))}

	logOutput := getEnv("LOG_OUTPUT", "file")
	var logWriter io.Writer

	if logOutput == "stdout" {
		logWriter = os.Stdout
	} else {
		logPath, err := filepath.Abs(filepath.ToSlash(getEnv("LOG_FILE", "pdf2image.log")))
		if err != nil {
			fmt.Printf("Error creating log file path: %v\n", err)
			logWriter = os.Stdout
		} else {
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				fmt.Printf("Failed to open log file: %v\n", err)
				logWriter = os.Stdout
			} else {
				logWriter = logFile
				fmt.Println("Logging to file: ", logPath)
			}
		}
	}

	handler := slog.NewTextHandler(logWriter, handlerOptions)
	return slog.New(handler)
}

// EnsureDirectory creates path when missing and checks that it is a directory
func EnsureDirectory(path string, logger *slog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("Error checking directory", "path", path, "error", err)
			return err
		}
		logger.Info("Creating directory", "path", path)
		if err := os.MkdirAll(path, 0755); err != nil {
			logger.Error("Failed to create directory", "path", path, "error", err)
			return err
		}
		return nil
	}
	if !info.IsDir() {
		logger.Error("Path exists but is not a directory", "path", path)
		return fmt.Errorf("path is not a directory: %s", path)
	}
	logger.Debug("Directory exists", "path", path)
	return nil
}
