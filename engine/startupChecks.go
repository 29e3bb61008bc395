package engine

import (
	"github.com/drummonds/pdf2image/config"
)

// StartupChecks performs all the checks to make sure everything works
func (serverHandler *ServerHandler) StartupChecks() error {
	serverConfig := serverHandler.ServerConfig
	if err := outputDirectoryChecks(serverConfig); err != nil {
		return err
	}
	if serverHandler.Splitter == nil {
		Logger.Warn("No renderer configured, conversion routes will fail")
	}
	Logger.Info("Renderer configured", "backend", serverConfig.Renderer, "poolSize", serverConfig.PDFiumPoolSize, "timeout", serverConfig.RenderTimeout)
	return nil
}

// outputDirectoryChecks ensures the output and source directories exist
func outputDirectoryChecks(serverConfig config.ServerConfig) error {
	dirs := []struct{ name, path string }{
		{"output", serverConfig.OutputPath},
		{"source", serverConfig.SourcePath},
	}
	for _, dir := range dirs {
		if dir.path == "" {
			Logger.Warn("Directory not configured", "directory", dir.name)
			continue
		}
		if err := config.EnsureDirectory(dir.path, Logger); err != nil {
			return err
		}
	}
	return nil
}
