package engine

import (
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere; it defaults to
// slog.Default until the entry point injects its own
var Logger = slog.Default()

// InitializeSchedules starts all the cron jobs (currently just job pruning).
// The returned scheduler is already running; Stop it on shutdown.
func (serverHandler *ServerHandler) InitializeSchedules() *cron.Cron {
	c := cron.New()
	var pruneJob cron.Job
	pruneJob = cron.FuncJob(serverHandler.pruneJobs)
	pruneJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(pruneJob) //ensure we don't kick off another if old one is still running
	if _, err := c.AddJob("@every 1h", pruneJob); err != nil {
		Logger.Error("Unable to schedule job pruning", "error", err)
	}
	Logger.Info("Adding job pruning scheduler", "retention", serverHandler.ServerConfig.JobRetention)
	c.Start()
	return c
}

// pruneJobs deletes finished jobs older than the configured retention
func (serverHandler *ServerHandler) pruneJobs() {
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in job pruning", "panic", r)
		}
	}()

	deleted, err := serverHandler.DB.DeleteOldJobs(serverHandler.ServerConfig.JobRetention)
	if err != nil {
		Logger.Error("Failed to prune old jobs", "error", err)
		return
	}
	Logger.Info("Pruned old jobs", "deleted", deleted, "retention", serverHandler.ServerConfig.JobRetention)
}
