package engine

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/drummonds/pdf2image/database"
	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"
)

const (
	defaultJobsLimit = 20
	maxJobsLimit     = 100
)

// GetJob retrieves a conversion job by ID
// @Summary Get job by ID
// @Description Retrieve details of a specific conversion job by its ID
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID (ULID)"
// @Success 200 {object} database.Job "Job details"
// @Failure 400 {object} map[string]interface{} "Invalid job ID"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id} [get]
func (serverHandler *ServerHandler) GetJob(c echo.Context) error {
	jobID, err := ulid.Parse(c.Param("id"))
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid job ID format")
	}

	job, err := serverHandler.DB.GetJob(jobID)
	switch {
	case errors.Is(err, database.ErrJobNotFound):
		return errorJSON(c, http.StatusNotFound, "Job not found")
	case err != nil:
		Logger.Error("Failed to get job", "jobID", jobID, "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to retrieve job")
	}
	return c.JSON(http.StatusOK, job)
}

// GetRecentJobs lists conversion jobs, newest first
// @Summary Get recent jobs
// @Description Retrieve recent conversion jobs with pagination
// @Tags Jobs
// @Produce json
// @Param limit query int false "Number of jobs to return (default: 20, max: 100)"
// @Param offset query int false "Offset for pagination (default: 0)"
// @Success 200 {array} database.Job "List of jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func (serverHandler *ServerHandler) GetRecentJobs(c echo.Context) error {
	limit := queryInt(c, "limit", defaultJobsLimit, 1, maxJobsLimit)
	offset := queryInt(c, "offset", 0, 0, -1)

	jobs, err := serverHandler.DB.GetRecentJobs(limit, offset)
	if err != nil {
		Logger.Error("Failed to get recent jobs", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to retrieve jobs")
	}
	return c.JSON(http.StatusOK, nonNilJobs(jobs))
}

// GetActiveJobs lists pending and running conversions
// @Summary Get active jobs
// @Description Retrieve conversions that have not finished yet
// @Tags Jobs
// @Produce json
// @Success 200 {array} database.Job "List of active jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/active [get]
func (serverHandler *ServerHandler) GetActiveJobs(c echo.Context) error {
	jobs, err := serverHandler.DB.GetActiveJobs()
	if err != nil {
		Logger.Error("Failed to get active jobs", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to retrieve active jobs")
	}
	return c.JSON(http.StatusOK, nonNilJobs(jobs))
}

// DeleteOldJobs prunes finished jobs on demand
// @Summary Prune finished jobs
// @Description Delete completed and failed jobs older than olderThan (default: the configured retention)
// @Tags Jobs
// @Produce json
// @Param olderThan query string false "Go duration such as 24h"
// @Success 200 {object} map[string]interface{} "Number of jobs deleted"
// @Failure 400 {object} map[string]interface{} "Invalid duration"
// @Router /jobs [delete]
func (serverHandler *ServerHandler) DeleteOldJobs(c echo.Context) error {
	olderThan := serverHandler.ServerConfig.JobRetention
	if value := c.QueryParam("olderThan"); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "Invalid olderThan duration")
		}
		olderThan = parsed
	}

	deleted, err := serverHandler.DB.DeleteOldJobs(olderThan)
	if err != nil {
		Logger.Error("Failed to prune jobs", "error", err)
		return errorJSON(c, http.StatusInternalServerError, "Failed to prune jobs")
	}
	Logger.Info("Pruned jobs on request", "deleted", deleted, "olderThan", olderThan)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted":   deleted,
		"olderThan": olderThan.String(),
	})
}

// queryInt reads an integer query parameter, keeping def when it is missing
// or outside [lo, hi]. A negative hi means unbounded.
func queryInt(c echo.Context, name string, def, lo, hi int) int {
	value, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || value < lo || (hi >= 0 && value > hi) {
		return def
	}
	return value
}

func nonNilJobs(jobs []database.Job) []database.Job {
	if jobs == nil {
		return []database.Job{}
	}
	return jobs
}
