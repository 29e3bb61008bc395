package database

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere; it defaults to
// slog.Default until the entry point injects its own
var Logger = slog.Default()

// Repository stores the history of conversion jobs
type Repository interface {
	Close() error
	CreateJob(req JobRequest) (*Job, error)
	StartJob(jobID ulid.ULID) error
	CompleteJob(jobID ulid.ULID, pageCount int, files []string) error
	FailJob(jobID ulid.ULID, errorMsg string, files []string) error
	GetJob(jobID ulid.ULID) (*Job, error)
	GetRecentJobs(limit, offset int) ([]Job, error)
	GetActiveJobs() ([]Job, error)
	DeleteOldJobs(olderThan time.Duration) (int, error)
}

// CalculateUUID for a new job
func CalculateUUID(time time.Time) (ulid.ULID, error) {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.UnixNano())), 0)
	newULID, err := ulid.New(ulid.Timestamp(time), entropy)
	if err != nil {
		return newULID, err
	}
	return newULID, nil
}

// newJob builds a pending job from a request
func newJob(req JobRequest) (*Job, error) {
	now := time.Now()
	jobID, err := CalculateUUID(now)
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:           jobID,
		Type:         req.Type,
		Status:       JobStatusPending,
		Source:       req.Source,
		Pages:        req.Pages,
		Scale:        req.Scale,
		Compression:  req.Compression,
		OutputFolder: req.OutputFolder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
