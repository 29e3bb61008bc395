package database

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// JobStatus represents the status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobType is the conversion that was requested
type JobType string

const (
	JobTypeImages      JobType = "images"
	JobTypeWrite       JobType = "write"
	JobTypeWriteUpload JobType = "write_upload"
)

// JobRequest holds the caller supplied fields of a new job
type JobRequest struct {
	Type         JobType
	Source       string
	Pages        string
	Scale        string
	Compression  string
	OutputFolder string
}

// Job is one recorded conversion
type Job struct {
	ID           ulid.ULID  `json:"id"`
	Type         JobType    `json:"type"`
	Status       JobStatus  `json:"status"`
	Source       string     `json:"source"`
	Pages        string     `json:"pages"`
	Scale        string     `json:"scale"`
	Compression  string     `json:"compression,omitempty"`
	OutputFolder string     `json:"outputFolder,omitempty"`
	PageCount    int        `json:"pageCount"`
	Files        []string   `json:"files,omitempty"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

// Finished reports whether the job reached a terminal state
func (j *Job) Finished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
