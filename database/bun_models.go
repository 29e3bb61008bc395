package database

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// BunJob represents the jobs table for Bun ORM
type BunJob struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID           string     `bun:"id,pk"` // ULID as string
	Type         string     `bun:"type,notnull"`
	Status       string     `bun:"status,default:'pending'"`
	Source       string     `bun:"source,notnull,default:''"`
	Pages        string     `bun:"pages,notnull,default:''"`
	Scale        string     `bun:"scale,notnull,default:''"`
	Compression  string     `bun:"compression,notnull,default:''"`
	OutputFolder string     `bun:"output_folder,notnull,default:''"`
	PageCount    int        `bun:"page_count,notnull,default:0"`
	Files        string     `bun:"files,nullzero"` // JSON array of written paths
	Error        string     `bun:"error,nullzero"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
	StartedAt    *time.Time `bun:"started_at,nullzero"`
	CompletedAt  *time.Time `bun:"completed_at,nullzero"`
}

// ToJob converts BunJob to Job
func (bj *BunJob) ToJob() (*Job, error) {
	parsedULID, err := ulid.Parse(bj.ID)
	if err != nil {
		return nil, err
	}

	var files []string
	if bj.Files != "" {
		if err := json.Unmarshal([]byte(bj.Files), &files); err != nil {
			return nil, err
		}
	}

	return &Job{
		ID:           parsedULID,
		Type:         JobType(bj.Type),
		Status:       JobStatus(bj.Status),
		Source:       bj.Source,
		Pages:        bj.Pages,
		Scale:        bj.Scale,
		Compression:  bj.Compression,
		OutputFolder: bj.OutputFolder,
		PageCount:    bj.PageCount,
		Files:        files,
		Error:        bj.Error,
		CreatedAt:    bj.CreatedAt,
		UpdatedAt:    bj.UpdatedAt,
		StartedAt:    bj.StartedAt,
		CompletedAt:  bj.CompletedAt,
	}, nil
}

// FromJob converts Job to BunJob
func FromJob(job *Job) (*BunJob, error) {
	files, err := encodeFiles(job.Files)
	if err != nil {
		return nil, err
	}
	return &BunJob{
		ID:           job.ID.String(),
		Type:         string(job.Type),
		Status:       string(job.Status),
		Source:       job.Source,
		Pages:        job.Pages,
		Scale:        job.Scale,
		Compression:  job.Compression,
		OutputFolder: job.OutputFolder,
		PageCount:    job.PageCount,
		Files:        files,
		Error:        job.Error,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
	}, nil
}

func encodeFiles(files []string) (string, error) {
	if len(files) == 0 {
		return "", nil
	}
	data, err := json.Marshal(files)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
