package database

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/drummonds/pdf2image/config"
	"github.com/oklog/ulid/v2"
)

// packageLogger is the logger the package starts with, before any test swaps it
var packageLogger = Logger

func setupTestLogger() {
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func newTestSQLite(t *testing.T) Repository {
	t.Helper()
	setupTestLogger()
	dbFile := filepath.Join(t.TempDir(), "jobs", "test.sqlite")
	db, err := NewRepository(config.ServerConfig{DatabaseType: "sqlite", DatabaseDbname: dbFile})
	if err != nil {
		t.Fatalf("Failed to open sqlite repository: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBunSQLiteDatabase(t *testing.T) {
	db := newTestSQLite(t)

	t.Run("Create and complete job", func(t *testing.T) {
		job, err := db.CreateJob(JobRequest{
			Type:         JobTypeWrite,
			Source:       "/tmp/report.pdf",
			Pages:        "1,3",
			Scale:        "high",
			Compression:  "medium",
			OutputFolder: "/tmp/out",
		})
		if err != nil {
			t.Fatalf("Failed to create job: %v", err)
		}
		if job.Status != JobStatusPending {
			t.Errorf("Expected pending job, got %s", job.Status)
		}

		if err := db.StartJob(job.ID); err != nil {
			t.Fatalf("Failed to start job: %v", err)
		}
		running, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if running.Status != JobStatusRunning || running.StartedAt == nil {
			t.Errorf("Expected running job with start time, got %s %v", running.Status, running.StartedAt)
		}

		files := []string{"/tmp/out/report_1.jpg", "/tmp/out/report_3.jpg"}
		if err := db.CompleteJob(job.ID, 2, files); err != nil {
			t.Fatalf("Failed to complete job: %v", err)
		}

		done, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if done.Status != JobStatusCompleted {
			t.Errorf("Expected completed, got %s", done.Status)
		}
		if done.PageCount != 2 || len(done.Files) != 2 || done.Files[1] != files[1] {
			t.Errorf("Expected files %v, got %v (%d pages)", files, done.Files, done.PageCount)
		}
		if done.Source != "/tmp/report.pdf" || done.Pages != "1,3" || done.OutputFolder != "/tmp/out" {
			t.Errorf("Job request fields not stored: %+v", done)
		}
		if done.CompletedAt == nil || !done.Finished() {
			t.Error("Expected completed job to have a completion time")
		}
	})

	t.Run("Failed job keeps partial output", func(t *testing.T) {
		job, err := db.CreateJob(JobRequest{Type: JobTypeWriteUpload, Source: "upload.pdf", Scale: "low"})
		if err != nil {
			t.Fatalf("Failed to create job: %v", err)
		}
		if err := db.FailJob(job.ID, "render page 2: broken", []string{"out/upload_1.jpg"}); err != nil {
			t.Fatalf("Failed to fail job: %v", err)
		}
		failed, err := db.GetJob(job.ID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if failed.Status != JobStatusFailed || failed.Error == "" {
			t.Errorf("Expected failed job with error, got %s %q", failed.Status, failed.Error)
		}
		if len(failed.Files) != 1 {
			t.Errorf("Expected one partial file, got %v", failed.Files)
		}
	})

	t.Run("Unknown job", func(t *testing.T) {
		missing := ulid.Make()
		if _, err := db.GetJob(missing); !errors.Is(err, ErrJobNotFound) {
			t.Errorf("Expected ErrJobNotFound, got %v", err)
		}
		if err := db.StartJob(missing); !errors.Is(err, ErrJobNotFound) {
			t.Errorf("Expected ErrJobNotFound starting unknown job, got %v", err)
		}
	})

	t.Run("Recent jobs and pruning", func(t *testing.T) {
		pending, err := db.CreateJob(JobRequest{Type: JobTypeImages, Source: "upload.pdf"})
		if err != nil {
			t.Fatalf("Failed to create job: %v", err)
		}

		jobs, err := db.GetRecentJobs(10, 0)
		if err != nil {
			t.Fatalf("Failed to list jobs: %v", err)
		}
		if len(jobs) != 3 {
			t.Fatalf("Expected 3 jobs, got %d", len(jobs))
		}
		if jobs[0].ID != pending.ID {
			t.Errorf("Expected newest job first, got %s", jobs[0].ID)
		}

		active, err := db.GetActiveJobs()
		if err != nil {
			t.Fatalf("Failed to list active jobs: %v", err)
		}
		if len(active) != 1 || active[0].ID != pending.ID {
			t.Errorf("Expected only the pending job to be active, got %d jobs", len(active))
		}

		page, err := db.GetRecentJobs(1, 1)
		if err != nil {
			t.Fatalf("Failed to page jobs: %v", err)
		}
		if len(page) != 1 {
			t.Errorf("Expected one job on the page, got %d", len(page))
		}

		deleted, err := db.DeleteOldJobs(24 * time.Hour)
		if err != nil {
			t.Fatalf("Failed to delete old jobs: %v", err)
		}
		if deleted != 0 {
			t.Errorf("Expected no recent jobs to be pruned, got %d", deleted)
		}

		// a negative age puts the cutoff in the future
		deleted, err = db.DeleteOldJobs(-time.Hour)
		if err != nil {
			t.Fatalf("Failed to delete old jobs: %v", err)
		}
		if deleted != 2 {
			t.Errorf("Expected the 2 finished jobs to be pruned, got %d", deleted)
		}
		if _, err := db.GetJob(pending.ID); err != nil {
			t.Errorf("Pending job should survive pruning: %v", err)
		}
	})
}

func TestNewRepositoryUnknownType(t *testing.T) {
	setupTestLogger()
	if _, err := NewRepository(config.ServerConfig{DatabaseType: "mongodb"}); err == nil {
		t.Error("Expected an error for an unknown database type")
	}
}

func TestNewRepositoryWithoutInjectedLogger(t *testing.T) {
	if packageLogger == nil {
		t.Fatal("Expected a default logger before injection")
	}
	saved := Logger
	Logger = packageLogger
	t.Cleanup(func() { Logger = saved })

	dbFile := filepath.Join(t.TempDir(), "plain.sqlite")
	db, err := NewRepository(config.ServerConfig{DatabaseType: "sqlite", DatabaseDbname: dbFile})
	if err != nil {
		t.Fatalf("Failed to open sqlite repository: %v", err)
	}
	defer db.Close()
	if _, err := db.CreateJob(JobRequest{Type: JobTypeWrite, Source: "a.pdf"}); err != nil {
		t.Errorf("CreateJob failed: %v", err)
	}
	if _, err := NewRepository(config.ServerConfig{DatabaseType: "none"}); err != nil {
		t.Errorf("Failed to create no-op repository: %v", err)
	}
}

func TestNoopRepository(t *testing.T) {
	setupTestLogger()
	db, err := NewRepository(config.ServerConfig{DatabaseType: "none"})
	if err != nil {
		t.Fatalf("Failed to create no-op repository: %v", err)
	}
	job, err := db.CreateJob(JobRequest{Type: JobTypeImages})
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if job.ID == (ulid.ULID{}) {
		t.Error("Expected a job id even without storage")
	}
	if _, err := db.GetJob(job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Expected ErrJobNotFound, got %v", err)
	}
	jobs, err := db.GetRecentJobs(10, 0)
	if err != nil || len(jobs) != 0 {
		t.Errorf("Expected no jobs, got %v %v", jobs, err)
	}
}

func TestCalculateUUIDOrdering(t *testing.T) {
	earlier, err := CalculateUUID(time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CalculateUUID failed: %v", err)
	}
	later, err := CalculateUUID(time.Now())
	if err != nil {
		t.Fatalf("CalculateUUID failed: %v", err)
	}
	if earlier.Compare(later) >= 0 {
		t.Errorf("Expected %s to sort before %s", earlier, later)
	}
}
