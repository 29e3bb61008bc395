package database

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// NoopDB is used when DATABASE_TYPE=none; jobs get ids but are not kept
type NoopDB struct{}

func (NoopDB) Close() error { return nil }

func (NoopDB) CreateJob(req JobRequest) (*Job, error) { return newJob(req) }

func (NoopDB) StartJob(ulid.ULID) error { return nil }

func (NoopDB) CompleteJob(ulid.ULID, int, []string) error { return nil }

func (NoopDB) FailJob(ulid.ULID, string, []string) error { return nil }

func (NoopDB) GetJob(ulid.ULID) (*Job, error) { return nil, ErrJobNotFound }

func (NoopDB) GetRecentJobs(int, int) ([]Job, error) { return []Job{}, nil }

func (NoopDB) GetActiveJobs() ([]Job, error) { return []Job{}, nil }

func (NoopDB) DeleteOldJobs(time.Duration) (int, error) { return 0, nil }
