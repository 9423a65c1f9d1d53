// internal/api/job/store_test.go
package job

import (
	"errors"
	"testing"
	"time"

	"github.com/newthinker/tickervista/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(100, time.Hour)

	job := store.Create("refresh")
	if job.ID == "" {
		t.Error("expected job ID")
	}
	if job.Status != StatusPending {
		t.Errorf("expected pending, got %s", job.Status)
	}

	retrieved, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.ID != job.ID {
		t.Error("IDs don't match")
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(100, time.Hour)
	job := store.Create("refresh")

	err := store.Update(job.ID, func(j *Job) {
		j.Status = StatusComplete
		j.Result = map[string]int{"symbols": 3}
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := store.Get(job.ID)
	if retrieved.Status != StatusComplete {
		t.Errorf("expected complete, got %s", retrieved.Status)
	}
	if retrieved.Result == nil {
		t.Error("expected result to be stored")
	}

	if err := store.Update("missing", func(*Job) {}); !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("expected JOB_NOT_FOUND, got %v", err)
	}
}

func TestStore_MaxSize(t *testing.T) {
	store := NewStore(2, time.Hour)

	job1 := store.Create("refresh")
	store.Create("refresh")
	store.Create("refresh") // Should evict job1

	_, err := store.Get(job1.ID)
	if err == nil {
		t.Error("expected job1 to be evicted")
	}
	if len(store.List()) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(store.List()))
	}
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore(100, time.Hour)

	_, err := store.Get("nonexistent")
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("expected JOB_NOT_FOUND, got %v", err)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := NewStore(100, time.Hour)
	clock := time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	first := store.Create("refresh")
	clock = clock.Add(time.Minute)
	second := store.Create("refresh")

	jobs := store.List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != second.ID || jobs[1].ID != first.ID {
		t.Error("expected newest job first")
	}
}

func TestStore_Active(t *testing.T) {
	store := NewStore(100, time.Hour)

	if _, ok := store.Active("refresh"); ok {
		t.Error("expected no active job")
	}

	job := store.Create("refresh")
	active, ok := store.Active("refresh")
	if !ok || active.ID != job.ID {
		t.Errorf("expected %s active, got %+v", job.ID, active)
	}

	store.Update(job.ID, func(j *Job) { j.Status = StatusFailed })
	if _, ok := store.Active("refresh"); ok {
		t.Error("failed job should not be active")
	}
}

func TestStore_PrunesExpired(t *testing.T) {
	store := NewStore(100, time.Hour)
	clock := time.Date(2026, 3, 2, 22, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	done := store.Create("refresh")
	store.Update(done.ID, func(j *Job) { j.Status = StatusComplete })
	pending := store.Create("refresh")

	clock = clock.Add(2 * time.Hour)
	store.Create("refresh")

	if _, err := store.Get(done.ID); err == nil {
		t.Error("expected finished job past ttl to be pruned")
	}
	if _, err := store.Get(pending.ID); err != nil {
		t.Error("unfinished job must survive pruning")
	}
}
