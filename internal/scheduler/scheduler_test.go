package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAddJobValidation(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() { _ = svc.Stop() })

	if _, err := svc.AddJob("", "* * * * *", func() {}); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("job", " ", func() {}); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("job", "* * * * *", nil); !errors.Is(err, ErrNilTask) {
		t.Fatalf("expected ErrNilTask, got %v", err)
	}
	if _, err := svc.AddJob("job", "not a cron", func() {}); err == nil {
		t.Fatalf("expected invalid cron to be rejected")
	}
	if _, err := svc.AddContextJob("ctx_job", "*/15 * * * *", time.Second, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("AddContextJob: %v", err)
	}
}

func TestNilServiceIsNotInitialized(t *testing.T) {
	var svc *Service
	if _, err := svc.AddJob("job", "* * * * *", func() {}); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := svc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

type stubSessions struct {
	n   int64
	err error
}

func (s stubSessions) PruneExpired(context.Context) (int64, error) { return s.n, s.err }

type stubProviders struct{ at time.Time }

func (s *stubProviders) PruneExpired(now time.Time) int {
	s.at = now
	return 1
}

type stubBuckets struct{ idle time.Duration }

func (s *stubBuckets) Prune(idle time.Duration) int {
	s.idle = idle
	return 0
}

func TestSessionCleanupRun(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	providers := &stubProviders{}
	buckets := &stubBuckets{}
	cleanup := SessionCleanup{
		Sessions:  stubSessions{n: 3},
		Providers: providers,
		Buckets:   buckets,
		Now:       func() time.Time { return fixed },
	}

	if err := cleanup.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !providers.at.Equal(fixed) {
		t.Fatalf("expected providers pruned at %s, got %s", fixed, providers.at)
	}
	if buckets.idle != uploadBucketIdle {
		t.Fatalf("expected bucket idle %s, got %s", uploadBucketIdle, buckets.idle)
	}
}

func TestSessionCleanupStopsOnStoreError(t *testing.T) {
	providers := &stubProviders{}
	cleanup := SessionCleanup{Sessions: stubSessions{err: errors.New("locked")}, Providers: providers}

	if err := cleanup.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if !providers.at.IsZero() {
		t.Fatalf("providers should not be pruned after a store failure")
	}
}
