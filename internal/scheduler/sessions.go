package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	sessionCleanupJobName = "session_cleanup"
	sessionCleanupTimeout = time.Minute
	uploadBucketIdle      = 30 * time.Minute
)

type SessionPruner interface {
	PruneExpired(ctx context.Context) (int64, error)
}

type ProviderPruner interface {
	PruneExpired(now time.Time) int
}

type BucketPruner interface {
	Prune(idle time.Duration) int
}

// SessionCleanup removes expired session rows, their dashboard providers,
// and idle upload buckets.
type SessionCleanup struct {
	Sessions  SessionPruner
	Providers ProviderPruner
	Buckets   BucketPruner
	Now       func() time.Time
}

func (c SessionCleanup) Run(ctx context.Context) error {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	logger := log.Ctx(ctx)

	var rows int64
	if c.Sessions != nil {
		n, err := c.Sessions.PruneExpired(ctx)
		if err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}
		rows = n
	}

	providers := 0
	if c.Providers != nil {
		providers = c.Providers.PruneExpired(now())
	}

	buckets := 0
	if c.Buckets != nil {
		buckets = c.Buckets.Prune(uploadBucketIdle)
	}

	logger.Info().
		Int64("sessions", rows).
		Int("providers", providers).
		Int("upload_buckets", buckets).
		Msg("Expired sessions pruned")
	return nil
}

// RegisterSessionCleanup schedules c on the singleton scheduler.
func RegisterSessionCleanup(cronExpr string, c SessionCleanup) error {
	if _, err := AddContextJob(sessionCleanupJobName, cronExpr, sessionCleanupTimeout, c.Run); err != nil {
		return fmt.Errorf("add session cleanup job: %w", err)
	}
	return nil
}
