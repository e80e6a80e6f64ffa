// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	userstore "github.com/dalemusser/campushub/internal/app/store/users"
	"github.com/dalemusser/campushub/internal/app/system/ranking"
)

// OTPCleanupJob clears lapsed verification codes from unverified accounts.
// The expiry check at verification time is authoritative; this just keeps
// stale hashes from accumulating.
func OTPCleanupJob(users *userstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "otp-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := users.PurgeExpiredOTPs(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleared expired verification codes", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// RankSweepJob periodically recomputes ranks end to end, catching any drift
// from awards whose follow-up recompute was lost to a crash.
func RankSweepJob(engine *ranking.Engine) Job {
	return Job{
		Name:     "rank-sweep",
		Interval: 15 * time.Minute,
		Run: func(ctx context.Context) error {
			return engine.Recompute(ctx)
		},
	}
}
