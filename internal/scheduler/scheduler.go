// Package scheduler runs the periodic maintenance jobs of the service.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Expirer closes listings whose visibility window has ended.
type Expirer interface {
	ExpireEnded(ctx context.Context) (int64, error)
}

// Sweeper removes spooled uploads older than ttl.
type Sweeper interface {
	Sweep(ttl time.Duration, now time.Time) (int, error)
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler runs each job on its own ticker until the context is cancelled.
type Scheduler struct {
	jobs   []job
	logger *logger.Logger
}

func New(cfg config.SchedulerConfig, tempTTL time.Duration, expirer Expirer, sweeper Sweeper, log *logger.Logger) *Scheduler {
	log = log.Named("Scheduler")
	s := &Scheduler{logger: log}
	if expirer != nil && cfg.ExpiryInterval > 0 {
		s.jobs = append(s.jobs, job{
			name:     "expire-items",
			interval: cfg.ExpiryInterval,
			run: func(ctx context.Context) error {
				_, err := expirer.ExpireEnded(ctx)
				return err
			},
		})
	}
	if sweeper != nil && cfg.CleanupInterval > 0 {
		s.jobs = append(s.jobs, job{
			name:     "sweep-uploads",
			interval: cfg.CleanupInterval,
			run: func(context.Context) error {
				n, err := sweeper.Sweep(tempTTL, time.Now())
				if n > 0 {
					log.Info("Removed stale uploads", zap.Int("count", n))
				}
				return err
			},
		})
	}
	return s
}

// Run blocks until ctx is cancelled. Every job runs once at start.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, j := range s.jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			s.loop(ctx, j)
		}(j)
	}
	wg.Wait()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	s.tick(ctx, j)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, j)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, j job) {
	if ctx.Err() != nil {
		return
	}
	if err := j.run(ctx); err != nil {
		s.logger.Error("Scheduled job failed", zap.String("job", j.name), zap.Error(err))
	}
}
