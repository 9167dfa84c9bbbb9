package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const EvictIdleSessionsSpec = "@every 10m"

// Evictor drops sessions that have not been used for longer than ttl and
// reports how many were dropped.
type Evictor interface {
	EvictIdle(now time.Time, ttl time.Duration) int
}

type Scheduler struct {
	ctx      context.Context
	cron     *cron.Cron
	sessions Evictor
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger
}

func New(ctx context.Context, sessions Evictor, ttl time.Duration, log *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLocation(time.UTC))

	return &Scheduler{
		ctx:      ctx,
		cron:     c,
		sessions: sessions,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(EvictIdleSessionsSpec, s.evictIdleSessions); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) evictIdleSessions() {
	if err := s.ctx.Err(); err != nil {
		s.log.InfoContext(s.ctx, "Scheduler context is done",
			"error", err)
		return
	}

	evicted := s.sessions.EvictIdle(s.now(), s.ttl)
	if evicted == 0 {
		return
	}

	s.log.InfoContext(s.ctx, "Evicted idle sessions",
		"count", evicted,
		"ttl", s.ttl)
}
