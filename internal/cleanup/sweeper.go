package cleanup

import (
	"context"
	"time"

	"maisafe-go/pkg/logger"
)

// SweepResult counts what one sweep pass removed.
type SweepResult struct {
	CodesDeleted       int64
	MedicationsDeleted int64
	IntakesDeleted     int64
}

func (r SweepResult) Total() int64 {
	return r.CodesDeleted + r.MedicationsDeleted + r.IntakesDeleted
}

type Repository interface {
	// Sweep removes expired or used invitation codes and rows older than the
	// retention window, all in one transaction.
	Sweep(ctx context.Context, now time.Time, retention time.Duration) (SweepResult, error)
}

// Sweeper periodically purges stale invitation codes and aged-out records.
// It runs until its context is cancelled.
type Sweeper struct {
	repo         Repository
	log          logger.Logger
	interval     time.Duration
	initialDelay time.Duration
	retention    time.Duration
}

func NewSweeper(repo Repository, log logger.Logger, interval, initialDelay, retention time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{
		repo:         repo,
		log:          log,
		interval:     interval,
		initialDelay: initialDelay,
		retention:    retention,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	if s.initialDelay > 0 {
		timer := time.NewTimer(s.initialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("cleanup sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.repo.Sweep(ctx, time.Now().UTC(), s.retention)
	if err != nil {
		s.log.InternalError("cleanup sweep failed", err)
		return
	}
	if result.Total() > 0 {
		s.log.Info("cleanup sweep finished",
			"codes_deleted", result.CodesDeleted,
			"medications_deleted", result.MedicationsDeleted,
			"intakes_deleted", result.IntakesDeleted,
		)
	}
}
