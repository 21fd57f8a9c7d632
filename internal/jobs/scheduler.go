package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type TokenSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

type JobCloser interface {
	CloseExpired(ctx context.Context) (int64, error)
}

// Scheduler runs the periodic maintenance: expired token rows are swept
// hourly and past-deadline postings closed daily. Both are idempotent, so
// missed runs only delay cleanup.
type Scheduler struct {
	cron     *cron.Cron
	tokens   TokenSweeper
	postings JobCloser
	log      zerolog.Logger
}

func NewScheduler(tokens TokenSweeper, postings JobCloser, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:     c,
		tokens:   tokens,
		postings: postings,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 */1 * * *", s.sweepTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 0 * * *", s.closeJobs); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for in-flight jobs to drain, up to a deadline.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler jobs still running at shutdown deadline")
	}
}

func (s *Scheduler) sweepTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.tokens.SweepExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("sweep expired tokens failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("expired tokens swept")
	}
}

func (s *Scheduler) closeJobs() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closed, err := s.postings.CloseExpired(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("close expired jobs failed")
		return
	}
	if closed > 0 {
		s.log.Info().Int64("closed", closed).Msg("expired jobs closed")
	}
}
