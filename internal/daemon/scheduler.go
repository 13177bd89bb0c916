package daemon

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"rubox/internal/model"
)

// Passer runs one full reconciliation pass.
type Passer interface {
	Pass(ctx context.Context) model.PassStats
}

type SchedulerOptions struct {
	Interval time.Duration
	Clock    clockwork.Clock
	State    *PassState
	Logger   *zap.Logger
	// AfterPass runs after every pass, on the scheduler goroutine.
	AfterPass func(model.PassStats)
}

// Scheduler runs passes back to back with Interval of sleep in between. A
// pass is never started before the previous one has returned.
type Scheduler struct {
	engine    Passer
	interval  time.Duration
	clock     clockwork.Clock
	state     *PassState
	log       *zap.Logger
	afterPass func(model.PassStats)
	triggerCh chan struct{}
}

func NewScheduler(engine Passer, opts SchedulerOptions) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.State == nil {
		opts.State = NewPassState("", "", opts.Clock.Now())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Scheduler{
		engine:    engine,
		interval:  opts.Interval,
		clock:     opts.Clock,
		state:     opts.State,
		log:       opts.Logger,
		afterPass: opts.AfterPass,
		triggerCh: make(chan struct{}, 1),
	}
}

// Run blocks until ctx is done. Cancelling ctx never interrupts a pass that
// is already running; Run returns once it has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	defer s.state.SetStatus(model.SchedulerStopped)

	for {
		s.runPass(context.WithoutCancel(ctx))

		if ctx.Err() != nil {
			return nil
		}

		s.state.SetNext(s.clock.Now().Add(s.interval))
		timer := s.clock.NewTimer(s.interval)

		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.Chan():
		case <-s.triggerCh:
			timer.Stop()
			s.log.Info("early pass requested")
		}
	}
}

// Trigger asks for a pass as soon as the current one (if any) is done.
// Requests made while one is already pending are folded into it.
func (s *Scheduler) Trigger() bool {
	select {
	case s.triggerCh <- struct{}{}:
		return true
	default:
		return false
	}
}

func (s *Scheduler) State() *PassState {
	return s.state
}

func (s *Scheduler) runPass(ctx context.Context) {
	s.state.Begin()
	start := s.clock.Now()
	s.log.Info("pass started")

	stats := s.engine.Pass(ctx)

	took := s.clock.Since(start)
	s.state.Finish(stats, s.clock.Now(), took)
	s.log.Info("pass finished",
		zap.Int("uploads", stats.Uploads),
		zap.Int("deletes", stats.Deletes),
		zap.Int("folder_deletes", stats.FolderDeletes),
		zap.Int("failed", stats.Failed),
		zap.Int("dirs", stats.DirsVisited),
		zap.Duration("took", took))

	if s.afterPass != nil {
		s.afterPass(stats)
	}
}
