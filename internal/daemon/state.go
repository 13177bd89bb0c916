package daemon

import (
	"sync"
	"time"

	"rubox/internal/model"
)

// PassState is the scheduler's view of its own progress, shared with the
// control server.
type PassState struct {
	mu           sync.RWMutex
	localRoot    string
	remoteRoot   string
	status       model.SchedulerStatus
	startedAt    time.Time
	passes       int
	lastPassAt   *time.Time
	lastDuration time.Duration
	nextPassAt   *time.Time
	lastPass     model.PassStats
	total        model.PassStats
}

func NewPassState(localRoot, remoteRoot string, startedAt time.Time) *PassState {
	return &PassState{
		localRoot:  localRoot,
		remoteRoot: remoteRoot,
		status:     model.SchedulerIdle,
		startedAt:  startedAt,
	}
}

func (s *PassState) Begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = model.SchedulerRunning
	s.nextPassAt = nil
}

func (s *PassState) Finish(stats model.PassStats, finishedAt time.Time, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = model.SchedulerIdle
	s.passes++
	s.lastPassAt = &finishedAt
	s.lastDuration = took
	s.lastPass = stats
	s.total.Add(stats)
}

func (s *PassState) SetNext(next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPassAt = &next
}

func (s *PassState) SetStatus(status model.SchedulerStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
	if status == model.SchedulerStopped {
		s.nextPassAt = nil
	}
}

func (s *PassState) Snapshot() model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return model.Snapshot{
		LocalRoot:    s.localRoot,
		RemoteRoot:   s.remoteRoot,
		Status:       s.status,
		StartedAt:    s.startedAt,
		Passes:       s.passes,
		LastPassAt:   s.lastPassAt,
		LastDuration: s.lastDuration,
		NextPassAt:   s.nextPassAt,
		LastPass:     s.lastPass,
		Total:        s.total,
	}
}
