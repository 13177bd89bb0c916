package model

import "time"

type PassStats struct {
	Uploads       int `json:"uploads"`
	Deletes       int `json:"deletes"`
	FolderDeletes int `json:"folder_deletes"`
	Failed        int `json:"failed"`
	DirsVisited   int `json:"dirs_visited"`
	DirsSkipped   int `json:"dirs_skipped"`
}

func (s *PassStats) Add(o PassStats) {
	s.Uploads += o.Uploads
	s.Deletes += o.Deletes
	s.FolderDeletes += o.FolderDeletes
	s.Failed += o.Failed
	s.DirsVisited += o.DirsVisited
	s.DirsSkipped += o.DirsSkipped
}

func (s PassStats) Operations() int {
	return s.Uploads + s.Deletes + s.FolderDeletes
}

type SchedulerStatus string

const (
	SchedulerIdle    SchedulerStatus = "IDLE"
	SchedulerRunning SchedulerStatus = "RUNNING"
	SchedulerStopped SchedulerStatus = "STOPPED"
)

type Snapshot struct {
	LocalRoot    string          `json:"local_root"`
	RemoteRoot   string          `json:"remote_root"`
	Status       SchedulerStatus `json:"status"`
	StartedAt    time.Time       `json:"started_at"`
	Passes       int             `json:"passes"`
	LastPassAt   *time.Time      `json:"last_pass_at"`
	LastDuration time.Duration   `json:"last_duration"`
	NextPassAt   *time.Time      `json:"next_pass_at"`
	LastPass     PassStats       `json:"last_pass"`
	Total        PassStats       `json:"total"`
}
