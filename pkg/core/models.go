package core

import (
	"time"
)

// Transition records one agent-environment interaction.
type Transition struct {
	EpisodeID  string
	Episode    int
	Step       int
	State      int
	Action     int
	NextState  int
	Reward     float64
	RewardKind string
	Terminated bool
	Truncated  bool
	Timestamp  time.Time
}

type ExperimentStatus struct {
	Running      bool
	StartTime    time.Time
	EndTime      time.Time
	EpisodesDone int
	StepsDone    int
	Errors       []error
}
