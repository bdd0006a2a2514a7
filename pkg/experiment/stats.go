package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/boristopalov/riverswim/pkg/core"
	"github.com/boristopalov/riverswim/pkg/environment"
)

// EpisodeStats aggregates one episode. It never holds the trajectory.
type EpisodeStats struct {
	ID                  string
	Episode             int
	Steps               int
	Return              float64
	IntermediateRewards int
	MaxRewards          int
	// Visits[s] counts arrivals in state s, including the start state.
	Visits              []int
}

func newEpisodeStats(id string, episode, nStates, start int) EpisodeStats {
	s := EpisodeStats{
		ID:      id,
		Episode: episode,
		Visits:  make([]int, nStates),
	}
	s.Visits[start]++
	return s
}

func (s *EpisodeStats) record(t core.Transition, kind environment.RewardKind) {
	s.Steps++
	s.Return += t.Reward
	s.Visits[t.NextState]++
	switch kind {
	case environment.RewardIntermediate:
		s.IntermediateRewards++
	case environment.RewardMax:
		s.MaxRewards++
	}
}

var statsHeader = []string{
	"EpisodeID", "Episode", "Steps", "Return", "IntermediateRewards", "MaxRewards", "Visits",
}

// StatsWriter appends one CSV row per episode.
type StatsWriter struct {
	w *csv.Writer
}

// NewStatsWriter writes the CSV header to w.
func NewStatsWriter(w io.Writer) (*StatsWriter, error) {
	sw := &StatsWriter{w: csv.NewWriter(w)}
	if err := sw.write(statsHeader); err != nil {
		return nil, fmt.Errorf("failed to write stats header: %w", err)
	}
	return sw, nil
}

func (sw *StatsWriter) Write(s EpisodeStats) error {
	visits := make([]string, len(s.Visits))
	for i, v := range s.Visits {
		visits[i] = strconv.Itoa(v)
	}
	return sw.write([]string{
		s.ID,
		strconv.Itoa(s.Episode),
		strconv.Itoa(s.Steps),
		strconv.FormatFloat(s.Return, 'f', 2, 64),
		strconv.Itoa(s.IntermediateRewards),
		strconv.Itoa(s.MaxRewards),
		strings.Join(visits, ";"),
	})
}

func (sw *StatsWriter) write(record []string) error {
	if err := sw.w.Write(record); err != nil {
		return err
	}
	sw.w.Flush()
	return sw.w.Error()
}
