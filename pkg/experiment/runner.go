package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boristopalov/riverswim/pkg/agent"
	"github.com/boristopalov/riverswim/pkg/core"
	"github.com/boristopalov/riverswim/pkg/environment"
	"github.com/boristopalov/riverswim/pkg/messaging"
)

// Environment is the part of an MDP the runner drives.
type Environment interface {
	Reset(opts ...environment.ResetOption) (int, environment.Info)
	Step(action int) (environment.StepResult, error)
	ObservationSpace() environment.Discrete
}

// Renderer is implemented by environments that can draw themselves.
type Renderer interface {
	Render(w io.Writer) error
}

// Runner plays fixed-length episodes of an environment with one agent.
// The environment never ends an episode on its own, so the horizon is
// entirely the runner's choice.
type Runner struct {
	name     string
	env      Environment
	agent    agent.Agent
	episodes int
	steps    int
	seed     *int64

	broker    messaging.Broker
	metrics   *Metrics
	stats     *StatsWriter
	renderOut io.Writer
	logger    *slog.Logger

	mu      sync.RWMutex
	status  core.ExperimentStatus
	results []EpisodeStats
}

var _ core.Experiment = (*Runner)(nil)

type RunnerOption func(*Runner)

func WithName(name string) RunnerOption {
	return func(r *Runner) {
		r.name = name
	}
}

func WithEpisodes(n int) RunnerOption {
	return func(r *Runner) {
		r.episodes = n
	}
}

func WithSteps(n int) RunnerOption {
	return func(r *Runner) {
		r.steps = n
	}
}

// WithSeed reseeds the environment with seed+episode at every reset.
func WithSeed(seed int64) RunnerOption {
	return func(r *Runner) {
		r.seed = &seed
	}
}

// WithBroker publishes every transition on b.
func WithBroker(b messaging.Broker) RunnerOption {
	return func(r *Runner) {
		r.broker = b
	}
}

func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

func WithStatsWriter(sw *StatsWriter) RunnerOption {
	return func(r *Runner) {
		r.stats = sw
	}
}

// WithRender draws the environment to w before every action.
func WithRender(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.renderOut = w
	}
}

func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

func NewRunner(env Environment, a agent.Agent, opts ...RunnerOption) *Runner {
	r := &Runner{
		name:     "riverswim",
		env:      env,
		agent:    a,
		episodes: 1,
		steps:    100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run plays every episode. It stops early on cancellation or when the
// agent or environment fails; episodes finished so far stay in Results.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.status = core.ExperimentStatus{Running: true, StartTime: time.Now()}
	r.results = nil
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.status.Running = false
		r.status.EndTime = time.Now()
		r.mu.Unlock()
	}()

	r.logger.Info("starting run", "name", r.name, "agent", r.agent.GetID(),
		"episodes", r.episodes, "steps", r.steps)

	for ep := 0; ep < r.episodes; ep++ {
		stats, err := r.runEpisode(ctx, ep)
		if err != nil {
			r.mu.Lock()
			r.status.Errors = append(r.status.Errors, err)
			r.mu.Unlock()
			return fmt.Errorf("episode %d failed: %w", ep, err)
		}

		r.mu.Lock()
		r.results = append(r.results, stats)
		r.status.EpisodesDone++
		r.mu.Unlock()

		r.metrics.observeEpisode(stats)
		if r.stats != nil {
			if err := r.stats.Write(stats); err != nil {
				r.logger.Warn("failed to write episode stats", "episode", ep, "error", err)
			}
		}
		r.logger.Info("episode finished", "episode", ep, "id", stats.ID, "return", stats.Return,
			"intermediate_rewards", stats.IntermediateRewards, "max_rewards", stats.MaxRewards)
	}
	return nil
}

func (r *Runner) runEpisode(ctx context.Context, ep int) (EpisodeStats, error) {
	id := uuid.New().String()

	var resetOpts []environment.ResetOption
	if r.seed != nil {
		resetOpts = append(resetOpts, environment.WithSeed(*r.seed+int64(ep)))
	}
	state, _ := r.env.Reset(resetOpts...)
	stats := newEpisodeStats(id, ep, r.env.ObservationSpace().N, state)

	for step := 0; step < r.steps; step++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		r.render()

		action, err := r.agent.Act(ctx, state)
		if err != nil {
			return stats, fmt.Errorf("agent %s failed at step %d: %w", r.agent.GetID(), step, err)
		}

		res, err := r.env.Step(action)
		if err != nil {
			return stats, fmt.Errorf("step %d: %w", step, err)
		}

		t := core.Transition{
			EpisodeID:  id,
			Episode:    ep,
			Step:       step,
			State:      state,
			Action:     action,
			NextState:  res.NextState,
			Reward:     res.Reward,
			RewardKind: res.Kind.String(),
			Terminated: res.Terminated,
			Truncated:  res.Truncated,
			Timestamp:  time.Now(),
		}
		stats.record(t, res.Kind)
		r.metrics.observeStep(t)

		r.mu.Lock()
		r.status.StepsDone++
		r.mu.Unlock()

		if err := r.agent.Observe(ctx, t); err != nil {
			return stats, fmt.Errorf("agent %s failed to observe step %d: %w", r.agent.GetID(), step, err)
		}
		r.publish(t)

		state = res.NextState
		if res.Terminated || res.Truncated {
			break
		}
	}
	return stats, nil
}

func (r *Runner) render() {
	if r.renderOut == nil {
		return
	}
	renderer, ok := r.env.(Renderer)
	if !ok {
		return
	}
	if err := renderer.Render(r.renderOut); err != nil {
		r.logger.Warn("render failed", "error", err)
	}
}

func (r *Runner) publish(t core.Transition) {
	if r.broker == nil {
		return
	}
	msg := messaging.Message{
		From:       t.EpisodeID,
		Transition: t,
		Timestamp:  t.Timestamp,
	}
	if err := r.broker.Publish(msg); err != nil {
		r.logger.Warn("dropped step message", "episode", t.Episode, "step", t.Step, "error", err)
	}
}

// Results returns a copy of the finished episodes.
func (r *Runner) Results() []EpisodeStats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	results := make([]EpisodeStats, len(r.results))
	copy(results, r.results)
	return results
}

func (r *Runner) GetStatus() core.ExperimentStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}
