package experiment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/boristopalov/riverswim/pkg/core"
)

// Metrics exports run progress to Prometheus.
type Metrics struct {
	steps          prometheus.Counter
	episodes       prometheus.Counter
	rewardTotal    *prometheus.CounterVec
	rewardEvents   *prometheus.CounterVec
	episodeReturns prometheus.Histogram
}

// NewMetrics registers the run metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		steps: factory.NewCounter(prometheus.CounterOpts{
			Name: "riverswim_steps_total",
			Help: "Total environment steps taken",
		}),
		episodes: factory.NewCounter(prometheus.CounterOpts{
			Name: "riverswim_episodes_total",
			Help: "Total episodes completed",
		}),
		rewardTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riverswim_reward_total",
			Help: "Sum of rewards collected, by reward kind",
		}, []string{"kind"}),
		rewardEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "riverswim_reward_events_total",
			Help: "Number of steps paying each reward kind",
		}, []string{"kind"}),
		episodeReturns: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "riverswim_episode_return",
			Help:    "Undiscounted return per episode",
			Buckets: prometheus.ExponentialBuckets(1, 10, 7),
		}),
	}
}

func (m *Metrics) observeStep(t core.Transition) {
	if m == nil {
		return
	}
	m.steps.Inc()
	m.rewardEvents.WithLabelValues(t.RewardKind).Inc()
	// counters only go up
	if t.Reward > 0 {
		m.rewardTotal.WithLabelValues(t.RewardKind).Add(t.Reward)
	}
}

func (m *Metrics) observeEpisode(s EpisodeStats) {
	if m == nil {
		return
	}
	m.episodes.Inc()
	m.episodeReturns.Observe(s.Return)
}
