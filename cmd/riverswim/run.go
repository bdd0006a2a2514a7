package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/boristopalov/riverswim/pkg/agent"
	"github.com/boristopalov/riverswim/pkg/config"
	"github.com/boristopalov/riverswim/pkg/environment"
	"github.com/boristopalov/riverswim/pkg/experiment"
	"github.com/boristopalov/riverswim/pkg/messaging"
	"github.com/boristopalov/riverswim/pkg/providers"
)

type runFlags struct {
	configPath  string
	episodes    int
	steps       int
	seed        int64
	agentType   string
	provider    string
	model       string
	render      bool
	color       bool
	statsCSV    string
	chartHTML   string
	metricsAddr string
	logLevel    string
	logFormat   string
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run RiverSwim episodes with an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(cmd, f)
			if err != nil {
				return err
			}
			return runExperiment(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.configPath, "config", "c", "", "YAML experiment config")
	flags.IntVar(&f.episodes, "episodes", 1, "number of episodes")
	flags.IntVar(&f.steps, "steps", 100, "steps per episode")
	flags.Int64Var(&f.seed, "seed", 0, "seed for the environment (episode i uses seed+i)")
	flags.StringVar(&f.agentType, "agent", "random", "agent type: random, human or llm")
	flags.StringVar(&f.provider, "provider", "openai", "LLM provider: openai or gemini")
	flags.StringVar(&f.model, "model", "gpt-4o-mini", "LLM model id")
	flags.BoolVar(&f.render, "render", false, "draw the river before every action")
	flags.BoolVar(&f.color, "color", false, "colour the rendered river")
	flags.StringVar(&f.statsCSV, "stats-csv", "", "append per-episode statistics to this CSV file")
	flags.StringVar(&f.chartHTML, "chart", "", "write an HTML chart of episode returns to this file")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.StringVar(&f.logLevel, "log-level", "info", "debug, info, warn or error")
	flags.StringVar(&f.logFormat, "log-format", "text", "text or json")
	return cmd
}

// loadRunConfig reads the config file (or defaults) and lets explicitly set
// flags override it.
func loadRunConfig(cmd *cobra.Command, f *runFlags) (*config.ExperimentConfig, error) {
	cfg := config.DefaultExperimentConfig()
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	changed := cmd.Flags().Changed
	if changed("episodes") {
		cfg.Episodes = f.episodes
	}
	if changed("steps") {
		cfg.Steps = f.steps
	}
	if changed("seed") {
		seed := f.seed
		cfg.Seed = &seed
	}
	if changed("agent") {
		cfg.Agent.Type = f.agentType
	}
	if changed("provider") {
		cfg.Agent.Provider = f.provider
	}
	if changed("model") {
		cfg.Agent.Model = f.model
	}
	if changed("render") {
		cfg.Environment.RenderMode = ""
		if f.render {
			cfg.Environment.RenderMode = "ansi"
		}
	}
	if changed("color") {
		cfg.Environment.RenderColor = f.color
	}
	if changed("stats-csv") {
		cfg.Output.StatsCSV = f.statsCSV
	}
	if changed("chart") {
		cfg.Output.ChartHTML = f.chartHTML
	}
	if changed("metrics-addr") {
		cfg.Output.MetricsAddr = f.metricsAddr
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Logging.Format = f.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func runExperiment(ctx context.Context, cfg *config.ExperimentConfig, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(cfg.Logging, errOut)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	env, err := environment.NewRiverSwim(cfg.Environment)
	if err != nil {
		return fmt.Errorf("failed to create environment: %w", err)
	}

	a, err := newAgent(ctx, cfg, in, out)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}
	logger.Info("created agent", "id", a.GetID(), "type", cfg.Agent.Type)

	broker := messaging.NewBroker()
	defer broker.Reset()
	watchTransitions(ctx, broker, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	opts := []experiment.RunnerOption{
		experiment.WithName(cfg.Name),
		experiment.WithEpisodes(cfg.Episodes),
		experiment.WithSteps(cfg.Steps),
		experiment.WithBroker(broker),
		experiment.WithMetrics(experiment.NewMetrics(reg)),
		experiment.WithLogger(logger),
	}
	if cfg.Seed != nil {
		opts = append(opts, experiment.WithSeed(*cfg.Seed))
	}
	if cfg.Environment.RenderMode != "" {
		opts = append(opts, experiment.WithRender(out))
	}

	if cfg.Output.MetricsAddr != "" {
		srv := serveMetrics(cfg.Output.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.Output.StatsCSV != "" {
		f, err := os.Create(cfg.Output.StatsCSV)
		if err != nil {
			return fmt.Errorf("failed to create stats file: %w", err)
		}
		defer f.Close()
		sw, err := experiment.NewStatsWriter(f)
		if err != nil {
			return err
		}
		opts = append(opts, experiment.WithStatsWriter(sw))
	}

	runner := experiment.NewRunner(env, a, opts...)
	runErr := runner.Run(ctx)
	if errors.Is(runErr, io.EOF) {
		// the human closed stdin
		runErr = nil
	}

	results := runner.Results()
	if cfg.Output.ChartHTML != "" && len(results) > 0 {
		if err := writeChart(cfg.Output.ChartHTML, cfg.Name, results); err != nil {
			logger.Warn("failed to write chart", "path", cfg.Output.ChartHTML, "error", err)
		}
	}

	for _, s := range results {
		fmt.Fprintf(out, "episode %d: return %.2f (intermediate %d, max %d)\n",
			s.Episode, s.Return, s.IntermediateRewards, s.MaxRewards)
	}
	return runErr
}

func newAgent(ctx context.Context, cfg *config.ExperimentConfig, in io.Reader, out io.Writer) (agent.Agent, error) {
	switch cfg.Agent.Type {
	case "human":
		return agent.NewHumanAgent(agent.WithIO(in, out)), nil
	case "llm":
		client, err := providers.New(ctx, cfg.Agent.Provider)
		if err != nil {
			return nil, err
		}
		return agent.NewLLMAgent(cfg.Environment.NStates,
			agent.WithClient(client),
			agent.WithModel(agent.ModelInfo{Id: cfg.Agent.Model, Config: make(map[string]any)}),
			agent.WithMemoryCapacity(cfg.Agent.MemoryCapacity),
		)
	default:
		var opts []agent.AgentOption
		if cfg.Seed != nil {
			opts = append(opts, agent.WithSeed(*cfg.Seed))
		}
		return agent.NewRandomAgent(opts...), nil
	}
}

// watchTransitions logs every published step at debug level.
func watchTransitions(ctx context.Context, broker *messaging.SimpleBroker, logger *slog.Logger) {
	ch := make(chan messaging.Message, 256)
	if err := broker.Subscribe("step-log", ch); err != nil {
		logger.Warn("failed to subscribe step logger", "error", err)
		return
	}
	go func() {
		for {
			select {
			case msg := <-ch:
				t := msg.Transition
				logger.Debug("step", "episode", t.Episode, "step", t.Step, "state", t.State,
					"action", t.Action, "next_state", t.NextState, "reward", t.Reward)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}

func writeChart(path, title string, results []experiment.EpisodeStats) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return experiment.WriteChart(f, title, results)
}
