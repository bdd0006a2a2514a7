package environment

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/boristopalov/riverswim/pkg/config"
)

// Info carries auxiliary data from Reset and Step. RiverSwim never fills it.
type Info map[string]any

// RewardKind tells which reward rule produced a step's reward.
type RewardKind int

const (
	RewardCommon RewardKind = iota
	RewardIntermediate
	RewardMax
)

func (k RewardKind) String() string {
	switch k {
	case RewardIntermediate:
		return "intermediate"
	case RewardMax:
		return "max"
	default:
		return "common"
	}
}

// StepResult is the outcome of a single Step.
type StepResult struct {
	NextState  int
	Reward     float64
	Kind       RewardKind
	Terminated bool
	Truncated  bool
	Info       Info
}

// RiverSwim is the RiverSwim MDP: a chain of states where swimming left is
// easy and rewarded a little at the bank, while swimming right fights the
// current toward a large reward at the far end.
//
// A RiverSwim is not safe for concurrent use. Give each episode runner its
// own instance.
type RiverSwim struct {
	cfg    config.RiverSwimConfig
	kernel *Kernel

	// src backs every sampler, so reseeding it in place reseeds them all.
	src      *rand.PCG
	rng      *rand.Rand
	samplers [][numActions]distuv.Categorical

	state int
	au    aurora.Aurora
}

// NewRiverSwim validates cfg, builds the transition kernel and places the
// agent on state 0 or 1 with equal chance.
func NewRiverSwim(cfg config.RiverSwimConfig) (*RiverSwim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	kernel, err := BuildKernel(cfg.NStates, cfg.PLeft, cfg.PRight)
	if err != nil {
		return nil, err
	}

	src := rand.NewPCG(rand.Uint64(), rand.Uint64())
	samplers := make([][numActions]distuv.Categorical, cfg.NStates)
	for s := range samplers {
		for a := 0; a < numActions; a++ {
			samplers[s][a] = distuv.NewCategorical(kernel.Row(s, a), src)
		}
	}

	e := &RiverSwim{
		cfg:      cfg,
		kernel:   kernel,
		src:      src,
		rng:      rand.New(src),
		samplers: samplers,
		au:       aurora.NewAurora(cfg.RenderColor),
	}
	e.state = e.rng.IntN(2)
	return e, nil
}

type resetParams struct {
	seed    int64
	hasSeed bool
}

type ResetOption func(*resetParams)

// WithSeed reseeds the environment's random source on Reset.
func WithSeed(seed int64) ResetOption {
	return func(p *resetParams) {
		p.seed = seed
		p.hasSeed = true
	}
}

// Reset moves the agent back to state 0. Without WithSeed the random source
// continues from where it was.
func (e *RiverSwim) Reset(opts ...ResetOption) (int, Info) {
	params := &resetParams{}
	for _, opt := range opts {
		opt(params)
	}
	if params.hasSeed {
		e.src.Seed(uint64(params.seed), uint64(params.seed))
	}

	e.state = 0
	return e.state, Info{}
}

// Step swims in the given direction and returns where the agent ended up.
// The episode never terminates on its own.
func (e *RiverSwim) Step(action int) (StepResult, error) {
	if action != ActionLeft && action != ActionRight {
		return StepResult{}, fmt.Errorf("%w: got %d", ErrInvalidAction, action)
	}

	next := int(e.samplers[e.state][action].Rand())

	kind := RewardCommon
	if next == e.state {
		switch {
		case next == 0 && action == ActionLeft:
			kind = RewardIntermediate
		case next == e.cfg.NStates-1 && action == ActionRight:
			kind = RewardMax
		}
	}

	e.state = next
	return StepResult{
		NextState: next,
		Reward:    e.reward(kind),
		Kind:      kind,
		Info:      Info{},
	}, nil
}

func (e *RiverSwim) reward(kind RewardKind) float64 {
	switch kind {
	case RewardIntermediate:
		return e.cfg.IntermediateReward
	case RewardMax:
		return e.cfg.MaxReward
	default:
		return e.cfg.CommonReward
	}
}

// State returns the current state.
func (e *RiverSwim) State() int {
	return e.state
}

func (e *RiverSwim) Kernel() *Kernel {
	return e.kernel
}

func (e *RiverSwim) Config() config.RiverSwimConfig {
	return e.cfg
}

// Render writes the current position as a row of boxes when the render
// mode is "ansi". Other modes render nothing.
func (e *RiverSwim) Render(w io.Writer) error {
	if e.cfg.RenderMode != "ansi" {
		return nil
	}
	_, err := fmt.Fprintf(w, "RiverSwim State: %s\n", RenderBoxes(e.au, e.cfg.NStates, e.state))
	return err
}
