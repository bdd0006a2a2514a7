package agent

import (
	"context"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/boristopalov/riverswim/pkg/core"
	"github.com/boristopalov/riverswim/pkg/providers"
)

// Agent picks actions for an environment and is told what happened after
// each step.
type Agent interface {
	GetID() string
	// Act returns the action to take in state.
	Act(ctx context.Context, state int) (int, error)
	// Observe receives the outcome of the last action.
	Observe(ctx context.Context, t core.Transition) error
}

type ModelInfo struct {
	Id     string         // e.g. "gpt-4o-mini"
	Config map[string]any // model-specific configuration
}

type AgentParams struct {
	AgentID        string
	Model          ModelInfo
	Client         providers.Client
	MemoryCapacity int
	Seed           *int64
	In             io.Reader
	Out            io.Writer
}

type AgentOption func(*AgentParams)

func WithAgentId(id string) AgentOption {
	return func(p *AgentParams) {
		p.AgentID = id
	}
}

func WithModel(model ModelInfo) AgentOption {
	return func(p *AgentParams) {
		p.Model = model
	}
}

func WithClient(c providers.Client) AgentOption {
	return func(p *AgentParams) {
		p.Client = c
	}
}

func WithMemoryCapacity(n int) AgentOption {
	return func(p *AgentParams) {
		p.MemoryCapacity = n
	}
}

// WithSeed makes a random agent reproducible.
func WithSeed(seed int64) AgentOption {
	return func(p *AgentParams) {
		p.Seed = &seed
	}
}

// WithIO sets where a human agent reads actions from and prompts to.
func WithIO(in io.Reader, out io.Writer) AgentOption {
	return func(p *AgentParams) {
		p.In = in
		p.Out = out
	}
}

func defaultAgentParams() *AgentParams {
	return &AgentParams{
		Model: ModelInfo{
			Id:     "gpt-4o-mini",
			Config: make(map[string]any),
		},
		AgentID:        "agent-" + uuid.New().String(),
		MemoryCapacity: 20,
		In:             os.Stdin,
		Out:            os.Stdout,
	}
}

func applyOptions(opts []AgentOption) *AgentParams {
	params := defaultAgentParams()
	for _, opt := range opts {
		opt(params)
	}
	return params
}

func actionName(action int) string {
	switch action {
	case 0:
		return "left"
	case 1:
		return "right"
	default:
		return "unknown"
	}
}
