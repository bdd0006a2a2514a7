package agent

import (
	"context"
	"math/rand/v2"

	"github.com/boristopalov/riverswim/pkg/core"
)

// RandomAgent swims left or right with equal chance.
type RandomAgent struct {
	id  string
	rng *rand.Rand
}

func NewRandomAgent(opts ...AgentOption) *RandomAgent {
	params := applyOptions(opts)

	var src rand.Source
	if params.Seed != nil {
		src = rand.NewPCG(uint64(*params.Seed), uint64(*params.Seed))
	} else {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &RandomAgent{
		id:  params.AgentID,
		rng: rand.New(src),
	}
}

func (a *RandomAgent) GetID() string {
	return a.id
}

func (a *RandomAgent) Act(ctx context.Context, state int) (int, error) {
	return a.rng.IntN(2), nil
}

func (a *RandomAgent) Observe(ctx context.Context, t core.Transition) error {
	return nil
}
