package environment

import (
	"bytes"
	"math/rand/v2"
	"testing"

	"github.com/logrusorgru/aurora"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boristopalov/riverswim/pkg/config"
)

func newDefaultEnv(t *testing.T) *RiverSwim {
	t.Helper()
	env, err := NewRiverSwim(config.DefaultRiverSwimConfig())
	require.NoError(t, err)
	return env
}

func TestNewRiverSwim(t *testing.T) {
	t.Run("initial state is 0 or 1", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			env := newDefaultEnv(t)
			assert.Contains(t, []int{0, 1}, env.State())
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.DefaultRiverSwimConfig()
		cfg.PLeft = 0.8
		_, err := NewRiverSwim(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)

		cfg = config.DefaultRiverSwimConfig()
		cfg.NStates = 1
		_, err = NewRiverSwim(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("spaces", func(t *testing.T) {
		env := newDefaultEnv(t)
		assert.Equal(t, Discrete{N: 6}, env.ObservationSpace())
		assert.Equal(t, Discrete{N: 2}, env.ActionSpace())
		assert.True(t, env.ActionSpace().Contains(1))
		assert.False(t, env.ActionSpace().Contains(2))
		assert.False(t, env.ObservationSpace().Contains(-1))
	})
}

func TestReset(t *testing.T) {
	env := newDefaultEnv(t)

	for i := 0; i < 20; i++ {
		_, err := env.Step(ActionRight)
		require.NoError(t, err)

		state, info := env.Reset(WithSeed(int64(i)))
		assert.Equal(t, 0, state)
		assert.Empty(t, info)
		assert.Equal(t, 0, env.State())
	}

	state, info := env.Reset()
	assert.Equal(t, 0, state)
	assert.NotNil(t, info)
}

func TestResetSeedIsReproducible(t *testing.T) {
	trajectory := func(env *RiverSwim, seed int64) []int {
		env.Reset(WithSeed(seed))
		states := make([]int, 0, 200)
		for i := 0; i < 200; i++ {
			res, err := env.Step(ActionRight)
			require.NoError(t, err)
			states = append(states, res.NextState)
		}
		return states
	}

	a := newDefaultEnv(t)
	b := newDefaultEnv(t)

	first := trajectory(a, 7)
	assert.Equal(t, first, trajectory(b, 7))
	assert.Equal(t, first, trajectory(a, 7))
}

func TestStepInvalidAction(t *testing.T) {
	env := newDefaultEnv(t)
	env.Reset(WithSeed(0))
	_, err := env.Step(ActionRight)
	require.NoError(t, err)
	before := env.State()

	for _, action := range []int{2, -1, 100} {
		_, err := env.Step(action)
		assert.ErrorIs(t, err, ErrInvalidAction)
		assert.Equal(t, before, env.State())
	}
}

func TestStepStayingLeftAtBankEarnsIntermediateReward(t *testing.T) {
	env := newDefaultEnv(t)
	state, _ := env.Reset(WithSeed(0))
	require.Equal(t, 0, state)

	for i := 0; i < 100; i++ {
		res, err := env.Step(ActionLeft)
		require.NoError(t, err)
		assert.Equal(t, 0, res.NextState)
		assert.Equal(t, 5.0, res.Reward)
		assert.Equal(t, RewardIntermediate, res.Kind)
		assert.False(t, res.Terminated)
		assert.False(t, res.Truncated)
		assert.Empty(t, res.Info)
	}
}

func TestStepRewardPlacement(t *testing.T) {
	env := newDefaultEnv(t)
	env.Reset(WithSeed(3))
	policy := rand.New(rand.NewPCG(1, 2))

	sawMax := false
	for i := 0; i < 20_000; i++ {
		before := env.State()
		action := policy.IntN(2)
		// lean right so the far end gets visited
		if policy.Float64() < 0.95 {
			action = ActionRight
		}

		res, err := env.Step(action)
		require.NoError(t, err)
		assert.Equal(t, res.NextState, env.State())

		switch res.Reward {
		case 5:
			assert.Equal(t, 0, before)
			assert.Equal(t, ActionLeft, action)
			assert.Equal(t, 0, res.NextState)
		case 10_000:
			sawMax = true
			assert.Equal(t, 5, before)
			assert.Equal(t, ActionRight, action)
			assert.Equal(t, 5, res.NextState)
		default:
			assert.Equal(t, 0.0, res.Reward)
			assert.Equal(t, RewardCommon, res.Kind)
		}
	}
	assert.True(t, sawMax, "expected at least one max reward")
}

func TestStepMovesOnlyToNeighbours(t *testing.T) {
	env := newDefaultEnv(t)
	env.Reset(WithSeed(11))
	policy := rand.New(rand.NewPCG(3, 4))

	for i := 0; i < 5_000; i++ {
		before := env.State()
		action := policy.IntN(2)
		res, err := env.Step(action)
		require.NoError(t, err)

		diff := res.NextState - before
		assert.True(t, diff >= -1 && diff <= 1, "jumped from %d to %d", before, res.NextState)
		assert.Greater(t, env.Kernel().Prob(before, action, res.NextState), 0.0)
	}
}

func TestEpisodeNeverTerminates(t *testing.T) {
	env := newDefaultEnv(t)
	env.Reset()
	policy := rand.New(rand.NewPCG(5, 6))

	for i := 0; i < 1000; i++ {
		res, err := env.Step(policy.IntN(2))
		require.NoError(t, err)
		require.False(t, res.Terminated)
		require.False(t, res.Truncated)
	}
}

func TestRender(t *testing.T) {
	cfg := config.DefaultRiverSwimConfig()
	cfg.NStates = 4
	cfg.RenderMode = "ansi"
	env, err := NewRiverSwim(cfg)
	require.NoError(t, err)
	env.Reset()

	var buf bytes.Buffer
	require.NoError(t, env.Render(&buf))
	assert.Equal(t, "RiverSwim State: [X] - [ ] - [ ] - [ ]\n", buf.String())

	t.Run("no render mode", func(t *testing.T) {
		env := newDefaultEnv(t)
		var buf bytes.Buffer
		require.NoError(t, env.Render(&buf))
		assert.Empty(t, buf.String())
	})
}

func TestRenderBoxes(t *testing.T) {
	au := aurora.NewAurora(false)
	assert.Equal(t, "[ ] - [ ] - [X]", RenderBoxes(au, 3, 2))
	assert.Equal(t, "[X] - [ ]", RenderBoxes(au, 2, 0))

	colored := RenderBoxes(aurora.NewAurora(true), 2, 0)
	assert.Contains(t, colored, "\x1b[")
}

func TestRewardKindString(t *testing.T) {
	assert.Equal(t, "common", RewardCommon.String())
	assert.Equal(t, "intermediate", RewardIntermediate.String())
	assert.Equal(t, "max", RewardMax.String())
}
