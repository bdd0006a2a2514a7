package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boristopalov/riverswim/pkg/core"
)

// mockClient implements providers.Client for testing
type mockClient struct {
	responses []string
	err       error
	prompts   []string
	systems   []string
	models    []string
}

func (m *mockClient) Complete(ctx context.Context, model string, system string, prompt string) (string, error) {
	m.models = append(m.models, model)
	m.systems = append(m.systems, system)
	m.prompts = append(m.prompts, prompt)
	if m.err != nil {
		return "", m.err
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

func TestDefaultAgentID(t *testing.T) {
	a := NewRandomAgent()
	b := NewRandomAgent()

	assert.True(t, strings.HasPrefix(a.GetID(), "agent-"))
	assert.NotEqual(t, a.GetID(), b.GetID())

	c := NewRandomAgent(WithAgentId("swimmer"))
	assert.Equal(t, "swimmer", c.GetID())
}

func TestRandomAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("actions are 0 or 1 and both appear", func(t *testing.T) {
		a := NewRandomAgent()
		seen := map[int]int{}
		for i := 0; i < 1000; i++ {
			action, err := a.Act(ctx, 0)
			require.NoError(t, err)
			seen[action]++
		}
		assert.Len(t, seen, 2)
		assert.Greater(t, seen[0], 0)
		assert.Greater(t, seen[1], 0)
	})

	t.Run("seeded agents agree", func(t *testing.T) {
		a := NewRandomAgent(WithSeed(9))
		b := NewRandomAgent(WithSeed(9))
		for i := 0; i < 100; i++ {
			x, _ := a.Act(ctx, i%6)
			y, _ := b.Act(ctx, i%6)
			require.Equal(t, x, y)
		}
	})

	t.Run("observe is a no-op", func(t *testing.T) {
		assert.NoError(t, NewRandomAgent().Observe(ctx, core.Transition{}))
	})
}

func TestHumanAgent(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	a := NewHumanAgent(WithIO(strings.NewReader("1\n 0 \n7\nleft\n"), &out))

	action, err := a.Act(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, action)
	assert.Contains(t, out.String(), "Please input an action")

	action, err = a.Act(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, action)

	// out-of-range integers are left for the environment to reject
	action, err = a.Act(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, action)

	_, err = a.Act(ctx, 0)
	assert.Error(t, err)

	_, err = a.Act(ctx, 0)
	assert.ErrorIs(t, err, io.EOF)

	out.Reset()
	require.NoError(t, a.Observe(ctx, core.Transition{Reward: 5}))
	assert.Equal(t, "Reward: 5\n", out.String())
}

func TestHumanAgentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewHumanAgent(WithIO(strings.NewReader("1\n"), io.Discard))
	_, err := a.Act(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLLMAgent(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a client", func(t *testing.T) {
		_, err := NewLLMAgent(6)
		assert.Error(t, err)
	})

	t.Run("acts on the model's answer", func(t *testing.T) {
		client := &mockClient{responses: []string{"The far end pays more.\nANSWER: 1"}}
		a, err := NewLLMAgent(6,
			WithAgentId("test-agent"),
			WithModel(ModelInfo{Id: "mock-model", Config: make(map[string]any)}),
			WithClient(client),
		)
		require.NoError(t, err)
		assert.Equal(t, "test-agent", a.GetID())
		assert.Equal(t, "mock-model", a.GetModel().Id)

		action, err := a.Act(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, action)

		require.Len(t, client.prompts, 1)
		assert.Equal(t, "mock-model", client.models[0])
		assert.Equal(t, SYSTEM_PROMPT, client.systems[0])
		assert.Contains(t, client.prompts[0], "The river has 6 positions (0 to 5). You are at position 2.")
		assert.Contains(t, client.prompts[0], noHistory)
	})

	t.Run("observed transitions appear in the next prompt", func(t *testing.T) {
		client := &mockClient{responses: []string{"ANSWER: 0"}}
		a, err := NewLLMAgent(6, WithClient(client), WithMemoryCapacity(2))
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, a.Observe(ctx, core.Transition{State: i, Action: 1, NextState: i + 1, Reward: 0}))
		}
		assert.Equal(t, 2, a.GetMemory().Len())

		_, err = a.Act(ctx, 3)
		require.NoError(t, err)
		prompt := client.prompts[0]
		assert.NotContains(t, prompt, "At position 0 you swam right")
		assert.Contains(t, prompt, "At position 1 you swam right, ended at position 2 and received 0.")
		assert.Contains(t, prompt, "At position 2 you swam right, ended at position 3 and received 0.")
	})

	t.Run("client errors are wrapped", func(t *testing.T) {
		boom := errors.New("rate limited")
		a, err := NewLLMAgent(6, WithClient(&mockClient{err: boom}))
		require.NoError(t, err)

		_, err = a.Act(ctx, 0)
		assert.ErrorIs(t, err, boom)
	})
}

func TestParseActionResponse(t *testing.T) {
	tests := []struct {
		response string
		want     int
		wantErr  bool
	}{
		{"ANSWER: 0", 0, false},
		{"ANSWER:1", 1, false},
		{"thinking...\nANSWER:   1\n", 1, false},
		{"ANSWER: 0 ... actually ANSWER: 1", 1, false},
		{"ANSWER: 2", 0, true},
		{"I will swim right", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.response, func(t *testing.T) {
			got, err := parseActionResponse(tt.response)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
