package agent

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/boristopalov/riverswim/pkg/core"
	"github.com/boristopalov/riverswim/pkg/memory"
	"github.com/boristopalov/riverswim/pkg/providers"
)

const (
	SYSTEM_PROMPT = `You are a swimmer in a river made of a row of positions numbered from 0 (the left bank) to the far right end. Each turn you choose to swim left (0) or right (1). Swimming left always works. Swimming right fights the current: you may move right, stay where you are, or be pushed back left. Staying at the left bank while swimming left pays a small reward. Staying at the far right end while swimming right pays a very large reward. Every other move pays the common reward. Your goal is to collect as much reward as possible over a long time.`

	ACTION_PROMPT_TEMPLATE = `The river has %d positions (0 to %d). You are at position %d.

%s

Which direction do you swim? Very briefly think step by step and then provide your answer. Your answer should follow the string "ANSWER" like so: ANSWER: 0 or ANSWER: 1`

	noHistory = "This is your first move, so you have no history yet."
)

var answerPattern = regexp.MustCompile(`ANSWER:\s*(\d+)`)

// LLMAgent asks a language model which way to swim, giving it the recent
// transitions it has observed.
type LLMAgent struct {
	id      string
	model   ModelInfo
	client  providers.Client
	memory  *memory.Memory
	nStates int
}

// NewLLMAgent creates an agent for a river of nStates positions. A client
// must be supplied with WithClient.
func NewLLMAgent(nStates int, opts ...AgentOption) (*LLMAgent, error) {
	params := applyOptions(opts)
	if params.Client == nil {
		return nil, fmt.Errorf("llm agent %s: no provider client", params.AgentID)
	}

	return &LLMAgent{
		id:      params.AgentID,
		model:   params.Model,
		client:  params.Client,
		memory:  memory.NewMemory(params.MemoryCapacity),
		nStates: nStates,
	}, nil
}

func (a *LLMAgent) GetID() string {
	return a.id
}

func (a *LLMAgent) GetModel() ModelInfo {
	return a.model
}

func (a *LLMAgent) GetMemory() *memory.Memory {
	return a.memory
}

func (a *LLMAgent) Act(ctx context.Context, state int) (int, error) {
	history := noHistory
	if past := a.memory.GetAllMessages(); len(past) > 0 {
		history = "Your most recent moves:\n" + strings.Join(past, "\n")
	}
	prompt := fmt.Sprintf(ACTION_PROMPT_TEMPLATE, a.nStates, a.nStates-1, state, history)

	response, err := a.client.Complete(ctx, a.model.Id, SYSTEM_PROMPT, prompt)
	if err != nil {
		return 0, fmt.Errorf("failed to generate response: %w", err)
	}
	slog.Debug("llm response", "agent", a.id, "response", response)

	return parseActionResponse(response)
}

// Observe remembers the transition so later prompts can mention it.
func (a *LLMAgent) Observe(ctx context.Context, t core.Transition) error {
	a.memory.Store(fmt.Sprintf("At position %d you swam %s, ended at position %d and received %g.",
		t.State, actionName(t.Action), t.NextState, t.Reward))
	return nil
}

// parseActionResponse extracts the action following "ANSWER:". The last
// answer wins when the model restates itself.
func parseActionResponse(response string) (int, error) {
	matches := answerPattern.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("could not find answer in response: %s", response)
	}

	action, err := strconv.Atoi(matches[len(matches)-1][1])
	if err != nil {
		return 0, fmt.Errorf("could not parse action: %w", err)
	}
	if action != 0 && action != 1 {
		return 0, fmt.Errorf("answer %d is not a valid action", action)
	}
	return action, nil
}
