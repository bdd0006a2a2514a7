package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/boristopalov/riverswim/pkg/core"
)

// HumanAgent asks a person for every action. Whatever integer they type is
// passed on unchecked, so the environment decides whether it is valid.
type HumanAgent struct {
	id      string
	scanner *bufio.Scanner
	out     io.Writer
}

func NewHumanAgent(opts ...AgentOption) *HumanAgent {
	params := applyOptions(opts)
	return &HumanAgent{
		id:      params.AgentID,
		scanner: bufio.NewScanner(params.In),
		out:     params.Out,
	}
}

func (a *HumanAgent) GetID() string {
	return a.id
}

// Act prompts for an action. It returns io.EOF once the input is closed.
func (a *HumanAgent) Act(ctx context.Context, state int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	fmt.Fprintln(a.out, "Please input an action (0 = left, 1 = right)")

	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, fmt.Errorf("failed to read action: %w", err)
		}
		return 0, io.EOF
	}

	line := strings.TrimSpace(a.scanner.Text())
	action, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("could not parse action %q: %w", line, err)
	}
	return action, nil
}

func (a *HumanAgent) Observe(ctx context.Context, t core.Transition) error {
	_, err := fmt.Fprintf(a.out, "Reward: %g\n", t.Reward)
	return err
}
