package environment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	ActionLeft  = 0
	ActionRight = 1

	numActions = 2

	rowSumTolerance = 1e-6
)

// Kernel is the transition table T[state][action][next]. It is built once
// and never mutated; every (state, action) row is a probability
// distribution.
type Kernel struct {
	n       int
	actions [numActions]*mat.Dense
}

// BuildKernel derives the RiverSwim transition table.
//
// Swimming left always succeeds (or stays put at state 0). Swimming right
// moves right with pRight, gets pushed left with pLeft and otherwise stays.
// At state 0 the left mass folds into staying. At the last state the agent
// stays with pRight and drifts left with the remainder.
func BuildKernel(nStates int, pLeft, pRight float64) (*Kernel, error) {
	if nStates < 2 {
		return nil, fmt.Errorf("%w: need at least 2 states, got %d", ErrInvalidConfig, nStates)
	}
	pStay := 1 - pLeft - pRight

	left := mat.NewDense(nStates, nStates, nil)
	right := mat.NewDense(nStates, nStates, nil)

	for s := 0; s < nStates; s++ {
		if s > 0 {
			left.Set(s, s-1, 1)
			right.Set(s, s-1, pLeft)
			right.Set(s, s, pStay)
		} else {
			left.Set(s, s, 1)
			right.Set(s, s, pStay+pLeft)
		}

		if s < nStates-1 {
			right.Set(s, s+1, pRight)
		} else {
			// last state overrides the values written above
			right.Set(s, s, pRight)
			right.Set(s, s-1, 1-pRight)
		}
	}

	k := &Kernel{n: nStates, actions: [numActions]*mat.Dense{left, right}}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Validate checks that each row is non-negative and sums to one.
func (k *Kernel) Validate() error {
	for a := 0; a < numActions; a++ {
		for s := 0; s < k.n; s++ {
			row := k.Row(s, a)
			if floats.Min(row) < 0 {
				return fmt.Errorf("%w: negative probability in row (state=%d, action=%d): %v",
					ErrInvalidConfig, s, a, row)
			}
			sum := floats.Sum(row)
			if math.Abs(sum-1) > rowSumTolerance {
				return fmt.Errorf("%w: row (state=%d, action=%d) sums to %v",
					ErrInvalidConfig, s, a, sum)
			}
		}
	}
	return nil
}

// NStates returns the size of the state space.
func (k *Kernel) NStates() int {
	return k.n
}

// Prob returns T[state][action][next].
func (k *Kernel) Prob(state, action, next int) float64 {
	return k.actions[action].At(state, next)
}

// Row returns a copy of the distribution over next states.
func (k *Kernel) Row(state, action int) []float64 {
	return mat.Row(nil, state, k.actions[action])
}

// Matrix returns a copy of the n x n table for one action.
func (k *Kernel) Matrix(action int) mat.Matrix {
	return mat.DenseCopyOf(k.actions[action])
}
