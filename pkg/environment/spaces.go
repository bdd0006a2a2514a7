package environment

// Discrete describes the integer space {0, ..., N-1}.
type Discrete struct {
	N int
}

func (d Discrete) Contains(x int) bool {
	return x >= 0 && x < d.N
}

// ObservationSpace is one integer per state.
func (e *RiverSwim) ObservationSpace() Discrete {
	return Discrete{N: e.cfg.NStates}
}

// ActionSpace is {ActionLeft, ActionRight}.
func (e *RiverSwim) ActionSpace() Discrete {
	return Discrete{N: numActions}
}
