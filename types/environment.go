package types

// Environment is driven one transition at a time by the caller
type Environment interface {
	// Reset called at the start of each episode, discards the previous state entirely
	Reset() State
	// Step applies the action and returns the next state, the reward and
	// whether the episode terminated
	Step(Action) (State, float64, bool)
}

// State of the system that RL policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state, in a deterministic order
	Actions() []Action
}

// And Action that RL policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

type StateAbstractor func(State) string

func DefaultStateAbstractor() StateAbstractor {
	return func(s State) string {
		return s.Hash()
	}
}
