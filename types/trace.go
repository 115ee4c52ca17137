package types

import "encoding/json"

// Trace of an episode as (state, action, reward, nextState, done) tuples
type Trace struct {
	states     []State
	actions    []Action
	rewards    []float64
	nextStates []State
	dones      []bool
}

func NewTrace() *Trace {
	return &Trace{
		states:     make([]State, 0),
		actions:    make([]Action, 0),
		rewards:    make([]float64, 0),
		nextStates: make([]State, 0),
		dones:      make([]bool, 0),
	}
}

func (t *Trace) Append(step int, state State, action Action, reward float64, nextState State, done bool) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.rewards = append(t.rewards, reward)
	t.nextStates = append(t.nextStates, nextState)
	t.dones = append(t.dones, done)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, Action, State, bool) {
	if i >= len(t.states) {
		return nil, nil, nil, false
	}
	return t.states[i], t.actions[i], t.nextStates[i], true
}

// Reward and termination flag of step i
func (t *Trace) Outcome(i int) (float64, bool, bool) {
	if i >= len(t.states) {
		return 0, false, false
	}
	return t.rewards[i], t.dones[i], true
}

func (t *Trace) Last() (State, Action, State, bool) {
	if len(t.states) < 1 {
		return nil, nil, nil, false
	}
	lastIndex := len(t.states) - 1
	return t.states[lastIndex], t.actions[lastIndex], t.nextStates[lastIndex], true
}

// Return is the undiscounted sum of rewards
func (t *Trace) Return() float64 {
	total := 0.0
	for _, r := range t.rewards {
		total += r
	}
	return total
}

// Terminated is true if the last step ended the episode
func (t *Trace) Terminated() bool {
	if len(t.dones) == 0 {
		return false
	}
	return t.dones[len(t.dones)-1]
}

type traceStep struct {
	State     string  `json:"state"`
	Action    string  `json:"action"`
	Reward    float64 `json:"reward"`
	NextState string  `json:"next_state"`
	Done      bool    `json:"done"`
}

func (t *Trace) MarshalJSON() ([]byte, error) {
	steps := make([]traceStep, t.Len())
	for i := 0; i < t.Len(); i++ {
		steps[i] = traceStep{
			State:     t.states[i].Hash(),
			Action:    t.actions[i].Hash(),
			Reward:    t.rewards[i],
			NextState: t.nextStates[i].Hash(),
			Done:      t.dones[i],
		}
	}
	return json.Marshal(steps)
}
