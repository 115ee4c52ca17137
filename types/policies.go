package types

import (
	"time"

	"golang.org/x/exp/rand"
)

type Policy interface {
	// NextAction picks among the given actions, false when none can be picked
	NextAction(int, State, []Action) (Action, bool)
	// Update is called after every transition (step, state, action, reward, nextState, done)
	Update(int, State, Action, float64, State, bool)
	// UpdateIteration is called at the end of every episode
	UpdateIteration(int, *Trace)
	// Reset drops everything learned
	Reset()
	// Record writes a summary of the policy to the given path
	Record(string) error
}

type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

// NewRandomPolicy returns a uniform policy, seed 0 seeds from the clock
func NewRandomPolicy(seed uint64) *RandomPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (r *RandomPolicy) Reset() {

}

func (r *RandomPolicy) UpdateIteration(_ int, _ *Trace) {

}

func (r *RandomPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

func (r *RandomPolicy) Update(_ int, _ State, _ Action, _ float64, _ State, _ bool) {}

func (r *RandomPolicy) Record(_ string) error { return nil }
