package policies

import (
	"time"

	"github.com/zeu5/minesweeper-rl/config"
	"github.com/zeu5/minesweeper-rl/types"
	"golang.org/x/exp/rand"
)

// QLearningPolicy is a tabular epsilon-greedy learner.
//
// The table is keyed by the full state hash and grows with every new state
// seen. Updates bootstrap from the action the policy itself would pick in the
// next state, exploration included.
type QLearningPolicy struct {
	qTable   *QTable
	alpha    float64
	discount float64
	epsilon  float64
	rand     *rand.Rand
}

var _ types.Policy = &QLearningPolicy{}

func NewQLearningPolicy(alpha, discount, epsilon float64, seed uint64) *QLearningPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &QLearningPolicy{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

// NewQLearningPolicyFromConfig uses the hyperparameters of the config
func NewQLearningPolicyFromConfig(cfg *config.Config) *QLearningPolicy {
	seed := cfg.Seed
	if seed != 0 {
		// keep the agent stream apart from the board stream
		seed += 1
	}
	return NewQLearningPolicy(cfg.LearningRate, cfg.DiscountFactor, cfg.Epsilon, seed)
}

func (q *QLearningPolicy) Table() *QTable {
	return q.qTable
}

// Value is the current estimate, 0 when never updated
func (q *QLearningPolicy) Value(state types.State, action types.Action) float64 {
	return q.qTable.Get(state.Hash(), action.Hash(), 0)
}

// ChooseAction picks among the valid actions of the state
func (q *QLearningPolicy) ChooseAction(state types.State) (types.Action, bool) {
	return q.NextAction(0, state, state.Actions())
}

// NextAction explores uniformly with probability epsilon, otherwise returns
// the first action with the strictly highest value
func (q *QLearningPolicy) NextAction(_ int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))], true
	}
	return greedy(q.qTable, state.Hash(), actions)
}

func greedy(table *QTable, stateHash string, actions []types.Action) (types.Action, bool) {
	var best types.Action
	bestVal := 0.0
	for _, a := range actions {
		val := table.Get(stateHash, a.Hash(), 0)
		if best == nil || val > bestVal {
			best = a
			bestVal = val
		}
	}
	return best, best != nil
}

// Learn moves the estimate of (state, action) towards the observed target
func (q *QLearningPolicy) Learn(state types.State, action types.Action, reward float64, nextState types.State, done bool) {
	tdUpdate(q.qTable, q.alpha, q.discount, q.ChooseAction, state, action, reward, nextState, done)
}

// tdUpdate applies Q(s,a) += alpha * (target - Q(s,a)). The target is the
// reward alone on terminal transitions, otherwise it adds the discounted
// value of the action `choose` picks in the next state.
func tdUpdate(
	table *QTable,
	alpha, discount float64,
	choose func(types.State) (types.Action, bool),
	state types.State, action types.Action, reward float64, nextState types.State, done bool,
) {
	target := reward
	if !done {
		if nextAction, ok := choose(nextState); ok {
			target += discount * table.Get(nextState.Hash(), nextAction.Hash(), 0)
		}
	}

	stateHash := state.Hash()
	actionHash := action.Hash()
	curVal := table.Get(stateHash, actionHash, 0)
	table.Set(stateHash, actionHash, curVal+alpha*(target-curVal))
}

func (q *QLearningPolicy) Update(_ int, state types.State, action types.Action, reward float64, nextState types.State, done bool) {
	q.Learn(state, action, reward, nextState, done)
}

func (q *QLearningPolicy) UpdateIteration(_ int, _ *types.Trace) {

}

func (q *QLearningPolicy) Reset() {
	q.qTable = NewQTable()
}

func (q *QLearningPolicy) Record(path string) error {
	return q.qTable.Record(path, 100)
}
