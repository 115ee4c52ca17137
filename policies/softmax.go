package policies

import (
	"math"
	"time"

	"github.com/zeu5/minesweeper-rl/types"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SoftMaxPolicy samples actions with probability proportional to
// exp(Q/temperature) and learns with the same update as QLearningPolicy
type SoftMaxPolicy struct {
	qTable      *QTable
	alpha       float64
	discount    float64
	temperature float64
	src         rand.Source
}

var _ types.Policy = &SoftMaxPolicy{}

func NewSoftMaxPolicy(alpha, discount, temperature float64, seed uint64) *SoftMaxPolicy {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if temperature <= 0 {
		temperature = 1
	}
	return &SoftMaxPolicy{
		qTable:      NewQTable(),
		alpha:       alpha,
		discount:    discount,
		temperature: temperature,
		src:         rand.NewSource(seed),
	}
}

func (s *SoftMaxPolicy) ChooseAction(state types.State) (types.Action, bool) {
	return s.NextAction(0, state, state.Actions())
}

func (s *SoftMaxPolicy) NextAction(_ int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	stateHash := state.Hash()

	vals := make([]float64, len(actions))
	maxVal := math.Inf(-1)
	for i, a := range actions {
		vals[i] = s.qTable.Get(stateHash, a.Hash(), 0) / s.temperature
		if vals[i] > maxVal {
			maxVal = vals[i]
		}
	}
	// shifted by the max to keep exp finite
	weights := make([]float64, len(actions))
	for i, v := range vals {
		weights[i] = math.Exp(v - maxVal)
	}

	i, ok := sampleuv.NewWeighted(weights, s.src).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}

func (s *SoftMaxPolicy) Update(_ int, state types.State, action types.Action, reward float64, nextState types.State, done bool) {
	tdUpdate(s.qTable, s.alpha, s.discount, s.ChooseAction, state, action, reward, nextState, done)
}

func (s *SoftMaxPolicy) UpdateIteration(_ int, _ *types.Trace) {

}

func (s *SoftMaxPolicy) Reset() {
	s.qTable = NewQTable()
}

func (s *SoftMaxPolicy) Record(path string) error {
	return s.qTable.Record(path, 100)
}
