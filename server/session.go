package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zeu5/minesweeper-rl/config"
	"github.com/zeu5/minesweeper-rl/minesweeper"
	"github.com/zeu5/minesweeper-rl/policies"
)

var (
	ErrOutOfBounds = errors.New("cell out of bounds")
	ErrNoAction    = errors.New("no hidden cell left")
)

// Session is a single game driven by external requests. Every move, made by
// a player or by the agent, is one state -> step -> learn transition, and
// the board is reset as soon as an episode ends. The lock serialises
// requests so the environment and the table are never touched concurrently.
type Session struct {
	ID string

	lock   *sync.Mutex
	config *config.Config
	env    *minesweeper.Environment
	agent  *policies.QLearningPolicy
	stats  Stats
}

// Stats over the life of the session
type Stats struct {
	Episodes     int `json:"episodes"`
	Wins         int `json:"wins"`
	Losses       int `json:"losses"`
	Steps        int `json:"steps"`
	WastedMoves  int `json:"wasted_moves"`
	TableStates  int `json:"table_states"`
	TableEntries int `json:"table_entries"`
}

// StepResult is the outcome of one move. State is the board right after the
// move, before any reset.
type StepResult struct {
	Row    int                `json:"row"`
	Col    int                `json:"col"`
	Reward float64            `json:"reward"`
	Done   bool               `json:"done"`
	Won    bool               `json:"won"`
	State  *minesweeper.State `json:"-"`
}

func NewSession(cfg *config.Config, env *minesweeper.Environment, agent *policies.QLearningPolicy) *Session {
	return &Session{
		ID:     uuid.NewString(),
		lock:   new(sync.Mutex),
		config: cfg,
		env:    env,
		agent:  agent,
	}
}

func (s *Session) State() *minesweeper.State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.env.State()
}

// Reset abandons the current board without learning from it
func (s *Session) Reset() *minesweeper.State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.env.Reset().(*minesweeper.State)
}

// Step plays (row, col) for a player. Coordinates are validated here, the
// environment expects valid cells.
func (s *Session) Step(row, col int) (*StepResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.env.InBounds(row, col) {
		return nil, ErrOutOfBounds
	}
	return s.step(row, col), nil
}

// AgentStep lets the agent pick the move
func (s *Session) AgentStep() (*StepResult, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	action, ok := s.agent.ChooseAction(s.env.State())
	if !ok {
		return nil, ErrNoAction
	}
	click := action.(*minesweeper.Click)
	return s.step(click.Row, click.Col), nil
}

func (s *Session) step(row, col int) *StepResult {
	state := s.env.State()
	click := &minesweeper.Click{Row: row, Col: col}
	next, reward, done := s.env.StepCell(row, col)
	s.agent.Learn(state, click, reward, next, done)

	s.stats.Steps += 1
	if reward == minesweeper.RewardWasted {
		s.stats.WastedMoves += 1
	}
	result := &StepResult{
		Row:    row,
		Col:    col,
		Reward: reward,
		Done:   done,
		Won:    next.Cleared(),
		State:  next,
	}
	if done {
		s.stats.Episodes += 1
		if result.Won {
			s.stats.Wins += 1
		} else {
			s.stats.Losses += 1
		}
		log.Debug().
			Str("session", s.ID).
			Int("episode", s.stats.Episodes).
			Bool("won", result.Won).
			Int("table_entries", s.agent.Table().Size()).
			Msg("episode finished")
		s.env.Reset()
	}
	return result
}

func (s *Session) Stats() Stats {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := s.stats
	out.TableStates = s.agent.Table().States()
	out.TableEntries = s.agent.Table().Size()
	return out
}
