package minesweeper

import (
	"time"

	"github.com/zeu5/minesweeper-rl/config"
	"github.com/zeu5/minesweeper-rl/types"
	"golang.org/x/exp/rand"
)

const (
	RewardWasted = -0.1
	RewardMine   = -1.0
	RewardSafe   = 1.0
)

// LayoutFunc decides where the mines go on every reset
type LayoutFunc func(height, width, mines int) []Position

// RandomLayout places mines uniformly at random
func RandomLayout(r *rand.Rand) LayoutFunc {
	return func(height, width, mines int) []Position {
		return RandomMines(r, height, width, mines)
	}
}

// FixedLayout always returns the same mines
func FixedLayout(mines ...Position) LayoutFunc {
	return func(_, _, _ int) []Position {
		return mines
	}
}

// Environment is the minesweeper game seen as an RL environment
type Environment struct {
	config *config.Config
	layout LayoutFunc
	board  *Board
}

var _ types.Environment = &Environment{}

// NewEnvironment creates an environment with random layouts seeded from the config
func NewEnvironment(cfg *config.Config) *Environment {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewEnvironmentWithLayout(cfg, RandomLayout(rand.New(rand.NewSource(seed))))
}

func NewEnvironmentWithLayout(cfg *config.Config, layout LayoutFunc) *Environment {
	e := &Environment{
		config: cfg,
		layout: layout,
	}
	e.Reset()
	return e
}

// Reset discards the board and generates a new one
func (e *Environment) Reset() types.State {
	mines := e.layout(e.config.GridHeight, e.config.GridWidth, e.config.NumMines)
	e.board = NewBoard(e.config.GridHeight, e.config.GridWidth, mines)
	return e.board.Observe()
}

// State is the current observable state
func (e *Environment) State() *State {
	return e.board.Observe()
}

// Board gives read access to the board for rendering
func (e *Environment) Board() *Board {
	return e.board
}

func (e *Environment) InBounds(row, col int) bool {
	return e.board.InBounds(row, col)
}

func (e *Environment) Step(a types.Action) (types.State, float64, bool) {
	click := a.(*Click)
	state, reward, done := e.StepCell(click.Row, click.Col)
	return state, reward, done
}

// StepCell probes (row, col). The caller guarantees the coordinates are in bounds.
func (e *Environment) StepCell(row, col int) (*State, float64, bool) {
	b := e.board
	if b.Revealed(row, col) {
		return b.Observe(), RewardWasted, false
	}
	if b.Cell(row, col) == Mine {
		b.Reveal(row, col)
		return b.Observe(), RewardMine, true
	}
	b.Reveal(row, col)
	done := e.config.TerminateOnClear && b.SafeRemaining() == 0
	return b.Observe(), RewardSafe, done
}
