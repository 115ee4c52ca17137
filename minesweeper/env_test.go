package minesweeper

import (
	"testing"

	"github.com/zeu5/minesweeper-rl/config"
	"github.com/zeu5/minesweeper-rl/types"
)

func testConfig(height, width, mines int) *config.Config {
	c := config.Default()
	c.GridHeight = height
	c.GridWidth = width
	c.NumMines = mines
	c.Seed = 11
	return c
}

func TestStepRewards(t *testing.T) {
	// ones all around the center mine
	env := NewEnvironmentWithLayout(testConfig(3, 3, 1), FixedLayout(Position{1, 1}))

	_, reward, done := env.StepCell(0, 0)
	if reward != RewardSafe || done {
		t.Fatalf("safe cell: expected (+1, false), got (%v, %v)", reward, done)
	}
	for i := 0; i < 3; i++ {
		_, reward, done = env.StepCell(0, 0)
		if reward != RewardWasted || done {
			t.Fatalf("revealed cell: expected (-0.1, false), got (%v, %v)", reward, done)
		}
	}
	s, reward, done := env.StepCell(1, 1)
	if reward != RewardMine || !done {
		t.Fatalf("mine: expected (-1, true), got (%v, %v)", reward, done)
	}
	if s.At(1, 1) != Mine || !s.Exploded() {
		t.Errorf("mine should be revealed")
	}
	if s.Hidden() != 7 {
		t.Errorf("only the mine and the first cell should be revealed, %d hidden", s.Hidden())
	}
}

func TestRevisitDoesNotChangeState(t *testing.T) {
	env := NewEnvironmentWithLayout(testConfig(3, 3, 1), FixedLayout(Position{1, 1}))
	before, _, _ := env.StepCell(2, 2)
	after, _, _ := env.StepCell(2, 2)
	if before.Hash() != after.Hash() {
		t.Fatalf("wasted move changed the state: %q -> %q", before.Hash(), after.Hash())
	}
}

func TestClearingTheBoardTerminates(t *testing.T) {
	env := NewEnvironmentWithLayout(testConfig(3, 3, 1), FixedLayout(Position{0, 0}))
	s, reward, done := env.StepCell(2, 2)
	if reward != RewardSafe || !done {
		t.Fatalf("clearing move: expected (+1, true), got (%v, %v)", reward, done)
	}
	if !s.Cleared() {
		t.Errorf("state should be cleared")
	}
	if len(s.Actions()) != 1 {
		t.Errorf("only the mine should stay hidden")
	}
}

func TestClearingWithoutTermination(t *testing.T) {
	cfg := testConfig(3, 3, 1)
	cfg.TerminateOnClear = false
	env := NewEnvironmentWithLayout(cfg, FixedLayout(Position{0, 0}))
	_, reward, done := env.StepCell(2, 2)
	if reward != RewardSafe || done {
		t.Fatalf("expected (+1, false), got (%v, %v)", reward, done)
	}
}

func TestVisibilityIsMonotonic(t *testing.T) {
	env := NewEnvironment(testConfig(6, 6, 6))
	for episode := 0; episode < 20; episode++ {
		s := env.Reset().(*State)
		for step := 0; step < 100; step++ {
			row, col := step%6, (step*5)%6
			next, _, done := env.StepCell(row, col)
			for r := 0; r < 6; r++ {
				for c := 0; c < 6; c++ {
					if s.At(r, c) != Unknown && next.At(r, c) == Unknown {
						t.Fatalf("cell (%d,%d) was hidden again", r, c)
					}
				}
			}
			s = next
			if done {
				break
			}
		}
	}
}

func TestResetRegenerates(t *testing.T) {
	env := NewEnvironment(testConfig(5, 5, 5))
	env.StepCell(0, 0)
	s := env.Reset().(*State)
	if s.Hidden() != 25 {
		t.Fatalf("reset should hide every cell, %d hidden", s.Hidden())
	}
	if env.Board().Mines != 5 {
		t.Fatalf("expected 5 mines, got %d", env.Board().Mines)
	}
}

func TestEnvironmentWithRandomPolicy(t *testing.T) {
	env := NewEnvironment(testConfig(5, 5, 3))
	agent := types.NewAgent(&types.AgentConfig{
		Policy:      types.NewRandomPolicy(5),
		Environment: env,
	})
	for episode := 0; episode < 30; episode++ {
		eCtx := types.NewEpisodeContext(episode, "random", 0)
		agent.RunEpisode(eCtx)
		if eCtx.Outcome != types.OutcomeTerminated {
			t.Fatalf("episode %d should end on a mine or a cleared board, got %s", episode, eCtx.Outcome)
		}
		// every probe hits a hidden cell, so at most one step per cell
		if eCtx.Timesteps > 25 {
			t.Fatalf("episode %d took %d steps", episode, eCtx.Timesteps)
		}
		s, ok := lastState(eCtx.Trace)
		if !ok || (s.Exploded() == s.Cleared()) {
			t.Fatalf("episode %d should end exploded or cleared", episode)
		}
	}
}

func TestAnalyzers(t *testing.T) {
	env := NewEnvironmentWithLayout(testConfig(3, 3, 1), FixedLayout(Position{0, 0}))
	trace := types.NewTrace()
	s0 := env.Reset()
	a := &Click{Row: 2, Col: 2}
	s1, r, done := env.Step(a)
	trace.Append(0, s0, a, r, s1, done)

	wins := WinAnalyzer()
	wins.Analyze(0, 0, "x", trace)
	if got := wins.DataSet().([]float64); got[0] != 1 {
		t.Errorf("expected a win, got %v", got)
	}
	revealed := RevealedAnalyzer()
	revealed.Analyze(0, 0, "x", trace)
	if got := revealed.DataSet().([]float64); got[0] != 8 {
		t.Errorf("expected 8 revealed, got %v", got)
	}
	clicks := NewClickAnalyzer(3, 3, true)
	clicks.Analyze(0, 0, "x", trace)
	ds := clicks.DataSet().(*ClickDataSet)
	if ds.Clicks[2][2] != 1 || ds.Max() != 1 {
		t.Errorf("expected one click at (2,2), got %v", ds.Clicks)
	}
	if ds.Z(2, 0) != 1 {
		t.Errorf("row 2 should be drawn at the bottom")
	}
}
