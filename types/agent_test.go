package types

import (
	"context"
	"errors"
	"os"
	"path"
	"strconv"
	"testing"
)

// lineState is a position on a line, the episode terminates at the end
type lineState struct {
	pos int
	end int
}

func (l *lineState) Hash() string { return strconv.Itoa(l.pos) }

func (l *lineState) Actions() []Action {
	if l.pos >= l.end {
		return []Action{}
	}
	return []Action{forward}
}

type move string

func (m move) Hash() string { return string(m) }

const forward = move("forward")

type lineEnv struct {
	cur    *lineState
	end    int
	resets int
}

func (l *lineEnv) Reset() State {
	l.resets += 1
	l.cur = &lineState{pos: 0, end: l.end}
	return l.cur
}

func (l *lineEnv) Step(_ Action) (State, float64, bool) {
	l.cur = &lineState{pos: l.cur.pos + 1, end: l.end}
	return l.cur, 1, l.cur.pos == l.end
}

// countingPolicy always moves forward and counts calls
type countingPolicy struct {
	updates    int
	dones      int
	iterations int
	resets     int
}

func (c *countingPolicy) NextAction(_ int, _ State, actions []Action) (Action, bool) {
	return actions[0], true
}

func (c *countingPolicy) Update(_ int, _ State, _ Action, _ float64, _ State, done bool) {
	c.updates += 1
	if done {
		c.dones += 1
	}
}

func (c *countingPolicy) UpdateIteration(_ int, _ *Trace) { c.iterations += 1 }
func (c *countingPolicy) Reset()                         { c.resets += 1 }
func (c *countingPolicy) Record(_ string) error          { return nil }

func TestRunEpisodeStopsOnTermination(t *testing.T) {
	env := &lineEnv{end: 5}
	policy := &countingPolicy{}
	agent := NewAgent(&AgentConfig{Policy: policy, Environment: env})

	eCtx := NewEpisodeContext(0, "test", 0)
	agent.RunEpisode(eCtx)

	if eCtx.Timesteps != 5 {
		t.Fatalf("expected 5 steps, got %d", eCtx.Timesteps)
	}
	if eCtx.Outcome != OutcomeTerminated {
		t.Errorf("expected terminated outcome, got %s", eCtx.Outcome)
	}
	if policy.updates != 5 || policy.dones != 1 || policy.iterations != 1 {
		t.Errorf("unexpected policy calls: %+v", policy)
	}
	if !eCtx.Trace.Terminated() {
		t.Errorf("trace should end in a terminal step")
	}
	if eCtx.Trace.Return() != 5 {
		t.Errorf("expected return 5, got %v", eCtx.Trace.Return())
	}
}

func TestRunEpisodeHorizon(t *testing.T) {
	env := &lineEnv{end: 50}
	agent := NewAgent(&AgentConfig{Horizon: 3, Policy: &countingPolicy{}, Environment: env})

	eCtx := NewEpisodeContext(0, "test", 3)
	agent.RunEpisode(eCtx)

	if eCtx.Timesteps != 3 {
		t.Fatalf("expected 3 steps, got %d", eCtx.Timesteps)
	}
	if eCtx.Outcome != OutcomeHorizon {
		t.Errorf("expected horizon outcome, got %s", eCtx.Outcome)
	}
}

func TestRandomPolicyEmptyActions(t *testing.T) {
	p := NewRandomPolicy(1)
	if _, ok := p.NextAction(0, &lineState{pos: 1, end: 1}, []Action{}); ok {
		t.Fatalf("random policy should not pick from an empty set")
	}
}

func TestComparisonRun(t *testing.T) {
	dir := path.Join(t.TempDir(), "results")
	c, err := NewComparison(&ComparisonConfig{
		Runs:         2,
		Episodes:     4,
		RecordPath:   dir,
		RecordTraces: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	policy := &countingPolicy{}
	returns := ReturnAnalyzer()
	var got [][]float64
	c.AddAnalysis("return", returns, func(_ int, _ int, _ []string, ds []DataSet) {
		got = append(got, ds[0].([]float64))
	})
	c.AddExperiment(NewExperiment("line", policy, &lineEnv{end: 2}))

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected one dataset per run, got %d", len(got))
	}
	for _, run := range got {
		if len(run) != 4 {
			t.Fatalf("expected 4 episodes per run, got %d", len(run))
		}
		for _, r := range run {
			if r != 2 {
				t.Errorf("expected return 2, got %v", r)
			}
		}
	}
	if policy.resets != 2 {
		t.Errorf("policy should be reset after every run, got %d", policy.resets)
	}
	if _, err := os.Stat(path.Join(dir, "comparison_config.json")); err != nil {
		t.Errorf("comparison config not recorded: %v", err)
	}
	if _, err := os.Stat(path.Join(dir, "traces", "line_0.jsonl")); err != nil {
		t.Errorf("traces not recorded: %v", err)
	}
}

func TestComparisonCancelled(t *testing.T) {
	c, err := NewComparison(&ComparisonConfig{Runs: 1, Episodes: 10, RecordPath: t.TempDir()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.AddExperiment(NewExperiment("line", &countingPolicy{}, &lineEnv{end: 2}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestComparisonRefusesWorkingDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{".", "..", "/", "", cwd, cwd + "/"} {
		_, err := NewComparison(&ComparisonConfig{Runs: 1, Episodes: 1, RecordPath: dir})
		if !errors.Is(err, ErrUnsafeRecordPath) {
			t.Errorf("%q: expected ErrUnsafeRecordPath, got %v", dir, err)
		}
	}
	// the package sources are still there
	if _, err := os.Stat("agent_test.go"); err != nil {
		t.Fatalf("working directory was cleaned: %v", err)
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 3, 5, 7}, 2)
	expected := []float64{1, 2, 4, 6}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("index %d: expected %v, got %v", i, expected[i], got[i])
		}
	}
}
