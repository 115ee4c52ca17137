package benchmarks

import (
	"bytes"
	"context"
	"os"
	"path"
	"strings"
	"testing"

	"github.com/zeu5/minesweeper-rl/config"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.GridHeight, cfg.GridWidth, cfg.NumMines, cfg.Seed = 4, 4, 2, 21
	return cfg
}

func TestTrainWritesResults(t *testing.T) {
	dir := path.Join(t.TempDir(), "results")
	err := Train(context.Background(), smallConfig(), 20, 0, dir, 1, trainOptions{
		baselines:       true,
		temperature:     0.5,
		window:          5,
		recordPolicy:    true,
		printLastTraces: 1,
		printTimeline:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range []string{
		"comparison_config.json",
		"plots/0_return.json",
		"plots/0_win_rate.json",
		"policies/EpsilonGreedy_0.json",
		"lastTraces/EpsilonGreedy_run0_ep19.txt",
	} {
		if _, err := os.Stat(path.Join(dir, f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}
}

func TestTrainPrintsTimelineReport(t *testing.T) {
	dir := path.Join(t.TempDir(), "results")
	err := Train(context.Background(), smallConfig(), 5, 0, dir, 1, trainOptions{
		window:          1,
		printLastTraces: 1,
		printTimeline:   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bs, err := os.ReadFile(path.Join(dir, "epReports", "EpsilonGreedy_run0_ep4.txt"))
	if err != nil {
		t.Fatalf("missing report of the last episode: %v", err)
	}
	if !strings.Contains(string(bs), "Length:") || !strings.Contains(string(bs), "reward") {
		t.Errorf("expected the reward timeline in the report, got:\n%s", bs)
	}
}

func TestPlayPrintsLastEpisodes(t *testing.T) {
	var out bytes.Buffer
	if err := Play(context.Background(), &out, smallConfig(), 10, 0, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(out.String(), "Episode "); got != 2 {
		t.Fatalf("expected 2 printed episodes, got %d", got)
	}
}

func TestRootCommandFlagsOverrideEnv(t *testing.T) {
	t.Setenv("MINES_NUM_MINES", "5")
	t.Setenv("MINES_GRID_WIDTH", "6")
	root := GetRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"play", "--height", "3", "--mines", "2", "--episodes", "1", "--show", "0", "--seed", "3"})
	if err := root.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gameConfig.GridHeight != 3 || gameConfig.NumMines != 2 {
		t.Errorf("flags should win over env: %+v", gameConfig)
	}
	if gameConfig.GridWidth != 6 {
		t.Errorf("env should apply when the flag is unset: %+v", gameConfig)
	}
}

func TestRootCommandRejectsInvalidConfig(t *testing.T) {
	root := GetRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"play", "--height", "2", "--width", "2", "--mines", "4"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected an invalid config error")
	}
}
