package benchmarks

import (
	"context"
	"path"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zeu5/minesweeper-rl/config"
	"github.com/zeu5/minesweeper-rl/minesweeper"
	"github.com/zeu5/minesweeper-rl/policies"
	"github.com/zeu5/minesweeper-rl/types"
)

type trainOptions struct {
	baselines       bool
	temperature     float64
	window          int
	recordTraces    bool
	recordPolicy    bool
	printLastTraces int
	printTimeline   bool
	progress        bool
}

// Train compares the epsilon-greedy agent, optionally against baselines,
// on boards drawn from the same seed
func Train(ctx context.Context, cfg *config.Config, episodes, horizon int, saveFile string, runs int, opts trainOptions) error {
	extra := map[string]interface{}{"game": cfg}
	reportConfig := types.RepConfigStandard()
	reportConfig.PrintTimeline = opts.printTimeline

	comparisonConfig := &types.ComparisonConfig{
		Runs:         runs,
		Episodes:     episodes,
		Horizon:      horizon,
		RecordPath:   saveFile,
		ReportConfig: reportConfig,
		RecordTraces: opts.recordTraces,
		RecordPolicy: opts.recordPolicy,
		ShowProgress: opts.progress,
		Extra:        extra,
	}
	if opts.printLastTraces > 0 {
		comparisonConfig.PrintLastTraces = opts.printLastTraces
		comparisonConfig.PrintLastTracesFunc = minesweeper.ReadableTrace
	}

	c, err := types.NewComparison(comparisonConfig)
	if err != nil {
		return err
	}

	plotPath := path.Join(saveFile, "plots")
	c.AddAnalysis("Return", types.ReturnAnalyzer(), types.SeriesPlotter(plotPath, "return", "Return", opts.window))
	c.AddAnalysis("Length", types.LengthAnalyzer(), types.SeriesPlotter(plotPath, "length", "Steps", opts.window))
	c.AddAnalysis("Revealed", minesweeper.RevealedAnalyzer(), types.SeriesPlotter(plotPath, "revealed", "Safe cells revealed", opts.window))
	c.AddAnalysis("Wins", minesweeper.WinAnalyzer(), types.SeriesPlotter(plotPath, "win_rate", "Win rate", opts.window))
	c.AddAnalysis("Coverage", types.NewCoverageAnalyzer(types.DefaultStateAbstractor()), types.SeriesPlotter(plotPath, "coverage", "Unique states", 1))
	c.AddAnalysis("FirstClicks", minesweeper.NewClickAnalyzer(cfg.GridHeight, cfg.GridWidth, true), minesweeper.ClickHeatMapPlotter(plotPath))

	c.AddExperiment(types.NewExperiment(
		"EpsilonGreedy",
		policies.NewQLearningPolicyFromConfig(cfg),
		minesweeper.NewEnvironment(cfg),
	))
	if opts.baselines {
		seed := cfg.Seed
		if seed != 0 {
			seed += 2
		}
		c.AddExperiment(types.NewExperiment(
			"SoftMax",
			policies.NewSoftMaxPolicy(cfg.LearningRate, cfg.DiscountFactor, opts.temperature, seed),
			minesweeper.NewEnvironment(cfg),
		))
		c.AddExperiment(types.NewExperiment(
			"Random",
			types.NewRandomPolicy(seed),
			minesweeper.NewEnvironment(cfg),
		))
	}

	if err := c.Run(ctx); err != nil {
		return err
	}
	log.Info().Str("id", c.ID).Str("save", saveFile).Msg("comparison finished")
	return nil
}

func TrainCommand() *cobra.Command {
	opts := trainOptions{}
	var cpuProfile, memProfile string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the agent and plot the learning curves",
		RunE: func(cmd *cobra.Command, args []string) error {
			stop, err := startProfiling(cpuProfile, memProfile)
			if err != nil {
				return err
			}
			defer stop()
			return Train(cmd.Context(), gameConfig, episodes, horizon, saveFile, runs, opts)
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.baselines, "baselines", true, "Also run the softmax and random policies")
	cmd.PersistentFlags().Float64Var(&opts.temperature, "temperature", 0.5, "Temperature of the softmax policy")
	cmd.PersistentFlags().IntVar(&opts.window, "window", 50, "Moving average window of the plots")
	cmd.PersistentFlags().BoolVar(&opts.recordTraces, "record-traces", false, "Store every trace as jsonl")
	cmd.PersistentFlags().BoolVar(&opts.recordPolicy, "record-policy", false, "Store a summary of the value table")
	cmd.PersistentFlags().IntVar(&opts.printLastTraces, "print-last", 0, "Write the last N episodes in readable form")
	cmd.PersistentFlags().BoolVar(&opts.printTimeline, "print-timeline", false, "Add the step by step reward timeline to the episode reports")
	cmd.PersistentFlags().BoolVar(&opts.progress, "progress", true, "Show live progress")
	cmd.PersistentFlags().StringVar(&cpuProfile, "cpuprofile", "", "Write a cpu profile to this file")
	cmd.PersistentFlags().StringVar(&memProfile, "memprofile", "", "Write a heap profile to this file when training ends")
	return cmd
}
