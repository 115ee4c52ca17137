package benchmarks

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/zeu5/minesweeper-rl/config"
)

var (
	episodes int
	horizon  int
	saveFile string
	runs     int
	logLevel string

	gameConfig *config.Config
	flagConfig = config.Default()
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "minesweeper-rl",
		Short:        "Minesweeper environment and tabular learning agents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging()
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			gameConfig = cfg
			log.Debug().Interface("config", gameConfig).Msg("loaded config")
			return nil
		},
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 1000, "Number of episodes to run")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 0, "Max steps of each episode, 0 for no limit")
	rootCommand.PersistentFlags().StringVarP(&saveFile, "save", "s", "results", "Save the result data in the specified folder, its contents are deleted first")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level, overrides LOG_LEVEL")

	rootCommand.PersistentFlags().IntVar(&flagConfig.GridHeight, "height", flagConfig.GridHeight, "Rows of the board")
	rootCommand.PersistentFlags().IntVar(&flagConfig.GridWidth, "width", flagConfig.GridWidth, "Columns of the board")
	rootCommand.PersistentFlags().IntVar(&flagConfig.NumMines, "mines", flagConfig.NumMines, "Number of mines")
	rootCommand.PersistentFlags().Float64Var(&flagConfig.LearningRate, "learning-rate", flagConfig.LearningRate, "Learning rate of the agent")
	rootCommand.PersistentFlags().Float64Var(&flagConfig.DiscountFactor, "discount", flagConfig.DiscountFactor, "Discount factor of the agent")
	rootCommand.PersistentFlags().Float64Var(&flagConfig.Epsilon, "epsilon", flagConfig.Epsilon, "Exploration probability of the agent")
	rootCommand.PersistentFlags().BoolVar(&flagConfig.TerminateOnClear, "terminate-on-clear", flagConfig.TerminateOnClear, "End the episode when every safe cell is revealed")
	rootCommand.PersistentFlags().Uint64Var(&flagConfig.Seed, "seed", flagConfig.Seed, "Random seed, 0 seeds from the clock")

	// adding the subcommands here
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(PlayCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}

func setupLogging() {
	level := logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
}

// env values first, then every flag set on the command line
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	overrides := map[string]func(){
		"height":             func() { cfg.GridHeight = flagConfig.GridHeight },
		"width":              func() { cfg.GridWidth = flagConfig.GridWidth },
		"mines":              func() { cfg.NumMines = flagConfig.NumMines },
		"learning-rate":      func() { cfg.LearningRate = flagConfig.LearningRate },
		"discount":           func() { cfg.DiscountFactor = flagConfig.DiscountFactor },
		"epsilon":            func() { cfg.Epsilon = flagConfig.Epsilon },
		"terminate-on-clear": func() { cfg.TerminateOnClear = flagConfig.TerminateOnClear },
		"seed":               func() { cfg.Seed = flagConfig.Seed },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
