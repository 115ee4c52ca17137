package benchmarks

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/zeu5/minesweeper-rl/config"
	"github.com/zeu5/minesweeper-rl/minesweeper"
	"github.com/zeu5/minesweeper-rl/policies"
	"github.com/zeu5/minesweeper-rl/types"
)

// Play lets the agent learn over `episodes` episodes and prints the last `show` of them
func Play(ctx context.Context, out io.Writer, cfg *config.Config, episodes, horizon, show int) error {
	env := minesweeper.NewEnvironment(cfg)
	policy := policies.NewQLearningPolicyFromConfig(cfg)
	agent := types.NewAgent(&types.AgentConfig{
		Horizon:     horizon,
		Policy:      policy,
		Environment: env,
	})

	wins := 0
	for episode := 0; episode < episodes; episode++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		eCtx := types.NewEpisodeContext(episode, "play", horizon)
		agent.RunEpisode(eCtx)

		_, _, last, ok := eCtx.Trace.Last()
		won := ok && last.(*minesweeper.State).Cleared()
		if won {
			wins += 1
		}
		if episode >= episodes-show {
			fmt.Fprintf(out, "Episode %d (%s, won: %v, return: %.1f)\n", episode, eCtx.Outcome, won, eCtx.Trace.Return())
			fmt.Fprintln(out, minesweeper.ReadableTrace(eCtx.Trace))
		}
	}
	log.Info().
		Int("episodes", episodes).
		Int("wins", wins).
		Int("table_states", policy.Table().States()).
		Int("table_entries", policy.Table().Size()).
		Msg("play finished")
	return nil
}

func PlayCommand() *cobra.Command {
	var show int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Let the agent play and print its last games",
		RunE: func(cmd *cobra.Command, args []string) error {
			return Play(cmd.Context(), cmd.OutOrStdout(), gameConfig, episodes, horizon, show)
		},
	}
	cmd.PersistentFlags().IntVar(&show, "show", 3, "Number of final episodes to print")
	return cmd
}
