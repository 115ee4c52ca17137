package benchmarks

import (
	"github.com/spf13/cobra"
	"github.com/zeu5/minesweeper-rl/minesweeper"
	"github.com/zeu5/minesweeper-rl/policies"
	"github.com/zeu5/minesweeper-rl/server"
)

func ServeCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a game over http, the agent learns from every move",
		RunE: func(cmd *cobra.Command, args []string) error {
			session := server.NewSession(
				gameConfig,
				minesweeper.NewEnvironment(gameConfig),
				policies.NewQLearningPolicyFromConfig(gameConfig),
			)
			return server.New(addr, session).Run(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", ":7074", "Address to listen on")
	return cmd
}
