package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zeu5/minesweeper-rl/benchmarks"
)

// main entry point to training, playing and serving the game
func main() {
	// a missing .env is fine, the defaults and flags still apply
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// rootCommand defines a command line argument parser (some arguments and a subcommand to run)
	rootCommand := benchmarks.GetRootCommand()
	if err := rootCommand.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}
