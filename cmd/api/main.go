package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/flapboard/core/cmd/api/commands"
)

// @title Flapboard API
// @version 1.0
// @description Leaderboard and player accounts backed by JSON files
// @BasePath /

func main() {
	rootCmd := &cobra.Command{
		Use:          "flapboard",
		Short:        "Flapboard leaderboard API",
		Long:         `Flapboard keeps a top-scores leaderboard and simple player accounts in two JSON files.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			// Running without a subcommand serves the API
			commands.NewServeCommand().Run(cmd, args)
		},
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewStoreCommand())
	rootCmd.AddCommand(commands.NewScoresCommand())
	rootCmd.AddCommand(commands.NewAccountCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
