package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/dateideas/core/cmd/dateideas/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dateideas",
		Short: "Date ideas web app",
		Long:  `Date ideas keeps a shared list of date ideas with photos and a logbook behind a single passcode.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewIdeasCommand())
	rootCmd.AddCommand(commands.NewPasscodeCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
