package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kashishkhatter/interviewer-cw/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "interviewer-configure",
		Short: "Configuration tool for the interviewer API",
		Long:  "CLI tool for inspecting tokens, rate limits and stored interview data",
	}

	rootCmd.AddCommand(commands.NewTokenCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
