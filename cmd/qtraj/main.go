// Command qtraj runs martingale-reweighted Monte-Carlo simulations of open
// quantum systems with negative decay rates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "qtraj",
		Short: "Quantum trajectories for master equations with negative rates",
		Long: `qtraj simulates open quantum systems whose decay rates may turn
negative, using the influence-martingale quantum-jump method: trajectories
run under a shifted, always-nonnegative jump process and carry a martingale
weight that corrects ensemble averages back to the true dynamics.`,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newRunsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("qtraj version %s\n", version)
		},
	}
}
