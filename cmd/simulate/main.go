package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "simulate",
		Short:        "Drive the interview engine from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(runCmd(), watchCmd())
	return root
}
