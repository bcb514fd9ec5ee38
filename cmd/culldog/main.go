package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := &cobra.Command{
		Use:     "culldog",
		Short:   "Keep directories under a size budget",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newCullCmd())
	root.AddCommand(newJournalCmd())

	if err := root.Execute(); err != nil {
		return 1
	}
	return 0
}
