package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ivoronin/culldog/internal/journal"
)

// newJournalCmd creates the journal subcommand, which prints the deletions
// recorded by previous cull runs that used --journal-file.
func newJournalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "journal <journal-file>",
		Short: "Print deletions recorded in a journal file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runJournal(args[0])
		},
	}
}

func runJournal(path string) error {
	entries, err := journal.List(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("%s\t%s\t%s\n",
			e.Deleted.Format(time.RFC3339), humanize.IBytes(uint64(e.Size)), e.Path)
	}
	return nil
}
